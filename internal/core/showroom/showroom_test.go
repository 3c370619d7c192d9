package showroom

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/showroom/internal/core/assets"
	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/events"
	"github.com/zeusync/showroom/internal/core/events/bus"
	"github.com/zeusync/showroom/internal/core/input"
	"github.com/zeusync/showroom/internal/core/navigation"
)

type eventLog struct {
	mu     sync.Mutex
	events []bus.Event
}

func record(t *testing.T, s *Showroom) *eventLog {
	t.Helper()
	l := &eventLog{}
	_, err := s.Bus().Subscribe(bus.Wildcard, func(e bus.Event) error {
		l.mu.Lock()
		l.events = append(l.events, e)
		l.mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	return l
}

func (l *eventLog) of(typ string) []bus.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []bus.Event
	for _, e := range l.events {
		if e.Type() == typ {
			out = append(out, e)
		}
	}
	return out
}

func waitLoaded(t *testing.T, s *Showroom) {
	t.Helper()
	select {
	case <-s.Loaded():
	case <-time.After(2 * time.Second):
		t.Fatal("products did not load")
	}
}

func started(t *testing.T, class input.DeviceClass, opts ...Option) (*Showroom, *eventLog) {
	t.Helper()
	s := New(DefaultConfig(), class, catalog.Default(), opts...)
	rec := record(t, s)
	require.NoError(t, s.Start(context.Background()))
	waitLoaded(t, s)
	require.True(t, s.Tick(0))
	return s, rec
}

// aim turns the camera toward a world point.
func aim(t *testing.T, s *Showroom, target mgl64.Vec3) {
	t.Helper()
	d := target.Sub(s.Pose().Position)
	yaw := math.Atan2(-d.X(), -d.Z())
	pitch := math.Atan2(d.Y(), math.Hypot(d.X(), d.Z()))
	require.NoError(t, s.Look(yaw, pitch))
}

func TestLoadsAndRegistersCatalog(t *testing.T) {
	s, rec := started(t, input.DeviceDesktop)
	defer s.Close()

	assert.Equal(t, 5, s.Entities())
	assert.Len(t, rec.of(events.AssetLoaded), 5)
	assert.Empty(t, rec.of(events.AssetFailed))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestClickEngagesThenPicksCenter(t *testing.T) {
	s, rec := started(t, input.DeviceDesktop)
	defer s.Close()

	_, ok := s.Click(mgl64.Vec2{0.5, 0.5})
	assert.False(t, ok, "first click only engages")
	assert.True(t, s.Engaged())
	require.Len(t, rec.of(events.NavigationLocked), 1)

	aim(t, s, mgl64.Vec3{-1.8, 0.4, -5})
	hit, ok := s.Click(mgl64.Vec2{0.9, -0.9})
	require.True(t, ok, "locked mode picks through the center, not the pointer")
	assert.Equal(t, "duck-1", hit.Entity.Product.ID)
	assert.False(t, s.Engaged())

	activated := rec.of(events.EntityActivated)
	require.Len(t, activated, 1)
	assert.Equal(t, "duck-1", activated[0].Data().(events.Activation).ProductID)

	unlocked := rec.of(events.NavigationUnlocked)
	require.Len(t, unlocked, 1)
	assert.Equal(t, string(navigation.ReasonEntityActivated), unlocked[0].Data().(events.NavigationChange).Reason)
}

func TestClickOnEmptySpaceKeepsCapture(t *testing.T) {
	s, rec := started(t, input.DeviceDesktop)
	defer s.Close()

	require.NoError(t, s.Engage())
	_, ok := s.Click(mgl64.Vec2{})
	assert.False(t, ok)
	assert.True(t, s.Engaged())
	assert.Empty(t, rec.of(events.EntityActivated))
}

func TestKeyboardWalk(t *testing.T) {
	s, _ := started(t, input.DeviceDesktop)
	defer s.Close()

	moved, err := s.HandleKey("KeyW", true)
	require.NoError(t, err)
	assert.True(t, moved)

	s.Tick(0.5)
	assert.InDelta(t, 0, s.Pose().Position.Z(), 1e-9, "no movement before engaging")

	require.NoError(t, s.Engage())
	s.Tick(0.5)
	assert.InDelta(t, -3, s.Pose().Position.Z(), 1e-9)

	_, _ = s.HandleKey("ArrowRight", true)
	s.Tick(10)
	assert.InDelta(t, 1.8, s.Pose().Position.X(), 1e-9)

	_, _ = s.HandleKey("KeyW", false)
	_, _ = s.HandleKey("ArrowRight", false)
	before := s.Pose()
	s.Tick(1)
	assert.Equal(t, before, s.Pose())

	assert.ErrorIs(t, s.MoveStick(0, 1), ErrWrongDevice)
}

func TestTouchSticks(t *testing.T) {
	s, _ := started(t, input.DeviceTouch)
	defer s.Close()
	assert.Equal(t, navigation.ModeTouchNav, s.Mode())

	require.NoError(t, s.MoveStick(0, 1))
	s.Tick(0.5)
	assert.InDelta(t, -3, s.Pose().Position.Z(), 1e-9)
	require.NoError(t, s.ReleaseMoveStick())

	rot, err := s.RotateStick(-1, 0)
	require.NoError(t, err)
	assert.Equal(t, input.RotateLeft, rot)
	s.Tick(1.0 / 60)
	s.Tick(1.0 / 60)
	assert.InDelta(t, mgl64.DegToRad(4), s.Pose().Yaw, 1e-9)

	require.NoError(t, s.ReleaseRotateStick())
	s.Tick(1.0 / 60)
	assert.InDelta(t, mgl64.DegToRad(4), s.Pose().Yaw, 1e-9)

	_, err = s.HandleKey("KeyW", true)
	assert.ErrorIs(t, err, ErrWrongDevice)
}

func TestTouchTapResolvesPointer(t *testing.T) {
	s, rec := started(t, input.DeviceTouch)
	defer s.Close()

	// duck-2 sits on the right wall, 5 units ahead
	target := mgl64.Vec3{1.8, 0.4, -5}
	cam := s.Pose().Camera(DefaultConfig().Lens)
	ndc := projectNDC(cam.Projection().Mul4(cam.View()), target)

	hit, ok := s.Click(ndc)
	require.True(t, ok)
	assert.Equal(t, "duck-2", hit.Entity.Product.ID)
	assert.Len(t, rec.of(events.EntityActivated), 1)
	assert.Empty(t, rec.of(events.NavigationUnlocked), "touch has no capture to release")
}

func projectNDC(viewProj mgl64.Mat4, p mgl64.Vec3) mgl64.Vec2 {
	clip := viewProj.Mul4x1(p.Vec4(1))
	return mgl64.Vec2{clip.X() / clip.W(), clip.Y() / clip.W()}
}

func TestCartFlow(t *testing.T) {
	s, rec := started(t, input.DeviceDesktop)
	defer s.Close()

	require.NoError(t, s.AddToCart("duck-1"))
	require.NoError(t, s.AddToCart("duck-1"))
	require.NoError(t, s.AddToCart("happy-face"))
	require.NoError(t, s.AddToCart("discontinued"))

	sum := s.Cart()
	assert.Equal(t, 4, sum.TotalCount)
	assert.InDelta(t, 2*19.99+14.99, sum.TotalPrice, 1e-9)
	assert.Len(t, rec.of(events.CartChanged), 4)

	require.NoError(t, s.RemoveFromCart("duck-1"))
	assert.Equal(t, 2, s.Cart().TotalCount)

	order, err := s.Checkout()
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, 2, order.Summary.TotalCount)
	assert.Len(t, rec.of(events.CheckoutRequested), 1)
	assert.Zero(t, s.Cart().TotalCount)

	_, err = s.Checkout()
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, s.AddToCart("duck-2"))
	require.NoError(t, s.ClearCart())
	assert.Empty(t, s.Cart().Lines)
}

func TestFailedLoadIsReportedOnce(t *testing.T) {
	cat := catalog.Default()
	proxy := assets.NewProxyLoader(cat)
	var calls sync.Map
	loader := assets.LoaderFunc(func(ctx context.Context, url string) (*assets.Model, error) {
		n, _ := calls.LoadOrStore(url, new(int))
		*(n.(*int))++
		if p, _ := cat.Find(url); p.ID == "glasses-face" {
			return nil, errors.New("connection reset")
		}
		return proxy.Load(ctx, url)
	})

	s, rec := started(t, input.DeviceDesktop, WithLoader(loader))
	defer s.Close()
	s.Tick(0)

	assert.Equal(t, 4, s.Entities())
	failed := rec.of(events.AssetFailed)
	require.Len(t, failed, 1)
	res := failed[0].Data().(events.AssetResult)
	assert.Equal(t, "glasses-face", res.ProductID)
	assert.ErrorIs(t, res.Err, assets.ErrLoadFailed)

	calls.Range(func(_, v any) bool {
		assert.Equal(t, 1, *(v.(*int)))
		return true
	})
}

func TestCompletionAfterCloseIsDropped(t *testing.T) {
	gate := make(chan struct{})
	proxy := assets.NewProxyLoader(catalog.Default())
	loader := assets.LoaderFunc(func(ctx context.Context, url string) (*assets.Model, error) {
		<-gate
		return proxy.Load(context.Background(), url)
	})

	s := New(DefaultConfig(), input.DeviceDesktop, catalog.Default(), WithLoader(loader))
	rec := record(t, s)
	require.NoError(t, s.Start(context.Background()))
	require.True(t, s.Tick(0))

	s.Close()
	close(gate)
	waitLoaded(t, s)

	assert.False(t, s.Tick(0))
	assert.False(t, s.Alive())
	assert.Zero(t, s.Entities())
	assert.Empty(t, rec.of(events.AssetLoaded))
}

func TestQueuedCompletionDiscardedOnClose(t *testing.T) {
	s := New(DefaultConfig(), input.DeviceDesktop, catalog.Default())
	rec := record(t, s)
	require.NoError(t, s.Start(context.Background()))
	waitLoaded(t, s)

	s.Close()
	assert.False(t, s.Tick(0))
	assert.Zero(t, s.Entities())
	assert.Empty(t, rec.of(events.AssetLoaded))
}

func TestCloseReleasesCaptureAndRejectsInput(t *testing.T) {
	s, rec := started(t, input.DeviceDesktop)
	require.NoError(t, s.Engage())

	s.Close()
	s.Close()
	unlocked := rec.of(events.NavigationUnlocked)
	require.Len(t, unlocked, 1)
	assert.Equal(t, string(navigation.ReasonClosed), unlocked[0].Data().(events.NavigationChange).Reason)

	assert.ErrorIs(t, s.Engage(), ErrClosed)
	assert.ErrorIs(t, s.AddToCart("duck-1"), ErrClosed)
	_, err := s.HandleKey("KeyW", true)
	assert.ErrorIs(t, err, ErrClosed)
	_, ok := s.Click(mgl64.Vec2{})
	assert.False(t, ok)
	assert.False(t, s.Unlock())
	assert.ErrorIs(t, s.Start(context.Background()), ErrClosed)
}

type denied struct{}

func (denied) Request() error { return errors.New("not allowed") }
func (denied) Release()       {}

func TestCaptureDeniedSurfacesUnlock(t *testing.T) {
	s, rec := started(t, input.DeviceDesktop, WithCapture(denied{}))
	defer s.Close()

	assert.ErrorIs(t, s.Engage(), navigation.ErrCaptureDenied)
	assert.False(t, s.Engaged())
	unlocked := rec.of(events.NavigationUnlocked)
	require.Len(t, unlocked, 1)
	assert.Equal(t, string(navigation.ReasonCaptureDenied), unlocked[0].Data().(events.NavigationChange).Reason)

	require.False(t, s.Unlock())
}

func TestCaptureLostFromClient(t *testing.T) {
	s, rec := started(t, input.DeviceDesktop)
	defer s.Close()

	require.NoError(t, s.Engage())
	s.CaptureLost()
	assert.False(t, s.Engaged())
	require.NoError(t, s.Engage())
	assert.True(t, s.Unlock())
	assert.Len(t, rec.of(events.NavigationUnlocked), 2)
}

func TestOrbitDesktop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Navigation.DesktopMode = navigation.ModeFreeOrbit
	s := New(cfg, input.DeviceDesktop, catalog.Default())
	defer s.Close()

	assert.Equal(t, navigation.ModeFreeOrbit, s.Mode())
	assert.True(t, s.Engaged())
	require.NoError(t, s.Orbit(0.3, 0))
	require.NoError(t, s.Zoom(1))
	require.NoError(t, s.Pan(0, 1))
	assert.True(t, cfg.Boundary.Contains(s.Pose().Position))
}
