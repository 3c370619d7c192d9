// Package showroom assembles one visitor's session: navigation, input, the
// product scene, picking and the cart. A Showroom is owned by one goroutine
// that calls Tick and the input methods in arrival order; asset loads run
// elsewhere and are applied at the start of the next Tick.
package showroom

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/showroom/internal/core/assets"
	"github.com/zeusync/showroom/internal/core/boundary"
	"github.com/zeusync/showroom/internal/core/cart"
	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/events"
	"github.com/zeusync/showroom/internal/core/events/bus"
	"github.com/zeusync/showroom/internal/core/hittest"
	"github.com/zeusync/showroom/internal/core/input"
	"github.com/zeusync/showroom/internal/core/navigation"
	"github.com/zeusync/showroom/internal/core/observability/log"
	"github.com/zeusync/showroom/internal/core/scene"
	"github.com/zeusync/showroom/pkg/concurrent"
)

// Config is the fully built configuration of a Showroom.
type Config struct {
	Boundary          boundary.Boundary
	Navigation        navigation.Config
	Lens              scene.Lens
	FloorY            float64
	NormalizeDiagonal bool
	DeadZone          float64
	LoadConcurrency   int
	LoadTimeout       time.Duration
}

// DefaultConfig is the 4×20 corridor with the camera at eye height by the
// entrance.
func DefaultConfig() Config {
	b, err := boundary.Corridor(4, 20, 0.2)
	if err != nil {
		panic(err) // constant parameters
	}
	return Config{
		Boundary:        b,
		Navigation:      navigation.DefaultConfig(),
		Lens:            scene.DefaultLens(),
		DeadZone:        input.DefaultDeadZone,
		LoadConcurrency: 4,
		LoadTimeout:     30 * time.Second,
	}
}

type Showroom struct {
	id      string
	cfg     Config
	catalog *catalog.Catalog

	session  *navigation.Session
	source   input.Source
	graph    *scene.Graph
	registry *hittest.Registry
	resolver *hittest.Resolver
	cart     *cart.Ledger

	bus     bus.EventBus
	logger  log.Log
	loader  assets.Loader
	capture navigation.Capture

	inbox  *concurrent.Mailbox[assets.Completion]
	alive  atomic.Bool
	cancel context.CancelFunc
	loaded chan struct{}
}

type Option func(*Showroom)

func WithID(id string) Option {
	return func(s *Showroom) { s.id = id }
}

func WithLoader(l assets.Loader) Option {
	return func(s *Showroom) { s.loader = l }
}

func WithCapture(c navigation.Capture) Option {
	return func(s *Showroom) { s.capture = c }
}

// WithBus shares an event bus; by default each showroom has its own.
func WithBus(b bus.EventBus) Option {
	return func(s *Showroom) { s.bus = b }
}

func WithLogger(l log.Log) Option {
	return func(s *Showroom) { s.logger = l }
}

// New builds a showroom for a device class. Nothing is loaded until Start.
func New(cfg Config, class input.DeviceClass, cat *catalog.Catalog, opts ...Option) *Showroom {
	s := &Showroom{
		cfg:     cfg,
		catalog: cat,
		graph:   scene.NewGraph(),
		cart:    cart.NewLedger(),
		logger:  log.NewNop(),
		capture: navigation.GrantedCapture{},
		inbox:   concurrent.NewMailbox[assets.Completion](),
		loaded:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.bus == nil {
		s.bus = bus.New()
	}
	if s.loader == nil {
		s.loader = assets.NewProxyLoader(cat)
	}
	s.logger = s.logger.With(log.Component("showroom"), log.String("session", s.id))

	s.registry = hittest.NewRegistry(s.graph)
	s.resolver = hittest.NewResolver(s.graph, s.registry)
	s.source = input.New(class,
		input.WithNormalizedDiagonal(cfg.NormalizeDiagonal),
		input.WithDeadZone(cfg.DeadZone),
	)
	s.session = navigation.New(class, cfg.Boundary, cfg.Navigation,
		navigation.WithCapture(s.capture),
		navigation.WithSignal(s.onSignal),
		navigation.WithLogger(s.logger),
	)
	s.cart.OnChange(func([]cart.Line) { s.publish(events.CartChanged, events.CartChange{Summary: s.Cart()}) })
	s.alive.Store(true)
	return s
}

// Start lays out the catalog and begins loading every product in the
// background. Loaded chan closes once every load has been posted.
func (s *Showroom) Start(ctx context.Context) error {
	if !s.alive.Load() {
		return ErrClosed
	}
	if s.cancel != nil {
		return ErrAlreadyStarted
	}
	ctx, s.cancel = context.WithCancel(ctx)

	products := s.catalog.Products()
	jobs := assets.Jobs(products, assets.Layout(products, s.cfg.Boundary, s.cfg.FloorY))
	pre := assets.NewPreloader(s.loader,
		assets.WithConcurrency(s.cfg.LoadConcurrency),
		assets.WithTimeout(s.cfg.LoadTimeout),
		assets.WithLogger(s.logger),
	)
	s.logger.Info("Loading products", log.Int("count", len(jobs)))

	go func() {
		defer close(s.loaded)
		if err := pre.Run(ctx, jobs, s.inbox.Post); err != nil {
			s.logger.Debug("Preload stopped", log.Error(err))
		}
	}()
	return nil
}

// Loaded is closed when every started load has been posted.
func (s *Showroom) Loaded() <-chan struct{} { return s.loaded }

// Pending is signalled when load completions are waiting for the next Tick.
func (s *Showroom) Pending() <-chan struct{} { return s.inbox.Ready() }

// Tick applies pending load completions and one step of input. It returns
// false once the showroom is closed; the caller stops scheduling ticks then.
func (s *Showroom) Tick(dt float64) bool {
	if !s.alive.Load() {
		return false
	}
	for _, c := range s.inbox.Drain() {
		s.apply(c)
	}
	s.session.Update(s.source.Intent(), dt)
	return true
}

func (s *Showroom) ID() string                { return s.id }
func (s *Showroom) Class() input.DeviceClass  { return s.source.Class() }
func (s *Showroom) Mode() navigation.Mode     { return s.session.Mode() }
func (s *Showroom) Pose() navigation.Pose     { return s.session.Pose() }
func (s *Showroom) Engaged() bool             { return s.session.Engaged() }
func (s *Showroom) Catalog() *catalog.Catalog { return s.catalog }
func (s *Showroom) Bus() bus.EventBus         { return s.bus }
func (s *Showroom) Alive() bool               { return s.alive.Load() }

// Entities returns the number of registered products.
func (s *Showroom) Entities() int { return s.registry.Len() }

// Close tears the scene down. In-flight loads are cancelled and anything they
// post afterwards is dropped. Closing twice is a no-op.
func (s *Showroom) Close() {
	if !s.alive.Load() {
		return
	}
	s.session.Close()
	s.alive.Store(false)
	s.inbox.Close()
	if s.cancel != nil {
		s.cancel()
	}
	s.source.Detach()
	s.registry.Reset()
	s.graph.Clear()
	s.logger.Debug("Showroom closed")
}

func (s *Showroom) apply(c assets.Completion) {
	if !s.alive.Load() {
		return
	}
	result := events.AssetResult{ProductID: c.Product.ID, URL: c.Product.AssetURL}
	if c.Err != nil {
		result.Err = c.Err
		s.publish(events.AssetFailed, result)
		return
	}

	root, err := assets.Instantiate(s.graph, c.Model, c.Placement)
	if err == nil {
		err = s.registry.Mount(root, scene.Root, c.Product)
	}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", assets.ErrLoadFailed, c.Product.ID, err)
		s.logger.Warn("Asset placement failed", log.String("product", c.Product.ID), log.Error(err))
		result.Err = err
		s.publish(events.AssetFailed, result)
		return
	}

	result.Nodes = c.Model.Count()
	s.publish(events.AssetLoaded, result)
}

func (s *Showroom) onSignal(sig navigation.Signal) {
	typ := events.NavigationLocked
	if sig.Kind == navigation.SignalUnlocked {
		typ = events.NavigationUnlocked
	}
	s.publish(typ, events.NavigationChange{Reason: string(sig.Reason)})
}

func (s *Showroom) publish(typ string, data any) {
	if err := s.bus.Publish(bus.NewEvent(typ, s.id, data)); err != nil {
		s.logger.Warn("Event handler failed", log.String("event", typ), log.Error(err))
	}
}

// pointerNDC clamps a pointer coordinate into the NDC square.
func pointerNDC(p mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{mgl64.Clamp(p.X(), -1, 1), mgl64.Clamp(p.Y(), -1, 1)}
}
