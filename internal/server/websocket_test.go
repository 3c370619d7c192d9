package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/showroom/internal/config"
	"github.com/zeusync/showroom/internal/core/cart"
	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/events"
	"github.com/zeusync/showroom/internal/core/observability/log"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := New(cfg, catalog.Default(), log.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg Inbound) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil skips frames until one of type typ arrives and matches accept.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, accept func(json.RawMessage) bool) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f), "waiting for %s", typ)
		if f.Type == typ && (accept == nil || accept(f.Data)) {
			return f
		}
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndCatalog(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)

	resp2, err := http.Get(ts.URL + "/catalog")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var cat catalogResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&cat))
	require.Len(t, cat.Products, 5)
	assert.Equal(t, "duck-1", cat.Products[0].ID)
	assert.InDelta(t, 19.99, cat.Products[0].Price, 1e-9)
}

func TestWebSocketHello(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "")

	hello := decode[Hello](t, readUntil(t, conn, OutHello, nil).Data)
	assert.NotEmpty(t, hello.Session)
	assert.Equal(t, "desktop", hello.Device)
	assert.Equal(t, "locked", hello.Mode)
	assert.Len(t, hello.Products, 5)

	pose := decode[PoseUpdate](t, readUntil(t, conn, OutPose, nil).Data)
	assert.InDelta(t, 1.5, pose.Position.Y(), 1e-9)
	assert.False(t, pose.Engaged)

	// Every product gets loaded and reported.
	for range 5 {
		readUntil(t, conn, OutAssetLoaded, nil)
	}
}

func TestWebSocketEngageAndWalk(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "")
	readUntil(t, conn, OutHello, nil)

	send(t, conn, Inbound{Type: MsgEngage})
	readUntil(t, conn, OutLocked, nil)

	send(t, conn, Inbound{Type: MsgKey, Code: "KeyW", Down: true})
	pose := decode[PoseUpdate](t, readUntil(t, conn, OutPose, func(raw json.RawMessage) bool {
		var p PoseUpdate
		return json.Unmarshal(raw, &p) == nil && p.Position.Z() < -0.2
	}).Data)
	assert.True(t, pose.Engaged)
	assert.InDelta(t, 0, pose.Position.X(), 1e-9)

	send(t, conn, Inbound{Type: MsgUnlock})
	change := decode[events.NavigationChange](t, readUntil(t, conn, OutUnlocked, nil).Data)
	assert.Equal(t, "user", change.Reason)
}

func TestWebSocketCartAndCheckout(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "")
	readUntil(t, conn, OutHello, nil)

	send(t, conn, Inbound{Type: MsgCheckout})
	reply := decode[ErrorReply](t, readUntil(t, conn, OutError, nil).Data)
	assert.Equal(t, MsgCheckout, reply.Request)
	assert.Contains(t, reply.Message, "cart is empty")

	send(t, conn, Inbound{Type: MsgCartAdd, Product: "duck-1"})
	send(t, conn, Inbound{Type: MsgCartAdd, Product: "duck-1"})
	send(t, conn, Inbound{Type: MsgCartAdd, Product: "happy-face"})
	summary := decode[cart.Summary](t, readUntil(t, conn, OutCart, func(raw json.RawMessage) bool {
		var s cart.Summary
		return json.Unmarshal(raw, &s) == nil && s.TotalCount == 3
	}).Data)
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, 2, summary.Lines[0].Quantity)
	assert.InDelta(t, 54.97, summary.TotalPrice, 1e-9)

	send(t, conn, Inbound{Type: MsgCheckout})
	order := decode[events.Checkout](t, readUntil(t, conn, OutCheckout, nil).Data)
	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, 3, order.Summary.TotalCount)

	cleared := decode[cart.Summary](t, readUntil(t, conn, OutCart, nil).Data)
	assert.Zero(t, cleared.TotalCount)
}

func TestWebSocketRejectsBadMessages(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "")
	readUntil(t, conn, OutHello, nil)

	send(t, conn, Inbound{Type: "teleport"})
	reply := decode[ErrorReply](t, readUntil(t, conn, OutError, nil).Data)
	assert.Equal(t, "teleport", reply.Request)
	assert.Contains(t, reply.Message, ErrUnknownMessage.Error())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	reply = decode[ErrorReply](t, readUntil(t, conn, OutError, nil).Data)
	assert.Contains(t, reply.Message, ErrInvalidMessage.Error())

	send(t, conn, Inbound{Type: MsgCartAdd})
	reply = decode[ErrorReply](t, readUntil(t, conn, OutError, nil).Data)
	assert.Equal(t, MsgCartAdd, reply.Request)

	// The session survives bad input.
	send(t, conn, Inbound{Type: MsgCartAdd, Product: "duck-2"})
	readUntil(t, conn, OutCart, nil)
}

func TestWebSocketTouchDevice(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "?device=touch")

	hello := decode[Hello](t, readUntil(t, conn, OutHello, nil).Data)
	assert.Equal(t, "touch", hello.Device)
	assert.Equal(t, "touch", hello.Mode)

	send(t, conn, Inbound{Type: MsgKey, Code: "KeyW", Down: true})
	reply := decode[ErrorReply](t, readUntil(t, conn, OutError, nil).Data)
	assert.Equal(t, MsgKey, reply.Request)

	send(t, conn, Inbound{Type: MsgMove, X: 0, Y: 1})
	readUntil(t, conn, OutPose, func(raw json.RawMessage) bool {
		var p PoseUpdate
		return json.Unmarshal(raw, &p) == nil && p.Position.Z() < -0.2
	})
}

func TestClickPoint(t *testing.T) {
	assert.Equal(t, mgl64.Vec2{0.25, -0.5}, clickPoint(Inbound{X: 0.25, Y: -0.5}))
	assert.Equal(t, mgl64.Vec2{0, 0}, clickPoint(Inbound{X: 400, Y: 300, Width: 800, Height: 600}))
	assert.Equal(t, mgl64.Vec2{-1, 1}, clickPoint(Inbound{X: 0, Y: 0, Width: 800, Height: 600}))
	assert.Equal(t, mgl64.Vec2{1, -1}, clickPoint(Inbound{X: 800, Y: 600, Width: 800, Height: 600}))
	assert.Equal(t, mgl64.Vec2{400, 300}, clickPoint(Inbound{X: 400, Y: 300, Width: 800}), "both sizes are needed for pixels")
}

func TestWebSocketTapInPixels(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn := dial(t, ts, "?device=touch")
	readUntil(t, conn, OutHello, nil)
	pose := decode[PoseUpdate](t, readUntil(t, conn, OutPose, nil).Data)
	for range catalog.Default().Len() {
		readUntil(t, conn, OutAssetLoaded, nil)
	}

	// duck-2 sits on the right wall, 5 units ahead
	cam := pose.Camera(srv.room.Lens)
	clip := cam.Projection().Mul4(cam.View()).Mul4x1(mgl64.Vec4{1.8, 0.4, -5, 1})
	ndc := mgl64.Vec2{clip.X() / clip.W(), clip.Y() / clip.W()}
	const width, height = 800.0, 600.0
	send(t, conn, Inbound{
		Type:   MsgClick,
		X:      (ndc.X() + 1) / 2 * width,
		Y:      (1 - ndc.Y()) / 2 * height,
		Width:  width,
		Height: height,
	})

	hit := decode[events.Activation](t, readUntil(t, conn, OutActivated, nil).Data)
	assert.Equal(t, "duck-2", hit.ProductID)
}

func TestWebSocketDeviceFromUserAgent(t *testing.T) {
	_, ts := newTestServer(t, nil)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"User-Agent": []string{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"}}
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	require.NoError(t, err)
	defer conn.Close()

	hello := decode[Hello](t, readUntil(t, conn, OutHello, nil).Data)
	assert.Equal(t, "touch", hello.Device)
}

func TestWebSocketUnknownDevice(t *testing.T) {
	_, ts := newTestServer(t, nil)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?device=console"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketMaxSessions(t *testing.T) {
	srv, ts := newTestServer(t, func(c *config.Config) { c.Server.MaxSessions = 1 })
	conn := dial(t, ts, "")
	readUntil(t, conn, OutHello, nil)
	assert.EqualValues(t, 1, srv.Sessions())

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebSocketOriginCheck(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.Server.AllowedOrigins = []string{"https://shop.example"}
	})
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": []string{"https://shop.example"}})
	require.NoError(t, err)
	_ = conn.Close()
}

func TestServeShutsSessionsDown(t *testing.T) {
	srv, err := New(config.Default(), catalog.Default(), log.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	readUntil(t, conn, OutHello, nil)

	cancel()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.Zero(t, srv.Sessions())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	assert.ErrorIs(t, srv.Serve(context.Background(), ln), ErrServerClosed)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn := dial(t, ts, "")
	readUntil(t, conn, OutHello, nil)

	send(t, conn, Inbound{Type: MsgCartAdd, Product: "duck-1"})
	send(t, conn, Inbound{Type: "teleport"})
	readUntil(t, conn, OutError, nil)

	reg := srv.Metrics()
	assert.InDelta(t, 1, reg.Value("sessions_active", nil), 1e-9)
	assert.InDelta(t, 1, reg.Value("messages_received_total", map[string]string{"type": MsgCartAdd}), 1e-9)
	assert.InDelta(t, 1, reg.Value("message_errors_total", map[string]string{"type": "unknown"}), 1e-9)
	assert.InDelta(t, 1, reg.Value("events_published_total", map[string]string{"type": events.CartChanged}), 1e-9)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body metricsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Metrics)
}
