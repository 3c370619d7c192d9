package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/showroom/internal/core/events/bus"
	"github.com/zeusync/showroom/internal/core/input"
	"github.com/zeusync/showroom/internal/core/observability/log"
	"github.com/zeusync/showroom/internal/core/observability/metrics"
	"github.com/zeusync/showroom/internal/core/showroom"
)

var errCaptureDenied = errors.New("pointer capture denied by client")

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	class := input.Classify(r.UserAgent())
	if d := r.URL.Query().Get("device"); d != "" {
		c, ok := input.ParseDeviceClass(d)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown device %q", d), http.StatusBadRequest)
			return
		}
		class = c
	}

	if err := s.acquire(); err != nil {
		s.logger.Warn("Rejecting session", log.Error(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		s.logger.Debug("Upgrade failed", log.Error(err))
		return
	}

	room := showroom.New(s.room, class, s.catalog,
		showroom.WithLoader(s.loader),
		showroom.WithLogger(s.logger),
	)
	room.Bus().AddObserver(s.observer)
	ctx := log.ContextWithSession(s.ctx, room.ID())
	logger := s.logger.WithContext(ctx)
	logger.Info("Session opened",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.String("device", class.String()),
		log.Int64("sessions", s.Sessions()),
	)

	c := &connection{
		conn:         conn,
		room:         room,
		logger:       logger,
		metrics:      s.metrics,
		tick:         time.Second / time.Duration(s.cfg.TickRate),
		writeTimeout: s.cfg.WriteTimeout,
	}
	conn.SetReadLimit(s.cfg.MaxMessageSize)
	if err := c.run(ctx); err != nil {
		logger.Warn("Session ended with error", log.Error(err))
	}
	logger.Info("Session closed")
}

// connection drives one showroom. Its run loop is the only goroutine that
// touches the showroom or writes to the socket.
type connection struct {
	conn         *websocket.Conn
	room         *showroom.Showroom
	logger       log.Log
	metrics      *metrics.Registry
	tick         time.Duration
	writeTimeout time.Duration

	outbox   []Outbound
	lastPose PoseUpdate
	posed    bool
}

func (c *connection) run(ctx context.Context) error {
	defer c.conn.Close()
	defer c.room.Close()

	sub, err := c.room.Bus().Subscribe(bus.Wildcard, c.enqueue)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Cancel() }()

	if err := c.room.Start(ctx); err != nil {
		return err
	}
	c.send(Outbound{Type: OutHello, Data: Hello{
		Session:  c.room.ID(),
		Device:   c.room.Class().String(),
		Mode:     c.room.Mode().String(),
		Products: c.room.Catalog().Products(),
	}})
	c.queuePose()
	if err := c.flush(); err != nil {
		return err
	}

	reads := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go c.readLoop(reads, readErr, done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			c.closeWith(websocket.CloseGoingAway, "server shutting down")
			return nil
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case data := <-reads:
			c.handle(data)
		case <-c.room.Pending():
			if !c.room.Tick(0) {
				return nil
			}
		case now := <-ticker.C:
			if !c.room.Tick(now.Sub(last).Seconds()) {
				return nil
			}
			last = now
			c.queuePose()
		}
		if err := c.flush(); err != nil {
			return err
		}
	}
}

func (c *connection) readLoop(reads chan<- []byte, errs chan<- error, done <-chan struct{}) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			errs <- err
			return
		}
		select {
		case reads <- data:
		case <-done:
			return
		}
	}
}

func (c *connection) handle(data []byte) {
	in, err := decodeInbound(data)
	if err != nil {
		c.metrics.Counter("messages_invalid_total", nil).Inc()
		c.send(errorReply("", err))
		return
	}
	err = c.dispatch(in)
	kind := in.Type
	if errors.Is(err, ErrUnknownMessage) {
		kind = "unknown"
	}
	tags := map[string]string{"type": kind}
	c.metrics.Counter("messages_received_total", tags).Inc()
	if err != nil {
		c.metrics.Counter("message_errors_total", tags).Inc()
		c.logger.Debug("Request failed", log.String("type", in.Type), log.Error(err))
		c.send(errorReply(in.Type, err))
	}
}

func (c *connection) dispatch(in Inbound) error {
	r := c.room
	switch in.Type {
	case MsgKey:
		_, err := r.HandleKey(in.Code, in.Down)
		return err
	case MsgMove:
		if in.Release {
			return r.ReleaseMoveStick()
		}
		return r.MoveStick(in.X, in.Y)
	case MsgRotate:
		if in.Release {
			return r.ReleaseRotateStick()
		}
		_, err := r.RotateStick(in.X, in.Y)
		return err
	case MsgLook:
		return r.Look(in.Yaw, in.Pitch)
	case MsgOrbit:
		return r.Orbit(in.X, in.Y)
	case MsgPan:
		return r.Pan(in.X, in.Y)
	case MsgZoom:
		return r.Zoom(in.Delta)
	case MsgEngage:
		return r.Engage()
	case MsgCaptureDenied:
		err := errCaptureDenied
		if in.Reason != "" {
			err = fmt.Errorf("%w: %s", errCaptureDenied, in.Reason)
		}
		r.CaptureDenied(err)
		return nil
	case MsgCaptureLost:
		r.CaptureLost()
		return nil
	case MsgUnlock:
		r.Unlock()
		return nil
	case MsgClick:
		r.Click(clickPoint(in))
		return nil
	case MsgCartAdd:
		if in.Product == "" {
			return fmt.Errorf("%w: product is required", ErrInvalidMessage)
		}
		return r.AddToCart(in.Product)
	case MsgCartRemove:
		if in.Product == "" {
			return fmt.Errorf("%w: product is required", ErrInvalidMessage)
		}
		return r.RemoveFromCart(in.Product)
	case MsgCartClear:
		return r.ClearCart()
	case MsgCheckout:
		_, err := r.Checkout()
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownMessage, in.Type)
}

// enqueue runs inside showroom calls made by the run loop.
func (c *connection) enqueue(e bus.Event) error {
	if msg, ok := outboundFor(e); ok {
		c.send(msg)
	}
	return nil
}

func (c *connection) send(msg Outbound) {
	c.outbox = append(c.outbox, msg)
}

// queuePose sends the pose when it differs from the last one sent.
func (c *connection) queuePose() {
	p := PoseUpdate{Pose: c.room.Pose(), Engaged: c.room.Engaged()}
	if c.posed && p == c.lastPose {
		return
	}
	c.lastPose, c.posed = p, true
	c.send(Outbound{Type: OutPose, Data: p})
}

func (c *connection) flush() error {
	defer func() { c.outbox = c.outbox[:0] }()
	for _, msg := range c.outbox {
		if c.writeTimeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		}
		if err := c.conn.WriteJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *connection) closeWith(code int, text string) {
	deadline := time.Now().Add(time.Second)
	if err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline); err != nil {
		c.logger.Debug("Close frame not sent", log.Error(err))
	}
}
