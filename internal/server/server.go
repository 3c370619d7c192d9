// Package server exposes showroom sessions over WebSocket, one session per
// connection, plus a small read-only HTTP surface.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/showroom/internal/config"
	"github.com/zeusync/showroom/internal/core/assets"
	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/observability/log"
	"github.com/zeusync/showroom/internal/core/observability/metrics"
	"github.com/zeusync/showroom/internal/core/showroom"
)

const shutdownTimeout = 5 * time.Second

// Server hosts showroom sessions.
type Server struct {
	cfg     config.ServerConfig
	room    showroom.Config
	catalog *catalog.Catalog
	loader  assets.Loader
	logger  log.Log

	upgrader websocket.Upgrader
	handler  http.Handler

	metrics  *metrics.Registry
	observer *metrics.BusObserver
	sessions atomic.Int64

	mu     sync.Mutex
	closed bool

	// ctx ends every session loop on shutdown; hijacked connections are not
	// covered by http.Server.Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a server from the full configuration.
func New(cfg config.Config, cat *catalog.Catalog, logger log.Log) (*Server, error) {
	room, err := cfg.BuildShowroom()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		cfg:     cfg.Server,
		room:    room,
		catalog: cat,
		loader:  assets.NewProxyLoader(cat, assets.WithLatency(cfg.Assets.Latency)),
		logger:  logger.With(log.Component("server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.Server.ReadBufferSize,
			WriteBufferSize: cfg.Server.WriteBufferSize,
			CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
		},
	}
	s.metrics = metrics.NewRegistry()
	s.observer = metrics.NewBusObserver(s.metrics)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.handler = s.routes()

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.Server.ListenAddr),
		log.Int("tick_rate", cfg.Server.TickRate),
		log.Int("products", cat.Len()),
	)
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler { return s.handler }

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

// Metrics returns the server's metrics registry.
func (s *Server) Metrics() *metrics.Registry { return s.metrics }

// ListenAndServe listens on the configured address and serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then closes every session
// and shuts the HTTP server down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		_ = ln.Close()
		return ErrServerClosed
	}
	hs := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	s.logger.Info("Server stopped")
	return err
}

// Close ends every session and waits for their loops to return. New
// connections are refused afterwards.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// acquire reserves a session slot.
func (s *Server) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	n := s.sessions.Add(1)
	if limit := s.cfg.MaxSessions; limit > 0 && n > int64(limit) {
		s.sessions.Add(-1)
		s.metrics.Counter("sessions_rejected_total", nil).Inc()
		return ErrMaxSessionsReached
	}
	s.metrics.Gauge("sessions_active", nil).Inc()
	s.metrics.Counter("sessions_opened_total", nil).Inc()
	s.wg.Add(1)
	return nil
}

func (s *Server) release() {
	s.sessions.Add(-1)
	s.metrics.Gauge("sessions_active", nil).Dec()
	s.wg.Done()
}

// originChecker allows the listed origins. An empty list keeps gorilla's
// same-origin check, and "*" allows any origin.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
