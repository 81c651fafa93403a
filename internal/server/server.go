package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/driver"
)

// Engine is the part of the driver the transport needs.
type Engine interface {
	Sample(x, y float64, g arena.Gesture) error
	HandLost(ctx context.Context) error
	Control(ctx context.Context, action driver.Action, speed float64) (arena.State, error)
	Snapshot(ctx context.Context) (arena.Snapshot, error)
	Listen(l driver.Listener) (cancel func())
}

// BestTimes reports survival records.
type BestTimes interface {
	Best() int
	Last() int
}

type Config struct {
	ListenAddr     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	ViewerBuffer   int
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:8080",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   5 * time.Second,
		PingPeriod:     5 * time.Second,
		MaxMessageSize: 4096,
		ViewerBuffer:   8,
	}
}

// Server exposes the arena over websockets and a small HTTP control API.
type Server struct {
	cfg    Config
	engine Engine
	best   BestTimes
	logger log.Log

	upgrader websocket.Upgrader
	mux      *http.ServeMux
	hub      *hub

	inputBusy atomic.Bool
	running   atomic.Bool
	closed    atomic.Bool

	mu       sync.Mutex
	httpSrv  *http.Server
	listener net.Listener
}

func New(cfg Config, engine Engine, best BestTimes, logger log.Log) *Server {
	def := DefaultConfig()
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.ReadTimeout {
		cfg.PingPeriod = cfg.ReadTimeout / 2
	}
	if cfg.ViewerBuffer <= 0 {
		cfg.ViewerBuffer = def.ViewerBuffer
	}

	s := &Server{
		cfg:    cfg,
		engine: engine,
		best:   best,
		logger: logger.With(log.String("component", "server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.hub = newHub(s.logger, best)
	s.mux = s.routes()

	s.logger.Info("Server created", log.String("listen_addr", cfg.ListenAddr))
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/input", s.handleInput)
	mux.HandleFunc("GET /ws/view", s.handleView)
	mux.HandleFunc("POST /api/speed", s.handleSpeed)
	mux.HandleFunc("POST /api/{action}", s.handleControl)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/best", s.handleBest)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return errors.Wrapf(err, "listen on %s", s.cfg.ListenAddr)
	}

	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.broadcast(gctx)
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer cancel()
		s.closed.Store(true)
		s.hub.closeAll("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	s.logger.Info("Server stopped")
	return err
}

// Addr is the bound address once Run is listening, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// broadcast feeds driver snapshots to the viewer hub until ctx ends.
func (s *Server) broadcast(ctx context.Context) error {
	latest := make(chan arena.Snapshot, 1)
	cancel := s.engine.Listen(func(snap arena.Snapshot) {
		select {
		case latest <- snap:
			return
		default:
		}
		// Keep only the newest snapshot.
		select {
		case <-latest:
		default:
		}
		select {
		case latest <- snap:
		default:
		}
	})
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-latest:
			s.hub.publish(snap)
		}
	}
}
