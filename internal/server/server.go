package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the engine over HTTP/JSON with a websocket snapshot
// stream per game.
type Server struct {
	config   *Config
	logger   *log.Logger
	clock    quartz.Clock
	upgrader websocket.Upgrader
	validate *validator.Validate
	registry *Registry
	hub      *Hub
	metrics  *Metrics
	mux      *http.ServeMux
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	clock  quartz.Clock
	idRand io.Reader
}

// WithClock replaces the wall clock used for idle tracking and reaping.
func WithClock(clock quartz.Clock) Option {
	return func(o *serverOptions) { o.clock = clock }
}

// WithIDSource sets the entropy source for game ids.
func WithIDSource(r io.Reader) Option {
	return func(o *serverOptions) { o.idRand = r }
}

// NewServer wires the registry, hub, metrics and routes.
func NewServer(config *Config, logger *log.Logger, opts ...Option) *Server {
	o := &serverOptions{clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(o)
	}
	if config == nil {
		config = DefaultConfig()
	}

	logger = logger.WithPrefix("server")
	hub := NewHub(logger)
	metrics := NewMetrics()

	s := &Server{
		config: config,
		logger: logger,
		clock:  o.clock,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		registry: NewRegistry(logger, o.clock, config.IdleTimeout(), o.idRand, metrics, hub),
		hub:      hub,
		metrics:  metrics,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("DELETE /api/games/{id}", s.handleDeleteGame)
	s.mux.HandleFunc("POST /api/games/{id}/players", s.handleSetRoster)
	s.mux.HandleFunc("POST /api/games/{id}/step", s.handleStep)
	s.mux.HandleFunc("POST /api/games/{id}/advance", s.handleAdvance)
	s.mux.HandleFunc("GET /api/games/{id}/actions", s.handleLegalActions)
	s.mux.HandleFunc("POST /api/games/{id}/actions", s.handleAct)
	s.mux.HandleFunc("POST /api/games/{id}/result", s.handleResult)
	s.mux.HandleFunc("GET /api/games/{id}/ws", s.handleWatch)
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Registry exposes the game registry.
func (s *Server) Registry() *Registry { return s.registry }

// Hub exposes the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Run serves on the configured address and reaps idle games until ctx is
// cancelled, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.registry.RunReaper(ctx, s.config.ReapInterval())
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", s.clock.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
