// Package server assembles the HTTP surface: routes, handlers, the
// middleware chain, and the http.Server lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/doanvh/studentsvc/internal/auth"
	authjwt "github.com/doanvh/studentsvc/internal/auth/jwt"
	"github.com/doanvh/studentsvc/internal/config"
	"github.com/doanvh/studentsvc/internal/health"
	"github.com/doanvh/studentsvc/internal/middleware"
	"github.com/doanvh/studentsvc/internal/observability"
	"github.com/doanvh/studentsvc/internal/ratelimit"
	"github.com/doanvh/studentsvc/internal/student"
)

// ginModeOnce ensures gin.SetMode is only called once.
var ginModeOnce sync.Once

// Deps are the collaborators the server wires into its handlers.
type Deps struct {
	Students  *student.Service
	Verifier  auth.Verifier
	Signer    authjwt.Signer
	Validator authjwt.Validator
	Metrics   *observability.Metrics

	// Limiter enables per-client rate limiting when non-nil.
	Limiter *ratelimit.Service

	Health *health.Handler
	Logger observability.Logger
}

// Server is the HTTP server for the student records service.
type Server struct {
	engine     *gin.Engine
	handler    http.Handler
	httpServer *http.Server
	logger     observability.Logger
	cfg        config.ServerConfig
	mu         sync.Mutex
	running    bool
}

// New creates a server with all routes registered and the middleware
// chain assembled.
func New(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = observability.NopLogger()
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	engine := gin.New()
	registerRoutes(engine, deps)

	s := &Server{
		engine:  engine,
		handler: buildChain(engine, deps),
		logger:  deps.Logger,
		cfg:     cfg,
	}

	return s
}

// buildChain wraps the engine in the middleware chain. Execution order
// (outermost first): RateLimit -> RequestID -> Logging -> Recovery ->
// CORS -> routes. The rate limiter deliberately runs outside the
// logger, so rejected requests emit a warn log rather than the
// per-request record. Recovery runs inside Logging so the log line
// carries the final 500 when a handler panics.
func buildChain(engine *gin.Engine, deps Deps) http.Handler {
	h := http.Handler(engine)

	h = middleware.CORS(middleware.DefaultCORSConfig())(h)
	h = middleware.Recovery(deps.Logger)(h)
	h = middleware.Logging(deps.Logger)(h)
	h = middleware.RequestID()(h)

	if deps.Limiter != nil {
		opts := []middleware.RateLimitOption{
			middleware.WithRateLimitLogger(deps.Logger),
		}
		if deps.Metrics != nil {
			opts = append(opts, middleware.WithRateLimitHitCallback(deps.Metrics.RecordRateLimitHit))
		}
		h = middleware.RateLimit(deps.Limiter, opts...)(h)
	}

	return h
}

// Handler returns the fully wrapped handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout.Duration(),
		WriteTimeout: s.cfg.WriteTimeout.Duration(),
		IdleTimeout:  s.cfg.IdleTimeout.Duration(),
	}

	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop stops the HTTP server gracefully, draining in-flight requests
// until the context expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("HTTP server stopped")
	return nil
}
