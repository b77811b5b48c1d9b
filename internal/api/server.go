package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seantiz/algolab/internal/engine"
	"github.com/seantiz/algolab/internal/store"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 60 * time.Second
)

// Server wraps the chi router and application dependencies.
type Server struct {
	router      *chi.Mux
	store       store.Store
	engine      *engine.Engine
	logger      *slog.Logger
	addr        string
	execTimeout time.Duration
}

// NewServer creates and configures a new HTTP server. execTimeout applies to
// execute requests that do not carry their own timeout.
func NewServer(addr string, s store.Store, eng *engine.Engine, logger *slog.Logger, execTimeout time.Duration) *Server {
	if execTimeout <= 0 {
		execTimeout = engine.DefaultTimeout
	}
	srv := &Server{
		router:      chi.NewRouter(),
		store:       s,
		engine:      eng,
		logger:      logger,
		addr:        addr,
		execTimeout: execTimeout,
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(srv.loggingMiddleware)
	srv.router.Use(metricsMiddleware)
	srv.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	srv.routes()

	return srv
}

// routes registers all HTTP routes on the router.
func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metricsHandler())

	s.router.Get("/v1/algorithms", s.handleListAlgorithms)

	s.router.Post("/v1/execute", s.handleExecute)
	s.router.Post("/v1/execute/batch", s.handleExecuteBatch)

	s.router.Get("/v1/stats", s.handleGetStats)
	s.router.Delete("/v1/stats", s.handleResetStats)
	s.router.Delete("/v1/cache", s.handleClearCache)

	s.router.Route("/v1/history", func(r chi.Router) {
		r.Get("/", s.handleGetHistory)
		r.Delete("/", s.handleClearHistory)
		r.Get("/stream", s.handleStreamHistory)
	})

	s.router.Route("/v1/executions", func(r chi.Router) {
		r.Get("/", s.handleListExecutions)
		r.Get("/stats", s.handleExecutionStats)
	})

	s.router.Route("/v1/settings", func(r chi.Router) {
		r.Get("/", s.handleListSettings)
		r.Get("/{key}", s.handleGetSetting)
		r.Put("/{key}", s.handlePutSetting)
		r.Delete("/{key}", s.handleDeleteSetting)
	})
}

// Router returns the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Ends open history streams so Shutdown does not wait on them.
	s.engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// loggingMiddleware logs each request using the structured logger.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
