// Package api exposes the CardDex services over a chi REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramonehamilton/carddex/internal/api/handlers"
	"github.com/ramonehamilton/carddex/internal/api/websocket"
	"github.com/ramonehamilton/carddex/internal/events"
	"github.com/ramonehamilton/carddex/internal/logger"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        Config
	services   Services
	log        *logger.Logger

	// WebSocket hub for real-time events
	wsHub *websocket.Hub
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		CORSOrigins:    []string{"http://localhost:*", "http://127.0.0.1:*"},
		RequestTimeout: 60 * time.Second,
	}
}

// Services holds the domain services behind the handlers.
type Services struct {
	Catalog    handlers.CatalogService
	Collection handlers.CollectionService
	Energy     handlers.EnergyService
	Decks      handlers.DeckService
	Backups    handlers.BackupService

	// Events, when set, is streamed to WebSocket clients at /ws.
	Events *events.Dispatcher

	// Gatherer, when set, is served at /metrics.
	Gatherer prometheus.Gatherer
}

// NewServer creates a new API server.
func NewServer(cfg Config, services Services, log *logger.Logger) *Server {
	defaults := DefaultConfig()
	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		services: services,
		log:      log,
		wsHub:    websocket.NewHub(log, cfg.CORSOrigins),
	}
	go s.wsHub.Run()
	if services.Events != nil {
		services.Events.Register(websocket.NewObserver(s.wsHub))
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT only (not GET/DELETE/OPTIONS)
	s.router.Use(jsonContentTypeMiddleware)
}

// requestLogger attaches the request id to the context logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := s.log.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && r.ContentLength != 0 {
			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server in a goroutine. Listen errors other than a
// clean shutdown are sent to errc.
func (s *Server) Start(errc chan<- error) {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.log.Infof(context.Background(), "API server starting on port %d", s.cfg.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	s.log.Info(ctx, "shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.cfg.Port
}

// WebSocketHub returns the hub streaming domain events.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.services.Gatherer, promhttp.HandlerOpts{})
}
