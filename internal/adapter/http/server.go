package http

import (
	"context"
	"net/http"
	"time"

	"github.com/careatlas/careatlas/internal/adapter/cache"
	"github.com/careatlas/careatlas/internal/usecase"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	router *mux.Router
	server *http.Server
	logger *logrus.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	JWTSecret    string
	CORSOrigins  []string
}

// NewServer creates a new HTTP server wiring the core use cases
func NewServer(
	config ServerConfig,
	listingUseCase *usecase.ListingUseCase,
	moderationUseCase *usecase.ModerationUseCase,
	matchUseCase *usecase.MatchUseCase,
	limiter cache.RateLimiter,
	logger *logrus.Logger,
) *Server {
	listingHandler := NewListingHandler(listingUseCase)
	moderationHandler := NewModerationHandler(moderationUseCase)
	searchHandler := NewSearchHandler(matchUseCase)

	router := mux.NewRouter()

	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware(config.CORSOrigins))
	router.Use(recoveryMiddleware(logger))
	router.Use(identityMiddleware(config.JWTSecret))

	// /api/listings/pending must be registered before /api/listings/{id}
	moderationHandler.RegisterRoutes(router)
	listingHandler.RegisterRoutes(router)

	search := router.PathPrefix("/api/services").Subrouter()
	search.Use(rateLimitMiddleware(limiter, logger))
	searchHandler.RegisterRoutes(search)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return &Server{
		addr:   ":" + config.Port,
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("addr", s.addr).Info("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
