// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/asrun/internal/api"
	"github.com/stwalsh4118/asrun/internal/catalog"
	"github.com/stwalsh4118/asrun/internal/config"
	"github.com/stwalsh4118/asrun/internal/db"
	"github.com/stwalsh4118/asrun/internal/ingest"
	"github.com/stwalsh4118/asrun/internal/logger"
	"github.com/stwalsh4118/asrun/internal/metrics"
	"github.com/stwalsh4118/asrun/internal/middleware"
	"github.com/stwalsh4118/asrun/internal/region"
	"github.com/stwalsh4118/asrun/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	config         *config.Config
	db             *db.DB
	repos          *db.Repositories
	resolver       *region.Resolver
	registry       *prometheus.Registry
	catalogService *catalog.Service
	ingestService  *ingest.Service
	router         *gin.Engine
	server         *http.Server
}

// New creates a new server instance. registry may be nil when metrics are
// disabled.
func New(cfg *config.Config, database *db.DB, store storage.ObjectStore, resolver *region.Resolver, registry *prometheus.Registry) (*Server, error) {
	repos := db.NewRepositories(database)

	var ingestMetrics *metrics.IngestMetrics
	if registry != nil {
		m, err := metrics.NewIngestMetrics(registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register ingest metrics: %w", err)
		}
		ingestMetrics = m
	}

	opts := ingest.Options{
		MaxGap:           cfg.Ingest.MaxGap,
		FallbackDuration: cfg.Ingest.FallbackDuration,
		Workers:          cfg.Ingest.Workers,
		Reprocess:        cfg.Ingest.Reprocess,
		DefaultBucket:    cfg.Storage.DefaultBucket,
	}

	return &Server{
		config:         cfg,
		db:             database,
		repos:          repos,
		resolver:       resolver,
		registry:       registry,
		catalogService: catalog.NewService(repos),
		ingestService:  ingest.NewService(database, repos, store, resolver, ingestMetrics, opts),
	}, nil
}

// IngestService returns the ingestion service shared with background listeners
func (s *Server) IngestService() *ingest.Service {
	return s.ingestService
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	if s.registry != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.HTTPErrorOnError,
		})))
	}

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db, s.resolver.Codes())
	api.SetupProgramRoutes(apiGroup, s.catalogService)
	api.SetupIngestRoutes(apiGroup, s.ingestService, s.catalogService)
}

// Handler returns the configured router, building it on first use
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		s.setupRouter()
	}
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
