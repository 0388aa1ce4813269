// Package api wires the HTTP surface: the Echo server, middleware
// stack, and per-feature route groups.
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	appmw "github.com/streamwise/streamwise/internal/api/middleware"
	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/insights"
	"github.com/streamwise/streamwise/internal/insights/gemini"
	"github.com/streamwise/streamwise/internal/library/subscriptions"
	"github.com/streamwise/streamwise/internal/library/watchlist"
	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/preferences"
	"github.com/streamwise/streamwise/internal/quota"
	"github.com/streamwise/streamwise/internal/recommend"
)

// Server handles HTTP requests for the StreamWise API.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	logger zerolog.Logger
	cfg    *config.Config

	// Services
	queries             *sqlc.Queries
	metadataService     *metadata.Service
	preferenceStore     *preferences.Store
	quotaService        *quota.Service
	subscriptionService *subscriptions.Service
	watchlistService    *watchlist.Service
	recommendService    *recommend.Service
	insightsService     *insights.Service
}

// NewServer creates a new API server instance and wires all services.
func NewServer(db *sql.DB, cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	s.queries = sqlc.New(db)
	s.metadataService = metadata.NewService(cfg.Metadata.TMDB, &logger)
	s.preferenceStore = preferences.NewStore(s.queries, logger)
	s.quotaService = quota.NewService(s.queries, logger)

	s.subscriptionService = subscriptions.NewService(s.queries, logger)
	s.watchlistService = watchlist.NewService(s.queries, s.preferenceStore, logger)

	s.recommendService = recommend.NewService(s.queries, s.metadataService, cfg.Recommend, logger)

	// Library mutations kick off a background recommendation refresh.
	s.subscriptionService.SetRefresher(s.recommendService)
	s.watchlistService.SetRefresher(s.recommendService)

	generator := gemini.NewClient(cfg.Generator, logger)
	s.insightsService = insights.NewService(
		s.queries,
		s.quotaService,
		s.preferenceStore,
		s.metadataService,
		s.recommendService.CachePayloads(),
		s.recommendService,
		generator,
		logger,
	)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(appmw.SecurityHeaders())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-User-ID"},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// API v1 group
	api := s.echo.Group("/api/v1")

	api.GET("/status", s.getStatus)

	// Account bootstrap happens before an identity exists.
	api.POST("/users", s.createUser)

	// Everything else acts on behalf of a resolved user.
	protected := api.Group("", appmw.Identity())

	protected.GET("/users/me", s.getCurrentUser)
	protected.PUT("/users/me/country", s.updateCountry)
	protected.GET("/users/me/preferences", s.getPreferences)
	protected.PUT("/users/me/preferences", s.updatePreferences)
	protected.PUT("/users/me/ai-access", s.updateAIAccess)

	protected.GET("/search", s.searchCatalog)

	subscriptionHandlers := subscriptions.NewHandlers(s.subscriptionService, s.queries)
	subscriptionHandlers.RegisterRoutes(protected.Group("/subscriptions"))

	watchlistHandlers := watchlist.NewHandlers(s.watchlistService)
	watchlistHandlers.RegisterRoutes(protected.Group("/watchlist"))

	recommendHandlers := recommend.NewHandlers(s.recommendService)
	recommendHandlers.RegisterRoutes(protected.Group("/recommendations"))

	insightHandlers := insights.NewHandlers(s.insightsService)
	insightHandlers.RegisterRoutes(protected.Group("/insights"))
}

// RecommendService exposes the recommendation service for background
// task wiring.
func (s *Server) RecommendService() *recommend.Service {
	return s.recommendService
}

// MetadataService exposes the metadata service for background task wiring.
func (s *Server) MetadataService() *metadata.Service {
	return s.metadataService
}

// Queries exposes the query layer for background task wiring.
func (s *Server) Queries() *sqlc.Queries {
	return s.queries
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthCheck(c echo.Context) error {
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"name":   "StreamWise",
		"region": s.metadataService.Region(),
	})
}
