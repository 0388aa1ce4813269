// Package recommend computes dashboard and discovery recommendations
// from the user's watchlist, subscriptions, and streaming availability.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/database/sqlc"
)

// Result is a recommendation payload together with its cache state.
type Result struct {
	Items     []Item    `json:"items"`
	Cached    bool      `json:"cached"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service serves recommendations cache-first and recomputes them when
// the cache is stale, missing, or structurally unusable.
type Service struct {
	queries   *sqlc.Queries
	cache     *Cache
	dashboard *DashboardCalculator
	discovery *DiscoveryCalculator
	logger    zerolog.Logger
}

// NewService creates a recommendation service.
func NewService(queries *sqlc.Queries, meta MetadataService, cfg config.RecommendConfig, logger zerolog.Logger) *Service {
	log := logger.With().Str("component", "recommend").Logger()
	freshness := time.Duration(cfg.FreshnessHours) * time.Hour

	return &Service{
		queries:   queries,
		cache:     NewCache(queries, freshness, log),
		dashboard: NewDashboardCalculator(queries, meta, cfg, logger),
		discovery: NewDiscoveryCalculator(queries, meta, cfg, logger),
		logger:    log,
	}
}

// GetDashboard returns the dashboard recommendations, serving a fresh
// cached payload when one exists.
func (s *Service) GetDashboard(ctx context.Context, userID int64, force bool) (*Result, error) {
	return s.get(ctx, userID, CategoryDashboard, force)
}

// GetSimilar returns the discovery recommendations, serving a fresh
// cached payload when one exists.
func (s *Service) GetSimilar(ctx context.Context, userID int64, force bool) (*Result, error) {
	return s.get(ctx, userID, CategorySimilar, force)
}

func (s *Service) get(ctx context.Context, userID int64, category string, force bool) (*Result, error) {
	user, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !force {
		payload, updatedAt, err := s.cache.Get(ctx, userID, category, user.Country)
		if err == nil && s.cache.IsFresh(updatedAt) {
			return &Result{Items: payload.Items, Cached: true, UpdatedAt: updatedAt}, nil
		}
		if err != nil && !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("category", category).Msg("Cache read failed, recomputing")
		}
	}

	items, err := s.compute(ctx, user, category)
	if err != nil {
		// serve a stale cached payload over a hard failure
		if payload, updatedAt, cacheErr := s.cache.Get(ctx, userID, category, user.Country); cacheErr == nil {
			s.logger.Warn().Err(err).Str("category", category).Msg("Compute failed, serving stale cache")
			return &Result{Items: payload.Items, Cached: true, UpdatedAt: updatedAt}, nil
		}
		return nil, err
	}

	if err := s.cache.Put(ctx, userID, category, user.Country, &Payload{Items: items}); err != nil {
		s.logger.Warn().Err(err).Str("category", category).Msg("Cache write failed")
	}

	return &Result{Items: items, Cached: false, UpdatedAt: time.Now().UTC()}, nil
}

func (s *Service) compute(ctx context.Context, user *sqlc.User, category string) ([]Item, error) {
	switch category {
	case CategoryDashboard:
		return s.dashboard.Compute(ctx, user)
	case CategorySimilar:
		return s.discovery.Compute(ctx, user)
	default:
		return nil, fmt.Errorf("unknown recommendation category %q", category)
	}
}

// Refresh recomputes and caches recommendation categories. With no
// categories given, both are refreshed.
func (s *Service) Refresh(ctx context.Context, userID int64, categories ...string) error {
	user, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if len(categories) == 0 {
		categories = []string{CategoryDashboard, CategorySimilar}
	}
	for _, category := range categories {
		items, err := s.compute(ctx, user, category)
		if err != nil {
			return fmt.Errorf("compute %s: %w", category, err)
		}
		if err := s.cache.Put(ctx, userID, category, user.Country, &Payload{Items: items}); err != nil {
			return fmt.Errorf("cache %s: %w", category, err)
		}
	}
	return nil
}

// RefreshInBackground recomputes a user's recommendations without
// blocking the caller. Failures are logged and dropped.
func (s *Service) RefreshInBackground(userID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := s.Refresh(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Background refresh failed")
			return
		}
		s.logger.Debug().Int64("userID", userID).Msg("Background refresh complete")
	}()
}

// Invalidate drops all cached recommendations for a user.
func (s *Service) Invalidate(ctx context.Context, userID int64) error {
	return s.cache.Invalidate(ctx, userID)
}

// CachePayloads exposes the raw cache for packages that store their
// own payload shapes alongside recommendations.
func (s *Service) CachePayloads() *Cache {
	return s.cache
}
