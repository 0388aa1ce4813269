package recommend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/database/sqlc"
)

// ErrCacheMiss is returned when no usable cached payload exists for a key.
var ErrCacheMiss = errors.New("recommendation cache miss")

// Cache stores computed recommendation payloads in the database, keyed
// by (user, category, region). Writes are full-replace per key.
type Cache struct {
	queries   *sqlc.Queries
	freshness time.Duration
	logger    zerolog.Logger
}

// NewCache creates a recommendation cache with the given freshness horizon.
func NewCache(queries *sqlc.Queries, freshness time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		queries:   queries,
		freshness: freshness,
		logger:    logger.With().Str("component", "recommend-cache").Logger(),
	}
}

// Get returns the cached payload for a key. Missing rows, payloads of
// another version, unparseable payloads, and payloads that fail the
// category's structural check all surface as ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, userID int64, category, region string) (*Payload, time.Time, error) {
	row, err := c.queries.GetRecommendationCache(ctx, sqlc.GetRecommendationCacheParams{
		UserID:   userID,
		Category: category,
		Region:   region,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrCacheMiss
		}
		return nil, time.Time{}, err
	}

	var payload Payload
	if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
		c.logger.Warn().
			Err(err).
			Int64("userID", userID).
			Str("category", category).
			Msg("Dropping unparseable cached payload")
		return nil, time.Time{}, ErrCacheMiss
	}

	if payload.Version != PayloadVersion {
		return nil, time.Time{}, ErrCacheMiss
	}

	if !structurallyValid(category, &payload) {
		c.logger.Debug().
			Int64("userID", userID).
			Str("category", category).
			Msg("Cached payload failed structural check, treating as miss")
		return nil, time.Time{}, ErrCacheMiss
	}

	return &payload, row.UpdatedAt, nil
}

// Put stores a payload for a key, replacing any previous row.
func (c *Cache) Put(ctx context.Context, userID int64, category, region string, payload *Payload) error {
	payload.Version = PayloadVersion
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return c.queries.UpsertRecommendationCache(ctx, sqlc.UpsertRecommendationCacheParams{
		UserID:   userID,
		Category: category,
		Region:   region,
		Payload:  string(data),
	})
}

// GetRaw returns the raw payload text for a key without structural
// checks, for categories whose payload shape this package does not own.
func (c *Cache) GetRaw(ctx context.Context, userID int64, category, region string) (string, time.Time, error) {
	row, err := c.queries.GetRecommendationCache(ctx, sqlc.GetRecommendationCacheParams{
		UserID:   userID,
		Category: category,
		Region:   region,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, ErrCacheMiss
		}
		return "", time.Time{}, err
	}
	return row.Payload, row.UpdatedAt, nil
}

// PutRaw stores raw payload text for a key, replacing any previous row.
func (c *Cache) PutRaw(ctx context.Context, userID int64, category, region, payload string) error {
	return c.queries.UpsertRecommendationCache(ctx, sqlc.UpsertRecommendationCacheParams{
		UserID:   userID,
		Category: category,
		Region:   region,
		Payload:  payload,
	})
}

// Invalidate drops every cached category for a user.
func (c *Cache) Invalidate(ctx context.Context, userID int64) error {
	return c.queries.DeleteRecommendationCache(ctx, userID)
}

// IsFresh reports whether a cached row is within the freshness horizon.
// Freshness is advisory; default reads accept any age.
func (c *Cache) IsFresh(updatedAt time.Time) bool {
	return time.Since(updatedAt) < c.freshness
}

// structurallyValid guards against a degraded result getting stuck
// cached. A dashboard payload is trusted only if it still carries at
// least one trending item; other categories only need to be non-empty.
func structurallyValid(category string, p *Payload) bool {
	if len(p.Items) == 0 {
		return false
	}

	if category == CategoryDashboard {
		for _, item := range p.Items {
			if item.Type == TypeTrending {
				return true
			}
		}
		return false
	}

	return true
}
