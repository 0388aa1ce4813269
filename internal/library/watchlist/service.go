// Package watchlist manages a user's tracked titles and keeps the
// genre interest profile in sync with watchlist activity.
package watchlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/preferences"
)

var ErrNotFound = errors.New("watchlist item not found")

// Refresher triggers a background recommendation refresh after
// state-changing actions.
type Refresher interface {
	RefreshInBackground(userID int64)
}

// AddInput holds the fields for a new watchlist entry.
type AddInput struct {
	TmdbID     int64  `json:"tmdb_id"`
	Title      string `json:"title"`
	MediaType  string `json:"media_type"`
	PosterPath string `json:"poster_path"`
	GenreIDs   []int  `json:"genre_ids"`
}

// Service provides watchlist CRUD with interest scoring side effects.
type Service struct {
	queries   *sqlc.Queries
	prefs     *preferences.Store
	refresher Refresher
	logger    zerolog.Logger
}

// NewService creates a watchlist service.
func NewService(queries *sqlc.Queries, prefs *preferences.Store, logger zerolog.Logger) *Service {
	return &Service{
		queries: queries,
		prefs:   prefs,
		logger:  logger.With().Str("component", "watchlist").Logger(),
	}
}

// SetRefresher wires the background recommendation refresh trigger.
func (s *Service) SetRefresher(r Refresher) {
	s.refresher = r
}

// List returns the user's watchlist.
func (s *Service) List(ctx context.Context, userID int64) ([]*sqlc.WatchlistItem, error) {
	items, err := s.queries.ListWatchlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*sqlc.WatchlistItem{}
	}
	return items, nil
}

// Add creates a watchlist entry. Adding a title already on the list
// returns the existing entry unchanged. A successful add bumps the
// interest score of every genre on the title and clears any AI
// suggestion skip counter for it.
func (s *Service) Add(ctx context.Context, userID int64, input AddInput) (*sqlc.WatchlistItem, error) {
	existing, err := s.queries.GetWatchlistItemByTmdbID(ctx, sqlc.GetWatchlistItemByTmdbIDParams{
		UserID: userID,
		TmdbID: input.TmdbID,
	})
	if err == nil {
		s.logger.Debug().
			Int64("userID", userID).
			Int64("tmdbID", input.TmdbID).
			Msg("Duplicate watchlist add, returning existing")
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	item, err := s.queries.CreateWatchlistItem(ctx, sqlc.CreateWatchlistItemParams{
		UserID:     userID,
		TmdbID:     input.TmdbID,
		Title:      input.Title,
		MediaType:  input.MediaType,
		PosterPath: nullString(input.PosterPath),
		GenreIds:   encodeGenreIDs(input.GenreIDs),
	})
	if err != nil {
		return nil, err
	}

	s.adjustInterests(ctx, userID, input.GenreIDs, 1)

	if err := s.prefs.ResetSkip(ctx, userID, input.TmdbID); err != nil {
		s.logger.Warn().Err(err).Int64("tmdbID", input.TmdbID).Msg("Failed to reset skip counter")
	}

	s.triggerRefresh(userID)
	return item, nil
}

// Delete removes a watchlist entry and decrements its genres' interest
// scores.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	item, err := s.queries.GetWatchlistItem(ctx, sqlc.GetWatchlistItemParams{ID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := s.queries.DeleteWatchlistItem(ctx, sqlc.DeleteWatchlistItemParams{ID: id, UserID: userID}); err != nil {
		return err
	}

	s.adjustInterests(ctx, userID, parseGenreIDs(item.GenreIds), -1)

	s.triggerRefresh(userID)
	return nil
}

// SetStatus updates the lifecycle status of an entry.
func (s *Service) SetStatus(ctx context.Context, userID, id int64, status string) (*sqlc.WatchlistItem, error) {
	item, err := s.queries.UpdateWatchlistStatus(ctx, sqlc.UpdateWatchlistStatusParams{
		Status: status,
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.triggerRefresh(userID)
	return item, nil
}

// SetRating records a 1-10 rating and adjusts interest scores on every
// genre of the title by the difference between the new rating's impact
// and the previous one's (+3 for 9-10, +1 for 7-8, -1 for 3-4, -3 for
// 1-2), so re-rating replaces the earlier contribution instead of
// stacking on top of it.
func (s *Service) SetRating(ctx context.Context, userID, id int64, rating int64) (*sqlc.WatchlistItem, error) {
	existing, err := s.queries.GetWatchlistItem(ctx, sqlc.GetWatchlistItemParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var oldDelta int64
	if existing.UserRating.Valid {
		oldDelta = ratingDelta(existing.UserRating.Int64)
	}

	item, err := s.queries.UpdateWatchlistRating(ctx, sqlc.UpdateWatchlistRatingParams{
		UserRating: sql.NullInt64{Int64: rating, Valid: rating > 0},
		ID:         id,
		UserID:     userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if delta := ratingDelta(rating) - oldDelta; delta != 0 {
		s.adjustInterests(ctx, userID, parseGenreIDs(item.GenreIds), delta)
	}

	s.triggerRefresh(userID)
	return item, nil
}

// SetProgress updates viewing progress for a series.
func (s *Service) SetProgress(ctx context.Context, userID, id int64, season, episode int64) (*sqlc.WatchlistItem, error) {
	item, err := s.queries.UpdateWatchlistProgress(ctx, sqlc.UpdateWatchlistProgressParams{
		Season:  sql.NullInt64{Int64: season, Valid: season > 0},
		Episode: sql.NullInt64{Int64: episode, Valid: episode > 0},
		ID:      id,
		UserID:  userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// ratingDelta maps a rating to an interest score adjustment.
func ratingDelta(rating int64) int64 {
	switch {
	case rating >= 9:
		return 3
	case rating >= 7:
		return 1
	case rating >= 5:
		return 0
	case rating >= 3:
		return -1
	case rating >= 1:
		return -3
	default:
		return 0
	}
}

// adjustInterests applies a score delta per genre. Positive deltas may
// create a new interest row; negative deltas only update existing rows
// so a profile is never created with a negative initial score.
func (s *Service) adjustInterests(ctx context.Context, userID int64, genreIDs []int, delta int64) {
	for _, genreID := range genreIDs {
		var err error
		if delta > 0 {
			err = s.queries.AddInterestScore(ctx, sqlc.AddInterestScoreParams{
				UserID:  userID,
				GenreID: int64(genreID),
				Score:   delta,
			})
		} else {
			err = s.queries.AdjustInterestScore(ctx, sqlc.AdjustInterestScoreParams{
				Score:   delta,
				UserID:  userID,
				GenreID: int64(genreID),
			})
		}
		if err != nil {
			s.logger.Warn().Err(err).Int("genreID", genreID).Msg("Interest adjustment failed")
		}
	}
}

func (s *Service) triggerRefresh(userID int64) {
	if s.refresher != nil {
		s.refresher.RefreshInBackground(userID)
	}
}

func encodeGenreIDs(ids []int) sql.NullString {
	if len(ids) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func parseGenreIDs(raw sql.NullString) []int {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw.String), &ids); err != nil {
		return nil
	}
	return ids
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
