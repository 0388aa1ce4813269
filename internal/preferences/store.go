// Package preferences manages the per-user preference blob: free-text
// taste notes, deal-breaker topics, and AI suggestion skip counters.
package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/database/sqlc"
)

// Version is bumped when the blob shape changes; older or unversioned
// blobs are upgraded on read.
const Version = 1

// skipBanThreshold is the skip count at which a title is hidden from
// future AI suggestions.
const skipBanThreshold = 2

// Preferences is the typed per-user preference record.
type Preferences struct {
	Version      int            `json:"version"`
	FreeText     string         `json:"free_text,omitempty"`
	DealBreakers []string       `json:"deal_breakers,omitempty"`
	SkipCounts   map[string]int `json:"skip_counts,omitempty"`
	LastAIPicks  []int          `json:"last_ai_picks,omitempty"`
}

// SoftBanned returns the content ids whose skip count reached the ban
// threshold.
func (p *Preferences) SoftBanned() []int {
	var banned []int
	for key, count := range p.SkipCounts {
		if count < skipBanThreshold {
			continue
		}
		if id, err := strconv.Atoi(key); err == nil {
			banned = append(banned, id)
		}
	}
	return banned
}

// IsSoftBanned reports whether a content id is hidden from AI suggestions.
func (p *Preferences) IsSoftBanned(tmdbID int) bool {
	return p.SkipCounts[strconv.Itoa(tmdbID)] >= skipBanThreshold
}

// Store reads and writes the preference blob on the user row.
type Store struct {
	queries *sqlc.Queries
	logger  zerolog.Logger
}

// NewStore creates a preference store.
func NewStore(queries *sqlc.Queries, logger zerolog.Logger) *Store {
	return &Store{
		queries: queries,
		logger:  logger.With().Str("component", "preferences").Logger(),
	}
}

// Get returns the user's preferences. Missing, unparseable, or
// old-version blobs are upgraded to current defaults; corrupt data is
// never an error for the caller.
func (s *Store) Get(ctx context.Context, userID int64) (*Preferences, error) {
	user, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs := &Preferences{Version: Version, SkipCounts: map[string]int{}}
	if !user.Preferences.Valid || user.Preferences.String == "" {
		return prefs, nil
	}

	if err := json.Unmarshal([]byte(user.Preferences.String), prefs); err != nil {
		s.logger.Warn().
			Err(err).
			Int64("userID", userID).
			Msg("Resetting unparseable preference blob")
		return &Preferences{Version: Version, SkipCounts: map[string]int{}}, nil
	}

	prefs.Version = Version
	if prefs.SkipCounts == nil {
		prefs.SkipCounts = map[string]int{}
	}
	return prefs, nil
}

// Put persists the full preference blob.
func (s *Store) Put(ctx context.Context, userID int64, prefs *Preferences) error {
	prefs.Version = Version
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.queries.UpdateUserPreferences(ctx, sqlc.UpdateUserPreferencesParams{
		Preferences: nullString(string(data)),
		ID:          userID,
	})
}

// ResetSkip clears the skip counter for a content id, called the moment
// the title lands on the watchlist.
func (s *Store) ResetSkip(ctx context.Context, userID int64, tmdbID int64) error {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	key := strconv.FormatInt(tmdbID, 10)
	if _, ok := prefs.SkipCounts[key]; !ok {
		return nil
	}

	delete(prefs.SkipCounts, key)
	return s.Put(ctx, userID, prefs)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
