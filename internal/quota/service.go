// Package quota enforces per-user AI generation limits.
package quota

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/database/sqlc"
)

const (
	PolicyUnlimited = "unlimited"
	PolicyDaily     = "daily"
	PolicyWeekly    = "weekly"
)

var (
	ErrAccessDisabled = errors.New("AI access is disabled for this account")
	ErrLimitReached   = errors.New("AI usage limit reached")
)

// Status reports a user's current quota state.
type Status struct {
	Enabled   bool      `json:"enabled"`
	Policy    string    `json:"policy"`
	Limit     int64     `json:"limit"`
	Used      int64     `json:"used"`
	LastUsage time.Time `json:"last_usage,omitempty"`
}

// Service gates AI generation behind per-policy usage limits.
type Service struct {
	queries *sqlc.Queries
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a new quota service.
func NewService(queries *sqlc.Queries, logger zerolog.Logger) *Service {
	return &Service{
		queries: queries,
		logger:  logger.With().Str("component", "quota").Logger(),
		now:     time.Now,
	}
}

// SetClock overrides the time source (for testing).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Check enforces the gate for a user. The access flag is checked before
// any quota logic; a period rollover resets the usage counter before
// the limit comparison. Returns ErrAccessDisabled, ErrLimitReached, or
// nil when the user may generate.
func (s *Service) Check(ctx context.Context, userID int64) error {
	user, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.AiEnabled == 0 {
		return ErrAccessDisabled
	}

	if user.AiPolicy == PolicyUnlimited {
		return nil
	}

	used := user.AiUsageCount
	if s.periodRolledOver(user) && used > 0 {
		used = 0
		if err := s.queries.UpdateUserAIUsage(ctx, sqlc.UpdateUserAIUsageParams{
			AiUsageCount: 0,
			LastAiUsage:  user.LastAiUsage,
			ID:           user.ID,
		}); err != nil {
			return err
		}
		s.logger.Debug().
			Int64("userID", userID).
			Str("policy", user.AiPolicy).
			Msg("Quota period rolled over, usage reset")
	}

	if used >= user.AiLimit {
		return ErrLimitReached
	}

	return nil
}

// RecordUsage increments the usage counter and stamps the usage time.
// Called only after a generation succeeds end-to-end.
func (s *Service) RecordUsage(ctx context.Context, userID int64) error {
	user, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	used := user.AiUsageCount
	if s.periodRolledOver(user) {
		used = 0
	}

	return s.queries.UpdateUserAIUsage(ctx, sqlc.UpdateUserAIUsageParams{
		AiUsageCount: used + 1,
		LastAiUsage:  sql.NullTime{Time: s.now().UTC(), Valid: true},
		ID:           user.ID,
	})
}

// Status returns the user's current quota state with any pending
// rollover applied to the reported count.
func (s *Service) Status(ctx context.Context, userID int64) (*Status, error) {
	user, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	used := user.AiUsageCount
	if user.AiPolicy != PolicyUnlimited && s.periodRolledOver(user) {
		used = 0
	}

	status := &Status{
		Enabled: user.AiEnabled != 0,
		Policy:  user.AiPolicy,
		Limit:   user.AiLimit,
		Used:    used,
	}
	if user.LastAiUsage.Valid {
		status.LastUsage = user.LastAiUsage.Time
	}
	return status, nil
}

// periodRolledOver reports whether the usage period has elapsed since
// the last recorded usage. Daily resets on the calendar day boundary;
// weekly is a rolling window of 7 or more elapsed days.
func (s *Service) periodRolledOver(user *sqlc.User) bool {
	if !user.LastAiUsage.Valid {
		return false
	}

	now := s.now().UTC()
	last := user.LastAiUsage.Time.UTC()

	switch user.AiPolicy {
	case PolicyDaily:
		return now.Year() != last.Year() || now.YearDay() != last.YearDay()
	case PolicyWeekly:
		return now.Sub(last) >= 7*24*time.Hour
	default:
		return false
	}
}
