// Package subscriptions manages a user's streaming service subscriptions.
package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/database/sqlc"
)

var ErrNotFound = errors.New("subscription not found")

// Refresher triggers a background recommendation refresh after
// state-changing actions. Wired at startup; nil disables triggering.
type Refresher interface {
	RefreshInBackground(userID int64)
}

// MonthlyCost converts a subscription cost to its monthly equivalent.
func MonthlyCost(cost float64, billingCycle string) float64 {
	if billingCycle == "yearly" {
		return cost / 12
	}
	return cost
}

// CreateInput holds the fields for a new subscription.
type CreateInput struct {
	ServiceName  string  `json:"service_name"`
	Cost         float64 `json:"cost"`
	Currency     string  `json:"currency"`
	BillingCycle string  `json:"billing_cycle"`
	Category     string  `json:"category"`
	Region       string  `json:"region"`
}

// UpdateInput holds the mutable fields of a subscription.
type UpdateInput struct {
	ServiceName  string  `json:"service_name"`
	Cost         float64 `json:"cost"`
	Currency     string  `json:"currency"`
	BillingCycle string  `json:"billing_cycle"`
	Category     string  `json:"category"`
	IsActive     bool    `json:"is_active"`
}

// Service provides subscription CRUD and spend summaries.
type Service struct {
	queries   *sqlc.Queries
	refresher Refresher
	logger    zerolog.Logger
}

// NewService creates a subscription service.
func NewService(queries *sqlc.Queries, logger zerolog.Logger) *Service {
	return &Service{
		queries: queries,
		logger:  logger.With().Str("component", "subscriptions").Logger(),
	}
}

// SetRefresher wires the background recommendation refresh trigger.
func (s *Service) SetRefresher(r Refresher) {
	s.refresher = r
}

// List returns all active subscriptions for a user.
func (s *Service) List(ctx context.Context, userID int64) ([]*sqlc.Subscription, error) {
	subs, err := s.queries.ListActiveSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*sqlc.Subscription{}
	}
	return subs, nil
}

// Create adds a subscription. Creating a duplicate of an existing
// active subscription returns the existing row unchanged instead of
// erroring.
func (s *Service) Create(ctx context.Context, user *sqlc.User, input CreateInput) (*sqlc.Subscription, error) {
	input = applyDefaults(input, user)

	existing, err := s.queries.GetActiveSubscriptionByName(ctx, sqlc.GetActiveSubscriptionByNameParams{
		UserID:      user.ID,
		ServiceName: input.ServiceName,
		Region:      input.Region,
	})
	if err == nil {
		s.logger.Debug().
			Int64("userID", user.ID).
			Str("service", input.ServiceName).
			Msg("Duplicate subscription create, returning existing")
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	sub, err := s.queries.CreateSubscription(ctx, sqlc.CreateSubscriptionParams{
		UserID:       user.ID,
		ServiceName:  input.ServiceName,
		Cost:         input.Cost,
		Currency:     input.Currency,
		BillingCycle: input.BillingCycle,
		Category:     input.Category,
		Region:       input.Region,
	})
	if err != nil {
		return nil, err
	}

	s.triggerRefresh(user.ID)
	return sub, nil
}

// Update replaces the mutable fields of a subscription.
func (s *Service) Update(ctx context.Context, userID, id int64, input UpdateInput) (*sqlc.Subscription, error) {
	active := int64(0)
	if input.IsActive {
		active = 1
	}

	sub, err := s.queries.UpdateSubscription(ctx, sqlc.UpdateSubscriptionParams{
		ServiceName:  strings.TrimSpace(input.ServiceName),
		Cost:         input.Cost,
		Currency:     input.Currency,
		BillingCycle: input.BillingCycle,
		Category:     input.Category,
		IsActive:     active,
		ID:           id,
		UserID:       userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.triggerRefresh(userID)
	return sub, nil
}

// Delete removes a subscription.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.queries.GetSubscription(ctx, sqlc.GetSubscriptionParams{ID: id, UserID: userID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := s.queries.DeleteSubscription(ctx, sqlc.DeleteSubscriptionParams{ID: id, UserID: userID}); err != nil {
		return err
	}

	s.triggerRefresh(userID)
	return nil
}

// MonthlySpend sums the monthly-equivalent cost of all active
// subscriptions.
func (s *Service) MonthlySpend(ctx context.Context, userID int64) (float64, error) {
	subs, err := s.queries.ListActiveSubscriptions(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, sub := range subs {
		total += MonthlyCost(sub.Cost, sub.BillingCycle)
	}
	return total, nil
}

func (s *Service) triggerRefresh(userID int64) {
	if s.refresher != nil {
		s.refresher.RefreshInBackground(userID)
	}
}

func applyDefaults(input CreateInput, user *sqlc.User) CreateInput {
	input.ServiceName = strings.TrimSpace(input.ServiceName)
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if input.BillingCycle == "" {
		input.BillingCycle = "monthly"
	}
	if input.Category == "" {
		input.Category = "streaming"
	}
	if input.Region == "" {
		input.Region = user.Country
	}
	return input
}
