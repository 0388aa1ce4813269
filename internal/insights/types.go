// Package insights orchestrates AI-generated viewing recommendations:
// prompt assembly from the user's library, model fallback, response
// parsing and enrichment, and graceful degradation when generation is
// unavailable.
package insights

import (
	"context"
	"time"

	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/recommend"
)

// Result sources.
const (
	SourceAI       = "ai"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Confidence levels attached to picks.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

const (
	maxPicks = 6
	maxGaps  = 4
)

// Pick is one AI-suggested title, enriched with catalog metadata. The
// same shape carries gap entries, which go through identical
// enrichment and filtering.
type Pick struct {
	TmdbID      int     `json:"tmdb_id,omitempty"`
	MediaType   string  `json:"media_type"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	Reason      string  `json:"reason"`
	Confidence  string  `json:"confidence"`
}

// Strategy actions.
const (
	ActionCancel = "cancel"
	ActionAdd    = "add"
)

// StrategyAction is one suggested subscription change and the money
// at stake.
type StrategyAction struct {
	Action        string  `json:"action"`
	ServiceName   string  `json:"service_name"`
	MonthlySaving float64 `json:"monthly_saving,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// Insights is the full AI recommendation payload served to clients.
type Insights struct {
	Version     int              `json:"version"`
	Picks       []Pick           `json:"picks"`
	Strategy    []StrategyAction `json:"strategy,omitempty"`
	Gaps        []Pick           `json:"gaps,omitempty"`
	Source      string           `json:"source"`
	Notice      string           `json:"notice,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// PayloadVersion is the cached insights shape version.
const PayloadVersion = 1

// Generator produces text from a prompt, abstracting the model client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	IsConfigured() bool
}

// MetadataResolver is the subset of the metadata layer used to enrich
// generated picks.
type MetadataResolver interface {
	ResolveTitle(ctx context.Context, title string) (*metadata.MediaInfo, error)
	Details(ctx context.Context, mediaType string, id int) (*metadata.MediaInfo, error)
	Region() string
}

// DashboardSource supplies the degraded fallback payload when no AI
// result can be produced.
type DashboardSource interface {
	GetDashboard(ctx context.Context, userID int64, force bool) (*recommend.Result, error)
}
