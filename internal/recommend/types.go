// Package recommend computes dashboard, discovery and similar-content
// recommendations and caches the results per user, category and region.
package recommend

import (
	"context"

	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/metadata/tmdb"
)

// Cache categories.
const (
	CategoryDashboard = "dashboard"
	CategorySimilar   = "similar"
	CategoryAIPicks   = "ai_picks"
)

// Item types.
const (
	TypeWatchNow = "watch_now"
	TypeCancel   = "cancel"
	TypeTrending = "trending"
	TypeSimilar  = "similar_content"
	TypeDiscover = "discovery"
	TypeExplore  = "explore"
)

// Item is a single recommendation entry. The score drives the final
// descending sort only; it carries no meaning across item types.
type Item struct {
	Type        string   `json:"type"`
	ServiceName string   `json:"service_name,omitempty"`
	Titles      []string `json:"items,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Cost        float64  `json:"cost"`
	Savings     float64  `json:"savings"`
	Score       float64  `json:"score"`

	TmdbID      int     `json:"tmdb_id,omitempty"`
	MediaType   string  `json:"media_type,omitempty"`
	Title       string  `json:"title,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	Overview    string  `json:"overview,omitempty"`
}

// PayloadVersion is bumped whenever the Item shape changes in a way old
// cached rows cannot satisfy; readers treat other versions as a miss.
const PayloadVersion = 1

// Payload is the versioned cached result for one (user, category, region).
type Payload struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

// MetadataService is the subset of the metadata layer the calculators
// consume, allowing mocking in tests.
type MetadataService interface {
	Offers(ctx context.Context, mediaType string, id int, region string) ([]tmdb.ProviderOffer, error)
	Discover(ctx context.Context, mediaType string, p tmdb.DiscoverParams) ([]metadata.MediaInfo, error)
	Trending(ctx context.Context, mediaType string) ([]metadata.MediaInfo, error)
	Similar(ctx context.Context, mediaType string, id int) ([]metadata.MediaInfo, error)
	Region() string
}
