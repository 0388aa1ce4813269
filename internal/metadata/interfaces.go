package metadata

import (
	"context"

	"github.com/streamwise/streamwise/internal/metadata/tmdb"
)

// TMDBClient is the interface for TMDB API operations, allowing mocking in tests.
type TMDBClient interface {
	Name() string
	IsConfigured() bool
	Test(ctx context.Context) error
	SearchMulti(ctx context.Context, query string) ([]tmdb.MediaResult, error)
	GetDetails(ctx context.Context, mediaType string, id int) (*tmdb.Details, error)
	FlatrateOffers(ctx context.Context, mediaType string, id int, region string) ([]tmdb.ProviderOffer, error)
	FlatrateProviders(ctx context.Context, mediaType string, id int, region string) ([]string, error)
	GetSimilar(ctx context.Context, mediaType string, id int) ([]tmdb.MediaResult, error)
	Discover(ctx context.Context, mediaType string, p tmdb.DiscoverParams) ([]tmdb.MediaResult, error)
	Trending(ctx context.Context, mediaType string) ([]tmdb.MediaResult, error)
	GetImageURL(path string, size string) string
}
