package metadata

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/metadata/tmdb"
)

var (
	ErrProviderNotConfigured = errors.New("metadata provider not configured")
	ErrNoMatch               = errors.New("no matching title found")
)

// trailing "(2023)" year markers and "Season 2" suffixes that
// generated titles sometimes carry
var (
	yearSuffixRe   = regexp.MustCompile(`\s*\((19|20)\d{2}\)\s*$`)
	seasonSuffixRe = regexp.MustCompile(`(?i)\s*[:\-]?\s*season\s+\d+\s*$`)
)

// MediaInfo is a normalized movie or TV entry.
type MediaInfo struct {
	TmdbID      int     `json:"tmdb_id"`
	MediaType   string  `json:"media_type"`
	Title       string  `json:"title"`
	Year        int     `json:"year,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int   `json:"genre_ids,omitempty"`
}

// Service provides cached metadata lookups over the TMDB client.
type Service struct {
	tmdb   TMDBClient
	cache  *Cache
	region string
	logger zerolog.Logger
}

// NewService creates a new metadata service with a real TMDB client.
func NewService(cfg config.TMDBConfig, logger *zerolog.Logger) *Service {
	return &Service{
		tmdb:   tmdb.NewClient(cfg, *logger),
		cache:  NewCache(DefaultCacheConfig()),
		region: cfg.DefaultRegion,
		logger: logger.With().Str("component", "metadata").Logger(),
	}
}

// NewServiceWithClient creates a new metadata service with a custom client (for testing/mocking).
func NewServiceWithClient(client TMDBClient, region string, logger *zerolog.Logger) *Service {
	return &Service{
		tmdb:   client,
		cache:  NewCache(DefaultCacheConfig()),
		region: region,
		logger: logger.With().Str("component", "metadata").Logger(),
	}
}

// Region returns the default lookup region.
func (s *Service) Region() string {
	return s.region
}

// Test verifies upstream connectivity.
func (s *Service) Test(ctx context.Context) error {
	return s.tmdb.Test(ctx)
}

// Search runs a cached multi search for movies and series.
func (s *Service) Search(ctx context.Context, query string) ([]MediaInfo, error) {
	if !s.tmdb.IsConfigured() {
		return nil, ErrProviderNotConfigured
	}

	key := "search:" + strings.ToLower(query)
	if cached, ok := s.cache.GetMediaInfos(key); ok {
		return cached, nil
	}

	results, err := s.tmdb.SearchMulti(ctx, query)
	if err != nil {
		return nil, err
	}

	infos := make([]MediaInfo, len(results))
	for i, r := range results {
		infos[i] = s.toMediaInfo(r)
	}

	s.cache.Set(key, infos)
	return infos, nil
}

// ResolveTitle finds the best TMDB match for a free-form title. The
// title is cleaned of year and season suffixes first; when the full
// title yields nothing and contains a colon, the part before the colon
// is retried.
func (s *Service) ResolveTitle(ctx context.Context, title string) (*MediaInfo, error) {
	cleaned := CleanTitle(title)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty title", ErrNoMatch)
	}

	key := "resolve:" + strings.ToLower(cleaned)
	if cached, ok := s.cache.GetMediaInfo(key); ok {
		return cached, nil
	}

	results, err := s.Search(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		if idx := strings.Index(cleaned, ":"); idx > 0 {
			prefix := strings.TrimSpace(cleaned[:idx])
			results, err = s.Search(ctx, prefix)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, title)
	}

	info := results[0]
	s.cache.Set(key, &info)
	return &info, nil
}

// Details fetches detailed info for a title, cached.
func (s *Service) Details(ctx context.Context, mediaType string, id int) (*MediaInfo, error) {
	key := fmt.Sprintf("details:%s:%d", mediaType, id)
	if cached, ok := s.cache.GetMediaInfo(key); ok {
		return cached, nil
	}

	details, err := s.tmdb.GetDetails(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}

	info := s.detailsToMediaInfo(mediaType, details)
	s.cache.Set(key, &info)
	return &info, nil
}

// Offers returns the subscription streaming offers (provider id and
// display name) for a title in the given region, cached.
func (s *Service) Offers(ctx context.Context, mediaType string, id int, region string) ([]tmdb.ProviderOffer, error) {
	if region == "" {
		region = s.region
	}

	key := fmt.Sprintf("offers:%s:%d:%s", mediaType, id, region)
	if cached, ok := s.cache.GetProviderOffers(key); ok {
		return cached, nil
	}

	offers, err := s.tmdb.FlatrateOffers(ctx, mediaType, id, region)
	if err != nil {
		return nil, err
	}
	if offers == nil {
		offers = []tmdb.ProviderOffer{}
	}

	s.cache.Set(key, offers)
	return offers, nil
}

// Availability returns the subscription streaming services carrying a
// title in the given region. Results are cached; an empty slice means
// the title is not streamable on any flatrate service.
func (s *Service) Availability(ctx context.Context, mediaType string, id int, region string) ([]string, error) {
	if region == "" {
		region = s.region
	}

	key := fmt.Sprintf("providers:%s:%d:%s", mediaType, id, region)
	if cached, ok := s.cache.GetProviderNames(key); ok {
		return cached, nil
	}

	names, err := s.tmdb.FlatrateProviders(ctx, mediaType, id, region)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}

	s.cache.Set(key, names)
	return names, nil
}

// Similar returns titles similar to the given one, cached.
func (s *Service) Similar(ctx context.Context, mediaType string, id int) ([]MediaInfo, error) {
	key := fmt.Sprintf("similar:%s:%d", mediaType, id)
	if cached, ok := s.cache.GetMediaInfos(key); ok {
		return cached, nil
	}

	results, err := s.tmdb.GetSimilar(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}

	infos := make([]MediaInfo, len(results))
	for i, r := range results {
		infos[i] = s.toMediaInfo(r)
	}

	s.cache.Set(key, infos)
	return infos, nil
}

// Discover runs a filtered discover query, cached per filter set.
func (s *Service) Discover(ctx context.Context, mediaType string, p tmdb.DiscoverParams) ([]MediaInfo, error) {
	key := fmt.Sprintf("discover:%s:%v:%v:%s:%.1f:%d:%d",
		mediaType, p.GenreIDs, p.ProviderIDs, p.WatchRegion, p.MinVoteAverage, p.MinVoteCount, p.Page)
	if cached, ok := s.cache.GetMediaInfos(key); ok {
		return cached, nil
	}

	results, err := s.tmdb.Discover(ctx, mediaType, p)
	if err != nil {
		return nil, err
	}

	infos := make([]MediaInfo, len(results))
	for i, r := range results {
		infos[i] = s.toMediaInfo(r)
	}

	s.cache.Set(key, infos)
	return infos, nil
}

// Trending returns the weekly trending feed, cached.
func (s *Service) Trending(ctx context.Context, mediaType string) ([]MediaInfo, error) {
	key := "trending:" + mediaType
	if cached, ok := s.cache.GetMediaInfos(key); ok {
		return cached, nil
	}

	results, err := s.tmdb.Trending(ctx, mediaType)
	if err != nil {
		return nil, err
	}

	infos := make([]MediaInfo, len(results))
	for i, r := range results {
		infos[i] = s.toMediaInfo(r)
	}

	s.cache.Set(key, infos)
	return infos, nil
}

// InvalidateCache drops all cached metadata.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
}

// CleanTitle strips surrounding quotes, trailing year markers and
// season suffixes from a free-form title. Titles that legitimately end
// in a number ("Blade Runner 2049") pass through unchanged.
func CleanTitle(title string) string {
	cleaned := strings.TrimSpace(title)
	cleaned = strings.Trim(cleaned, `"'`)
	cleaned = yearSuffixRe.ReplaceAllString(cleaned, "")
	if stripped := seasonSuffixRe.ReplaceAllString(cleaned, ""); stripped != "" {
		cleaned = stripped
	}
	return strings.TrimSpace(cleaned)
}

func (s *Service) toMediaInfo(r tmdb.MediaResult) MediaInfo {
	info := MediaInfo{
		TmdbID:      r.ID,
		MediaType:   r.MediaType,
		Title:       r.DisplayTitle(),
		Overview:    r.Overview,
		VoteAverage: r.VoteAverage,
		Popularity:  r.Popularity,
		GenreIDs:    r.GenreIDs,
		Year:        parseYear(r.ReleaseDate, r.FirstAirDate),
	}
	if r.PosterPath != nil {
		info.PosterPath = *r.PosterPath
		info.PosterURL = s.tmdb.GetImageURL(*r.PosterPath, "w500")
	}
	return info
}

func (s *Service) detailsToMediaInfo(mediaType string, d *tmdb.Details) MediaInfo {
	title := d.Title
	if title == "" {
		title = d.Name
	}

	genreIDs := make([]int, len(d.Genres))
	for i, g := range d.Genres {
		genreIDs[i] = g.ID
	}

	info := MediaInfo{
		TmdbID:      d.ID,
		MediaType:   mediaType,
		Title:       title,
		Overview:    d.Overview,
		VoteAverage: d.VoteAverage,
		Popularity:  d.Popularity,
		GenreIDs:    genreIDs,
		Year:        parseYear(d.ReleaseDate, d.FirstAirDate),
	}
	if d.PosterPath != nil {
		info.PosterPath = *d.PosterPath
		info.PosterURL = s.tmdb.GetImageURL(*d.PosterPath, "w500")
	}
	return info
}

func parseYear(dates ...string) int {
	for _, date := range dates {
		if len(date) >= 4 {
			if year, err := strconv.Atoi(date[:4]); err == nil {
				return year
			}
		}
	}
	return 0
}
