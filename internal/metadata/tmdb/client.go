package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrNotFound      = errors.New("title not found")
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
)

// retry policy for transient upstream failures
const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/configuration", c.config.BaseURL)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}

	return c.doRequest(ctx, endpoint, params, &result)
}

// SearchMulti searches movies and TV series in a single query.
// Person results are filtered out.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]MediaResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/search/multi", c.config.BaseURL)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("query", query)
	params.Set("include_adult", "false")

	var response SearchMultiResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	results := make([]MediaResult, 0, len(response.Results))
	for _, r := range response.Results {
		if r.MediaType != "movie" && r.MediaType != "tv" {
			continue
		}
		results = append(results, r)
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("Multi search completed")

	return results, nil
}

// GetDetails fetches detailed info for a movie or TV series.
func (c *Client) GetDetails(ctx context.Context, mediaType string, id int) (*Details, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if err := validateMediaType(mediaType); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%d", c.config.BaseURL, mediaType, id)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var details Details
	if err := c.doRequest(ctx, endpoint, params, &details); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("mediaType", mediaType).
		Int("id", id).
		Str("title", details.Title+details.Name).
		Msg("Got title details")

	return &details, nil
}

// GetWatchProviders fetches the streaming provider offers for a title,
// keyed by region. Missing provider data is not an error; the result
// map is simply empty.
func (c *Client) GetWatchProviders(ctx context.Context, mediaType string, id int) (map[string]RegionProviders, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if err := validateMediaType(mediaType); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%d/watch/providers", c.config.BaseURL, mediaType, id)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var response WatchProvidersResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	if response.Results == nil {
		return map[string]RegionProviders{}, nil
	}

	return response.Results, nil
}

// FlatrateOffers returns the subscription streaming offers for a title
// in the given region, falling back to the configured default region
// when the requested one has no offers.
func (c *Client) FlatrateOffers(ctx context.Context, mediaType string, id int, region string) ([]ProviderOffer, error) {
	providers, err := c.GetWatchProviders(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}

	regional, ok := providers[region]
	if !ok || len(regional.Flatrate) == 0 {
		regional = providers[c.config.DefaultRegion]
	}

	return regional.Flatrate, nil
}

// FlatrateProviders returns just the provider names from FlatrateOffers.
func (c *Client) FlatrateProviders(ctx context.Context, mediaType string, id int, region string) ([]string, error) {
	offers, err := c.FlatrateOffers(ctx, mediaType, id, region)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(offers))
	for _, offer := range offers {
		names = append(names, offer.ProviderName)
	}
	return names, nil
}

// GetSimilar fetches titles similar to the given movie or series.
func (c *Client) GetSimilar(ctx context.Context, mediaType string, id int) ([]MediaResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if err := validateMediaType(mediaType); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%d/similar", c.config.BaseURL, mediaType, id)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var response PagedResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	// Similar results never carry media_type; stamp the seed's type so
	// downstream consumers can resolve providers and details.
	for i := range response.Results {
		response.Results[i].MediaType = mediaType
	}

	return response.Results, nil
}

// DiscoverParams filters a discover query.
type DiscoverParams struct {
	GenreIDs       []int
	ProviderIDs    []int
	WatchRegion    string
	MinVoteAverage float64
	MinVoteCount   int
	SortBy         string
	Page           int
}

// Discover runs a filtered discover query for the given media type.
func (c *Client) Discover(ctx context.Context, mediaType string, p DiscoverParams) ([]MediaResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if err := validateMediaType(mediaType); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/discover/%s", c.config.BaseURL, mediaType)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("include_adult", "false")
	if len(p.GenreIDs) > 0 {
		params.Set("with_genres", joinIDs(p.GenreIDs, "|"))
	}
	if len(p.ProviderIDs) > 0 {
		params.Set("with_watch_providers", joinIDs(p.ProviderIDs, "|"))
		region := p.WatchRegion
		if region == "" {
			region = c.config.DefaultRegion
		}
		params.Set("watch_region", region)
	}
	if p.MinVoteAverage > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(p.MinVoteAverage, 'f', 1, 64))
	}
	if p.MinVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(p.MinVoteCount))
	}
	if p.SortBy != "" {
		params.Set("sort_by", p.SortBy)
	}
	if p.Page > 0 {
		params.Set("page", strconv.Itoa(p.Page))
	}

	var response PagedResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	for i := range response.Results {
		response.Results[i].MediaType = mediaType
	}

	c.logger.Debug().
		Str("mediaType", mediaType).
		Int("genres", len(p.GenreIDs)).
		Int("providers", len(p.ProviderIDs)).
		Int("results", len(response.Results)).
		Msg("Discover completed")

	return response.Results, nil
}

// Trending fetches the weekly trending feed. mediaType may be "all",
// "movie" or "tv".
func (c *Client) Trending(ctx context.Context, mediaType string) ([]MediaResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if mediaType != "all" {
		if err := validateMediaType(mediaType); err != nil {
			return nil, err
		}
	}

	endpoint := fmt.Sprintf("%s/trending/%s/week", c.config.BaseURL, mediaType)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var response PagedResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	results := make([]MediaResult, 0, len(response.Results))
	for _, r := range response.Results {
		if r.MediaType != "" && r.MediaType != "movie" && r.MediaType != "tv" {
			continue
		}
		if r.MediaType == "" {
			r.MediaType = mediaType
		}
		results = append(results, r)
	}

	return results, nil
}

// GetImageURL returns a full image URL for a given path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "w780", "original"
func (c *Client) GetImageURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

func validateMediaType(mediaType string) error {
	if mediaType != "movie" && mediaType != "tv" {
		return fmt.Errorf("%w: unsupported media type %q", ErrAPIError, mediaType)
	}
	return nil
}

func joinIDs(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, sep)
}

// doRequest performs an HTTP GET request and decodes the JSON response.
// Rate limits and server errors are retried with a short backoff.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retriable, err := c.doRequestOnce(ctx, endpoint, params, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retriable || attempt == maxAttempts {
			return lastErr
		}

		delay := retryBackoff * time.Duration(attempt)
		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Retrying TMDB request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (c *Client) doRequestOnce(ctx context.Context, endpoint string, params url.Values, result interface{}) (retriable bool, err error) {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return true, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return false, ErrNotFound
		case http.StatusUnauthorized:
			return false, fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return true, ErrRateLimited
		default:
			return resp.StatusCode >= 500, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return false, nil
}
