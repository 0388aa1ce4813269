package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/metadata/tmdb"
	"github.com/streamwise/streamwise/internal/testutil"
)

// mockMetadata is a scriptable MetadataService for calculator tests.
type mockMetadata struct {
	region      string
	offers      map[string][]tmdb.ProviderOffer
	offersErr   map[string]error
	discoverFn  func(mediaType string, p tmdb.DiscoverParams) []metadata.MediaInfo
	trending    map[string][]metadata.MediaInfo
	similarByID map[string][]metadata.MediaInfo

	offerCalls    int
	trendingCalls int
}

func offerKey(mediaType string, id int) string {
	return fmt.Sprintf("%s:%d", mediaType, id)
}

func (m *mockMetadata) Offers(_ context.Context, mediaType string, id int, _ string) ([]tmdb.ProviderOffer, error) {
	m.offerCalls++
	key := offerKey(mediaType, id)
	if err := m.offersErr[key]; err != nil {
		return nil, err
	}
	return m.offers[key], nil
}

func (m *mockMetadata) Discover(_ context.Context, mediaType string, p tmdb.DiscoverParams) ([]metadata.MediaInfo, error) {
	if m.discoverFn == nil {
		return nil, nil
	}
	return m.discoverFn(mediaType, p), nil
}

func (m *mockMetadata) Trending(_ context.Context, mediaType string) ([]metadata.MediaInfo, error) {
	m.trendingCalls++
	return m.trending[mediaType], nil
}

func (m *mockMetadata) Similar(_ context.Context, mediaType string, id int) ([]metadata.MediaInfo, error) {
	return m.similarByID[offerKey(mediaType, id)], nil
}

func (m *mockMetadata) Region() string {
	if m.region == "" {
		return "US"
	}
	return m.region
}

func netflixOffer() tmdb.ProviderOffer {
	return tmdb.ProviderOffer{ProviderID: 8, ProviderName: "Netflix"}
}

func huluOffer() tmdb.ProviderOffer {
	return tmdb.ProviderOffer{ProviderID: 15, ProviderName: "Hulu"}
}

func addSubscription(t *testing.T, db *testutil.TestDB, userID int64, name string, cost float64, cycle string) *sqlc.Subscription {
	t.Helper()
	sub, err := db.Queries.CreateSubscription(context.Background(), sqlc.CreateSubscriptionParams{
		UserID:       userID,
		ServiceName:  name,
		Cost:         cost,
		Currency:     "USD",
		BillingCycle: cycle,
		Category:     "streaming",
		Region:       "US",
	})
	require.NoError(t, err)
	return sub
}

func addWatchlistItem(t *testing.T, db *testutil.TestDB, userID, tmdbID int64, title, mediaType string) *sqlc.WatchlistItem {
	t.Helper()
	item, err := db.Queries.CreateWatchlistItem(context.Background(), sqlc.CreateWatchlistItemParams{
		UserID:    userID,
		TmdbID:    tmdbID,
		Title:     title,
		MediaType: mediaType,
	})
	require.NoError(t, err)
	return item
}

func itemsOfType(items []Item, itemType string) []Item {
	var out []Item
	for _, item := range items {
		if item.Type == itemType {
			out = append(out, item)
		}
	}
	return out
}

func TestDashboard_EmptyUserProducesNoItems(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "empty@example.com")

	calc := NewDashboardCalculator(db.Queries, &mockMetadata{}, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDashboard_WatchNowAttributesToOwnedService(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "watchnow@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	addWatchlistItem(t, db, user.ID, 1396, "Breaking Bad", "tv")

	meta := &mockMetadata{
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("tv", 1396): {netflixOffer()},
		},
	}
	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	watchNow := itemsOfType(items, TypeWatchNow)
	require.Len(t, watchNow, 1)
	assert.Equal(t, "Netflix", watchNow[0].ServiceName)
	assert.Equal(t, []string{"Breaking Bad"}, watchNow[0].Titles)
	assert.Equal(t, "Available on your subscription", watchNow[0].Reason)
	assert.Equal(t, 101.0, watchNow[0].Score)

	assert.Empty(t, itemsOfType(items, TypeCancel))

	stored, err := db.Queries.GetWatchlistItemByTmdbID(context.Background(), sqlc.GetWatchlistItemByTmdbIDParams{
		UserID: user.ID,
		TmdbID: 1396,
	})
	require.NoError(t, err)
	assert.Equal(t, "Netflix", stored.AvailableOn.String)
}

func TestDashboard_WatchNowBalancesAcrossServices(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "balance@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	addSubscription(t, db, user.ID, "Hulu", 7.99, "monthly")

	// Both titles available on both services.
	addWatchlistItem(t, db, user.ID, 100, "Title A", "movie")
	addWatchlistItem(t, db, user.ID, 200, "Title B", "movie")

	meta := &mockMetadata{
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("movie", 100): {netflixOffer(), huluOffer()},
			offerKey("movie", 200): {netflixOffer(), huluOffer()},
		},
	}
	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	watchNow := itemsOfType(items, TypeWatchNow)
	require.Len(t, watchNow, 2)
	for _, item := range watchNow {
		assert.Len(t, item.Titles, 1)
	}
}

func TestDashboard_WatchedItemsAreSkipped(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "watched@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	item := addWatchlistItem(t, db, user.ID, 1396, "Breaking Bad", "tv")
	_, err := db.Queries.UpdateWatchlistStatus(context.Background(), sqlc.UpdateWatchlistStatusParams{
		Status: "watched",
		ID:     item.ID,
		UserID: user.ID,
	})
	require.NoError(t, err)

	meta := &mockMetadata{
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("tv", 1396): {netflixOffer()},
		},
	}
	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	assert.Empty(t, itemsOfType(items, TypeWatchNow))

	// the unused subscription becomes a cancel candidate instead
	cancel := itemsOfType(items, TypeCancel)
	require.Len(t, cancel, 1)
	assert.Equal(t, "Netflix", cancel[0].ServiceName)
}

func TestDashboard_CancelNormalizesYearlyCost(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "cancel@example.com")

	addSubscription(t, db, user.ID, "Disney Plus", 120, "yearly")

	calc := NewDashboardCalculator(db.Queries, &mockMetadata{}, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	cancel := itemsOfType(items, TypeCancel)
	require.Len(t, cancel, 1)
	assert.Equal(t, "No watchlist items found", cancel[0].Reason)
	assert.InDelta(t, 10.0, cancel[0].Savings, 0.001)
	assert.InDelta(t, 60.0, cancel[0].Score, 0.001)
}

func TestDashboard_AvailabilityFailureDegradesToNotAvailable(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "degrade@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	addWatchlistItem(t, db, user.ID, 100, "Title A", "movie")
	addWatchlistItem(t, db, user.ID, 200, "Title B", "movie")

	meta := &mockMetadata{
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("movie", 100): {netflixOffer()},
		},
		offersErr: map[string]error{
			offerKey("movie", 200): tmdb.ErrRateLimited,
		},
	}
	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	watchNow := itemsOfType(items, TypeWatchNow)
	require.Len(t, watchNow, 1)
	assert.Equal(t, []string{"Title A"}, watchNow[0].Titles)
}

func TestDashboard_TrendingRecheckDropsUnavailableCandidates(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "trending@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")

	meta := &mockMetadata{
		discoverFn: func(mediaType string, p tmdb.DiscoverParams) []metadata.MediaInfo {
			if mediaType != "movie" {
				return nil
			}
			return []metadata.MediaInfo{
				{TmdbID: 500, MediaType: "movie", Title: "On Netflix", Popularity: 90, VoteAverage: 7.5, Overview: "a"},
				{TmdbID: 600, MediaType: "movie", Title: "Left Catalog", Popularity: 100, VoteAverage: 8.0, Overview: "b"},
			}
		},
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("movie", 500): {netflixOffer()},
			offerKey("movie", 600): {huluOffer()},
		},
	}
	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	trending := itemsOfType(items, TypeTrending)
	require.Len(t, trending, 1)
	assert.Equal(t, 500, trending[0].TmdbID)
	assert.Equal(t, "Netflix", trending[0].ServiceName)
	assert.Equal(t, "Trending on Netflix", trending[0].Reason)
}

func TestDashboard_TrendingFallsBackToGlobalWithoutSubscriptions(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "global@example.com")

	addWatchlistItem(t, db, user.ID, 999, "Watchlisted", "movie")

	meta := &mockMetadata{
		trending: map[string][]metadata.MediaInfo{
			"all": {
				{TmdbID: 999, MediaType: "movie", Title: "Watchlisted", Popularity: 100},
				{TmdbID: 700, MediaType: "movie", Title: "Fresh Pick", Popularity: 80, VoteAverage: 7.0},
				{TmdbID: 701, MediaType: "tv", Title: "Fresh Show", Popularity: 60, VoteAverage: 8.1},
			},
		},
	}
	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	trending := itemsOfType(items, TypeTrending)
	require.Len(t, trending, 2)
	for _, item := range trending {
		assert.NotEqual(t, 999, item.TmdbID)
		assert.Equal(t, "Trending now", item.Reason)
		assert.Empty(t, item.ServiceName)
	}
}

func TestDashboard_TrendingDeduplicatesTitles(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "dedupe@example.com")

	meta := &mockMetadata{
		trending: map[string][]metadata.MediaInfo{
			"all": {
				{TmdbID: 1, MediaType: "movie", Title: "The Thing", Popularity: 100},
				{TmdbID: 2, MediaType: "tv", Title: "the thing", Popularity: 90},
			},
		},
	}
	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	user.Country = "US"
	addWatchlistItem(t, db, user.ID, 12345, "Placeholder", "movie")

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	trending := itemsOfType(items, TypeTrending)
	require.Len(t, trending, 1)
	assert.Equal(t, 1, trending[0].TmdbID)
}

func TestDashboard_TrendingRespectsLimit(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "limit@example.com")

	var all []metadata.MediaInfo
	for i := 1; i <= 30; i++ {
		all = append(all, metadata.MediaInfo{
			TmdbID:     i,
			MediaType:  "movie",
			Title:      fmt.Sprintf("Movie %d", i),
			Popularity: float64(100 - i),
		})
	}
	meta := &mockMetadata{trending: map[string][]metadata.MediaInfo{"all": all}}

	addWatchlistItem(t, db, user.ID, 12345, "Placeholder", "movie")

	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{TrendingLimit: 5}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	assert.Len(t, itemsOfType(items, TypeTrending), 5)
}

func TestDashboard_SortsByScoreDescending(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "sort@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	addSubscription(t, db, user.ID, "Hulu", 7.99, "monthly")
	addWatchlistItem(t, db, user.ID, 1396, "Breaking Bad", "tv")

	meta := &mockMetadata{
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("tv", 1396): {netflixOffer()},
		},
	}
	calc := NewDashboardCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].Score, items[i].Score)
	}
	assert.Equal(t, TypeWatchNow, items[0].Type)
}
