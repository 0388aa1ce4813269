package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/testutil"
)

func trendingOnlyMetadata() *mockMetadata {
	return &mockMetadata{
		trending: map[string][]metadata.MediaInfo{
			"all": {
				{TmdbID: 100, MediaType: "movie", Title: "Trend A", Popularity: 90, VoteAverage: 7.2, Overview: "a"},
				{TmdbID: 200, MediaType: "tv", Title: "Trend B", Popularity: 80, VoteAverage: 8.0, Overview: "b"},
			},
		},
	}
}

func TestService_ServesFreshCacheWithoutRecompute(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "cached@example.com")
	addWatchlistItem(t, db, user.ID, 999, "Seed", "movie")

	meta := trendingOnlyMetadata()
	svc := NewService(db.Queries, meta, config.RecommendConfig{FreshnessHours: 24}, testutil.NopLogger())

	first, err := svc.GetDashboard(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.NotEmpty(t, first.Items)

	callsAfterCompute := meta.trendingCalls

	second, err := svc.GetDashboard(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, callsAfterCompute, meta.trendingCalls)
	assert.Equal(t, len(first.Items), len(second.Items))
}

func TestService_ForceBypassesCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "force@example.com")
	addWatchlistItem(t, db, user.ID, 999, "Seed", "movie")

	meta := trendingOnlyMetadata()
	svc := NewService(db.Queries, meta, config.RecommendConfig{FreshnessHours: 24}, testutil.NopLogger())

	_, err := svc.GetDashboard(context.Background(), user.ID, false)
	require.NoError(t, err)
	callsAfterCompute := meta.trendingCalls

	result, err := svc.GetDashboard(context.Background(), user.ID, true)
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Greater(t, meta.trendingCalls, callsAfterCompute)
}

func TestService_RecomputesWhenCachedShapeIsUnusable(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "reshape@example.com")
	addWatchlistItem(t, db, user.ID, 999, "Seed", "movie")

	meta := trendingOnlyMetadata()
	svc := NewService(db.Queries, meta, config.RecommendConfig{FreshnessHours: 24}, testutil.NopLogger())

	// a cached dashboard with no trending section is not served
	stale := `{"version":1,"items":[{"type":"cancel","service_name":"Netflix","savings":15.49,"score":65.49}]}`
	require.NoError(t, svc.cache.PutRaw(context.Background(), user.ID, CategoryDashboard, user.Country, stale))

	result, err := svc.GetDashboard(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.False(t, result.Cached)

	hasTrending := false
	for _, item := range result.Items {
		if item.Type == TypeTrending {
			hasTrending = true
		}
	}
	assert.True(t, hasTrending)
}

func TestService_RefreshPopulatesBothCategories(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "refresh@example.com")
	addWatchlistItem(t, db, user.ID, 999, "Seed", "movie")

	meta := trendingOnlyMetadata()
	svc := NewService(db.Queries, meta, config.RecommendConfig{FreshnessHours: 24}, testutil.NopLogger())

	require.NoError(t, svc.Refresh(context.Background(), user.ID))

	dash, err := svc.GetDashboard(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.True(t, dash.Cached)

	similar, err := svc.GetSimilar(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.True(t, similar.Cached)
}

func TestService_UnknownUserFails(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)

	svc := NewService(db.Queries, trendingOnlyMetadata(), config.RecommendConfig{FreshnessHours: 24}, testutil.NopLogger())

	_, err := svc.GetDashboard(context.Background(), 404, false)
	assert.Error(t, err)
}
