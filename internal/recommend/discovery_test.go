package recommend

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/metadata/tmdb"
	"github.com/streamwise/streamwise/internal/testutil"
)

func addInterest(t *testing.T, db *testutil.TestDB, userID int64, genreID, score int64) {
	t.Helper()
	err := db.Queries.AddInterestScore(context.Background(), sqlc.AddInterestScoreParams{
		UserID:  userID,
		GenreID: genreID,
		Score:   score,
	})
	require.NoError(t, err)
}

func TestDiscovery_AvailableCandidatesConfirmOwnedService(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "available@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	addInterest(t, db, user.ID, 18, 5)

	meta := &mockMetadata{
		discoverFn: func(mediaType string, p tmdb.DiscoverParams) []metadata.MediaInfo {
			// only the provider-filtered query returns results
			if len(p.ProviderIDs) == 0 || mediaType != "movie" {
				return nil
			}
			return []metadata.MediaInfo{
				{TmdbID: 10, MediaType: "movie", Title: "Confirmed", VoteAverage: 8.0, Overview: "x"},
				{TmdbID: 20, MediaType: "movie", Title: "Stale Filter", VoteAverage: 7.5, Overview: "y"},
			}
		},
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("movie", 10): {netflixOffer()},
			offerKey("movie", 20): {huluOffer()},
		},
	}
	calc := NewDiscoveryCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	discover := itemsOfType(items, TypeDiscover)
	require.Len(t, discover, 1)
	assert.Equal(t, 10, discover[0].TmdbID)
	assert.Equal(t, "Netflix", discover[0].ServiceName)
	assert.Equal(t, "Top rated in your favorite genres", discover[0].Reason)
	assert.InDelta(t, 86.0, discover[0].Score, 0.001)
}

func TestDiscovery_ExploreKeepsSingleBestService(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "explore@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	addInterest(t, db, user.ID, 18, 5)

	disney := tmdb.ProviderOffer{ProviderID: 337, ProviderName: "Disney Plus"}
	meta := &mockMetadata{
		discoverFn: func(mediaType string, p tmdb.DiscoverParams) []metadata.MediaInfo {
			// only the unfiltered high-quality explore query returns results
			if len(p.ProviderIDs) > 0 || mediaType != "movie" || p.MinVoteCount != 500 {
				return nil
			}
			return []metadata.MediaInfo{
				{TmdbID: 30, MediaType: "movie", Title: "Disney One", VoteAverage: 8.5, Overview: "a"},
				{TmdbID: 40, MediaType: "movie", Title: "Disney Two", VoteAverage: 8.2, Overview: "b"},
				{TmdbID: 50, MediaType: "movie", Title: "Disney Three", VoteAverage: 8.0, Overview: "c"},
				{TmdbID: 60, MediaType: "movie", Title: "Hulu One", VoteAverage: 9.0, Overview: "d"},
			}
		},
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("movie", 30): {disney},
			offerKey("movie", 40): {disney},
			offerKey("movie", 50): {disney},
			offerKey("movie", 60): {huluOffer()},
		},
	}
	calc := NewDiscoveryCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	explore := itemsOfType(items, TypeExplore)
	require.Len(t, explore, 2)
	for _, item := range explore {
		assert.Equal(t, "Disney Plus", item.ServiceName)
		assert.Equal(t, "Popular on Disney Plus", item.Reason)
	}
}

func TestDiscovery_ExploreSkipsTitlesAlreadyOwned(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "owned@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	addInterest(t, db, user.ID, 18, 5)

	meta := &mockMetadata{
		discoverFn: func(mediaType string, p tmdb.DiscoverParams) []metadata.MediaInfo {
			if len(p.ProviderIDs) > 0 || mediaType != "movie" {
				return nil
			}
			return []metadata.MediaInfo{
				{TmdbID: 70, MediaType: "movie", Title: "Already Streamable", VoteAverage: 8.0, Overview: "x"},
			}
		},
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("movie", 70): {netflixOffer()},
		},
	}
	calc := NewDiscoveryCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	assert.Empty(t, itemsOfType(items, TypeExplore))
}

func TestDiscovery_SimilarSeededByWatchHistory(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "similar@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	item := addWatchlistItem(t, db, user.ID, 1396, "Breaking Bad", "tv")
	_, err := db.Queries.UpdateWatchlistRating(context.Background(), sqlc.UpdateWatchlistRatingParams{
		UserRating: sql.NullInt64{Int64: 10, Valid: true},
		ID:         item.ID,
		UserID:     user.ID,
	})
	require.NoError(t, err)

	meta := &mockMetadata{
		similarByID: map[string][]metadata.MediaInfo{
			offerKey("tv", 1396): {
				{TmdbID: 60059, MediaType: "tv", Title: "Better Call Saul", VoteAverage: 8.7, Overview: "spinoff"},
				{TmdbID: 1, MediaType: "tv", Title: "No Overview", VoteAverage: 8.0},
				{TmdbID: 2, MediaType: "tv", Title: "Low Rated", VoteAverage: 3.0, Overview: "meh"},
				{TmdbID: 1396, MediaType: "tv", Title: "Breaking Bad", VoteAverage: 8.9, Overview: "itself"},
			},
		},
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("tv", 60059): {netflixOffer()},
			offerKey("tv", 1):     {netflixOffer()},
			offerKey("tv", 2):     {netflixOffer()},
		},
	}
	calc := NewDiscoveryCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	similar := itemsOfType(items, TypeSimilar)
	require.Len(t, similar, 1)
	assert.Equal(t, 60059, similar[0].TmdbID)
	assert.Equal(t, "Because you watched Breaking Bad", similar[0].Reason)
	assert.Equal(t, "Netflix", similar[0].ServiceName)
}

func TestDiscovery_TrendingBackfillWhenPoolRunsShort(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "backfill@example.com")

	meta := &mockMetadata{
		trending: map[string][]metadata.MediaInfo{
			"all": {
				{TmdbID: 80, MediaType: "movie", Title: "Filler One", VoteAverage: 7.0, Overview: "x"},
				{TmdbID: 90, MediaType: "tv", Title: "Filler Two", VoteAverage: 6.5, Overview: "y"},
			},
		},
	}
	calc := NewDiscoveryCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	trending := itemsOfType(items, TypeTrending)
	require.Len(t, trending, 2)
	for _, item := range trending {
		assert.Equal(t, "Trending now", item.Reason)
	}
}

func TestDiscovery_BackfillPrefersOwnedServices(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "backfill-owned@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")

	meta := &mockMetadata{
		discoverFn: func(mediaType string, p tmdb.DiscoverParams) []metadata.MediaInfo {
			// the backfill discover carries a provider filter but no genres
			if len(p.ProviderIDs) > 0 && len(p.GenreIDs) == 0 && mediaType == "movie" {
				return []metadata.MediaInfo{
					{TmdbID: 700, MediaType: "movie", Title: "On Your Service", VoteAverage: 7.5, Overview: "x"},
				}
			}
			return nil
		},
		trending: map[string][]metadata.MediaInfo{
			"all": {
				{TmdbID: 800, MediaType: "movie", Title: "Global Filler", VoteAverage: 6.8, Overview: "y"},
			},
		},
		offers: map[string][]tmdb.ProviderOffer{
			offerKey("movie", 700): {netflixOffer()},
		},
	}
	calc := NewDiscoveryCalculator(db.Queries, meta, config.RecommendConfig{}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)

	trending := itemsOfType(items, TypeTrending)
	require.Len(t, trending, 2)

	byID := make(map[int]Item, len(trending))
	for _, item := range trending {
		byID[item.TmdbID] = item
	}
	require.Contains(t, byID, 700)
	assert.Equal(t, "Trending on Netflix", byID[700].Reason)
	assert.Equal(t, "Netflix", byID[700].ServiceName)
	require.Contains(t, byID, 800)
	assert.Equal(t, "Trending now", byID[800].Reason)
}

func TestDiscovery_RespectsLimit(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "dlimit@example.com")

	addSubscription(t, db, user.ID, "Netflix", 15.49, "monthly")
	addInterest(t, db, user.ID, 18, 5)
	addInterest(t, db, user.ID, 35, 3)

	next := 100
	meta := &mockMetadata{
		discoverFn: func(mediaType string, p tmdb.DiscoverParams) []metadata.MediaInfo {
			if len(p.ProviderIDs) == 0 {
				return nil
			}
			var results []metadata.MediaInfo
			for i := 0; i < 2; i++ {
				next++
				results = append(results, metadata.MediaInfo{
					TmdbID:      next,
					MediaType:   mediaType,
					Title:       "Candidate",
					VoteAverage: 7.0,
					Overview:    "x",
				})
			}
			return results
		},
	}
	// every candidate is on Netflix
	meta.offers = map[string][]tmdb.ProviderOffer{}
	for i := 101; i <= 120; i++ {
		meta.offers[offerKey("movie", i)] = []tmdb.ProviderOffer{netflixOffer()}
		meta.offers[offerKey("tv", i)] = []tmdb.ProviderOffer{netflixOffer()}
	}

	calc := NewDiscoveryCalculator(db.Queries, meta, config.RecommendConfig{DiscoveryLimit: 5}, testutil.NopLogger())

	items, err := calc.Compute(context.Background(), user)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(items), 5)
	assert.GreaterOrEqual(t, len(items), 5)
}

func TestDiscovery_TopGenresFallBackThroughSources(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)
	user := db.CreateUser(t, "genres@example.com")

	calc := NewDiscoveryCalculator(db.Queries, &mockMetadata{}, config.RecommendConfig{}, testutil.NopLogger())

	// no interests, no watchlist
	genres, source := calc.topGenres(context.Background(), user.ID, nil)
	assert.Equal(t, defaultGenres, genres)
	assert.Equal(t, defaultInterest, source)

	// watchlist genres outweigh defaults
	watchlist := []*sqlc.WatchlistItem{
		{GenreIds: sql.NullString{String: "[80,18]", Valid: true}},
		{GenreIds: sql.NullString{String: "[80]", Valid: true}},
	}
	genres, source = calc.topGenres(context.Background(), user.ID, watchlist)
	assert.Equal(t, derivedFromWatchlist, source)
	assert.Equal(t, 80, genres[0])

	// explicit interests win over everything
	addInterest(t, db, user.ID, 878, 10)
	genres, source = calc.topGenres(context.Background(), user.ID, watchlist)
	assert.Equal(t, explicitInterest, source)
	assert.Equal(t, []int{878}, genres)
}
