package recommend

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/metadata/tmdb"
	"github.com/streamwise/streamwise/internal/providers"
)

// interestSource tags where a user's top genres came from.
type interestSource int

const (
	explicitInterest interestSource = iota
	derivedFromWatchlist
	defaultInterest
)

// defaultGenres is the fallback pair when neither the interest profile
// nor the watchlist yields any genres (TMDB ids for drama and comedy).
var defaultGenres = []int{18, 35}

const (
	similarSeedCap    = 3
	minMergedPoolSize = 5
	exploreKeepTop    = 2
)

// DiscoveryCalculator produces genre-interest and watch-history driven
// discovery candidates.
type DiscoveryCalculator struct {
	queries  *sqlc.Queries
	metadata MetadataService
	cfg      config.RecommendConfig
	logger   zerolog.Logger
}

// NewDiscoveryCalculator creates a discovery calculator.
func NewDiscoveryCalculator(queries *sqlc.Queries, meta MetadataService, cfg config.RecommendConfig, logger zerolog.Logger) *DiscoveryCalculator {
	return &DiscoveryCalculator{
		queries:  queries,
		metadata: meta,
		cfg:      cfg,
		logger:   logger.With().Str("component", "discovery").Logger(),
	}
}

// Compute builds the similar-content item set: available-on-owned
// candidates, a clustered explore pool, history-driven similar titles,
// and a trending backfill when the merged pool runs short. The merged
// pool is shuffled before truncation so repeated calls feel fresh.
func (c *DiscoveryCalculator) Compute(ctx context.Context, user *sqlc.User) ([]Item, error) {
	watchlist, err := c.queries.ListWatchlist(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	subs, err := c.queries.ListActiveStreamingSubscriptions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	limit := c.cfg.DiscoveryLimit
	if limit <= 0 {
		limit = 10
	}

	genres, source := c.topGenres(ctx, user.ID, watchlist)
	c.logger.Debug().
		Int64("userID", user.ID).
		Ints("genres", genres).
		Int("source", int(source)).
		Msg("Resolved top interest genres")

	watchlistIDs := make(map[int]bool, len(watchlist))
	for _, entry := range watchlist {
		watchlistIDs[int(entry.TmdbID)] = true
	}

	var pool []Item
	seen := make(map[int]bool)

	add := func(item Item) {
		if item.TmdbID == 0 || seen[item.TmdbID] || watchlistIDs[item.TmdbID] {
			return
		}
		seen[item.TmdbID] = true
		pool = append(pool, item)
	}

	for _, item := range c.availableCandidates(ctx, user, subs, genres) {
		add(item)
	}
	for _, item := range c.exploreCandidates(ctx, user, subs, genres) {
		add(item)
	}
	for _, item := range c.similarCandidates(ctx, user, subs, watchlist, watchlistIDs) {
		add(item)
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}

	if len(pool) < minMergedPoolSize {
		for _, item := range c.trendingBackfill(ctx, user, subs, watchlistIDs, seen, limit-len(pool)) {
			add(item)
		}
	}

	if pool == nil {
		pool = []Item{}
	}
	return pool, nil
}

// topGenres returns up to two genre ids: the interest profile's highest
// positive scores, else the most frequent tags across the watchlist,
// else a fixed default pair.
func (c *DiscoveryCalculator) topGenres(ctx context.Context, userID int64, watchlist []*sqlc.WatchlistItem) ([]int, interestSource) {
	interests, err := c.queries.ListInterests(ctx, userID)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Interest lookup failed, deriving from watchlist")
		interests = nil
	}

	var genres []int
	for _, interest := range interests {
		if interest.Score <= 0 {
			break // ordered by score descending
		}
		genres = append(genres, int(interest.GenreID))
		if len(genres) == 2 {
			return genres, explicitInterest
		}
	}
	if len(genres) > 0 {
		return genres, explicitInterest
	}

	counts := make(map[int]int)
	for _, entry := range watchlist {
		for _, id := range parseGenreIDs(entry.GenreIds) {
			counts[id]++
		}
	}
	if len(counts) > 0 {
		for len(genres) < 2 && len(counts) > 0 {
			best, bestCount := 0, 0
			for id, n := range counts {
				if n > bestCount {
					best, bestCount = id, n
				}
			}
			genres = append(genres, best)
			delete(counts, best)
		}
		return genres, derivedFromWatchlist
	}

	return defaultGenres, defaultInterest
}

// availableCandidates queries each top genre filtered to the user's
// provider ids and accepts candidates whose per-title subscription
// match is independently confirmed.
func (c *DiscoveryCalculator) availableCandidates(ctx context.Context, user *sqlc.User, subs []*sqlc.Subscription, genres []int) []Item {
	providerIDs := providers.ResolveAll(subs)
	if len(providerIDs) == 0 {
		return nil
	}

	var items []Item
	for _, genre := range genres {
		for _, mediaType := range []string{"movie", "tv"} {
			results, err := c.metadata.Discover(ctx, mediaType, tmdb.DiscoverParams{
				GenreIDs:       []int{genre},
				ProviderIDs:    providerIDs,
				WatchRegion:    user.Country,
				MinVoteAverage: 6.0,
				MinVoteCount:   100,
				SortBy:         "vote_average.desc",
			})
			if err != nil {
				c.logger.Warn().Err(err).Int("genre", genre).Msg("Available discover failed")
				continue
			}

			accepted := 0
			for _, candidate := range results {
				if accepted >= exploreKeepTop {
					break
				}
				matched := c.matchOwned(ctx, user, subs, candidate)
				if matched == nil {
					continue
				}
				accepted++
				items = append(items, Item{
					Type:        TypeDiscover,
					ServiceName: matched.ServiceName,
					Reason:      "Top rated in your favorite genres",
					Score:       70 + candidate.VoteAverage*2,
					TmdbID:      candidate.TmdbID,
					MediaType:   candidate.MediaType,
					Title:       candidate.Title,
					PosterPath:  candidate.PosterPath,
					VoteAverage: candidate.VoteAverage,
					Overview:    candidate.Overview,
				})
			}
		}
	}
	return items
}

// exploreCandidates queries the same genres with a higher quality bar
// and no provider filter, keeping only titles the user cannot already
// stream. The pool is clustered by external service and only the single
// best-represented service's top entries survive, so the result does
// not push several paid upgrades at once.
func (c *DiscoveryCalculator) exploreCandidates(ctx context.Context, user *sqlc.User, subs []*sqlc.Subscription, genres []int) []Item {
	byService := make(map[string][]Item)

	for _, genre := range genres {
		for _, mediaType := range []string{"movie", "tv"} {
			results, err := c.metadata.Discover(ctx, mediaType, tmdb.DiscoverParams{
				GenreIDs:       []int{genre},
				MinVoteAverage: 7.0,
				MinVoteCount:   500,
				SortBy:         "vote_average.desc",
			})
			if err != nil {
				c.logger.Warn().Err(err).Int("genre", genre).Msg("Explore discover failed")
				continue
			}

			for _, candidate := range results {
				offers, err := c.metadata.Offers(ctx, candidate.MediaType, candidate.TmdbID, user.Country)
				if err != nil {
					continue
				}
				converted := toOffers(offers)

				// Already streamable on an owned subscription; the
				// available pool covers it.
				if providers.Match(converted, subs) != nil {
					continue
				}

				service := providers.AttributeService(converted)
				if service == "" {
					continue
				}

				byService[service] = append(byService[service], Item{
					Type:        TypeExplore,
					ServiceName: service,
					Reason:      "Popular on " + service,
					Score:       60 + candidate.VoteAverage*2,
					TmdbID:      candidate.TmdbID,
					MediaType:   candidate.MediaType,
					Title:       candidate.Title,
					PosterPath:  candidate.PosterPath,
					VoteAverage: candidate.VoteAverage,
					Overview:    candidate.Overview,
				})
			}
		}
	}

	bestService, bestCount := "", 0
	for service, items := range byService {
		if len(items) > bestCount {
			bestService, bestCount = service, len(items)
		}
	}
	if bestService == "" {
		return nil
	}

	kept := byService[bestService]
	if len(kept) > exploreKeepTop {
		kept = kept[:exploreKeepTop]
	}
	return kept
}

// similarCandidates issues similarity queries seeded by the watchlist,
// weighting highly rated and watched entries, until the seed cap is
// reached. Candidates must match an owned subscription.
func (c *DiscoveryCalculator) similarCandidates(ctx context.Context, user *sqlc.User, subs []*sqlc.Subscription, watchlist []*sqlc.WatchlistItem, watchlistIDs map[int]bool) []Item {
	if len(subs) == 0 || len(watchlist) == 0 {
		return nil
	}

	seeds := weightedSeeds(watchlist)
	rand.Shuffle(len(seeds), func(i, j int) {
		seeds[i], seeds[j] = seeds[j], seeds[i]
	})

	var items []Item
	seen := make(map[int]bool)
	usedSeeds := make(map[int64]bool)

	for _, seed := range seeds {
		if len(usedSeeds) >= similarSeedCap {
			break
		}
		if usedSeeds[seed.TmdbID] {
			continue
		}
		usedSeeds[seed.TmdbID] = true

		similar, err := c.metadata.Similar(ctx, seed.MediaType, int(seed.TmdbID))
		if err != nil {
			c.logger.Warn().Err(err).Int64("seedID", seed.TmdbID).Msg("Similar lookup failed")
			continue
		}

		for _, candidate := range similar {
			if seen[candidate.TmdbID] || watchlistIDs[candidate.TmdbID] {
				continue
			}
			if candidate.Overview == "" || candidate.VoteAverage < 4.0 {
				continue
			}

			matched := c.matchOwned(ctx, user, subs, candidate)
			if matched == nil {
				continue
			}

			seen[candidate.TmdbID] = true
			items = append(items, Item{
				Type:        TypeSimilar,
				ServiceName: matched.ServiceName,
				Reason:      "Because you watched " + seed.Title,
				Score:       80 + candidate.VoteAverage*2,
				TmdbID:      candidate.TmdbID,
				MediaType:   candidate.MediaType,
				Title:       candidate.Title,
				PosterPath:  candidate.PosterPath,
				VoteAverage: candidate.VoteAverage,
				Overview:    candidate.Overview,
			})
		}
	}
	return items
}

// trendingBackfill fills the remainder, preferring titles on the
// user's own services before falling back to the global trending feed,
// with the same matching rule as the dashboard's trending step.
func (c *DiscoveryCalculator) trendingBackfill(ctx context.Context, user *sqlc.User, subs []*sqlc.Subscription, watchlistIDs map[int]bool, seen map[int]bool, want int) []Item {
	if want <= 0 {
		return nil
	}

	var pool []metadata.MediaInfo
	if providerIDs := providers.ResolveAll(subs); len(providerIDs) > 0 {
		for _, mediaType := range []string{"movie", "tv"} {
			results, err := c.metadata.Discover(ctx, mediaType, tmdb.DiscoverParams{
				ProviderIDs: providerIDs,
				WatchRegion: user.Country,
				SortBy:      "popularity.desc",
			})
			if err != nil {
				c.logger.Warn().Err(err).Str("mediaType", mediaType).Msg("Provider-filtered backfill failed")
				continue
			}
			pool = append(pool, results...)
		}
	}

	trending, err := c.metadata.Trending(ctx, "all")
	if err != nil {
		c.logger.Warn().Err(err).Msg("Trending backfill failed")
	} else {
		pool = append(pool, trending...)
	}

	var items []Item
	for _, candidate := range pool {
		if len(items) >= want {
			break
		}
		if seen[candidate.TmdbID] || watchlistIDs[candidate.TmdbID] {
			continue
		}

		serviceName := ""
		if len(subs) > 0 {
			matched := c.matchOwned(ctx, user, subs, candidate)
			if matched != nil {
				serviceName = matched.ServiceName
			}
		}

		reason := "Trending now"
		if serviceName != "" {
			reason = "Trending on " + serviceName
		}

		items = append(items, Item{
			Type:        TypeTrending,
			ServiceName: serviceName,
			Reason:      reason,
			Score:       40 + candidate.VoteAverage,
			TmdbID:      candidate.TmdbID,
			MediaType:   candidate.MediaType,
			Title:       candidate.Title,
			PosterPath:  candidate.PosterPath,
			VoteAverage: candidate.VoteAverage,
			Overview:    candidate.Overview,
		})
	}
	return items
}

func (c *DiscoveryCalculator) matchOwned(ctx context.Context, user *sqlc.User, subs []*sqlc.Subscription, candidate metadata.MediaInfo) *sqlc.Subscription {
	offers, err := c.metadata.Offers(ctx, candidate.MediaType, candidate.TmdbID, user.Country)
	if err != nil {
		return nil
	}
	return providers.MatchShuffled(toOffers(offers), subs)
}

// weightedSeeds expands watchlist entries into a seed list where an
// entry appears (rating*2) times when rated, 3 times when watched, and
// once otherwise.
func weightedSeeds(watchlist []*sqlc.WatchlistItem) []*sqlc.WatchlistItem {
	var seeds []*sqlc.WatchlistItem
	for _, entry := range watchlist {
		weight := 1
		switch {
		case entry.UserRating.Valid && entry.UserRating.Int64 > 0:
			weight = int(entry.UserRating.Int64) * 2
		case entry.Status == "watched":
			weight = 3
		}
		for i := 0; i < weight; i++ {
			seeds = append(seeds, entry)
		}
	}
	return seeds
}

func parseGenreIDs(raw sql.NullString) []int {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw.String), &ids); err != nil {
		return nil
	}
	return ids
}
