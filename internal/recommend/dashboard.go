package recommend

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/library/subscriptions"
	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/metadata/tmdb"
	"github.com/streamwise/streamwise/internal/providers"
)

// DashboardCalculator produces watch-now, cancel-unused and trending
// recommendations for a user.
type DashboardCalculator struct {
	queries  *sqlc.Queries
	metadata MetadataService
	cfg      config.RecommendConfig
	logger   zerolog.Logger
}

// NewDashboardCalculator creates a dashboard calculator.
func NewDashboardCalculator(queries *sqlc.Queries, meta MetadataService, cfg config.RecommendConfig, logger zerolog.Logger) *DashboardCalculator {
	return &DashboardCalculator{
		queries:  queries,
		metadata: meta,
		cfg:      cfg,
		logger:   logger.With().Str("component", "dashboard").Logger(),
	}
}

// Compute builds the full dashboard item set. Upstream lookup failures
// degrade individual candidates; they never fail the whole computation.
func (d *DashboardCalculator) Compute(ctx context.Context, user *sqlc.User) ([]Item, error) {
	watchlist, err := d.queries.ListWatchlist(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	subs, err := d.queries.ListActiveStreamingSubscriptions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if len(watchlist) == 0 && len(subs) == 0 {
		return []Item{}, nil
	}

	var items []Item

	assigned := d.assignWatchNow(ctx, user, watchlist, subs)
	subByID := make(map[int64]*sqlc.Subscription, len(subs))
	for _, sub := range subs {
		subByID[sub.ID] = sub
	}

	for subID, titles := range assigned {
		items = append(items, Item{
			Type:        TypeWatchNow,
			ServiceName: subByID[subID].ServiceName,
			Titles:      titles,
			Reason:      "Available on your subscription",
			Score:       100 + float64(len(titles)),
		})
	}

	for _, sub := range subs {
		if len(assigned[sub.ID]) > 0 {
			continue
		}
		monthly := subscriptions.MonthlyCost(sub.Cost, sub.BillingCycle)
		items = append(items, Item{
			Type:        TypeCancel,
			ServiceName: sub.ServiceName,
			Reason:      "No watchlist items found",
			Savings:     monthly,
			Score:       50 + monthly,
		})
	}

	items = append(items, d.trendingItems(ctx, user, subs, watchlist)...)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

type offerLookup struct {
	itemID int64
	offers []providers.Offer
	err    error
}

// lookupOffers fetches availability payloads for the given entries with
// bounded concurrency, collecting everything before returning so the
// caller applies results as one batch.
func (d *DashboardCalculator) lookupOffers(ctx context.Context, entries []*sqlc.WatchlistItem, region string) map[int64][]providers.Offer {
	workers := d.cfg.LookupWorkers
	if workers <= 0 {
		workers = 10
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	results := make(chan offerLookup, len(entries))

	for _, entry := range entries {
		wg.Add(1)
		go func(e *sqlc.WatchlistItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			offers, err := d.metadata.Offers(ctx, e.MediaType, int(e.TmdbID), region)
			results <- offerLookup{itemID: e.ID, offers: toOffers(offers), err: err}
		}(entry)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	byItem := make(map[int64][]providers.Offer, len(entries))
	for res := range results {
		if res.err != nil {
			// Treat as "not available" rather than failing the batch.
			d.logger.Warn().Err(res.err).Int64("itemID", res.itemID).Msg("Availability lookup failed")
			continue
		}
		byItem[res.itemID] = res.offers
	}
	return byItem
}

// assignWatchNow matches every active watchlist entry against the
// user's subscriptions and assigns each title to whichever matched
// subscription currently holds the fewest titles.
func (d *DashboardCalculator) assignWatchNow(ctx context.Context, user *sqlc.User, watchlist []*sqlc.WatchlistItem, subs []*sqlc.Subscription) map[int64][]string {
	assigned := make(map[int64][]string)
	if len(subs) == 0 {
		return assigned
	}

	var active []*sqlc.WatchlistItem
	for _, entry := range watchlist {
		if entry.Status == "watched" {
			continue
		}
		active = append(active, entry)
	}
	if len(active) == 0 {
		return assigned
	}

	offersByItem := d.lookupOffers(ctx, active, user.Country)

	for _, entry := range active {
		matched := providers.MatchAll(offersByItem[entry.ID], subs)
		if len(matched) == 0 {
			continue
		}

		best := matched[0]
		for _, sub := range matched[1:] {
			if len(assigned[sub.ID]) < len(assigned[best.ID]) {
				best = sub
			}
		}

		if !containsString(assigned[best.ID], entry.Title) {
			assigned[best.ID] = append(assigned[best.ID], entry.Title)
		}
		d.stampAvailability(ctx, entry, best.ServiceName)
	}
	return assigned
}

// stampAvailability records the matched service on the watchlist row so
// list views can show the badge without a fresh provider lookup.
func (d *DashboardCalculator) stampAvailability(ctx context.Context, entry *sqlc.WatchlistItem, service string) {
	if entry.AvailableOn.Valid && entry.AvailableOn.String == service {
		return
	}
	err := d.queries.UpdateWatchlistAvailableOn(ctx, sqlc.UpdateWatchlistAvailableOnParams{
		AvailableOn: sql.NullString{String: service, Valid: true},
		ID:          entry.ID,
	})
	if err != nil {
		d.logger.Warn().Err(err).Int64("itemID", entry.ID).Msg("Availability badge update failed")
	}
}

// trendingItems queries popular titles filtered to the user's providers
// (or globally without streaming subscriptions), interleaves movies and
// series, and re-checks each surviving candidate's subscription match
// individually. The discover-stage provider filter alone is not
// authoritative.
func (d *DashboardCalculator) trendingItems(ctx context.Context, user *sqlc.User, subs []*sqlc.Subscription, watchlist []*sqlc.WatchlistItem) []Item {
	limit := d.cfg.TrendingLimit
	if limit <= 0 {
		limit = 15
	}

	providerIDs := providers.ResolveAll(subs)
	movies, series := d.trendingCandidates(ctx, user, providerIDs)

	watchlistIDs := make(map[int64]bool, len(watchlist))
	for _, entry := range watchlist {
		watchlistIDs[entry.TmdbID] = true
	}

	candidates := interleave(movies, series)

	maxPopularity := 0.0
	for _, c := range candidates {
		if c.Popularity > maxPopularity {
			maxPopularity = c.Popularity
		}
	}

	var items []Item
	seenTitles := make(map[string]bool)

	for _, candidate := range candidates {
		if len(items) >= limit {
			break
		}
		if watchlistIDs[int64(candidate.TmdbID)] {
			continue
		}
		titleKey := strings.ToLower(candidate.Title)
		if titleKey == "" || seenTitles[titleKey] {
			continue
		}

		serviceName := ""
		if len(subs) > 0 {
			offers, err := d.metadata.Offers(ctx, candidate.MediaType, candidate.TmdbID, user.Country)
			if err != nil {
				continue
			}
			matched := providers.MatchShuffled(toOffers(offers), subs)
			if matched == nil {
				if len(providerIDs) > 0 {
					// Provider-filtered query, but this title is not
					// actually on any owned service.
					continue
				}
			} else {
				serviceName = matched.ServiceName
			}
		}

		score := 0.0
		if maxPopularity > 0 {
			score = candidate.Popularity / maxPopularity * 30
		}

		reason := "Trending now"
		if serviceName != "" {
			reason = "Trending on " + serviceName
		}

		seenTitles[titleKey] = true
		items = append(items, Item{
			Type:        TypeTrending,
			ServiceName: serviceName,
			Reason:      reason,
			Score:       score,
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

func (d *DashboardCalculator) trendingCandidates(ctx context.Context, user *sqlc.User, providerIDs []int) (movies, series []metadata.MediaInfo) {
	if len(providerIDs) > 0 {
		params := tmdb.DiscoverParams{
			ProviderIDs: providerIDs,
			WatchRegion: user.Country,
			SortBy:      "popularity.desc",
		}
		var err error
		movies, err = d.metadata.Discover(ctx, "movie", params)
		if err != nil {
			d.logger.Warn().Err(err).Msg("Trending movie discover failed")
		}
		series, err = d.metadata.Discover(ctx, "tv", params)
		if err != nil {
			d.logger.Warn().Err(err).Msg("Trending tv discover failed")
		}
		if len(movies) > 0 || len(series) > 0 {
			return movies, series
		}
	}

	all, err := d.metadata.Trending(ctx, "all")
	if err != nil {
		d.logger.Warn().Err(err).Msg("Global trending lookup failed")
		return nil, nil
	}
	for _, info := range all {
		if info.MediaType == "movie" {
			movies = append(movies, info)
		} else {
			series = append(series, info)
		}
	}
	return movies, series
}

func interleave(a, b []metadata.MediaInfo) []metadata.MediaInfo {
	merged := make([]metadata.MediaInfo, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			merged = append(merged, a[i])
		}
		if i < len(b) {
			merged = append(merged, b[i])
		}
	}
	return merged
}

func toOffers(offers []tmdb.ProviderOffer) []providers.Offer {
	converted := make([]providers.Offer, len(offers))
	for i, o := range offers {
		converted[i] = providers.Offer{ID: o.ProviderID, Name: o.ProviderName}
	}
	return converted
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
