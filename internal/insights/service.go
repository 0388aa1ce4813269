package insights

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/preferences"
	"github.com/streamwise/streamwise/internal/quota"
	"github.com/streamwise/streamwise/internal/recommend"
)

// Service orchestrates AI insight generation end to end.
type Service struct {
	queries   *sqlc.Queries
	quota     *quota.Service
	prefs     *preferences.Store
	metadata  MetadataResolver
	cache     *recommend.Cache
	dashboard DashboardSource
	generator Generator
	logger    zerolog.Logger
}

// NewService creates an insights service.
func NewService(
	queries *sqlc.Queries,
	quotaSvc *quota.Service,
	prefs *preferences.Store,
	meta MetadataResolver,
	cache *recommend.Cache,
	dashboard DashboardSource,
	generator Generator,
	logger zerolog.Logger,
) *Service {
	return &Service{
		queries:   queries,
		quota:     quotaSvc,
		prefs:     prefs,
		metadata:  meta,
		cache:     cache,
		dashboard: dashboard,
		generator: generator,
		logger:    logger.With().Str("component", "insights").Logger(),
	}
}

// GetInsights returns AI picks for a user. A quota denial or any
// generation failure serves the last cached result, then the dashboard
// relabeled as low-confidence picks; it never hard-fails on upstream
// trouble alone.
func (s *Service) GetInsights(ctx context.Context, userID int64, force bool) (*Insights, error) {
	user, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.quota.Check(ctx, userID); err != nil {
		if errors.Is(err, quota.ErrAccessDisabled) || errors.Is(err, quota.ErrLimitReached) {
			return s.degrade(ctx, user, quotaNotice(err))
		}
		return nil, err
	}

	if !force {
		if cached, updatedAt := s.cached(ctx, user); cached != nil && s.cache.IsFresh(updatedAt) {
			cached.Source = SourceCache
			return cached, nil
		}
	}

	result, err := s.generate(ctx, user)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Generation failed, degrading")
		return s.degrade(ctx, user, "AI suggestions are temporarily unavailable")
	}
	return result, nil
}

func (s *Service) generate(ctx context.Context, user *sqlc.User) (*Insights, error) {
	watchlist, err := s.queries.ListWatchlist(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	subs, err := s.queries.ListActiveSubscriptions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(watchlist, subs, prefs, user.Country)

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := parseResponse(text)
	if err != nil {
		return nil, err
	}

	watchlistIDs := make(map[int]bool, len(watchlist))
	for _, entry := range watchlist {
		watchlistIDs[int(entry.TmdbID)] = true
	}

	// Picks and gaps share the seen sets so a title never appears in
	// both lists of the same response.
	seenIDs := make(map[int]bool)
	seenTitles := make(map[string]bool)
	picks := s.enrichTitles(ctx, parsed.Picks, maxPicks, watchlistIDs, prefs, seenIDs, seenTitles)
	gaps := s.enrichTitles(ctx, parsed.Gaps, maxGaps, watchlistIDs, prefs, seenIDs, seenTitles)

	insights := &Insights{
		Version:     PayloadVersion,
		Picks:       picks,
		Strategy:    strategyActions(parsed.Strategy),
		Gaps:        gaps,
		Source:      SourceAI,
		GeneratedAt: time.Now().UTC(),
	}

	// Bookkeeping happens only on a successful generation so a failed
	// run cannot charge quota or poison skip counters.
	s.trackSkips(ctx, user.ID, prefs, watchlistIDs, picks)

	if err := s.quota.RecordUsage(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record quota usage")
	}

	if data, err := json.Marshal(insights); err == nil {
		if err := s.cache.PutRaw(ctx, user.ID, recommend.CategoryAIPicks, user.Country, string(data)); err != nil {
			s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to cache insights")
		}
	}

	return insights, nil
}

// enrichTitles resolves each suggested title against the catalog and
// filters out unusable, already-tracked, soft-banned, and duplicate
// entries. Picks and gaps both pass through here.
func (s *Service) enrichTitles(ctx context.Context, raw []rawPick, limit int, watchlistIDs map[int]bool, prefs *preferences.Preferences, seenIDs map[int]bool, seenTitles map[string]bool) []Pick {
	picks := []Pick{}

	for _, candidate := range raw {
		if len(picks) >= limit {
			break
		}

		title := strings.TrimSpace(candidate.Title)
		if title == "" {
			continue
		}
		titleKey := strings.ToLower(title)
		if seenTitles[titleKey] {
			continue
		}

		pick := Pick{
			MediaType:  candidate.MediaType,
			Title:      title,
			Reason:     cleanReason(candidate.Reason),
			Confidence: normalizeConfidence(candidate.Confidence),
		}

		info, err := s.metadata.ResolveTitle(ctx, title)
		if err == nil && info != nil {
			pick.TmdbID = info.TmdbID
			pick.MediaType = info.MediaType
			pick.Title = info.Title
			pick.PosterPath = info.PosterPath
			pick.VoteAverage = info.VoteAverage

			if details, err := s.metadata.Details(ctx, info.MediaType, info.TmdbID); err == nil {
				pick.PosterPath = details.PosterPath
				pick.VoteAverage = details.VoteAverage
			}
		}

		// A pick the catalog cannot place at all is not actionable.
		if pick.TmdbID == 0 && pick.PosterPath == "" {
			continue
		}
		if watchlistIDs[pick.TmdbID] {
			continue
		}
		if prefs.IsSoftBanned(pick.TmdbID) {
			continue
		}
		if pick.TmdbID != 0 && seenIDs[pick.TmdbID] {
			continue
		}

		seenIDs[pick.TmdbID] = true
		seenTitles[titleKey] = true
		seenTitles[strings.ToLower(pick.Title)] = true
		picks = append(picks, pick)
	}
	return picks
}

// trackSkips counts a skip for every previously shown pick the user
// did not add to the watchlist, then remembers the new batch. A pick
// the model keeps repeating still accumulates skips, so it reaches the
// soft-ban threshold instead of being resurfaced forever.
func (s *Service) trackSkips(ctx context.Context, userID int64, prefs *preferences.Preferences, watchlistIDs map[int]bool, picks []Pick) {
	newPickIDs := make([]int, 0, len(picks))
	for _, pick := range picks {
		if pick.TmdbID != 0 {
			newPickIDs = append(newPickIDs, pick.TmdbID)
		}
	}

	for _, prev := range prefs.LastAIPicks {
		if watchlistIDs[prev] {
			continue
		}
		prefs.SkipCounts[strconv.Itoa(prev)]++
	}
	prefs.LastAIPicks = newPickIDs

	if err := s.prefs.Put(ctx, userID, prefs); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to persist skip tracking")
	}
}

// degrade serves the best available substitute for a live generation.
func (s *Service) degrade(ctx context.Context, user *sqlc.User, notice string) (*Insights, error) {
	if cached, _ := s.cached(ctx, user); cached != nil {
		cached.Source = SourceCache
		cached.Notice = notice
		return cached, nil
	}

	result, err := s.dashboard.GetDashboard(ctx, user.ID, false)
	if err != nil {
		return nil, err
	}

	picks := []Pick{}
	for _, item := range result.Items {
		if len(picks) >= maxPicks {
			break
		}
		if item.TmdbID == 0 || item.Title == "" {
			continue
		}
		picks = append(picks, Pick{
			TmdbID:      item.TmdbID,
			MediaType:   item.MediaType,
			Title:       item.Title,
			PosterPath:  item.PosterPath,
			VoteAverage: item.VoteAverage,
			Reason:      item.Reason,
			Confidence:  ConfidenceLow,
		})
	}

	return &Insights{
		Version:     PayloadVersion,
		Picks:       picks,
		Source:      SourceFallback,
		Notice:      notice,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) cached(ctx context.Context, user *sqlc.User) (*Insights, time.Time) {
	raw, updatedAt, err := s.cache.GetRaw(ctx, user.ID, recommend.CategoryAIPicks, user.Country)
	if err != nil {
		return nil, time.Time{}
	}

	var cached Insights
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Dropping unparseable cached insights")
		return nil, time.Time{}
	}
	if cached.Version != PayloadVersion || len(cached.Picks) == 0 {
		return nil, time.Time{}
	}
	return &cached, updatedAt
}

// QuotaStatus reports the user's AI access state.
func (s *Service) QuotaStatus(ctx context.Context, userID int64) (*quota.Status, error) {
	return s.quota.Status(ctx, userID)
}

func quotaNotice(err error) string {
	if errors.Is(err, quota.ErrAccessDisabled) {
		return "AI suggestions are disabled for this account"
	}
	return "AI suggestion limit reached, showing previous results"
}

// strategyActions sanitizes the model's subscription advice: the verb
// is normalized onto the closed action set and entries without a
// recognizable action or service are dropped.
func strategyActions(raw []rawAction) []StrategyAction {
	var actions []StrategyAction
	for _, entry := range raw {
		action := normalizeAction(entry.Action)
		service := strings.TrimSpace(entry.ServiceName)
		if action == "" || service == "" {
			continue
		}
		saving := entry.MonthlySaving
		if saving < 0 {
			saving = 0
		}
		actions = append(actions, StrategyAction{
			Action:        action,
			ServiceName:   service,
			MonthlySaving: saving,
			Currency:      strings.ToUpper(strings.TrimSpace(entry.Currency)),
			Reason:        cleanReason(entry.Reason),
		})
	}
	return actions
}
