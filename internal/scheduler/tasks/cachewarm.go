package tasks

import (
	"context"

	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/recommend"
	"github.com/streamwise/streamwise/internal/scheduler"
)

const CacheWarmTaskID = "recommendation-cache-warm"

// RegisterCacheWarmTask registers the nightly recommendation refresh.
// Warming every user's cache overnight keeps morning dashboard loads
// off the metadata API.
func RegisterCacheWarmTask(sched *scheduler.Scheduler, queries *sqlc.Queries, recommender *recommend.Service) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:         CacheWarmTaskID,
		Name:       "Recommendation Cache Warm",
		Cron:       "0 3 * * *", // Every day at 3am
		RunOnStart: false,
		Func: func(ctx context.Context) error {
			userIDs, err := queries.ListUserIDs(ctx)
			if err != nil {
				return err
			}

			// One failing user does not block the rest of the sweep.
			var lastErr error
			for _, userID := range userIDs {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := recommender.Refresh(ctx, userID); err != nil {
					lastErr = err
				}
			}
			return lastErr
		},
	})
}
