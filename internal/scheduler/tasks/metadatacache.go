package tasks

import (
	"context"

	"github.com/streamwise/streamwise/internal/metadata"
	"github.com/streamwise/streamwise/internal/scheduler"
)

const MetadataCacheFlushTaskID = "metadata-cache-flush"

// RegisterMetadataCacheFlushTask registers a weekly flush of the
// in-memory metadata cache so provider catalog changes eventually
// propagate even for hot keys.
func RegisterMetadataCacheFlushTask(sched *scheduler.Scheduler, metadataService *metadata.Service) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:         MetadataCacheFlushTaskID,
		Name:       "Metadata Cache Flush",
		Cron:       "0 4 * * 1", // Every Monday at 4am
		RunOnStart: false,
		Func: func(ctx context.Context) error {
			metadataService.InvalidateCache()
			return nil
		},
	})
}
