// Package scheduler runs the recurring maintenance jobs, cache warming
// and metadata cache flushes, on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// defaultTimeout bounds a single task run. Background jobs open their
// own context, so a hung upstream cannot wedge the scheduler forever.
const defaultTimeout = 15 * time.Minute

// TaskFunc is the function signature for scheduled tasks.
type TaskFunc func(ctx context.Context) error

// TaskConfig describes one recurring job.
type TaskConfig struct {
	ID         string
	Name       string
	Cron       string // standard five-field cron expression
	Timeout    time.Duration
	Func       TaskFunc
	RunOnStart bool
}

type task struct {
	config  TaskConfig
	job     gocron.Job
	running bool
}

// Scheduler manages the background job set.
type Scheduler struct {
	gocron gocron.Scheduler
	logger zerolog.Logger
	tasks  map[string]*task
	mu     sync.Mutex
}

// New creates a scheduler. Nothing runs until Start.
func New(logger zerolog.Logger) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}

	return &Scheduler{
		gocron: gs,
		logger: logger.With().Str("component", "scheduler").Logger(),
		tasks:  make(map[string]*task),
	}, nil
}

// RegisterTask adds a job to the schedule. Task IDs must be unique.
func (s *Scheduler) RegisterTask(config TaskConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[config.ID]; exists {
		return fmt.Errorf("task %q already registered", config.ID)
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(config.Cron, false),
		gocron.NewTask(func() { s.run(config.ID) }),
		gocron.WithName(config.Name),
		gocron.WithTags(config.ID),
	)
	if err != nil {
		return fmt.Errorf("schedule task %q: %w", config.ID, err)
	}

	s.tasks[config.ID] = &task{config: config, job: job}

	s.logger.Info().
		Str("id", config.ID).
		Str("cron", config.Cron).
		Bool("runOnStart", config.RunOnStart).
		Msg("Registered task")
	return nil
}

// run executes one task with a bounded context. An invocation that
// fires while the previous run is still going is skipped; every job
// here is idempotent, so the next scheduled run covers it.
func (s *Scheduler) run(taskID string) {
	s.mu.Lock()
	entry, exists := s.tasks[taskID]
	if !exists || entry.running {
		s.mu.Unlock()
		if exists {
			s.logger.Warn().Str("id", taskID).Msg("Task still running, skipping this cycle")
		}
		return
	}
	entry.running = true
	s.mu.Unlock()

	timeout := entry.config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Str("id", taskID).Msg("Starting task")

	err := entry.config.Func(ctx)

	s.mu.Lock()
	entry.running = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("id", taskID).
			Dur("duration", time.Since(start)).
			Msg("Task failed")
		return
	}
	s.logger.Info().
		Str("id", taskID).
		Dur("duration", time.Since(start)).
		Msg("Task completed")
}

// Start begins cron dispatch and kicks off any RunOnStart tasks.
func (s *Scheduler) Start() error {
	s.logger.Info().Msg("Starting scheduler")
	s.gocron.Start()

	s.mu.Lock()
	var startupIDs []string
	for id, entry := range s.tasks {
		if entry.config.RunOnStart {
			startupIDs = append(startupIDs, id)
		}
	}
	s.mu.Unlock()

	for _, id := range startupIDs {
		go s.run(id)
	}
	return nil
}

// Stop shuts the scheduler down, waiting for in-flight jobs.
func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("Stopping scheduler")
	return s.gocron.Shutdown()
}
