package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls pruning of old runs.
type RetentionConfig struct {
	// RetentionDays is how long runs are kept. 0 keeps them forever.
	RetentionDays int

	// Schedule is a standard cron expression, e.g. "0 3 * * *".
	// Empty disables scheduled pruning.
	Schedule string
}

// Scheduler prunes a store on a cron schedule.
type Scheduler struct {
	store   Store
	config  RetentionConfig
	cron    *cron.Cron
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a retention scheduler for store.
func NewScheduler(store Store, config RetentionConfig) *Scheduler {
	return &Scheduler{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "history.retention"),
		now:    time.Now,
	}
}

// Prune deletes runs older than the retention period once.
func (s *Scheduler) Prune(ctx context.Context) (int64, error) {
	if s.config.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	deleted, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return deleted, nil
}

// Start schedules pruning until ctx is cancelled or Stop is called. It is a
// no-op when no schedule is configured.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("retention schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}
	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}
	if _, err := s.cron.AddFunc(s.config.Schedule, func() { s.runPruning(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("retention scheduler started",
		"schedule", s.config.Schedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) runPruning(ctx context.Context) {
	deleted, err := s.Prune(ctx)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return
	}
	s.logger.Info("scheduled pruning completed", "deleted_count", deleted)
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}

// IsRunning reports whether the scheduler has been started.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled prune, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
