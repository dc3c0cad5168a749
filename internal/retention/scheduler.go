// package retention deletes usage records older than the retention window
// on a cron schedule. stores without a Pruner (redis) age out by TTL.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/finpal/server/internal/aiusage"
	"codeberg.org/finpal/server/internal/logger"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// standard 5-field cron expression; empty disables pruning
	Schedule string

	// number of past days to keep, today excluded. zero disables pruning.
	RetentionDays int

	// zone the schedule and calendar days are evaluated in
	Location *time.Location
}

// runs the pruner on a cron schedule
type Scheduler struct {
	pruner  aiusage.Pruner
	config  Config
	cron    *cron.Cron
	now     func() time.Time
	mu      sync.Mutex
	running bool
}

func NewScheduler(pruner aiusage.Pruner, config Config) *Scheduler {
	if config.Location == nil {
		config.Location = time.UTC
	}

	return &Scheduler{
		pruner: pruner,
		config: config,
		cron:   cron.New(cron.WithLocation(config.Location)),
		now:    time.Now,
	}
}

// returns the first calendar day that is kept
func (s *Scheduler) Cutoff() time.Time {
	today := aiusage.CalendarDay(s.now(), s.config.Location)
	return today.AddDate(0, 0, -s.config.RetentionDays)
}

// deletes every record for a day before the cutoff
func (s *Scheduler) Prune(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()

	deleted, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage before %s: %w", cutoff.Format(time.DateOnly), err)
	}

	return deleted, nil
}

// schedules pruning until ctx is done. a missing schedule or retention is not an error.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" || s.config.RetentionDays <= 0 {
		logger.Info("usage retention disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	logger.Info("usage retention scheduler started",
		"schedule", s.config.Schedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	deleted, err := s.Prune(ctx)
	if err != nil {
		logger.ErrorErr(err, "scheduled usage pruning failed")
		return
	}

	logger.Info("scheduled usage pruning completed", "deleted", deleted)
}

// stops the scheduler and waits for a running prune to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false

	logger.Info("usage retention scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// returns the next scheduled run, or nil when not scheduled
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
