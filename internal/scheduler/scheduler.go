// Package scheduler runs periodic reconciliations for every profile that has
// a search configuration.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/models"
)

// ProfileSource lists the profiles eligible for scheduled runs.
type ProfileSource interface {
	ActiveProfileIDs(ctx context.Context) ([]string, error)
}

// Runner triggers a reconciliation for one profile.
type Runner interface {
	Run(ctx context.Context, profileID string) (*models.Report, error)
}

type Scheduler struct {
	cron     *cron.Cron
	profiles ProfileSource
	runner   Runner
	logger   *zap.Logger
	interval time.Duration
}

func New(profiles ProfileSource, runner Runner, logger *zap.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		profiles: profiles,
		runner:   runner,
		logger:   logger.Named("scheduler"),
		interval: interval,
	}
}

// Start registers the periodic job and starts the cron loop. A zero interval
// disables scheduling entirely; manual scrapes remain available.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduled scraping disabled")
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.runAll); err != nil {
		return fmt.Errorf("registering scrape schedule: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduled scraping enabled", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runAll() {
	ctx := context.Background()

	profileIDs, err := s.profiles.ActiveProfileIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list active profiles", zap.Error(err))
		return
	}

	for _, id := range profileIDs {
		report, err := s.runner.Run(ctx, id)
		if err != nil {
			s.logger.Error("scheduled scrape failed",
				zap.String("profile_id", id),
				zap.Error(err))
			continue
		}
		s.logger.Info("scheduled scrape complete",
			zap.String("profile_id", id),
			zap.Int("inserted", report.Inserted),
			zap.Int("backfilled", report.Backfilled))
	}
}
