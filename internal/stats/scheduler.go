package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

// Scheduler drives the periodic stats refresh and the nightly junk sweep.
type Scheduler struct {
	service *Service
	refresh time.Duration
	c       *cron.Cron
}

func NewScheduler(service *Service, refresh time.Duration) *Scheduler {
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return &Scheduler{service: service, refresh: refresh}
}

// Start initializes cron tasks
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.refresh), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.service.Refresh(ctx); err != nil {
			logging.L().WithError(err).Warn("stats refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule stats refresh: %w", err)
	}

	// (12:00 AM)
	if _, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.service.CleanupJunk(ctx); err != nil {
			logging.L().WithError(err).Warn("nightly junk sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule junk sweep: %w", err)
	}

	s.c = c
	c.Start()
	logging.L().WithField("refresh", s.refresh.String()).Info("stats scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	if s.c != nil {
		<-s.c.Stop().Done()
	}
}
