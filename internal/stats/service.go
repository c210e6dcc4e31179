package stats

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

const (
	// empireBaseline pads the public counter so the landing page never
	// shows an empty empire on a fresh deployment.
	empireBaseline = 425

	cacheKey = "launchpad:stats:empire"
	cacheTTL = 5 * time.Minute
)

// ProjectCounter counts persisted projects. Matches projects.Repo.
type ProjectCounter interface {
	Count(ctx context.Context) (int, error)
}

// JunkSweeper removes abandoned placeholder rows. Matches projects.Repo.
type JunkSweeper interface {
	DeleteByName(ctx context.Context, name string) (int64, error)
}

// junkNames are default titles that only exist when a build was abandoned
// before naming.
var junkNames = []string{"Synthesis in Progress", "Untitled Prototype"}

// Service maintains the public "apps built" counter. Reads hit Redis; the
// cron refresher repopulates it from Postgres.
type Service struct {
	counter ProjectCounter
	sweeper JunkSweeper
	rdb     *redis.Client
}

func NewService(counter ProjectCounter, sweeper JunkSweeper, rdb *redis.Client) *Service {
	return &Service{counter: counter, sweeper: sweeper, rdb: rdb}
}

// EmpireCount returns the padded project count, preferring the cache.
func (s *Service) EmpireCount(ctx context.Context) (int, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			if n, convErr := strconv.Atoi(raw); convErr == nil {
				return n, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).WithError(err).Warn("stats cache unreadable, recomputing")
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the counter from the store and rewrites the cache.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	n, err := s.counter.Count(ctx)
	if err != nil {
		return 0, err
	}
	total := n + empireBaseline

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, cacheKey, strconv.Itoa(total), cacheTTL).Err(); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("failed to cache empire count")
		}
	}
	return total, nil
}

// CleanupJunk deletes rows still carrying a default title. Runs nightly.
func (s *Service) CleanupJunk(ctx context.Context) (int64, error) {
	var removed int64
	for _, name := range junkNames {
		n, err := s.sweeper.DeleteByName(ctx, name)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	if removed > 0 {
		logging.FromContext(ctx).WithField("removed", removed).Info("junk projects swept")
	}
	return removed, nil
}
