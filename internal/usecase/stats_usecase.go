package usecase

import (
	"context"
	"fmt"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/domain/match"
	"talent-match/internal/infrastructure/cache"
	"talent-match/internal/repository"

	"github.com/google/uuid"
)

type StatsUsecase interface {
	GetStats(ctx context.Context, jobID uuid.UUID) (match.Stats, error)
}

type Stats struct {
	matches repository.MatchRepository
	cache   *cache.Redis
	cfg     config.MatchingConfig
}

func NewStatsUsecase(matches repository.MatchRepository, c *cache.Redis, cfg config.MatchingConfig) *Stats {
	return &Stats{matches: matches, cache: c, cfg: cfg}
}

// GetStats aggregates the persisted Match rows for one job. A job with no
// rows yields a zero-valued Stats, never an error.
func (u *Stats) GetStats(ctx context.Context, jobID uuid.UUID) (match.Stats, error) {
	if jobID == uuid.Nil {
		return match.Stats{}, ErrInvalidInput
	}

	key := "matchstats:" + jobID.String()
	var cached match.Stats
	if ok, _ := u.cache.GetJSON(ctx, key, &cached); ok {
		return cached, nil
	}

	s, err := u.matches.StatsByJob(ctx, jobID, u.cfg.HighScoreThreshold)
	if err != nil {
		return match.Stats{}, fmt.Errorf("%w: stats by job: %v", ErrInternal, err)
	}

	_ = u.cache.SetJSON(ctx, key, s, time.Minute)
	return s, nil
}
