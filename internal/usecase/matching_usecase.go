package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/domain/candidate"
	"talent-match/internal/domain/match"
	"talent-match/internal/domain/matching"
	"talent-match/internal/embedding"
	"talent-match/internal/repository"
	"talent-match/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RankedMatch struct {
	UserID    uuid.UUID `json:"user_id"`
	Score     float64   `json:"score"`
	Reasons   []string  `json:"reasons"`
	Qualified bool      `json:"qualified"`
}

type SkippedCandidate struct {
	UserID uuid.UUID `json:"user_id"`
	Reason string    `json:"reason"`
}

type MatchRunResult struct {
	JobID     uuid.UUID          `json:"job_id"`
	Matches   []RankedMatch      `json:"matches"`
	Persisted int                `json:"persisted"`
	Skipped   []SkippedCandidate `json:"skipped"`
	Stats     match.Stats        `json:"stats"`
}

type MatchingUsecase interface {
	RunMatching(ctx context.Context, jobID uuid.UUID) (MatchRunResult, error)
}

type Matching struct {
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	matches    repository.MatchRepository
	embedder   embedding.Provider
	cfg        config.MatchingConfig
	embedCfg   config.EmbeddingConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewMatchingUsecase(
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	matches repository.MatchRepository,
	embedder embedding.Provider,
	cfg config.MatchingConfig,
	embedCfg config.EmbeddingConfig,
	logger *zap.Logger,
) *Matching {
	return &Matching{
		jobs:       jobs,
		candidates: candidates,
		matches:    matches,
		embedder:   embedder,
		cfg:        cfg,
		embedCfg:   embedCfg,
		logger:     logger,
		now:        time.Now,
	}
}

// RunMatching scores every eligible candidate against the featured job,
// persists the qualifying matches and returns the full ranked pool. Re-runs
// over an unchanged pool are idempotent: the (job_id, user_id) upsert updates
// score and reasons in place and never duplicates rows.
func (u *Matching) RunMatching(ctx context.Context, jobID uuid.UUID) (MatchRunResult, error) {
	if jobID == uuid.Nil {
		return MatchRunResult{}, ErrInvalidInput
	}

	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MatchRunResult{}, ErrJobNotFound
		}
		return MatchRunResult{}, fmt.Errorf("%w: find job: %v", ErrInternal, err)
	}
	if !j.Featured {
		return MatchRunResult{}, ErrJobNotEligible
	}

	embedCtx := ctx
	if u.embedCfg.Timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, u.embedCfg.Timeout)
		defer cancel()
	}
	jobVec, err := u.embedder.EmbedText(embedCtx, j.EmbeddingText())
	if err != nil {
		return MatchRunResult{}, fmt.Errorf("%w: embed job: %v", ErrInternal, err)
	}

	now := u.now().UTC()
	pool, err := u.candidates.ListEligible(ctx, repository.EligibilityFilter{
		ActiveSince:   now.Add(-u.cfg.ActivityWindow),
		EmbeddedSince: now.Add(-u.cfg.EmbeddingMaxAge),
	})
	if err != nil {
		return MatchRunResult{}, fmt.Errorf("%w: list candidates: %v", ErrInternal, err)
	}

	result := MatchRunResult{
		JobID:   jobID,
		Matches: make([]RankedMatch, 0, len(pool)),
		Skipped: make([]SkippedCandidate, 0),
	}

	for _, p := range pool {
		// One malformed profile never aborts the run.
		if err := p.Validate(); err != nil {
			u.skip(&result, p, err)
			continue
		}
		score, err := matching.Score(jobVec, p.Embedding)
		if err != nil {
			u.skip(&result, p, err)
			continue
		}

		result.Matches = append(result.Matches, RankedMatch{
			UserID:    p.UserID,
			Score:     score,
			Reasons:   matching.Reasons(j, p, score),
			Qualified: score >= u.cfg.QualificationFloor,
		})
	}

	sort.Slice(result.Matches, func(a, b int) bool {
		if result.Matches[a].Score != result.Matches[b].Score {
			return result.Matches[a].Score > result.Matches[b].Score
		}
		return bytes.Compare(result.Matches[a].UserID[:], result.Matches[b].UserID[:]) < 0
	})

	for _, rm := range result.Matches {
		if !rm.Qualified {
			continue
		}
		err := u.matches.Upsert(ctx, repository.MatchUpsert{
			JobID:     jobID,
			UserID:    rm.UserID,
			Score:     rm.Score,
			Reasons:   rm.Reasons,
			MatchType: match.MatchTypeAIPipeline,
		})
		if err != nil {
			return result, fmt.Errorf("%w: upsert match: %v", ErrInternal, err)
		}
		result.Persisted++
	}

	result.Stats = u.runStats(result.Matches, len(pool))

	if u.logger != nil {
		u.logger.Info("matching run completed",
			zap.String("job_id", jobID.String()),
			zap.Int("pool", len(pool)),
			zap.Int("persisted", result.Persisted),
			zap.Int("skipped", len(result.Skipped)),
			zap.Float64("top_score", result.Stats.TopScore),
		)
	}
	ws.NotifyMatchRunCompleted(jobID, result.Persisted, result.Stats.TopScore)

	return result, nil
}

func (u *Matching) skip(result *MatchRunResult, p candidate.Profile, err error) {
	result.Skipped = append(result.Skipped, SkippedCandidate{UserID: p.UserID, Reason: err.Error()})
	if u.logger != nil {
		u.logger.Warn("candidate skipped",
			zap.String("user_id", p.UserID.String()),
			zap.Error(err),
		)
	}
}

// runStats aggregates over the whole scored pool, not just the qualifiers.
func (u *Matching) runStats(ranked []RankedMatch, poolSize int) match.Stats {
	s := match.Stats{TotalCandidates: poolSize}
	if len(ranked) == 0 {
		return s
	}

	var sum float64
	for _, rm := range ranked {
		sum += rm.Score
		if rm.Score >= u.cfg.HighScoreThreshold {
			s.HighScoreMatches++
		}
		if rm.Score > s.TopScore {
			s.TopScore = rm.Score
		}
	}
	s.AverageScore = sum / float64(len(ranked))
	return s
}
