package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/domain/candidate"
	"talent-match/internal/domain/job"
	"talent-match/internal/domain/match"
	"talent-match/internal/notification"
	"talent-match/internal/ratelimit"
	"talent-match/internal/repository"
	"talent-match/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SendError struct {
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
	Permanent bool      `json:"permanent"`
}

type DispatchResult struct {
	JobID     uuid.UUID   `json:"job_id"`
	Eligible  int         `json:"eligible"`
	Attempted int         `json:"attempted"`
	Sent      int         `json:"sent"`
	Failed    int         `json:"failed"`
	Errors    []SendError `json:"errors"`
}

type DispatchUsecase interface {
	Dispatch(ctx context.Context, jobID uuid.UUID) (DispatchResult, error)
}

type Dispatcher struct {
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	matches    repository.MatchRepository
	deliverer  notification.Deliverer
	builder    *notification.Builder
	limiter    ratelimit.Limiter
	matchCfg   config.MatchingConfig
	cfg        config.DispatchConfig
	logger     *zap.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	matches repository.MatchRepository,
	deliverer notification.Deliverer,
	builder *notification.Builder,
	limiter ratelimit.Limiter,
	matchCfg config.MatchingConfig,
	cfg config.DispatchConfig,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		jobs:       jobs,
		candidates: candidates,
		matches:    matches,
		deliverer:  deliverer,
		builder:    builder,
		limiter:    limiter,
		matchCfg:   matchCfg,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Dispatch notifies the highest-scoring unsent matches of a job, inside the
// global hourly send budget. Reserved slots that end up unused (failed sends)
// are handed back to the limiter. Running out of budget, or having nothing to
// send, is a normal zero-count result, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, jobID uuid.UUID) (DispatchResult, error) {
	if jobID == uuid.Nil {
		return DispatchResult{}, ErrInvalidInput
	}

	j, err := d.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DispatchResult{}, ErrJobNotFound
		}
		return DispatchResult{}, fmt.Errorf("%w: find job: %v", ErrInternal, err)
	}

	result := DispatchResult{JobID: jobID, Errors: make([]SendError, 0)}

	pending, err := d.matches.ListUnsentQualifying(ctx, jobID, d.matchCfg.QualificationFloor)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("%w: list unsent matches: %v", ErrInternal, err)
	}
	result.Eligible = len(pending)
	if len(pending) == 0 {
		return result, nil
	}

	granted, err := d.limiter.Reserve(ctx, len(pending))
	if err != nil {
		return DispatchResult{}, fmt.Errorf("%w: reserve budget: %v", ErrInternal, err)
	}
	if granted == 0 {
		// Budget exhausted: the whole selection stays eligible for a later run.
		if d.logger != nil {
			d.logger.Info("dispatch budget exhausted",
				zap.String("job_id", jobID.String()),
				zap.Int("eligible", len(pending)),
			)
		}
		return result, nil
	}
	// The list is score-descending, so truncation drops the lowest-ranked
	// candidates; they are simply deferred, never errored.
	pending = pending[:granted]
	result.Attempted = len(pending)

	userIDs := make([]uuid.UUID, 0, len(pending))
	for _, m := range pending {
		userIDs = append(userIDs, m.UserID)
	}
	profiles, err := d.candidates.FindByUserIDs(ctx, userIDs)
	if err != nil {
		d.release(ctx, granted)
		return DispatchResult{}, fmt.Errorf("%w: load profiles: %v", ErrInternal, err)
	}

	batchSize := d.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	var mu sync.Mutex
	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		g, gctx := errgroup.WithContext(ctx)
		if d.cfg.Concurrency > 0 {
			g.SetLimit(d.cfg.Concurrency)
		}
		for _, m := range batch {
			m := m
			g.Go(func() error {
				sendErr := d.sendOne(gctx, m, j, profiles)
				mu.Lock()
				if sendErr != nil {
					result.Failed++
					result.Errors = append(result.Errors, SendError{
						UserID:    m.UserID,
						Reason:    sendErr.Error(),
						Permanent: errors.Is(sendErr, notification.ErrPermanent),
					})
				} else {
					result.Sent++
				}
				mu.Unlock()
				// Failures are recorded, never propagated: one candidate must
				// not cancel the rest of the batch.
				return nil
			})
		}
		_ = g.Wait()

		if end < len(pending) {
			if err := d.sleep(ctx, d.cfg.BatchDelay); err != nil {
				break
			}
		}
	}

	if unused := granted - result.Sent; unused > 0 {
		d.release(ctx, unused)
	}

	if d.logger != nil {
		d.logger.Info("dispatch completed",
			zap.String("job_id", jobID.String()),
			zap.Int("eligible", result.Eligible),
			zap.Int("attempted", result.Attempted),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
		)
	}
	ws.NotifyDispatchCompleted(jobID, result.Sent, result.Failed)

	return result, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, m match.Match, j job.Job, profiles map[uuid.UUID]candidate.Profile) error {
	p, ok := profiles[m.UserID]
	if !ok {
		return fmt.Errorf("%w: candidate profile missing", notification.ErrPermanent)
	}

	msg := d.builder.Build(m, j, p)

	sendCtx := ctx
	if d.cfg.DeliverTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.cfg.DeliverTimeout)
		defer cancel()
	}

	deliveryID, err := d.deliverer.Deliver(sendCtx, msg)
	if err != nil {
		return err
	}

	if err := d.matches.MarkSent(ctx, m.JobID, m.UserID, d.now().UTC()); err != nil {
		// The message went out; surface the bookkeeping failure so the row
		// is retried rather than silently left inconsistent.
		return fmt.Errorf("mark sent after delivery %s: %v", deliveryID, err)
	}
	return nil
}

func (d *Dispatcher) release(ctx context.Context, n int) {
	if err := d.limiter.Release(ctx, n); err != nil && d.logger != nil {
		d.logger.Warn("release unused budget", zap.Int("slots", n), zap.Error(err))
	}
}
