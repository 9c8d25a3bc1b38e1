package usecase

import (
	"context"
	"fmt"
	"time"

	"talent-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EngagementUsecase records opened/clicked feedback from the delivery channel.
// Both transitions are idempotent and independent: a channel that only
// supports click tracking can set clicked without opened ever firing.
type EngagementUsecase interface {
	TrackOpen(ctx context.Context, jobID, userID uuid.UUID) error
	TrackClick(ctx context.Context, jobID, userID uuid.UUID) error
}

type Engagement struct {
	matches repository.MatchRepository
	logger  *zap.Logger
	now     func() time.Time
}

func NewEngagementUsecase(matches repository.MatchRepository, logger *zap.Logger) *Engagement {
	return &Engagement{matches: matches, logger: logger, now: time.Now}
}

func (u *Engagement) TrackOpen(ctx context.Context, jobID, userID uuid.UUID) error {
	if jobID == uuid.Nil || userID == uuid.Nil {
		return ErrInvalidInput
	}

	changed, err := u.matches.MarkOpened(ctx, jobID, userID, u.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: mark opened: %v", ErrInternal, err)
	}
	if changed && u.logger != nil {
		u.logger.Info("notification opened",
			zap.String("job_id", jobID.String()),
			zap.String("user_id", userID.String()),
		)
	}
	return nil
}

func (u *Engagement) TrackClick(ctx context.Context, jobID, userID uuid.UUID) error {
	if jobID == uuid.Nil || userID == uuid.Nil {
		return ErrInvalidInput
	}

	changed, err := u.matches.MarkClicked(ctx, jobID, userID, u.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: mark clicked: %v", ErrInternal, err)
	}
	if changed && u.logger != nil {
		u.logger.Info("notification clicked",
			zap.String("job_id", jobID.String()),
			zap.String("user_id", userID.String()),
		)
	}
	return nil
}
