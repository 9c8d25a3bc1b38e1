package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestTrackOpen_Idempotent(t *testing.T) {
	matches := newMockMatchRepo()
	u := NewEngagementUsecase(matches, nil)
	jobID, userID := uuid.New(), uuid.New()

	if err := u.TrackOpen(context.Background(), jobID, userID); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := u.TrackOpen(context.Background(), jobID, userID); err != nil {
		t.Fatalf("second open must be a no-op, not an error: %v", err)
	}
	if !matches.opened[userID] {
		t.Fatalf("expected opened flag set")
	}
}

func TestTrackClick_IndependentOfOpen(t *testing.T) {
	matches := newMockMatchRepo()
	u := NewEngagementUsecase(matches, nil)
	jobID, userID := uuid.New(), uuid.New()

	if err := u.TrackClick(context.Background(), jobID, userID); err != nil {
		t.Fatalf("click: %v", err)
	}
	if !matches.clicked[userID] {
		t.Fatalf("expected clicked flag set")
	}
	if matches.opened[userID] {
		t.Fatalf("click must not imply opened; the flags are independent")
	}
}

func TestTrack_InvalidInput(t *testing.T) {
	u := NewEngagementUsecase(newMockMatchRepo(), nil)

	if err := u.TrackOpen(context.Background(), uuid.Nil, uuid.New()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := u.TrackClick(context.Background(), uuid.New(), uuid.Nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
