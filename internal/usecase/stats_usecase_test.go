package usecase

import (
	"context"
	"errors"
	"testing"

	"talent-match/internal/domain/match"

	"github.com/google/uuid"
)

func TestGetStats_ZeroRows(t *testing.T) {
	u := NewStatsUsecase(newMockMatchRepo(), nil, matchingCfg())

	s, err := u.GetStats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("zero rows must not error: %v", err)
	}
	if s != (match.Stats{}) {
		t.Fatalf("expected zero-valued stats, got %+v", s)
	}
}

func TestGetStats_PassesThrough(t *testing.T) {
	matches := newMockMatchRepo()
	matches.stats = match.Stats{
		TotalCandidates:  12,
		HighScoreMatches: 3,
		Notified:         5,
		AverageScore:     86.5,
		TopScore:         97.2,
	}
	u := NewStatsUsecase(matches, nil, matchingCfg())

	s, err := u.GetStats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s != matches.stats {
		t.Fatalf("expected stats passthrough, got %+v", s)
	}
}

func TestGetStats_InvalidInput(t *testing.T) {
	u := NewStatsUsecase(newMockMatchRepo(), nil, matchingCfg())

	if _, err := u.GetStats(context.Background(), uuid.Nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
