package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/domain/candidate"
	"talent-match/internal/domain/job"
	"talent-match/internal/domain/match"
	"talent-match/internal/notification"

	"github.com/google/uuid"
)

func dispatchCfg() config.DispatchConfig {
	return config.DispatchConfig{
		HourlyBudget: 100,
		BatchSize:    50,
		BatchDelay:   time.Second,
		Concurrency:  4,
	}
}

type dispatchFixture struct {
	jobID     uuid.UUID
	jobs      *mockJobRepo
	cands     *mockCandidateRepo
	matches   *mockMatchRepo
	deliverer *mockDeliverer
	limiter   *fakeLimiter
}

// newDispatchFixture seeds n unsent qualifying matches with descending
// scores and one candidate profile per match.
func newDispatchFixture(n int) *dispatchFixture {
	jobID := uuid.New()
	f := &dispatchFixture{
		jobID:     jobID,
		jobs:      &mockJobRepo{jobs: map[uuid.UUID]job.Job{jobID: {ID: jobID, Title: "Forklift Operator", Company: "Acme", Featured: true}}},
		cands:     &mockCandidateRepo{},
		matches:   newMockMatchRepo(),
		deliverer: newMockDeliverer(),
		limiter:   &fakeLimiter{grant: 1000},
	}
	for i := 0; i < n; i++ {
		uid := uuid.New()
		f.matches.pending = append(f.matches.pending, match.Match{
			JobID:  jobID,
			UserID: uid,
			Score:  float64(99 - i),
		})
		f.cands.pool = append(f.cands.pool, candidate.Profile{
			UserID:      uid,
			Email:       fmt.Sprintf("cand%02d@example.com", i),
			Embedding:   []float64{1},
			NotifyOptIn: true,
		})
	}
	return f
}

func (f *dispatchFixture) dispatcher(cfg config.DispatchConfig) *Dispatcher {
	return NewDispatcher(
		f.jobs, f.cands, f.matches, f.deliverer,
		notification.NewBuilder("https://app.example.com"),
		f.limiter, matchingCfg(), cfg, nil,
	)
}

func TestDispatch_JobNotFound(t *testing.T) {
	f := newDispatchFixture(0)
	d := f.dispatcher(dispatchCfg())

	_, err := d.Dispatch(context.Background(), uuid.New())
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestDispatch_NothingToSend(t *testing.T) {
	f := newDispatchFixture(0)
	d := f.dispatcher(dispatchCfg())

	res, err := d.Dispatch(context.Background(), f.jobID)
	if err != nil {
		t.Fatalf("nothing to do must succeed: %v", err)
	}
	if res.Sent != 0 || res.Attempted != 0 || len(res.Errors) != 0 {
		t.Fatalf("expected zero counts, got %+v", res)
	}
}

func TestDispatch_BudgetCapsSelection(t *testing.T) {
	f := newDispatchFixture(5)
	f.limiter.grant = 1 // 9 of 10 already consumed elsewhere
	d := f.dispatcher(dispatchCfg())

	res, err := d.Dispatch(context.Background(), f.jobID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Attempted != 1 || res.Sent != 1 {
		t.Fatalf("expected exactly 1 send, got %+v", res)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("deferred candidates must not be recorded as errors: %v", res.Errors)
	}
	if len(f.matches.sent) != 1 {
		t.Fatalf("expected 1 match marked sent, got %d", len(f.matches.sent))
	}
	// The single slot must go to the top-ranked candidate.
	top := f.matches.pending[0].UserID
	if _, ok := f.matches.sent[top]; !ok {
		t.Fatalf("highest-scoring candidate must be sent first")
	}
}

func TestDispatch_BudgetExhausted(t *testing.T) {
	f := newDispatchFixture(5)
	f.limiter.grant = 0
	d := f.dispatcher(dispatchCfg())

	res, err := d.Dispatch(context.Background(), f.jobID)
	if err != nil {
		t.Fatalf("budget exhaustion is not an error: %v", err)
	}
	if res.Sent != 0 || res.Attempted != 0 || len(res.Errors) != 0 {
		t.Fatalf("expected zero counts, got %+v", res)
	}
	if res.Eligible != 5 {
		t.Fatalf("eligible count must still report the selection size, got %d", res.Eligible)
	}
}

func TestDispatch_PartialFailureIsolation(t *testing.T) {
	f := newDispatchFixture(3)
	failing := f.cands.pool[1]
	f.deliverer.failFor[failing.Email] = errors.New("smtp timeout")
	d := f.dispatcher(dispatchCfg())

	res, err := d.Dispatch(context.Background(), f.jobID)
	if err != nil {
		t.Fatalf("a failed send must not fail the run: %v", err)
	}
	if res.Sent != 2 || res.Failed != 1 {
		t.Fatalf("expected 2 sent / 1 failed, got %+v", res)
	}
	if len(res.Errors) != 1 || res.Errors[0].UserID != failing.UserID {
		t.Fatalf("expected the failing candidate in the error list, got %v", res.Errors)
	}
	if res.Errors[0].Permanent {
		t.Fatalf("transient failure must not be flagged permanent")
	}
	if _, ok := f.matches.sent[failing.UserID]; ok {
		t.Fatalf("failed send must stay unsent for the next run")
	}
	if f.limiter.released != 1 {
		t.Fatalf("unused budget slot must be released, got %d", f.limiter.released)
	}
}

func TestDispatch_PermanentFailureFlagged(t *testing.T) {
	f := newDispatchFixture(1)
	f.deliverer.failFor[f.cands.pool[0].Email] = fmt.Errorf("%w: suppressed recipient", notification.ErrPermanent)
	d := f.dispatcher(dispatchCfg())

	res, err := d.Dispatch(context.Background(), f.jobID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Errors) != 1 || !res.Errors[0].Permanent {
		t.Fatalf("expected a permanent error record, got %v", res.Errors)
	}
}

func TestDispatch_MissingProfileIsPermanent(t *testing.T) {
	f := newDispatchFixture(1)
	f.cands.pool = nil
	d := f.dispatcher(dispatchCfg())

	res, err := d.Dispatch(context.Background(), f.jobID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Sent != 0 || len(res.Errors) != 1 || !res.Errors[0].Permanent {
		t.Fatalf("expected one permanent error, got %+v", res)
	}
}

func TestDispatch_BatchesJoinAndDelay(t *testing.T) {
	f := newDispatchFixture(5)
	cfg := dispatchCfg()
	cfg.BatchSize = 2
	d := f.dispatcher(cfg)

	var delays int
	d.sleep = func(_ context.Context, _ time.Duration) error {
		delays++
		return nil
	}

	res, err := d.Dispatch(context.Background(), f.jobID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Sent != 5 {
		t.Fatalf("expected all 5 sent, got %d", res.Sent)
	}
	// Three batches (2+2+1) means two inter-batch delays.
	if delays != 2 {
		t.Fatalf("expected 2 inter-batch delays, got %d", delays)
	}
}

func TestDispatch_MessageCarriesTrackingRefs(t *testing.T) {
	f := newDispatchFixture(1)
	d := f.dispatcher(dispatchCfg())

	if _, err := d.Dispatch(context.Background(), f.jobID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(f.deliverer.sent) != 1 {
		t.Fatalf("expected 1 delivered message, got %d", len(f.deliverer.sent))
	}
	msg := f.deliverer.sent[0]
	if msg.TrackingRefs["job_id"] != f.jobID.String() {
		t.Fatalf("tracking refs must carry the job id: %v", msg.TrackingRefs)
	}
	if msg.Subject == "" || msg.Body == "" {
		t.Fatalf("expected personalized subject and body")
	}
}
