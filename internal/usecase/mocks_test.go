package usecase

import (
	"context"
	"sync"
	"time"

	"talent-match/internal/domain/candidate"
	"talent-match/internal/domain/job"
	"talent-match/internal/domain/match"
	"talent-match/internal/notification"
	"talent-match/internal/repository"

	"github.com/google/uuid"
)

type mockJobRepo struct {
	jobs map[uuid.UUID]job.Job
	err  error
}

func (m *mockJobRepo) FindByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	if m.err != nil {
		return job.Job{}, m.err
	}
	j, ok := m.jobs[id]
	if !ok {
		return job.Job{}, repository.ErrNotFound
	}
	return j, nil
}

type mockCandidateRepo struct {
	pool   []candidate.Profile
	err    error
	filter repository.EligibilityFilter
}

func (m *mockCandidateRepo) ListEligible(_ context.Context, f repository.EligibilityFilter) ([]candidate.Profile, error) {
	m.filter = f
	if m.err != nil {
		return nil, m.err
	}
	return m.pool, nil
}

func (m *mockCandidateRepo) FindByUserIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]candidate.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[uuid.UUID]candidate.Profile, len(ids))
	for _, p := range m.pool {
		for _, id := range ids {
			if p.UserID == id {
				out[p.UserID] = p
			}
		}
	}
	return out, nil
}

type mockMatchRepo struct {
	mu       sync.Mutex
	upserts  map[string]repository.MatchUpsert
	calls    int
	pending  []match.Match
	sent     map[uuid.UUID]time.Time
	opened   map[uuid.UUID]bool
	clicked  map[uuid.UUID]bool
	sentIn1h int
	stats    match.Stats
	err      error
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{
		upserts: make(map[string]repository.MatchUpsert),
		sent:    make(map[uuid.UUID]time.Time),
		opened:  make(map[uuid.UUID]bool),
		clicked: make(map[uuid.UUID]bool),
	}
}

func upsertKey(jobID, userID uuid.UUID) string {
	return jobID.String() + "/" + userID.String()
}

func (m *mockMatchRepo) Upsert(_ context.Context, u repository.MatchUpsert) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.upserts[upsertKey(u.JobID, u.UserID)] = u
	return nil
}

func (m *mockMatchRepo) ListUnsentQualifying(_ context.Context, jobID uuid.UUID, floor float64) ([]match.Match, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]match.Match, 0)
	for _, p := range m.pending {
		if p.JobID == jobID && !p.Sent && p.Score >= floor {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) CountSentSince(_ context.Context, _ time.Time) (int, error) {
	return m.sentIn1h, nil
}

func (m *mockMatchRepo) MarkSent(_ context.Context, _, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sent[userID]; !ok {
		m.sent[userID] = at
	}
	return nil
}

func (m *mockMatchRepo) MarkOpened(_ context.Context, _, userID uuid.UUID, _ time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opened[userID] {
		return false, nil
	}
	m.opened[userID] = true
	return true, nil
}

func (m *mockMatchRepo) MarkClicked(_ context.Context, _, userID uuid.UUID, _ time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clicked[userID] {
		return false, nil
	}
	m.clicked[userID] = true
	return true, nil
}

func (m *mockMatchRepo) StatsByJob(_ context.Context, _ uuid.UUID, _ float64) (match.Stats, error) {
	if m.err != nil {
		return match.Stats{}, m.err
	}
	return m.stats, nil
}

type mockEmbedder struct {
	vec []float64
	err error
}

func (m *mockEmbedder) EmbedText(_ context.Context, _ string) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

type mockDeliverer struct {
	mu      sync.Mutex
	sent    []notification.Message
	failFor map[string]error
}

func newMockDeliverer() *mockDeliverer {
	return &mockDeliverer{failFor: make(map[string]error)}
}

func (m *mockDeliverer) Deliver(_ context.Context, msg notification.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[msg.To]; ok {
		return "", err
	}
	m.sent = append(m.sent, msg)
	return "dlv-" + msg.To, nil
}

type fakeLimiter struct {
	grant    int
	reserved int
	released int
}

func (f *fakeLimiter) Reserve(_ context.Context, n int) (int, error) {
	f.reserved = n
	if n < f.grant {
		return n, nil
	}
	return f.grant, nil
}

func (f *fakeLimiter) Release(_ context.Context, n int) error {
	f.released += n
	return nil
}
