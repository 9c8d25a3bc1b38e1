package repository

import (
	"context"
	"time"

	"talent-match/internal/database"
	"talent-match/internal/domain/candidate"

	"github.com/google/uuid"
)

// EligibilityFilter bounds the candidate pool considered by a matching run.
// Both cutoffs are computed by the caller from the configured windows so the
// query stays a pure comparison.
type EligibilityFilter struct {
	ActiveSince   time.Time
	EmbeddedSince time.Time
	Limit         int
}

type CandidateRepository interface {
	ListEligible(ctx context.Context, f EligibilityFilter) ([]candidate.Profile, error)
	FindByUserIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]candidate.Profile, error)
}

type PostgresCandidateRepository struct {
	db database.DB
}

func NewPostgresCandidateRepository(db database.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

func (r *PostgresCandidateRepository) ListEligible(ctx context.Context, f EligibilityFilter) ([]candidate.Profile, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 10000
	}

	rows, err := r.db.Query(ctx,
		`SELECT p.user_id, u.email, COALESCE(u.full_name, ''),
		        p.embedding, COALESCE(p.skills, '{}'), COALESCE(p.job_titles, '{}'),
		        COALESCE(p.industries, '{}'), COALESCE(p.location, ''),
		        p.notify_opt_in, p.last_active_at, p.embedded_at
		 FROM candidate_profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE u.deleted_at IS NULL
		   AND u.is_active = true
		   AND p.notify_opt_in = true
		   AND p.last_active_at >= $1
		   AND p.embedded_at >= $2
		 ORDER BY p.user_id ASC
		 LIMIT $3`,
		f.ActiveSince, f.EmbeddedSince, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]candidate.Profile, 0)
	for rows.Next() {
		var p candidate.Profile
		if err := rows.Scan(
			&p.UserID, &p.Email, &p.FullName,
			&p.Embedding, &p.Skills, &p.JobTitles,
			&p.Industries, &p.Location,
			&p.NotifyOptIn, &p.LastActiveAt, &p.EmbeddedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCandidateRepository) FindByUserIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]candidate.Profile, error) {
	out := make(map[uuid.UUID]candidate.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT p.user_id, u.email, COALESCE(u.full_name, ''),
		        p.embedding, COALESCE(p.skills, '{}'), COALESCE(p.job_titles, '{}'),
		        COALESCE(p.industries, '{}'), COALESCE(p.location, ''),
		        p.notify_opt_in, p.last_active_at, p.embedded_at
		 FROM candidate_profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p candidate.Profile
		if err := rows.Scan(
			&p.UserID, &p.Email, &p.FullName,
			&p.Embedding, &p.Skills, &p.JobTitles,
			&p.Industries, &p.Location,
			&p.NotifyOptIn, &p.LastActiveAt, &p.EmbeddedAt,
		); err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
