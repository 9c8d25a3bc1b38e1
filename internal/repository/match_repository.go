package repository

import (
	"context"
	"time"

	"talent-match/internal/database"
	"talent-match/internal/domain/match"

	"github.com/google/uuid"
)

type MatchUpsert struct {
	JobID     uuid.UUID
	UserID    uuid.UUID
	Score     float64
	Reasons   []string
	MatchType string
}

type MatchRepository interface {
	// Upsert inserts or refreshes the row keyed by (job_id, user_id).
	// Score and reasons are overwritten; notification state is never touched.
	Upsert(ctx context.Context, m MatchUpsert) error
	ListUnsentQualifying(ctx context.Context, jobID uuid.UUID, floor float64) ([]match.Match, error)
	// CountSentSince reads the global trailing-window send count in a single
	// query so the dispatcher's budget check sees one consistent snapshot.
	CountSentSince(ctx context.Context, since time.Time) (int, error)
	MarkSent(ctx context.Context, jobID, userID uuid.UUID, at time.Time) error
	MarkOpened(ctx context.Context, jobID, userID uuid.UUID, at time.Time) (bool, error)
	MarkClicked(ctx context.Context, jobID, userID uuid.UUID, at time.Time) (bool, error)
	StatsByJob(ctx context.Context, jobID uuid.UUID, highThreshold float64) (match.Stats, error)
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

func (r *PostgresMatchRepository) Upsert(ctx context.Context, m MatchUpsert) error {
	if m.JobID == uuid.Nil || m.UserID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO matches (id, job_id, user_id, score, reasons, match_type, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		 ON CONFLICT (job_id, user_id) DO UPDATE SET
			score = EXCLUDED.score,
			reasons = EXCLUDED.reasons,
			match_type = EXCLUDED.match_type,
			updated_at = EXCLUDED.updated_at`,
		uuid.New(), m.JobID, m.UserID, m.Score, m.Reasons, m.MatchType, now,
	)
	return err
}

func (r *PostgresMatchRepository) ListUnsentQualifying(ctx context.Context, jobID uuid.UUID, floor float64) ([]match.Match, error) {
	rows, err := r.db.Query(ctx,
		`SELECT job_id, user_id, score, reasons, match_type,
		        sent, sent_at, opened, opened_at, clicked, clicked_at,
		        created_at, updated_at
		 FROM matches
		 WHERE job_id = $1
		   AND sent = false
		   AND score >= $2
		 ORDER BY score DESC, user_id ASC`,
		jobID, floor,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Match, 0)
	for rows.Next() {
		var m match.Match
		if err := rows.Scan(
			&m.JobID, &m.UserID, &m.Score, &m.Reasons, &m.MatchType,
			&m.Sent, &m.SentAt, &m.Opened, &m.OpenedAt, &m.Clicked, &m.ClickedAt,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMatchRepository) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM matches WHERE sent = true AND sent_at >= $1`,
		since,
	)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresMatchRepository) MarkSent(ctx context.Context, jobID, userID uuid.UUID, at time.Time) error {
	// Guarded on sent=false so the transition only ever moves forward.
	_, err := r.db.Exec(ctx,
		`UPDATE matches
		 SET sent = true, sent_at = $3, updated_at = $3
		 WHERE job_id = $1 AND user_id = $2 AND sent = false`,
		jobID, userID, at.UTC(),
	)
	return err
}

func (r *PostgresMatchRepository) MarkOpened(ctx context.Context, jobID, userID uuid.UUID, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE matches
		 SET opened = true, opened_at = $3, updated_at = $3
		 WHERE job_id = $1 AND user_id = $2 AND opened = false`,
		jobID, userID, at.UTC(),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresMatchRepository) MarkClicked(ctx context.Context, jobID, userID uuid.UUID, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE matches
		 SET clicked = true, clicked_at = $3, updated_at = $3
		 WHERE job_id = $1 AND user_id = $2 AND clicked = false`,
		jobID, userID, at.UTC(),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresMatchRepository) StatsByJob(ctx context.Context, jobID uuid.UUID, highThreshold float64) (match.Stats, error) {
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE score >= $2),
		        COUNT(*) FILTER (WHERE sent),
		        COUNT(*) FILTER (WHERE opened),
		        COUNT(*) FILTER (WHERE clicked),
		        COALESCE(AVG(score), 0),
		        COALESCE(MAX(score), 0)
		 FROM matches
		 WHERE job_id = $1`,
		jobID, highThreshold,
	)

	var s match.Stats
	if err := row.Scan(
		&s.TotalCandidates, &s.HighScoreMatches, &s.Notified,
		&s.Opened, &s.Clicked, &s.AverageScore, &s.TopScore,
	); err != nil {
		return match.Stats{}, err
	}
	return s, nil
}
