package repository

import (
	"context"
	"database/sql"
	"errors"

	"talent-match/internal/database"
	"talent-match/internal/domain/job"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (job.Job, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

func (r *PostgresJobRepository) FindByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	if id == uuid.Nil {
		return job.Job{}, ErrNotFound
	}

	row := r.db.QueryRow(ctx,
		`SELECT id, title, COALESCE(company, ''), COALESCE(location, ''),
		        COALESCE(description, ''), COALESCE(skills, '{}'),
		        COALESCE(job_type, ''), featured, created_at
		 FROM jobs
		 WHERE id = $1`,
		id,
	)

	var j job.Job
	if err := row.Scan(
		&j.ID, &j.Title, &j.Company, &j.Location,
		&j.Description, &j.Skills, &j.JobType, &j.Featured, &j.CreatedAt,
	); err != nil {
		if isNoRows(err) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, err
	}
	return j, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}
