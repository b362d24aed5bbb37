package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promptmarket/internal/domain"
	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

const jobColumns = `id, requester_id, title, prompt, reward_tokens, deadline_at, status, created_at, updated_at`

func (r *JobRepo) Save(ctx context.Context, tx repository.Tx, j *model.Job) error {
	const q = `
INSERT INTO jobs (id, requester_id, title, prompt, reward_tokens, deadline_at, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  title=$3, prompt=$4, reward_tokens=$5, deadline_at=$6, status=$7, updated_at=$9;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, j.ID, j.RequesterID, j.Title, j.Prompt, j.RewardTokens, j.DeadlineAt, string(j.Status), j.CreatedAt, j.UpdatedAt); err != nil {
		return fmt.Errorf("postgres save job: %w", err)
	}
	return nil
}

func (r *JobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1;`
	return r.scanJob(pickRow(ctx, r.pool, tx, q, id))
}

// FindByIDForUpdate takes the settlement row lock. Settlement always runs in
// a transaction, so the tx handle must resolve to one.
func (r *JobRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	if _, ok := tx.(pgx.Tx); !ok {
		return nil, domain.ErrInvalidExecContext
	}
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1 FOR UPDATE;`
	return r.scanJob(pickRow(ctx, r.pool, tx, q, id))
}

func (r *JobRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus) error {
	const q = `UPDATE jobs SET status=$2, updated_at=NOW() WHERE id=$1;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("postgres update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *JobRepo) scanJob(row pgx.Row) (*model.Job, error) {
	var (
		j      model.Job
		status string
	)
	if err := row.Scan(&j.ID, &j.RequesterID, &j.Title, &j.Prompt, &j.RewardTokens, &j.DeadlineAt, &status, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("postgres scan job: %w", err)
	}
	j.Status = model.JobStatus(status)
	return &j, nil
}
