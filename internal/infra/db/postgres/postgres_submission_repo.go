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

var _ repository.SubmissionRepository = (*SubmissionRepo)(nil)

type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

const submissionColumns = `id, job_id, worker_id, content, latency_ms, quality_score, speed_score, final_score, status, created_at, updated_at`

func (r *SubmissionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Submission) error {
	const q = `
INSERT INTO submissions (id, job_id, worker_id, content, latency_ms, quality_score, speed_score, final_score, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, s.ID, s.JobID, s.WorkerID, s.Content, s.LatencyMs, s.QualityScore, s.SpeedScore, s.FinalScore, string(s.Status), s.CreatedAt, s.UpdatedAt); err != nil {
		return fmt.Errorf("postgres save submission: %w", err)
	}
	return nil
}

// FindByJobAndID is deliberately scoped: a submission living under another
// job is reported as not found rather than leaked.
func (r *SubmissionRepo) FindByJobAndID(ctx context.Context, tx repository.Tx, jobID, id string) (*model.Submission, error) {
	q := `SELECT ` + submissionColumns + ` FROM submissions WHERE id=$1 AND job_id=$2;`
	return scanSubmission(pickRow(ctx, r.pool, tx, q, id, jobID))
}

func (r *SubmissionRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Submission, error) {
	q := `SELECT ` + submissionColumns + ` FROM submissions WHERE job_id=$1 ORDER BY created_at ASC;`
	return r.list(ctx, tx, q, jobID)
}

// ListScoredByJob ranks by final score descending with creation order as the
// deterministic tie-break.
func (r *SubmissionRepo) ListScoredByJob(ctx context.Context, tx repository.Tx, jobID string, limit int) ([]*model.Submission, error) {
	q := `SELECT ` + submissionColumns + `
  FROM submissions
 WHERE job_id=$1 AND status=$2
 ORDER BY final_score DESC, created_at ASC
 LIMIT $3;`
	return r.list(ctx, tx, q, jobID, string(model.SubmissionStatusScored), limit)
}

func (r *SubmissionRepo) UpdateScore(ctx context.Context, tx repository.Tx, s *model.Submission) error {
	const q = `
UPDATE submissions
   SET quality_score=$2, speed_score=$3, final_score=$4, status=$5, updated_at=$6
 WHERE id=$1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, s.ID, s.QualityScore, s.SpeedScore, s.FinalScore, string(s.Status), s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres update submission score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SubmissionStatus) error {
	const q = `UPDATE submissions SET status=$2, updated_at=NOW() WHERE id=$1;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("postgres update submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Submission, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres list submissions: %w", err)
	}
	defer rows.Close()

	var out []*model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var (
		s      model.Submission
		status string
	)
	if err := row.Scan(&s.ID, &s.JobID, &s.WorkerID, &s.Content, &s.LatencyMs, &s.QualityScore, &s.SpeedScore, &s.FinalScore, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("postgres scan submission: %w", err)
	}
	s.Status = model.SubmissionStatus(status)
	return &s, nil
}
