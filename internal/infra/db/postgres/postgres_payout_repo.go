package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
)

var _ repository.PayoutRepository = (*PayoutRepo)(nil)

type PayoutRepo struct {
	pool *pgxpool.Pool
}

func NewPayoutRepo(pool *pgxpool.Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

func (r *PayoutRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payout) error {
	const q = `
INSERT INTO payouts (id, job_id, user_id, amount_tokens, rank, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, p.ID, p.JobID, p.UserID, p.AmountTokens, p.Rank, string(p.Status), p.CreatedAt); err != nil {
		return fmt.Errorf("postgres save payout: %w", err)
	}
	return nil
}

func (r *PayoutRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Payout, error) {
	const q = `
SELECT id, job_id, user_id, amount_tokens, rank, status, created_at
  FROM payouts WHERE job_id=$1 ORDER BY rank ASC;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, jobID)
	if err != nil {
		return nil, fmt.Errorf("postgres list payouts: %w", err)
	}
	defer rows.Close()

	var out []*model.Payout
	for rows.Next() {
		var (
			p      model.Payout
			status string
		)
		if err := rows.Scan(&p.ID, &p.JobID, &p.UserID, &p.AmountTokens, &p.Rank, &status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres scan payout: %w", err)
		}
		p.Status = model.PayoutStatus(status)
		out = append(out, &p)
	}
	return out, rows.Err()
}
