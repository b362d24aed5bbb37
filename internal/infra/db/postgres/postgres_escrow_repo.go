package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promptmarket/internal/domain"
	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
)

var _ repository.EscrowRepository = (*EscrowRepo)(nil)

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

const escrowColumns = `id, job_id, amount_tokens, status, released_at, created_at`

func (r *EscrowRepo) Save(ctx context.Context, tx repository.Tx, e *model.Escrow) error {
	const q = `
INSERT INTO escrows (id, job_id, amount_tokens, status, released_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, e.ID, e.JobID, e.AmountTokens, string(e.Status), e.ReleasedAt, e.CreatedAt); err != nil {
		return fmt.Errorf("postgres save escrow: %w", err)
	}
	return nil
}

func (r *EscrowRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.Escrow, error) {
	q := `SELECT ` + escrowColumns + ` FROM escrows WHERE job_id=$1;`
	return r.scanEscrow(pickRow(ctx, r.pool, tx, q, jobID))
}

func (r *EscrowRepo) FindByJobIDForUpdate(ctx context.Context, tx repository.Tx, jobID string) (*model.Escrow, error) {
	if _, ok := tx.(pgx.Tx); !ok {
		return nil, domain.ErrInvalidExecContext
	}
	q := `SELECT ` + escrowColumns + ` FROM escrows WHERE job_id=$1 FOR UPDATE;`
	return r.scanEscrow(pickRow(ctx, r.pool, tx, q, jobID))
}

// MarkReleased flips LOCKED -> RELEASED. The status predicate makes a lost
// race visible as zero affected rows instead of a silent second release.
func (r *EscrowRepo) MarkReleased(ctx context.Context, tx repository.Tx, id string, releasedAt time.Time) error {
	const q = `UPDATE escrows SET status=$2, released_at=$3 WHERE id=$1 AND status=$4;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, id, string(model.EscrowStatusReleased), releasedAt, string(model.EscrowStatusLocked))
	if err != nil {
		return fmt.Errorf("postgres release escrow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadySettled
	}
	return nil
}

func (r *EscrowRepo) scanEscrow(row pgx.Row) (*model.Escrow, error) {
	var (
		e      model.Escrow
		status string
	)
	if err := row.Scan(&e.ID, &e.JobID, &e.AmountTokens, &status, &e.ReleasedAt, &e.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrEscrowNotFound
		}
		return nil, fmt.Errorf("postgres scan escrow: %w", err)
	}
	e.Status = model.EscrowStatus(status)
	return &e, nil
}
