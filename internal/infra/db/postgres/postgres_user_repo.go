package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/google/uuid"

	"promptmarket/internal/domain"
	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetOrCreateByHandle upserts against the unique handle index and returns the
// surviving row, so concurrent first-time handles resolve without a caller
// retry loop. The no-op DO UPDATE is what makes RETURNING yield the existing
// row on conflict.
func (r *UserRepo) GetOrCreateByHandle(ctx context.Context, tx repository.Tx, handle string) (*model.User, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || len(handle) > 64 {
		return nil, domain.ErrInvalidArgument
	}

	const q = `
INSERT INTO users (id, handle, created_at)
VALUES ($1,$2,$3)
ON CONFLICT (handle) DO UPDATE SET handle = EXCLUDED.handle
RETURNING id, handle, created_at;
`
	row := pickRow(ctx, r.pool, tx, q, uuid.NewString(), handle, time.Now())
	var u model.User
	if err := row.Scan(&u.ID, &u.Handle, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("postgres get-or-create user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT id, handle, created_at FROM users WHERE id=$1;`
	row := pickRow(ctx, r.pool, tx, q, id)
	var u model.User
	if err := row.Scan(&u.ID, &u.Handle, &u.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres find user: %w", err)
	}
	return &u, nil
}
