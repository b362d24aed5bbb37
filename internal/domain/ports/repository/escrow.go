package repository

import (
	"context"
	"time"

	"promptmarket/internal/domain/model"
)

type EscrowRepository interface {
	Save(ctx context.Context, tx Tx, e *model.Escrow) error
	FindByJobID(ctx context.Context, tx Tx, jobID string) (*model.Escrow, error)
	// FindByJobIDForUpdate locks the escrow row alongside its job during
	// settlement.
	FindByJobIDForUpdate(ctx context.Context, tx Tx, jobID string) (*model.Escrow, error)
	// MarkReleased flips LOCKED -> RELEASED, guarded by a status predicate so
	// a lost race surfaces as zero affected rows rather than a double release.
	MarkReleased(ctx context.Context, tx Tx, id string, releasedAt time.Time) error
}
