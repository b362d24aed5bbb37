package repository

import (
	"context"

	"promptmarket/internal/domain/model"
)

type UserRepository interface {
	// GetOrCreateByHandle resolves a handle to a user, creating one on first
	// reference. The operation is idempotent; concurrent first-time handles
	// are resolved by the storage layer's uniqueness constraint.
	GetOrCreateByHandle(ctx context.Context, tx Tx, handle string) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
}
