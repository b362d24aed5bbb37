package repository

import (
	"context"

	"promptmarket/internal/domain/model"
)

type JobRepository interface {
	Save(ctx context.Context, tx Tx, j *model.Job) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)
	// FindByIDForUpdate locks the job row for the remainder of the
	// transaction; it is the settlement critical section's entry point and
	// requires a real tx handle.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.Job, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.JobStatus) error
}
