package repository

import (
	"context"

	"promptmarket/internal/domain/model"
)

type SubmissionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Submission) error
	// FindByJobAndID loads a submission scoped to the given job. A submission
	// that exists under a different job is reported as not found.
	FindByJobAndID(ctx context.Context, tx Tx, jobID, id string) (*model.Submission, error)
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.Submission, error)
	// ListScoredByJob returns SCORED submissions ranked by final score
	// descending, earliest creation first on ties, capped at limit.
	ListScoredByJob(ctx context.Context, tx Tx, jobID string, limit int) ([]*model.Submission, error)
	UpdateScore(ctx context.Context, tx Tx, s *model.Submission) error
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.SubmissionStatus) error
}
