package repository

import (
	"context"

	"promptmarket/internal/domain/model"
)

// AuditLogRepository is append-only. Entries are written inside the same
// transaction as the mutation they describe, so a rolled-back operation
// leaves no trace.
type AuditLogRepository interface {
	Append(ctx context.Context, tx Tx, entry *model.AuditLog) error
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.AuditLog, error)
}
