package model

import (
	"time"

	"promptmarket/internal/domain"

	"github.com/google/uuid"
)

// Audit action tags. One entry is appended per mutating operation, inside the
// same transaction as the mutation itself.
const (
	AuditJobCreated        = "JOB_CREATED"
	AuditSubmissionCreated = "SUBMISSION_CREATED"
	AuditSubmissionScored  = "SUBMISSION_SCORED"
	AuditJobSettled        = "JOB_SETTLED"
)

// AuditLog is an append-only record of a mutating action on a job. Entries
// are never updated or deleted.
type AuditLog struct {
	ID        string
	JobID     string
	ActorID   *string
	Action    string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

func NewAuditLog(jobID string, actorID *string, action string, metadata map[string]interface{}) (*AuditLog, error) {
	if jobID == "" || action == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &AuditLog{
		ID:        uuid.NewString(),
		JobID:     jobID,
		ActorID:   actorID,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}, nil
}
