package model

import (
	"time"

	"promptmarket/internal/domain"

	"github.com/google/uuid"
)

type EscrowStatus string

const (
	EscrowStatusLocked   EscrowStatus = "LOCKED"
	EscrowStatusReleased EscrowStatus = "RELEASED"
)

// Escrow holds a job's reward tokens. Exactly one escrow exists per job and
// its LOCKED -> RELEASED transition happens at most once, never in reverse.
type Escrow struct {
	ID           string
	JobID        string
	AmountTokens int64
	Status       EscrowStatus
	ReleasedAt   *time.Time
	CreatedAt    time.Time
}

// NewEscrow locks the job's full reward.
func NewEscrow(id string, job *Job) (*Escrow, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if job.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Escrow{
		ID:           id,
		JobID:        job.ID,
		AmountTokens: job.RewardTokens,
		Status:       EscrowStatusLocked,
		CreatedAt:    time.Now(),
	}, nil
}

// Release marks the escrow RELEASED with the given timestamp. Releasing an
// already released escrow is an illegal transition.
func (e *Escrow) Release(at time.Time) error {
	if e.Status != EscrowStatusLocked {
		return domain.ErrInvalidTransition
	}
	e.Status = EscrowStatusReleased
	e.ReleasedAt = &at
	return nil
}
