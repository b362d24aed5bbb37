package model

import (
	"strings"
	"time"

	"promptmarket/internal/domain"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusOpen      JobStatus = "OPEN"
	JobStatusCompleted JobStatus = "COMPLETED"
)

const (
	minTitleLen  = 3
	maxTitleLen  = 200
	maxPromptLen = 10000
)

// Job is a posted unit of work with a token reward held in escrow until
// settlement. A COMPLETED job is immutable.
type Job struct {
	ID           string
	RequesterID  string
	Title        string
	Prompt       string
	RewardTokens int64
	DeadlineAt   time.Time
	Status       JobStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewJob(id, requesterID, title, prompt string, rewardTokens int64, deadlineAt time.Time) (*Job, error) {
	if id == "" {
		id = uuid.NewString()
	}
	title = strings.TrimSpace(title)
	if requesterID == "" || len(title) < minTitleLen || len(title) > maxTitleLen {
		return nil, domain.ErrInvalidArgument
	}
	if prompt == "" || len(prompt) > maxPromptLen {
		return nil, domain.ErrInvalidArgument
	}
	if rewardTokens <= 0 || deadlineAt.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Job{
		ID:           id,
		RequesterID:  requesterID,
		Title:        title,
		Prompt:       prompt,
		RewardTokens: rewardTokens,
		DeadlineAt:   deadlineAt,
		Status:       JobStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Complete moves the job OPEN -> COMPLETED. The transition is one-way and is
// only taken by a successful settlement.
func (j *Job) Complete() error {
	if j.Status != JobStatusOpen {
		return domain.ErrInvalidTransition
	}
	j.Status = JobStatusCompleted
	j.UpdatedAt = time.Now()
	return nil
}

func (j *Job) IsZero() bool { return j == nil || j.ID == "" }
