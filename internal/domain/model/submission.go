package model

import (
	"time"

	"promptmarket/internal/domain"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionStatusPending SubmissionStatus = "PENDING"
	SubmissionStatusScored  SubmissionStatus = "SCORED"
	SubmissionStatusWinner  SubmissionStatus = "WINNER"
)

const maxContentLen = 20000

// Submission is a worker's candidate answer for a job. Scores stay nil until
// the submission is scored; re-scoring overwrites them in place.
type Submission struct {
	ID           string
	JobID        string
	WorkerID     string
	Content      string
	LatencyMs    int64
	QualityScore *float64
	SpeedScore   *float64
	FinalScore   *float64
	Status       SubmissionStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewSubmission(id, jobID, workerID, content string, latencyMs int64) (*Submission, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if jobID == "" || workerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if content == "" || len(content) > maxContentLen || latencyMs < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Submission{
		ID:        id,
		JobID:     jobID,
		WorkerID:  workerID,
		Content:   content,
		LatencyMs: latencyMs,
		Status:    SubmissionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyScore records the score triple and moves the submission to SCORED.
// Scoring a PENDING submission and re-scoring a SCORED one are both legal;
// a WINNER is frozen.
func (s *Submission) ApplyScore(quality, speed, final float64) error {
	if s.Status == SubmissionStatusWinner {
		return domain.ErrInvalidTransition
	}
	s.QualityScore = &quality
	s.SpeedScore = &speed
	s.FinalScore = &final
	s.Status = SubmissionStatusScored
	s.UpdatedAt = time.Now()
	return nil
}

// Promote marks the submission WINNER. Only a SCORED submission can win, and
// only settlement calls this for the single top-ranked submission.
func (s *Submission) Promote() error {
	if s.Status != SubmissionStatusScored {
		return domain.ErrInvalidTransition
	}
	s.Status = SubmissionStatusWinner
	s.UpdatedAt = time.Now()
	return nil
}
