package model

import (
	"time"

	"promptmarket/internal/domain"

	"github.com/google/uuid"
)

type PayoutStatus string

// PayoutStatusPaid is the only payout status in this model: payouts exist
// only as part of a committed settlement.
const PayoutStatusPaid PayoutStatus = "PAID"

// Payout is a single ranked share of a settled job's reward.
type Payout struct {
	ID           string
	JobID        string
	UserID       string
	AmountTokens int64
	Rank         int
	Status       PayoutStatus
	CreatedAt    time.Time
}

func NewPayout(id, jobID, userID string, amountTokens int64, rank int) (*Payout, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if jobID == "" || userID == "" || amountTokens < 0 || rank < 1 || rank > 3 {
		return nil, domain.ErrInvalidArgument
	}
	return &Payout{
		ID:           id,
		JobID:        jobID,
		UserID:       userID,
		AmountTokens: amountTokens,
		Rank:         rank,
		Status:       PayoutStatusPaid,
		CreatedAt:    time.Now(),
	}, nil
}
