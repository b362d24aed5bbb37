package repository

import (
	"context"

	"promptmarket/internal/domain/model"
)

type PayoutRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payout) error
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.Payout, error)
}
