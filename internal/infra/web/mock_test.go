package web_test

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"promptmarket/internal/domain/model"
	"promptmarket/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- Use case stubs ----

type StubJobUC struct {
	CreateFunc func(ctx context.Context, requesterHandle, title, prompt string, rewardTokens int64, deadlineAt time.Time) (*model.Job, *model.Escrow, error)
	GetFunc    func(ctx context.Context, jobID string) (*usecase.JobView, error)
}

var _ usecase.JobUseCase = (*StubJobUC)(nil)

func (s *StubJobUC) Create(ctx context.Context, requesterHandle, title, prompt string, rewardTokens int64, deadlineAt time.Time) (*model.Job, *model.Escrow, error) {
	return s.CreateFunc(ctx, requesterHandle, title, prompt, rewardTokens, deadlineAt)
}

func (s *StubJobUC) Get(ctx context.Context, jobID string) (*usecase.JobView, error) {
	return s.GetFunc(ctx, jobID)
}

type StubSubmissionUC struct {
	CreateFunc func(ctx context.Context, jobID, workerHandle, content string, latencyMs int64) (*model.Submission, error)
	ScoreFunc  func(ctx context.Context, jobID, submissionID string, quality *float64) (*usecase.ScoreResult, error)
}

var _ usecase.SubmissionUseCase = (*StubSubmissionUC)(nil)

func (s *StubSubmissionUC) Create(ctx context.Context, jobID, workerHandle, content string, latencyMs int64) (*model.Submission, error) {
	return s.CreateFunc(ctx, jobID, workerHandle, content, latencyMs)
}

func (s *StubSubmissionUC) Score(ctx context.Context, jobID, submissionID string, quality *float64) (*usecase.ScoreResult, error) {
	return s.ScoreFunc(ctx, jobID, submissionID, quality)
}

type StubSettlementUC struct {
	SettleFunc func(ctx context.Context, jobID string, opts usecase.SettleOptions) (*usecase.SettlementResult, error)
}

var _ usecase.SettlementUseCase = (*StubSettlementUC)(nil)

func (s *StubSettlementUC) Settle(ctx context.Context, jobID string, opts usecase.SettleOptions) (*usecase.SettlementResult, error) {
	return s.SettleFunc(ctx, jobID, opts)
}
