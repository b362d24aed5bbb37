package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
	"promptmarket/internal/infra/logging"
	"promptmarket/internal/infra/metrics"
)

// Compile-time check
var _ JobUseCase = (*jobUC)(nil)

// JobView is the GetJob aggregate: the job with its escrow, submissions and
// any payouts produced by settlement.
type JobView struct {
	Job         *model.Job
	Escrow      *model.Escrow
	Submissions []*model.Submission
	Payouts     []*model.Payout
}

type JobUseCase interface {
	// Create posts a job and locks its reward in escrow. An empty
	// requesterHandle falls back to the system requester.
	Create(ctx context.Context, requesterHandle, title, prompt string, rewardTokens int64, deadlineAt time.Time) (*model.Job, *model.Escrow, error)
	Get(ctx context.Context, jobID string) (*JobView, error)
}

type jobUC struct {
	jobs    repository.JobRepository
	escrows repository.EscrowRepository
	subs    repository.SubmissionRepository
	payouts repository.PayoutRepository
	users   repository.UserRepository
	audit   repository.AuditLogRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewJobUseCase(
	jobs repository.JobRepository,
	escrows repository.EscrowRepository,
	subs repository.SubmissionRepository,
	payouts repository.PayoutRepository,
	users repository.UserRepository,
	audit repository.AuditLogRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *jobUC {
	return &jobUC{
		jobs:    jobs,
		escrows: escrows,
		subs:    subs,
		payouts: payouts,
		users:   users,
		audit:   audit,
		tm:      tm,
		log:     logger,
	}
}

func (u *jobUC) Create(ctx context.Context, requesterHandle, title, prompt string, rewardTokens int64, deadlineAt time.Time) (*model.Job, *model.Escrow, error) {
	defer logging.TraceDuration(u.log, "JobUC.Create")()

	if requesterHandle == "" {
		requesterHandle = model.SystemRequesterHandle
	}

	var (
		job    *model.Job
		escrow *model.Escrow
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		requester, err := u.users.GetOrCreateByHandle(ctx, tx, requesterHandle)
		if err != nil {
			return err
		}

		j, err := model.NewJob("", requester.ID, title, prompt, rewardTokens, deadlineAt)
		if err != nil {
			return err
		}
		if err := u.jobs.Save(ctx, tx, j); err != nil {
			return err
		}

		e, err := model.NewEscrow("", j)
		if err != nil {
			return err
		}
		if err := u.escrows.Save(ctx, tx, e); err != nil {
			return err
		}

		entry, err := model.NewAuditLog(j.ID, &requester.ID, model.AuditJobCreated, map[string]interface{}{
			"rewardTokens": j.RewardTokens,
		})
		if err != nil {
			return err
		}
		if err := u.audit.Append(ctx, tx, entry); err != nil {
			return err
		}

		job, escrow = j, e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.IncJobCreated()
	u.log.Info().Str("job_id", job.ID).Int64("reward_tokens", job.RewardTokens).Msg("job created")
	return job, escrow, nil
}

func (u *jobUC) Get(ctx context.Context, jobID string) (*JobView, error) {
	defer logging.TraceDuration(u.log, "JobUC.Get")()

	job, err := u.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	escrow, err := u.escrows.FindByJobID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	subs, err := u.subs.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	payouts, err := u.payouts.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}

	return &JobView{
		Job:         job,
		Escrow:      escrow,
		Submissions: subs,
		Payouts:     payouts,
	}, nil
}
