package usecase

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promptmarket/internal/domain"
	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
	"promptmarket/internal/infra/logging"
	"promptmarket/internal/infra/metrics"
)

// Compile-time check
var _ SettlementUseCase = (*settlementUC)(nil)

// payoutSplit is the fixed reward distribution over ranks 1..3. Shares are
// floor-rounded per rank; the remainder stays unallocated.
var payoutSplit = [...]float64{0.80, 0.15, 0.05}

// SettleOptions carries the test-only fault injection flag. Production
// callers leave it zero.
type SettleOptions struct {
	// SimulateFailureAfterEscrowRelease aborts the settlement transaction
	// between the escrow release and payout creation, so tests can verify
	// the release rolls back with everything else.
	SimulateFailureAfterEscrowRelease bool
}

// SettlementResult summarizes a committed settlement.
type SettlementResult struct {
	JobID              string
	PayoutsCount       int
	WinnerSubmissionID string
}

type SettlementUseCase interface {
	Settle(ctx context.Context, jobID string, opts SettleOptions) (*SettlementResult, error)
}

type settlementUC struct {
	jobs    repository.JobRepository
	escrows repository.EscrowRepository
	subs    repository.SubmissionRepository
	payouts repository.PayoutRepository
	audit   repository.AuditLogRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewSettlementUseCase(
	jobs repository.JobRepository,
	escrows repository.EscrowRepository,
	subs repository.SubmissionRepository,
	payouts repository.PayoutRepository,
	audit repository.AuditLogRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *settlementUC {
	return &settlementUC{
		jobs:    jobs,
		escrows: escrows,
		subs:    subs,
		payouts: payouts,
		audit:   audit,
		tm:      tm,
		log:     logger,
	}
}

// Settle ranks the job's scored submissions, releases the escrow, creates the
// payouts, promotes the winner, completes the job and appends one audit
// entry — all in a single transaction. Any failure, the injected one
// included, rolls back every mutation; concurrent settlers are serialized by
// the row lock on the job and the loser fails the already-settled check.
func (u *settlementUC) Settle(ctx context.Context, jobID string, opts SettleOptions) (*SettlementResult, error) {
	defer logging.TraceDuration(u.log, "SettlementUC.Settle")()

	var (
		result     *SettlementResult
		paidTokens int64
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		job, err := u.jobs.FindByIDForUpdate(ctx, tx, jobID)
		if err != nil {
			return err
		}
		escrow, err := u.escrows.FindByJobIDForUpdate(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if job.Status == model.JobStatusCompleted || escrow.Status == model.EscrowStatusReleased {
			return domain.ErrAlreadySettled
		}

		ranked, err := u.subs.ListScoredByJob(ctx, tx, jobID, len(payoutSplit))
		if err != nil {
			return err
		}
		if len(ranked) == 0 {
			return domain.ErrNoScoredSubmissions
		}

		now := time.Now()
		if err := escrow.Release(now); err != nil {
			return err
		}
		if err := u.escrows.MarkReleased(ctx, tx, escrow.ID, now); err != nil {
			return err
		}

		if opts.SimulateFailureAfterEscrowRelease {
			return domain.ErrSimulatedFailure
		}

		type payoutSummary struct {
			SubmissionID string  `json:"submissionId"`
			UserID       string  `json:"userId"`
			Rank         int     `json:"rank"`
			AmountTokens int64   `json:"amountTokens"`
			FinalScore   float64 `json:"finalScore"`
		}
		summaries := make([]payoutSummary, 0, len(ranked))
		paidTokens = 0
		for i, sub := range ranked {
			amount := int64(math.Floor(float64(job.RewardTokens) * payoutSplit[i]))
			p, err := model.NewPayout("", jobID, sub.WorkerID, amount, i+1)
			if err != nil {
				return err
			}
			if err := u.payouts.Save(ctx, tx, p); err != nil {
				return err
			}
			paidTokens += amount
			summaries = append(summaries, payoutSummary{
				SubmissionID: sub.ID,
				UserID:       sub.WorkerID,
				Rank:         p.Rank,
				AmountTokens: amount,
				FinalScore:   *sub.FinalScore,
			})
		}

		winner := ranked[0]
		if err := winner.Promote(); err != nil {
			return err
		}
		if err := u.subs.UpdateStatus(ctx, tx, winner.ID, model.SubmissionStatusWinner); err != nil {
			return err
		}

		if err := job.Complete(); err != nil {
			return err
		}
		if err := u.jobs.UpdateStatus(ctx, tx, jobID, model.JobStatusCompleted); err != nil {
			return err
		}

		entry, err := model.NewAuditLog(jobID, nil, model.AuditJobSettled, map[string]interface{}{
			"winnerSubmissionId": winner.ID,
			"payouts":            summaries,
			"paidTokens":         paidTokens,
		})
		if err != nil {
			return err
		}
		if err := u.audit.Append(ctx, tx, entry); err != nil {
			return err
		}

		result = &SettlementResult{
			JobID:              jobID,
			PayoutsCount:       len(summaries),
			WinnerSubmissionID: winner.ID,
		}
		return nil
	})
	if err != nil {
		metrics.IncSettlement("error")
		return nil, err
	}

	metrics.IncSettlement("ok")
	metrics.AddPayoutTokens(paidTokens)
	u.log.Info().
		Str("job_id", result.JobID).
		Str("winner_submission_id", result.WinnerSubmissionID).
		Int("payouts", result.PayoutsCount).
		Msg("job settled")
	return result, nil
}
