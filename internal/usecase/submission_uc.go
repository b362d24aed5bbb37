package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promptmarket/internal/domain"
	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
	"promptmarket/internal/infra/logging"
	"promptmarket/internal/infra/metrics"
	"promptmarket/internal/scoring"
)

// Compile-time check
var _ SubmissionUseCase = (*submissionUC)(nil)

// ScoreResult reports a scoring call's outcome together with the fixed
// formula label, so callers can tell how the number was produced.
type ScoreResult struct {
	Submission *model.Submission
	Quality    float64
	Speed      float64
	Score      float64
	Formula    string
}

type SubmissionUseCase interface {
	Create(ctx context.Context, jobID, workerHandle, content string, latencyMs int64) (*model.Submission, error)
	// Score computes and persists the score triple for a submission scoped to
	// jobID. quality is the caller's explicit rating in [0,1]; nil falls back
	// to the content-length heuristic. Repeated calls overwrite the previous
	// score.
	Score(ctx context.Context, jobID, submissionID string, quality *float64) (*ScoreResult, error)
}

type submissionUC struct {
	jobs  repository.JobRepository
	subs  repository.SubmissionRepository
	users repository.UserRepository
	audit repository.AuditLogRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewSubmissionUseCase(
	jobs repository.JobRepository,
	subs repository.SubmissionRepository,
	users repository.UserRepository,
	audit repository.AuditLogRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *submissionUC {
	return &submissionUC{
		jobs:  jobs,
		subs:  subs,
		users: users,
		audit: audit,
		tm:    tm,
		log:   logger,
	}
}

func (u *submissionUC) Create(ctx context.Context, jobID, workerHandle, content string, latencyMs int64) (*model.Submission, error) {
	defer logging.TraceDuration(u.log, "SubmissionUC.Create")()

	var sub *model.Submission
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.jobs.FindByID(ctx, tx, jobID); err != nil {
			return err
		}

		worker, err := u.users.GetOrCreateByHandle(ctx, tx, workerHandle)
		if err != nil {
			return err
		}

		s, err := model.NewSubmission("", jobID, worker.ID, content, latencyMs)
		if err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, s); err != nil {
			return err
		}

		entry, err := model.NewAuditLog(jobID, &worker.ID, model.AuditSubmissionCreated, map[string]interface{}{
			"submissionId": s.ID,
			"latencyMs":    s.LatencyMs,
		})
		if err != nil {
			return err
		}
		if err := u.audit.Append(ctx, tx, entry); err != nil {
			return err
		}

		sub = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncSubmissionCreated()
	u.log.Info().Str("job_id", jobID).Str("submission_id", sub.ID).Msg("submission created")
	return sub, nil
}

func (u *submissionUC) Score(ctx context.Context, jobID, submissionID string, quality *float64) (*ScoreResult, error) {
	defer logging.TraceDuration(u.log, "SubmissionUC.Score")()

	if quality != nil && (*quality < 0 || *quality > 1) {
		return nil, domain.ErrInvalidArgument
	}

	var result *ScoreResult
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := u.subs.FindByJobAndID(ctx, tx, jobID, submissionID)
		if err != nil {
			return err
		}

		q := scoring.EstimateQuality(sub.Content)
		if quality != nil {
			q = *quality
		}
		speed := scoring.SpeedScore(sub.LatencyMs)
		score := scoring.FinalScore(q, speed)

		if err := sub.ApplyScore(q, speed, score); err != nil {
			return err
		}
		if err := u.subs.UpdateScore(ctx, tx, sub); err != nil {
			return err
		}

		entry, err := model.NewAuditLog(jobID, &sub.WorkerID, model.AuditSubmissionScored, map[string]interface{}{
			"submissionId": sub.ID,
			"quality":      q,
			"speed":        speed,
			"score":        score,
		})
		if err != nil {
			return err
		}
		if err := u.audit.Append(ctx, tx, entry); err != nil {
			return err
		}

		result = &ScoreResult{
			Submission: sub,
			Quality:    q,
			Speed:      speed,
			Score:      score,
			Formula:    scoring.Formula,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncSubmissionScored()
	return result, nil
}
