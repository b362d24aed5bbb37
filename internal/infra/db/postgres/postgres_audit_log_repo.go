package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo is insert-only; there are no update or delete statements here
// on purpose.
type AuditLogRepo struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepo(pool *pgxpool.Pool) *AuditLogRepo {
	return &AuditLogRepo{pool: pool}
}

func (r *AuditLogRepo) Append(ctx context.Context, tx repository.Tx, entry *model.AuditLog) error {
	const q = `
INSERT INTO audit_logs (id, job_id, actor_id, action, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	meta, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, entry.ID, entry.JobID, entry.ActorID, entry.Action, meta, entry.CreatedAt); err != nil {
		return fmt.Errorf("postgres append audit log: %w", err)
	}
	return nil
}

func (r *AuditLogRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.AuditLog, error) {
	const q = `
SELECT id, job_id, actor_id, action, metadata, created_at
  FROM audit_logs WHERE job_id=$1 ORDER BY created_at ASC;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, jobID)
	if err != nil {
		return nil, fmt.Errorf("postgres list audit logs: %w", err)
	}
	defer rows.Close()

	var out []*model.AuditLog
	for rows.Next() {
		var (
			e    model.AuditLog
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.JobID, &e.ActorID, &e.Action, &meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres scan audit log: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
