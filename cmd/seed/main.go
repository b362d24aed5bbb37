// Seeds a demo job with three scored submissions so a fresh environment has
// something to settle. Never run against production data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"promptmarket/internal/config"
	pg "promptmarket/internal/infra/db/postgres"
	"promptmarket/internal/infra/logging"
	"promptmarket/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	jobRepo := pg.NewJobRepo(pool)
	escrowRepo := pg.NewEscrowRepo(pool)
	subRepo := pg.NewSubmissionRepo(pool)
	payoutRepo := pg.NewPayoutRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)
	tm := pg.NewTxManager(pool)

	jobUC := usecase.NewJobUseCase(jobRepo, escrowRepo, subRepo, payoutRepo, userRepo, auditRepo, tm, logger)
	subUC := usecase.NewSubmissionUseCase(jobRepo, subRepo, userRepo, auditRepo, tm, logger)

	job, _, err := jobUC.Create(ctx, "", "Summarize the Q3 incident report",
		"Write a concise summary of the attached incident report, focusing on root cause and follow-ups.",
		1000, time.Now().Add(72*time.Hour))
	if err != nil {
		log.Fatalf("seed job: %v", err)
	}

	workers := []struct {
		handle    string
		content   string
		latencyMs int64
		quality   float64
	}{
		{"worker-fast", "Root cause: connection pool exhaustion during failover. Follow-ups filed.", 800, 0.9},
		{"worker-mid", "The incident was caused by pool exhaustion; mitigations are listed below along with longer-term follow-up items for the infra team.", 2500, 0.6},
		{"worker-slow", "Summary pending review.", 6000, 0.3},
	}
	for _, w := range workers {
		sub, err := subUC.Create(ctx, job.ID, w.handle, w.content, w.latencyMs)
		if err != nil {
			log.Fatalf("seed submission: %v", err)
		}
		q := w.quality
		if _, err := subUC.Score(ctx, job.ID, sub.ID, &q); err != nil {
			log.Fatalf("seed score: %v", err)
		}
	}

	log.Printf("seeded job %s with %d scored submissions; settle it with POST /api/v1/jobs/%s/settle", job.ID, len(workers), job.ID)
}
