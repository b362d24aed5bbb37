package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"promptmarket/internal/config"
	pg "promptmarket/internal/infra/db/postgres"
	"promptmarket/internal/infra/logging"
	"promptmarket/internal/infra/metrics"
	red "promptmarket/internal/infra/redis"
	"promptmarket/internal/infra/web"
	"promptmarket/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer func() { _ = redisClient.Close() }()

	// ---- Repositories ----
	jobRepo := pg.NewJobRepoCacheDecorator(pg.NewJobRepo(pool), redisClient, cfg.Redis.TTL)
	escrowRepo := pg.NewEscrowRepo(pool)
	subRepo := pg.NewSubmissionRepo(pool)
	payoutRepo := pg.NewPayoutRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	jobUC := usecase.NewJobUseCase(jobRepo, escrowRepo, subRepo, payoutRepo, userRepo, auditRepo, tm, logger)
	subUC := usecase.NewSubmissionUseCase(jobRepo, subRepo, userRepo, auditRepo, tm, logger)
	settleUC := usecase.NewSettlementUseCase(jobRepo, escrowRepo, subRepo, payoutRepo, auditRepo, tm, logger)

	// ---- HTTP ----
	metrics.MustRegister()
	srv := web.NewServer(jobUC, subUC, settleUC, cfg.Server.APIKey, logger)
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: mux}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("marketplace api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
