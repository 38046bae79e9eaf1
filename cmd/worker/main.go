package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/finledger/finledger/internal/app"
	"github.com/finledger/finledger/internal/billing"
	"github.com/finledger/finledger/internal/inventory"
	"github.com/finledger/finledger/internal/masterdata/items"
	"github.com/finledger/finledger/internal/masterdata/parties"
	"github.com/finledger/finledger/internal/platform/cache"
	"github.com/finledger/finledger/internal/platform/db"
	"github.com/finledger/finledger/internal/shared"
	"github.com/finledger/finledger/internal/taxes"
	"github.com/finledger/finledger/jobs"
	"github.com/finledger/finledger/report"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		_ = redisClient.Close()
	}()

	validator := shared.NewValidator()

	taxSvc := taxes.NewService(taxes.NewRepository(pool))
	itemSvc := items.NewService(logger, items.NewRepository(pool), redisClient, validator)
	partySvc := parties.NewService(parties.NewRepository(pool), validator)
	inventorySvc := inventory.NewService(pool, inventory.NewRepository(pool), validator)
	billingSvc := billing.NewService(logger, billing.NewRepository(pool), itemSvc, taxSvc, partySvc, inventorySvc, validator)

	renderer := report.NewCachedRenderer(report.NewRenderer(report.NewClient(cfg.GotenbergURL)), redisClient)

	prerender := jobs.NewPDFPrerenderJob(billingSvc, renderer, logger)
	warmup := jobs.NewCatalogWarmupJob(itemSvc, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPDFPrerender, Handler: prerender.Handle},
			{Type: jobs.TaskCatalogWarmup, Handler: warmup.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: jobs.NewCatalogWarmupTask()},
		},
	})
	if err != nil {
		return err
	}

	logger.Info("worker starting", "redis", cfg.RedisAddr)
	return worker.Run(ctx)
}
