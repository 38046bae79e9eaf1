package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/finledger/finledger/internal/app"
	"github.com/finledger/finledger/internal/auth"
	"github.com/finledger/finledger/internal/billing"
	"github.com/finledger/finledger/internal/delivery"
	"github.com/finledger/finledger/internal/inventory"
	"github.com/finledger/finledger/internal/masterdata/items"
	"github.com/finledger/finledger/internal/masterdata/parties"
	"github.com/finledger/finledger/internal/observability"
	"github.com/finledger/finledger/internal/platform/cache"
	"github.com/finledger/finledger/internal/platform/db"
	"github.com/finledger/finledger/internal/pos"
	"github.com/finledger/finledger/internal/shared"
	"github.com/finledger/finledger/internal/taxes"
	"github.com/finledger/finledger/jobs"
	"github.com/finledger/finledger/report"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
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
	metrics := observability.NewMetrics()

	taxRepo := taxes.NewRepository(pool)
	if err := taxes.Seed(ctx, taxRepo); err != nil {
		return err
	}
	taxSvc := taxes.NewService(taxRepo)

	itemSvc := items.NewService(logger, items.NewRepository(pool), redisClient, validator)
	partySvc := parties.NewService(parties.NewRepository(pool), validator)
	inventorySvc := inventory.NewService(pool, inventory.NewRepository(pool), validator)

	billingSvc := billing.NewService(logger, billing.NewRepository(pool), itemSvc, taxSvc, partySvc, inventorySvc, validator)
	posSvc := pos.NewService(logger, billingSvc, validator)
	deliverySvc := delivery.NewService(logger, delivery.NewRepository(pool), inventorySvc, validator)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := auth.NewService(logger, auth.NewRepository(pool), tokens, validator)

	renderer := report.NewCachedRenderer(report.NewRenderer(report.NewClient(cfg.GotenbergURL)), redisClient)

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		_ = jobClient.Close()
	}()
	audit := shared.NewAuditLogger(pool)
	billingSvc.SetConfirmHook(func(d billing.Document) {
		metrics.CountDocument(string(d.Type))
		if _, err := jobClient.EnqueuePDFPrerender(context.Background(), d.ID); err != nil {
			logger.Warn("enqueue pdf prerender failed", "error", err, "document_id", d.ID)
		}
		if err := audit.Record(context.Background(), shared.AuditLog{
			Action:   "confirm",
			Entity:   "document",
			EntityID: d.Number,
			Meta:     map[string]any{"type": string(d.Type), "total": d.Total.String()},
		}); err != nil {
			logger.Warn("audit record failed", "error", err, "document_id", d.ID)
		}
	})

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		TokenIssuer:         tokens,
		AuthHandler:         auth.NewHandler(logger, authSvc),
		ItemsHandler:        items.NewHandler(logger, itemSvc),
		VendorsHandler:      parties.NewHandler(logger, partySvc, parties.KindVendor),
		CustomersHandler:    parties.NewHandler(logger, partySvc, parties.KindCustomer),
		TaxesHandler:        taxes.NewHandler(logger, taxSvc),
		BillsHandler:        billing.NewHandler(logger, billingSvc, billing.TypeBill, renderer),
		InvoicesHandler:     billing.NewHandler(logger, billingSvc, billing.TypeInvoice, renderer),
		VendorCreditHandler: billing.NewHandler(logger, billingSvc, billing.TypeVendorCredit, renderer),
		InventoryHandler:    inventory.NewHandler(logger, inventorySvc),
		POSHandler:          pos.NewHandler(logger, posSvc),
		DeliveryHandler:     delivery.NewHandler(logger, deliverySvc),
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", "addr", cfg.AppAddr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
