// Command sweep runs one overdue-bill sweep and one load-stability scan,
// then exits. Intended for cron-style scheduling when the in-process
// worker is disabled.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"palika/internal/config"
	"palika/internal/logger"
	"palika/internal/notify/noop"
	"palika/internal/repository/postgres"
	"palika/internal/service"
	"palika/internal/tariff"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	connRepo := postgres.NewConnectionRepo(db)
	readingRepo := postgres.NewReadingRepo(db)
	tariffRepo := postgres.NewTariffRepo(db)
	billRepo := postgres.NewBillRepo(db)
	capacityRepo := postgres.NewCapacityRepo(db)

	resolver := tariff.NewResolver(tariffRepo, nil, zlog)
	notifier := noop.NewNoopNotifier(zlog)

	loadSvc := service.NewLoadService(capacityRepo, notifier, cfg.Load, zlog)
	billingSvc := service.NewBillingService(billRepo, connRepo, readingRepo, resolver, notifier, cfg.Billing, cfg.Sweep.BatchSize, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	updated, err := billingSvc.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("overdue sweep: %w", err)
	}
	alerts, err := loadSvc.MonitorStability(ctx)
	if err != nil {
		return fmt.Errorf("load stability scan: %w", err)
	}

	zlog.Info("sweep finished",
		zap.Int("bills_updated", updated),
		zap.Int("alerts", alerts),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
