package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"palika/internal/config"
	"palika/internal/handler"
	"palika/internal/logger"
	"palika/internal/notify"
	kafkanotify "palika/internal/notify/kafka"
	"palika/internal/notify/noop"
	sesnotify "palika/internal/notify/ses"
	"palika/internal/ownership"
	"palika/internal/port"
	"palika/internal/repository/postgres"
	"palika/internal/router"
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
	handler.SetErrorLogger(zlog)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	connRepo := postgres.NewConnectionRepo(db)
	readingRepo := postgres.NewReadingRepo(db)
	tariffRepo := postgres.NewTariffRepo(db)
	billRepo := postgres.NewBillRepo(db)
	capacityRepo := postgres.NewCapacityRepo(db)
	meterEventRepo := postgres.NewMeterEventRepo(db)

	// Tariff cache is optional; the resolver works without one.
	var tariffCache port.TariffCache
	if cfg.Redis.Enabled {
		rdb, err := tariff.ConnectRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		tariffCache = tariff.NewRedisCache(rdb, cfg.Redis.TTL)
	}
	resolver := tariff.NewResolver(tariffRepo, tariffCache, zlog)

	notifier, err := buildNotifier(cfg, zlog)
	if err != nil {
		return err
	}
	if closer, ok := notifier.(io.Closer); ok {
		defer closer.Close() //nolint:errcheck
	}

	verifier := ownership.NewVerifier(cfg.Ownership.BaseURL, cfg.Ownership.Timeout)

	// Initialize services
	loadSvc := service.NewLoadService(capacityRepo, notifier, cfg.Load, zlog)
	connSvc := service.NewConnectionService(connRepo, capacityRepo, meterEventRepo, verifier, notifier, zlog)
	readingSvc := service.NewReadingService(readingRepo, connRepo, loadSvc, notifier, zlog)
	billingSvc := service.NewBillingService(billRepo, connRepo, readingRepo, resolver, notifier, cfg.Billing, cfg.Sweep.BatchSize, zlog)
	tariffSvc := service.NewTariffService(tariffRepo)

	// Initialize handlers
	connH := handler.NewConnectionHandler(connSvc)
	readingH := handler.NewReadingHandler(readingSvc)
	billH := handler.NewBillHandler(billingSvc)
	tariffH := handler.NewTariffHandler(tariffSvc)
	loadH := handler.NewLoadHandler(loadSvc, connSvc)
	reportH := handler.NewReportHandler(billingSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, zlog, connH, readingH, billH, tariffH, loadH, reportH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sweep.Enabled {
		worker := service.NewSweepWorker(billingSvc, loadSvc, service.SweepConfig{Interval: cfg.Sweep.Interval}, zlog)
		go worker.Start(ctx)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildNotifier assembles the event fan-out from configuration. The noop
// target is always present so every event is at least logged.
func buildNotifier(cfg *config.Config, zlog *zap.Logger) (port.Notifier, error) {
	targets := []port.Notifier{noop.NewNoopNotifier(zlog)}

	if cfg.Kafka.Enabled {
		kn, err := kafkanotify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize kafka notifier: %w", err)
		}
		targets = append(targets, kn)
	}
	if cfg.Email.Provider == "ses" {
		sn, err := sesnotify.NewSESNotifier(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ses notifier: %w", err)
		}
		targets = append(targets, sn)
	}

	if len(targets) == 1 {
		return targets[0], nil
	}
	return notify.NewComposite(targets...), nil
}
