package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepConfig holds settings for the overdue sweep worker.
type SweepConfig struct {
	Interval time.Duration
}

// SweepWorker periodically recomputes late penalties and overdue
// statuses, then scans the capacity pools for oversubscription. Both
// passes derive everything from stored rows, so an overlapping or
// repeated run is harmless.
type SweepWorker struct {
	billingSvc BillingService
	loadSvc    LoadService
	cfg        SweepConfig
	log        *zap.Logger
}

// NewSweepWorker creates a new SweepWorker.
func NewSweepWorker(billingSvc BillingService, loadSvc LoadService, cfg SweepConfig, log *zap.Logger) *SweepWorker {
	return &SweepWorker{
		billingSvc: billingSvc,
		loadSvc:    loadSvc,
		cfg:        cfg,
		log:        log,
	}
}

// Start runs the sweep loop until ctx is canceled. One sweep runs
// immediately on startup.
func (w *SweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.log.Info("sweep worker started", zap.Duration("interval", w.cfg.Interval))
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("sweep worker shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SweepWorker) runOnce(ctx context.Context) {
	updated, err := w.billingSvc.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Error("overdue sweep", zap.Error(err))
	} else if updated > 0 {
		w.log.Info("overdue sweep applied", zap.Int("bills_updated", updated))
	}

	alerts, err := w.loadSvc.MonitorStability(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Error("load stability scan", zap.Error(err))
	} else if alerts > 0 {
		w.log.Warn("load stability scan raised alerts", zap.Int("alerts", alerts))
	}
}
