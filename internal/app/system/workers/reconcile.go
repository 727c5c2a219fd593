// Package workers holds background jobs started in Startup.
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/hopenest/internal/app/system/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TotalsRecomputer rewrites each campaign's current amount from its donations
// and reports how many campaigns changed.
type TotalsRecomputer interface {
	RecomputeTotals(ctx context.Context) (int64, error)
}

// TotalsReconciler periodically corrects campaign totals that drifted from
// the donation records, e.g. after a failed increment.
type TotalsReconciler struct {
	store    TotalsRecomputer
	log      *zap.Logger
	schedule string
	timeout  time.Duration

	cron *cron.Cron
	mu   sync.Mutex // one run at a time
}

// ParseSchedule validates a cron spec ("@every 1h", "0 3 * * *").
func ParseSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	return nil
}

// NewTotalsReconciler creates the worker. An empty schedule disables the
// cron loop; RunOnce still works.
func NewTotalsReconciler(store TotalsRecomputer, logger *zap.Logger, schedule string) *TotalsReconciler {
	return &TotalsReconciler{
		store:    store,
		log:      logger,
		schedule: schedule,
		timeout:  2 * time.Minute,
	}
}

// Start schedules the job.
func (w *TotalsReconciler) Start() error {
	if w.schedule == "" {
		w.log.Info("totals reconciler disabled")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(w.schedule, w.tick); err != nil {
		return fmt.Errorf("schedule reconciler: %w", err)
	}
	c.Start()
	w.cron = c
	w.log.Info("totals reconciler started", zap.String("schedule", w.schedule))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (w *TotalsReconciler) Stop(ctx context.Context) {
	if w.cron == nil {
		return
	}
	done := w.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		w.log.Warn("totals reconciler stop timed out")
	}
	w.log.Info("totals reconciler stopped")
}

func (w *TotalsReconciler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	_, _ = w.RunOnce(ctx)
}

// RunOnce recomputes all totals now.
func (w *TotalsReconciler) RunOnce(ctx context.Context) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	n, err := w.store.RecomputeTotals(ctx)
	metrics.RecordReconcile(n, err)
	if err != nil {
		w.log.Error("failed to reconcile campaign totals", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		w.log.Info("reconciled campaign totals",
			zap.Int64("campaigns_updated", n),
			zap.Duration("took", time.Since(start)))
	}
	return n, nil
}
