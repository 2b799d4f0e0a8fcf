package jobs

import (
	"context"
	"log"
	"time"
)

// CountReconciler is the storage operation the reconciler drives.
type CountReconciler interface {
	ReconcileKeywordCounts(ctx context.Context) (int64, error)
}

// CounterReconciler periodically copies live exclusion counts into the
// advisory keyword counter.
type CounterReconciler struct {
	db       CountReconciler
	interval time.Duration
}

// NewCounterReconciler creates a new counter reconciler.
func NewCounterReconciler(database CountReconciler, interval time.Duration) *CounterReconciler {
	return &CounterReconciler{
		db:       database,
		interval: interval,
	}
}

// Start begins the background reconcile loop. It returns when ctx is done.
func (r *CounterReconciler) Start(ctx context.Context) {
	log.Printf("Counter reconciler started (interval: %v)", r.interval)

	// Run immediately on start
	r.reconcile(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Counter reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *CounterReconciler) reconcile(ctx context.Context) {
	drifted, err := r.db.ReconcileKeywordCounts(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Counter reconciler: failed to reconcile: %v", err)
		}
		return
	}
	if drifted > 0 {
		log.Printf("Counter reconciler: corrected %d keyword counters", drifted)
	}
}
