package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subvention/internal/config"
	"subvention/internal/db"
	"subvention/internal/models"
)

type countingReconciler struct {
	mu    sync.Mutex
	calls int
}

func (r *countingReconciler) ReconcileKeywordCounts(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return 1, nil
}

func (r *countingReconciler) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestCounterReconcilerRunsUntilCancelled(t *testing.T) {
	rec := &countingReconciler{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewCounterReconciler(rec, 10*time.Millisecond).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rec.Calls() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop after cancel")
	}
}

type fakeApplier struct {
	errs    map[string]error
	applied []string
}

func (f *fakeApplier) ApplyExclusionKeyword(ctx context.Context, name, description string) (*models.ApplyResult, error) {
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	f.applied = append(f.applied, name)
	return &models.ApplyResult{Keyword: name}, nil
}

func TestBootstrapKeywords(t *testing.T) {
	keywords := []config.BootstrapKeyword{
		{Keyword: "Youth"},
		{Keyword: "AI", Description: "already there"},
		{Keyword: ""},
		{Keyword: "Export"},
	}

	t.Run("skips active and invalid keywords", func(t *testing.T) {
		applier := &fakeApplier{errs: map[string]error{
			"AI": db.ErrKeywordActive,
			"":   db.ErrKeywordRequired,
		}}

		n, err := BootstrapKeywords(context.Background(), applier, keywords)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"Youth", "Export"}, applier.applied)
	})

	t.Run("stops on storage failure", func(t *testing.T) {
		storageErr := &db.StorageError{Op: "apply exclusion keyword", Err: errors.New("timeout")}
		applier := &fakeApplier{errs: map[string]error{"AI": storageErr}}

		n, err := BootstrapKeywords(context.Background(), applier, keywords)
		assert.ErrorIs(t, err, storageErr)
		assert.Equal(t, 1, n)
	})

	t.Run("nil list", func(t *testing.T) {
		n, err := BootstrapKeywords(context.Background(), &fakeApplier{}, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
