// Package workers provides background maintenance jobs.
package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/artpar/notekeeper/internal/core/domain"
)

// SweepStore is the persistence the orphan sweeper needs.
type SweepStore interface {
	ListOrphanNotes(ctx context.Context, limit int) ([]domain.Note, error)
	DestroyAll(ctx context.Context, refs []domain.Ref) error
}

// OrphanSweeperConfig configures the orphan sweeper.
type OrphanSweeperConfig struct {
	Interval     time.Duration
	InitialDelay time.Duration
	BatchSize    int
}

// DefaultOrphanSweeperConfig returns default configuration.
func DefaultOrphanSweeperConfig() OrphanSweeperConfig {
	return OrphanSweeperConfig{
		Interval:     10 * time.Minute,
		InitialDelay: 10 * time.Second,
		BatchSize:    500,
	}
}

// OrphanSweeper removes notes left behind when a client delete could not
// cascade to them.
type OrphanSweeper struct {
	store  SweepStore
	config OrphanSweeperConfig
	logger *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrphanSweeper creates a new orphan sweeper.
func NewOrphanSweeper(s SweepStore, config OrphanSweeperConfig, logger *slog.Logger) *OrphanSweeper {
	defaults := DefaultOrphanSweeperConfig()
	if config.Interval == 0 {
		config.Interval = defaults.Interval
	}
	if config.BatchSize == 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.InitialDelay < 0 {
		config.InitialDelay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OrphanSweeper{
		store:  s,
		config: config,
		logger: logger.With("component", "orphan_sweeper"),
	}
}

// Start begins the sweeper background goroutine.
func (w *OrphanSweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
	w.logger.Info("orphan sweeper started", "interval", w.config.Interval)
}

// Stop gracefully stops the sweeper.
func (w *OrphanSweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("orphan sweeper stopped")
}

func (w *OrphanSweeper) run(ctx context.Context) {
	defer w.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-time.After(w.config.InitialDelay):
	}
	w.runCycle(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *OrphanSweeper) runCycle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := w.SweepOnce(ctx); err != nil {
		w.logger.Error("orphan sweep failed", "error", err)
	}
}

// SweepOnce deletes up to one batch of orphaned notes and returns how many
// were removed.
func (w *OrphanSweeper) SweepOnce(ctx context.Context) (int, error) {
	notes, err := w.store.ListOrphanNotes(ctx, w.config.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(notes) == 0 {
		return 0, nil
	}

	refs := make([]domain.Ref, len(notes))
	for i := range notes {
		refs[i] = notes[i].Ref()
	}
	if err := w.store.DestroyAll(ctx, refs); err != nil {
		return 0, err
	}

	w.logger.Info("removed orphaned notes", "count", len(refs))
	return len(refs), nil
}
