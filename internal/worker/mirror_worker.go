package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"daybook/internal/amqp"
	"daybook/internal/core"
	"daybook/internal/ledger"
	"daybook/internal/sheets"
)

const DefaultConcurrency = 4

// MirrorWorker copies ledger days into a spreadsheet. It never writes to the
// ledger and never provisions: only stored days are mirrored.
type MirrorWorker struct {
	store       ledger.Store
	sheets      sheets.DayWriter
	concurrency int
}

func NewMirrorWorker(store ledger.Store, writer sheets.DayWriter, concurrency int) *MirrorWorker {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &MirrorWorker{
		store:       store,
		sheets:      writer,
		concurrency: concurrency,
	}
}

// HandleDayUpdated mirrors the day named by msg. A day missing from the
// ledger is logged and acknowledged since retrying cannot make it appear.
func (w *MirrorWorker) HandleDayUpdated(ctx context.Context, msg *amqp.DayUpdatedMessage) error {
	slog.InfoContext(ctx, "Processing day updated message",
		"id", msg.ID,
		"date", msg.Date.String())

	e, ok, err := w.store.Get(ctx, msg.Date)
	if err != nil {
		return fmt.Errorf("get day from storage: %w", err)
	}
	if !ok {
		slog.WarnContext(ctx, "Day not found in ledger, skipping mirror",
			"id", msg.ID,
			"date", msg.Date.String())
		return nil
	}

	ref, err := w.sheets.WriteDay(ctx, e)
	if err != nil {
		return fmt.Errorf("mirror day %s: %w", msg.Date, err)
	}

	slog.InfoContext(ctx, "Successfully mirrored day",
		"id", msg.ID,
		"date", msg.Date.String(),
		"sheets_ref", ref)
	return nil
}

// Resync mirrors every stored day in [from, to], at most concurrency writes
// at a time. It stops at the first failure and returns how many days were
// written before it.
func (w *MirrorWorker) Resync(ctx context.Context, from, to core.Date) (int, error) {
	entries, err := w.store.GetRange(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("read range for resync: %w", err)
	}
	if len(entries) == 0 {
		slog.InfoContext(ctx, "Nothing to resync", "from", from.String(), "to", to.String())
		return 0, nil
	}

	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, e := range entries {
		g.Go(func() error {
			if _, err := w.sheets.WriteDay(gctx, e); err != nil {
				return fmt.Errorf("mirror day %s: %w", e.Date, err)
			}
			written.Add(1)
			return nil
		})
	}
	err = g.Wait()

	slog.InfoContext(ctx, "Resync completed",
		"from", from.String(),
		"to", to.String(),
		"total", len(entries),
		"synced", written.Load(),
		"concurrency", w.concurrency)
	return int(written.Load()), err
}

// StartupResync mirrors the days within radius of today, covering edits
// made while the worker was down. A radius of zero disables it.
func (w *MirrorWorker) StartupResync(ctx context.Context, today core.Date, radius int) error {
	if radius <= 0 {
		slog.InfoContext(ctx, "Startup resync disabled")
		return nil
	}
	if _, err := w.Resync(ctx, today.AddDays(-radius), today.AddDays(radius)); err != nil {
		return fmt.Errorf("startup resync: %w", err)
	}
	return nil
}
