package services

import (
	"context"
	"errors"
	"testing"

	"daybook/internal/core"
	"daybook/internal/ledger"
	"daybook/internal/ledger/memory"
)

func TestProvisionCoversWindow(t *testing.T) {
	ctx := context.Background()
	for _, start := range []string{"2024-01-31", "2024-02-15", "2024-12-20", "1999-12-31"} {
		store := newCountingStore()
		p := NewProvisioner(store, DefaultProvisionWindow)

		created, err := p.Provision(ctx, day(start))
		if err != nil {
			t.Fatalf("%s: provision: %v", start, err)
		}
		if created != 32 {
			t.Fatalf("%s: expected 32 days created, got %d", start, created)
		}
		for i := 0; i < 32; i++ {
			d := day(start).AddDays(i)
			if ok, _ := store.Exists(ctx, d); !ok {
				t.Fatalf("%s: day %s missing after provisioning", start, d)
			}
		}
		if ok, _ := store.Exists(ctx, day(start).AddDays(32)); ok {
			t.Fatalf("%s: provisioned past the window", start)
		}
	}
}

func TestProvisionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	p := NewProvisioner(store, DefaultProvisionWindow)

	if _, err := p.Provision(ctx, day("2025-03-01")); err != nil {
		t.Fatalf("first provision: %v", err)
	}
	before := store.writes()

	created, err := p.Provision(ctx, day("2025-03-01"))
	if err != nil {
		t.Fatalf("second provision: %v", err)
	}
	if created != 0 || store.writes() != before {
		t.Fatalf("expected no writes on second call, created=%d writes=%d->%d", created, before, store.writes())
	}
}

func TestProvisionKeepsExistingDays(t *testing.T) {
	ctx := context.Background()
	existing := entryOf("2025-03-05", 500, 20)
	existing.CustomNotes = "payday"
	store := newCountingStore(existing)
	p := NewProvisioner(store, DefaultProvisionWindow)

	created, err := p.Provision(ctx, day("2025-03-01"))
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if created != 31 {
		t.Fatalf("expected 31 new days, got %d", created)
	}
	got, _, _ := store.Get(ctx, day("2025-03-05"))
	if got.CustomNotes != "payday" || got.NetIncome().String() != "480.00" {
		t.Fatalf("existing day was overwritten: %+v", got)
	}
}

func TestProvisionResumesAfterFailure(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	flaky := &flakyStore{Store: mem, okUpserts: 10}
	p := NewProvisioner(flaky, DefaultProvisionWindow)

	created, err := p.Provision(ctx, day("2025-07-01"))
	if !errors.Is(err, ledger.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if created != 10 || mem.Len() != 10 {
		t.Fatalf("expected partial window of 10, created=%d len=%d", created, mem.Len())
	}

	flaky.okUpserts = 100
	created, err = p.Provision(ctx, day("2025-07-01"))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if created != 22 || mem.Len() != 32 {
		t.Fatalf("expected resume to create the remaining 22, created=%d len=%d", created, mem.Len())
	}
}

func TestProvisionWindowHasFloor(t *testing.T) {
	if w := NewProvisioner(newCountingStore(), 7).Window(); w != MinProvisionWindow {
		t.Fatalf("expected window raised to %d, got %d", MinProvisionWindow, w)
	}
	if w := NewProvisioner(newCountingStore(), 60).Window(); w != 60 {
		t.Fatalf("expected custom window 60, got %d", w)
	}
}

func TestProvisionRangeSpansSeveralWindows(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	p := NewProvisioner(store, DefaultProvisionWindow)

	if _, err := p.ProvisionRange(ctx, day("2025-01-01"), day("2025-04-30")); err != nil {
		t.Fatalf("provision range: %v", err)
	}
	entries, _ := store.GetRange(ctx, day("2025-01-01"), day("2025-04-30"))
	if len(entries) != 120 {
		t.Fatalf("expected 120 contiguous days, got %d", len(entries))
	}
}

func TestProvisionStopsAtLastDay(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := NewProvisioner(store, DefaultProvisionWindow)

	created, err := p.Provision(ctx, day("9999-12-20"))
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if created != 12 || store.Len() != 12 {
		t.Fatalf("expected 9999-12-20..9999-12-31, created=%d stored=%d", created, store.Len())
	}

	if _, err := p.Provision(ctx, core.MaxDate.AddDays(1)); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestProvisionFromFirstDay(t *testing.T) {
	store := memory.New()
	created, err := NewProvisioner(store, DefaultProvisionWindow).Provision(context.Background(), core.MinDate)
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if created != DefaultProvisionWindow {
		t.Fatalf("expected %d days from 0001-01-01, got %d", DefaultProvisionWindow, created)
	}
}
