package memory

import (
	"context"
	"strings"
	"testing"

	"daybook/internal/core"
)

func TestWriteDayAppendsThenReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := core.MustParseDate("2025-01-02")

	e := core.BlankEntry(d)
	e.ExpectedIncome = core.NewMoney(10)
	ref, err := s.WriteDay(ctx, e)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected first write: ref=%q err=%v", ref, err)
	}

	if _, err := s.WriteDay(ctx, core.BlankEntry(core.MustParseDate("2025-01-03"))); err != nil {
		t.Fatalf("second day: %v", err)
	}

	e.ExpectedExpenditure = core.NewMoney(25)
	ref, err = s.WriteDay(ctx, e)
	if err != nil || ref != "mem:1" {
		t.Fatalf("rewrite should reuse the row: ref=%q err=%v", ref, err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", s.Len())
	}
	row, ok := s.Row(d)
	if !ok || row[3] != "-15.00" {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestWriteDayRejectsInvalidEntry(t *testing.T) {
	e := core.BlankEntry(core.MustParseDate("2025-01-02"))
	e.CustomNotes = strings.Repeat("x", 2001)
	if _, err := New().WriteDay(context.Background(), e); err == nil {
		t.Fatal("expected validation error")
	}
}
