package backend

import (
	"context"
	"path/filepath"
	"testing"

	"daybook/internal/config"
	"daybook/internal/core"
	"daybook/internal/storage"
	sheetsmem "daybook/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "./data/test.db",
		AMQPURL:      "amqp://localhost/",
		AMQPExchange: "daybook",
		AMQPQueue:    "day_updates",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.Mirror != MirrorNone || cfg.AMQPQueue != "day_updates" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend, Mirror: MirrorNone}, false},
		{"sqlite without path", Config{Type: SQLiteBackend, Mirror: MirrorNone}, true},
		{"amqp without queue", Config{Type: MemoryBackend, Mirror: MirrorNone, AMQPURL: "amqp://x/", AMQPExchange: "e"}, true},
		{"bad mirror", Config{Type: MemoryBackend, Mirror: "csv"}, true},
		{"sheets mirror without spreadsheet", Config{Type: MemoryBackend, Mirror: MirrorSheets}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, Mirror: MirrorNone})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if res.Publisher != nil {
		t.Fatal("publisher must be nil without AMQP")
	}
	if err := res.Store.Upsert(ctx, core.BlankEntry(core.MustParseDate("2025-01-01"))); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "daybook.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path, Mirror: MirrorNone})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
		t.Fatalf("expected SQLite repository, got %T", res.Store)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestCreateMirror(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	w, err := f.CreateMirror(ctx, Config{Mirror: MirrorNone})
	if err != nil || w != nil {
		t.Fatalf("expected no mirror, got %v (err=%v)", w, err)
	}

	w, err = f.CreateMirror(ctx, Config{Mirror: MirrorMemory})
	if err != nil {
		t.Fatalf("memory mirror: %v", err)
	}
	if _, ok := w.(*sheetsmem.Store); !ok {
		t.Fatalf("expected memory mirror, got %T", w)
	}

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := f.CreateMirror(ctx, Config{Mirror: MirrorSheets, GoogleSpreadsheetID: "x"}); err == nil {
		t.Fatal("expected credentials error for sheets mirror")
	}
}
