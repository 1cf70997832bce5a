package backend

import (
	"context"

	"daybook/internal/ledger"
	"daybook/internal/services"
	"daybook/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is a ledger store plus the optional publisher announcing
// saved days. Publisher is nil when no broker is configured.
type BackendResult struct {
	Store     ledger.Store
	Publisher services.DayPublisher
	Cleanup   CleanupFunc
}

// Close runs Cleanup if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the ledger store and, if configured, the publisher.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror returns the spreadsheet writer, or nil for MirrorNone.
	CreateMirror(ctx context.Context, config Config) (sheets.DayWriter, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Publishing, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Mirror
	Mirror              MirrorType
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// BackendType represents the type of ledger store
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// MirrorType selects where saved days are mirrored.
type MirrorType string

const (
	MirrorNone   MirrorType = "none"
	MirrorMemory MirrorType = "memory"
	MirrorSheets MirrorType = "sheets"
)

func (mt MirrorType) IsValid() bool {
	switch mt {
	case MirrorNone, MirrorMemory, MirrorSheets:
		return true
	default:
		return false
	}
}
