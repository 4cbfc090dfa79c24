package store

import (
	"context"
	"time"
)

// RunRecord is one audited code execution.
type RunRecord struct {
	ID         int64
	Language   string
	Version    string
	Result     string // "ok" or an execution error code
	DurationMs int64
	CreatedAt  time.Time
}

// RunStore handles execution audit persistence.
type RunStore interface {
	// SaveRun persists a record and fills in its ID.
	SaveRun(ctx context.Context, rec *RunRecord) error

	// ListRuns returns the most recent records, newest first.
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	RunStore

	// Close closes the underlying database connection.
	Close() error
}
