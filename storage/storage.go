// storage/storage.go
package storage

import (
	"errors"

	"github.com/gewnthar/ideatrack/models"
)

// ErrNotFound is returned by Read when the main tracking table has never
// been written to the backing location.
var ErrNotFound = errors.New("tracking table not found")

// Store is the capability interface over a persisted tracking table plus an
// independent append-only Runs log.
//
// Write is clear-and-rewrite: the whole main table is replaced, atomically
// from the caller's perspective, without touching the Runs region. The Runs
// region grows only through RecordRun. Date/time cells are serialized as
// models.TimeLayout text with no timezone suffix, in the fixed column order
// of models.TrackingColumns.
type Store interface {
	// Exists reports whether the main table has been written before.
	Exists() bool
	// Read returns all rows with timestamp columns parsed back into
	// timestamp values. A missing main table yields ErrNotFound.
	Read() (*models.Table, error)
	// Write replaces the entire main table.
	Write(t *models.Table) error
	// RecordRun appends one audit row. An empty Runs region is legal and
	// means zero prior runs.
	RecordRun(kind string, added, updated int) error
	// Location identifies the backing store for messages.
	Location() string
}
