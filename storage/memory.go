// storage/memory.go
package storage

import (
	"time"

	"github.com/gewnthar/ideatrack/models"
)

// MemoryStore is an in-memory Store used by tests and dry runs. It deep
// copies tables on the way in and out so callers cannot alias its state.
type MemoryStore struct {
	table *models.Table
	runs  []models.RunRecord
	now   func() time.Time

	// FailWrite, when set, makes Write return this error without
	// persisting anything. Lets tests exercise the fatal-write path.
	FailWrite error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Seed installs a table as if it had been written by a previous pass.
func (s *MemoryStore) Seed(t *models.Table) {
	s.table = t.Clone()
}

func (s *MemoryStore) Exists() bool {
	return s.table != nil
}

func (s *MemoryStore) Read() (*models.Table, error) {
	if s.table == nil {
		return nil, ErrNotFound
	}
	return s.table.Clone(), nil
}

func (s *MemoryStore) Write(t *models.Table) error {
	if s.FailWrite != nil {
		return s.FailWrite
	}
	s.table = t.Clone()
	return nil
}

func (s *MemoryStore) RecordRun(kind string, added, updated int) error {
	s.runs = append(s.runs, models.RunRecord{
		Type:           kind,
		Timestamp:      s.now().UTC(),
		RecordsAdded:   added,
		RecordsUpdated: updated,
	})
	return nil
}

func (s *MemoryStore) Location() string {
	return "memory"
}

// Table returns the stored table (deep copy), or nil when never written.
func (s *MemoryStore) Table() *models.Table {
	if s.table == nil {
		return nil
	}
	return s.table.Clone()
}

// RunLog returns the audit rows appended so far.
func (s *MemoryStore) RunLog() []models.RunRecord {
	return append([]models.RunRecord(nil), s.runs...)
}
