// storage/sqlite.go
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gewnthar/ideatrack/models"
)

// SQLiteStore keeps the tracking table and the Runs log in an embedded
// SQLite database. The dynamic column order lives in its own table and the
// dynamic cells are stored as a JSON object per row, so arbitrary per-run
// columns survive a round trip without schema migrations.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tracking (
	position               INTEGER NOT NULL,
	id                     INTEGER NOT NULL,
	url                    TEXT NOT NULL DEFAULT '',
	name                   TEXT NOT NULL DEFAULT '',
	description            TEXT NOT NULL DEFAULT '',
	customer               TEXT NOT NULL DEFAULT '',
	source_name            TEXT NOT NULL DEFAULT '',
	source_email           TEXT NOT NULL DEFAULT '',
	status                 TEXT NOT NULL DEFAULT '',
	created_at             TEXT,
	updated_at             TEXT,
	response_deadline_date TEXT,
	roadmap_deadline_date  TEXT,
	response_met           INTEGER NOT NULL DEFAULT 0,
	roadmap_met            INTEGER NOT NULL DEFAULT 0,
	location_status        TEXT NOT NULL DEFAULT '',
	extras                 TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS tracking_columns (
	position INTEGER NOT NULL,
	name     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	type            TEXT NOT NULL,
	timestamp       TEXT NOT NULL,
	records_added   INTEGER NOT NULL,
	records_updated INTEGER NOT NULL
);`

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// Single-writer batch tool; one connection avoids lock contention.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema in %s: %w", path, err)
	}
	return &SQLiteStore{db: db, path: path, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Location returns the database file path.
func (s *SQLiteStore) Location() string {
	return s.path
}

// Exists reports whether a table has ever been written. Opening the store
// creates the schema, so presence of the file alone is not enough.
func (s *SQLiteStore) Exists() bool {
	var v string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'table_written'`).Scan(&v)
	return err == nil && v == "1"
}

// Read loads the whole tracking table in stored row order.
func (s *SQLiteStore) Read() (*models.Table, error) {
	if !s.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}

	table := &models.Table{}
	cols, err := s.db.Query(`SELECT name FROM tracking_columns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to read column order: %w", err)
	}
	defer cols.Close()
	for cols.Next() {
		var name string
		if err := cols.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		table.ExtraColumns = append(table.ExtraColumns, name)
	}
	if err := cols.Err(); err != nil {
		return nil, fmt.Errorf("failed to read column order: %w", err)
	}

	rows, err := s.db.Query(`SELECT id, url, name, description, customer,
		source_name, source_email, status, created_at, updated_at,
		response_deadline_date, roadmap_deadline_date, response_met,
		roadmap_met, location_status, extras
		FROM tracking ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.TrackedItem
		var created, updated, respDeadline, roadDeadline sql.NullString
		var extras string
		if err := rows.Scan(&it.ID, &it.URL, &it.Name, &it.Description,
			&it.Customer, &it.SourceName, &it.SourceEmail, &it.Status,
			&created, &updated, &respDeadline, &roadDeadline,
			&it.ResponseMet, &it.RoadmapMet, &it.LocationStatus, &extras); err != nil {
			return nil, fmt.Errorf("failed to scan tracking row: %w", err)
		}
		it.CreatedAt = nullTime(created)
		it.UpdatedAt = nullTime(updated)
		it.ResponseDeadline = nullTime(respDeadline)
		it.RoadmapDeadline = nullTime(roadDeadline)
		it.Extra = map[string]string{}
		if extras != "" {
			if err := json.Unmarshal([]byte(extras), &it.Extra); err != nil {
				return nil, fmt.Errorf("failed to decode extras for row %d: %w", it.ID, err)
			}
		}
		table.Rows = append(table.Rows, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracking rows: %w", err)
	}
	return table, nil
}

// Write replaces the tracking table and its column order in one
// transaction. The runs table is untouched.
func (s *SQLiteStore) Write(t *models.Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin write transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tracking`); err != nil {
		return fmt.Errorf("failed to clear tracking table: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tracking_columns`); err != nil {
		return fmt.Errorf("failed to clear column order: %w", err)
	}

	colStmt, err := tx.Prepare(`INSERT INTO tracking_columns (position, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare column insert: %w", err)
	}
	defer colStmt.Close()
	for i, name := range t.ExtraColumns {
		if _, err := colStmt.Exec(i, name); err != nil {
			return fmt.Errorf("failed to store column %q: %w", name, err)
		}
	}

	rowStmt, err := tx.Prepare(`INSERT INTO tracking (position, id, url, name,
		description, customer, source_name, source_email, status, created_at,
		updated_at, response_deadline_date, roadmap_deadline_date,
		response_met, roadmap_met, location_status, extras)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer rowStmt.Close()

	for i, it := range t.Rows {
		extras := it.Extra
		if extras == nil {
			extras = map[string]string{}
		}
		blob, err := json.Marshal(extras)
		if err != nil {
			return fmt.Errorf("failed to encode extras for row %d: %w", it.ID, err)
		}
		if _, err := rowStmt.Exec(i, it.ID, it.URL, it.Name, it.Description,
			it.Customer, it.SourceName, it.SourceEmail, it.Status,
			timeArg(it.CreatedAt), timeArg(it.UpdatedAt),
			timeArg(it.ResponseDeadline), timeArg(it.RoadmapDeadline),
			it.ResponseMet, it.RoadmapMet, it.LocationStatus, string(blob)); err != nil {
			return fmt.Errorf("failed to store row %d: %w", it.ID, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('table_written', '1')
		ON CONFLICT(key) DO UPDATE SET value = '1'`); err != nil {
		return fmt.Errorf("failed to mark table written: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table write: %w", err)
	}
	return nil
}

// RecordRun appends one audit row.
func (s *SQLiteStore) RecordRun(kind string, added, updated int) error {
	_, err := s.db.Exec(`INSERT INTO runs (type, timestamp, records_added, records_updated)
		VALUES (?, ?, ?, ?)`,
		kind, s.now().UTC().Format(models.TimeLayout), added, updated)
	if err != nil {
		return fmt.Errorf("failed to append run record: %w", err)
	}
	return nil
}

// ReadRuns returns the audit log oldest-first.
func (s *SQLiteStore) ReadRuns() ([]models.RunRecord, error) {
	rows, err := s.db.Query(`SELECT type, timestamp, records_added, records_updated FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	defer rows.Close()

	var out []models.RunRecord
	for rows.Next() {
		var r models.RunRecord
		var ts string
		if err := rows.Scan(&r.Type, &ts, &r.RecordsAdded, &r.RecordsUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		if t := models.ParseTime(ts); t != nil {
			r.Timestamp = *t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	return models.ParseTime(v.String)
}

func timeArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(models.TimeLayout)
}
