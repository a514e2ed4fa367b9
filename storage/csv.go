// storage/csv.go
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/ideatrack/models"
)

// CSVStore persists the tracking table as a local CSV file with the Runs
// log in an independent sidecar file next to it, so rewriting the main
// table can never clobber the audit trail.
type CSVStore struct {
	path string
	now  func() time.Time
}

// NewCSVStore returns a store backed by the given CSV file path. The Runs
// sidecar lives at "<path minus .csv>_runs.csv".
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path, now: time.Now}
}

func (s *CSVStore) runsPath() string {
	return strings.TrimSuffix(s.path, filepath.Ext(s.path)) + "_runs.csv"
}

// Exists reports whether the tracking file is present.
func (s *CSVStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Location returns the tracking file path.
func (s *CSVStore) Location() string {
	return s.path
}

// Read loads the whole tracking table.
func (s *CSVStore) Read() (*models.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to open tracking file %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking file %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, s.path)
	}
	table, err := models.TableFromRecords(records[0], records[1:])
	if err != nil {
		return nil, fmt.Errorf("tracking file %s: %w", s.path, err)
	}
	return table, nil
}

// Write replaces the tracking file. The new content is written to a temp
// file in the same directory and renamed over the target so readers never
// see a partial table. The Runs sidecar is untouched.
func (s *CSVStore) Write(t *models.Table) error {
	rows := make([][]string, 0, len(t.Rows)+1)
	rows = append(rows, t.Header())
	rows = append(rows, t.Records()...)
	return s.writeFileAtomic(s.path, rows)
}

// RecordRun appends one audit row to the Runs sidecar.
func (s *CSVStore) RecordRun(kind string, added, updated int) error {
	runs, err := s.ReadRuns()
	if err != nil {
		return err
	}
	runs = append(runs, models.RunRecord{
		Type:           kind,
		Timestamp:      s.now().UTC().Truncate(time.Second),
		RecordsAdded:   added,
		RecordsUpdated: updated,
	})

	recs := make([]csvRunRecord, len(runs))
	for i, r := range runs {
		recs[i] = csvRunRecord{
			Type:           r.Type,
			Timestamp:      csvTime(r.Timestamp),
			RecordsAdded:   r.RecordsAdded,
			RecordsUpdated: r.RecordsUpdated,
		}
	}
	data, err := csvutil.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to encode runs log: %w", err)
	}
	return s.writeBytesAtomic(s.runsPath(), data)
}

// ReadRuns loads the audit log. A missing sidecar means zero prior runs.
func (s *CSVStore) ReadRuns() ([]models.RunRecord, error) {
	data, err := os.ReadFile(s.runsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs log %s: %w", s.runsPath(), err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var recs []csvRunRecord
	if err := csvutil.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode runs log %s: %w", s.runsPath(), err)
	}
	out := make([]models.RunRecord, len(recs))
	for i, r := range recs {
		out[i] = models.RunRecord{
			Type:           r.Type,
			Timestamp:      time.Time(r.Timestamp),
			RecordsAdded:   r.RecordsAdded,
			RecordsUpdated: r.RecordsUpdated,
		}
	}
	return out, nil
}

func (s *CSVStore) writeFileAtomic(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (s *CSVStore) writeBytesAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// csvTime renders timestamps in the table's fixed layout instead of the
// RFC 3339 default.
type csvTime time.Time

func (t csvTime) MarshalText() ([]byte, error) {
	return []byte(time.Time(t).Format(models.TimeLayout)), nil
}

func (t *csvTime) UnmarshalText(b []byte) error {
	parsed := models.ParseTime(string(b))
	if parsed == nil {
		*t = csvTime(time.Time{})
		return nil
	}
	*t = csvTime(*parsed)
	return nil
}

// csvRunRecord is the on-disk shape of one Runs row.
type csvRunRecord struct {
	Type           string  `csv:"type"`
	Timestamp      csvTime `csv:"timestamp"`
	RecordsAdded   int     `csv:"records_added"`
	RecordsUpdated int     `csv:"records_updated"`
}
