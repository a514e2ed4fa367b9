// models/item.go
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the textual format used for every date/time cell in the
// persisted table. No timezone suffix; values are naive local-free UTC.
const TimeLayout = "2006-01-02 15:04:05"

// TrackingColumns is the fixed header prefix of the main table. The dynamic
// columns (custom attribute columns, then one 1/0 column per team sorted by
// team id) follow location_status.
var TrackingColumns = []string{
	"id", "url", "name", "description", "customer",
	"source_name", "source_email", "status",
	"created_at", "updated_at",
	"response_deadline_date", "roadmap_deadline_date",
	"response_met", "roadmap_met",
	"location_status",
}

// TrackedItem is one row of the persisted tracking table.
//
// ResponseDeadline and RoadmapDeadline are write-once: once non-nil they are
// carried forward verbatim on every recomputation. The two good-standing
// booleans are derived fresh each pass and are not persisted columns.
type TrackedItem struct {
	ID          int64
	URL         string
	Name        string
	Description string
	Customer    string
	SourceName  string
	SourceEmail string
	Status      string

	CreatedAt *time.Time
	UpdatedAt *time.Time

	ResponseDeadline *time.Time
	RoadmapDeadline  *time.Time
	ResponseMet      bool
	RoadmapMet       bool

	LocationStatus string

	// Extra holds the dynamic column cells keyed by column name.
	// Team columns hold "1"/"0", custom attribute columns hold free text.
	Extra map[string]string

	// Derived per pass, reported but never written to the table.
	ResponseInGoodStanding bool
	RoadmapInGoodStanding  bool
}

// Clone returns a deep copy of the item.
func (it TrackedItem) Clone() TrackedItem {
	out := it
	out.CreatedAt = cloneTime(it.CreatedAt)
	out.UpdatedAt = cloneTime(it.UpdatedAt)
	out.ResponseDeadline = cloneTime(it.ResponseDeadline)
	out.RoadmapDeadline = cloneTime(it.RoadmapDeadline)
	if it.Extra != nil {
		out.Extra = make(map[string]string, len(it.Extra))
		for k, v := range it.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Table is the in-memory form of the tracking table: the dynamic column
// names in their persisted order plus all rows.
type Table struct {
	ExtraColumns []string
	Rows         []TrackedItem
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		ExtraColumns: append([]string(nil), t.ExtraColumns...),
		Rows:         make([]TrackedItem, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Header returns the full column header, fixed prefix plus dynamic columns.
func (t *Table) Header() []string {
	return append(append([]string(nil), TrackingColumns...), t.ExtraColumns...)
}

// Records renders every row into textual cells in header order.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = t.record(r)
	}
	return out
}

func (t *Table) record(it TrackedItem) []string {
	cells := []string{
		strconv.FormatInt(it.ID, 10),
		it.URL,
		it.Name,
		it.Description,
		it.Customer,
		it.SourceName,
		it.SourceEmail,
		it.Status,
		FormatTime(it.CreatedAt),
		FormatTime(it.UpdatedAt),
		FormatTime(it.ResponseDeadline),
		FormatTime(it.RoadmapDeadline),
		strconv.FormatBool(it.ResponseMet),
		strconv.FormatBool(it.RoadmapMet),
		it.LocationStatus,
	}
	for _, col := range t.ExtraColumns {
		cells = append(cells, it.Extra[col])
	}
	return cells
}

// TableFromRecords rebuilds a Table from a stored header and cell rows.
// The header must start with the fixed column prefix; everything after it is
// treated as dynamic columns. Timestamp cells that fail to parse degrade to
// unset rather than failing the whole read.
func TableFromRecords(header []string, records [][]string) (*Table, error) {
	if len(header) < len(TrackingColumns) {
		return nil, fmt.Errorf("tracking header has %d columns, want at least %d", len(header), len(TrackingColumns))
	}
	for i, want := range TrackingColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, fmt.Errorf("unexpected tracking column %d: got %q, want %q", i, header[i], want)
		}
	}

	t := &Table{ExtraColumns: append([]string(nil), header[len(TrackingColumns):]...)}
	for n, rec := range records {
		if len(rec) < len(TrackingColumns) {
			return nil, fmt.Errorf("tracking row %d has %d cells, want at least %d", n+1, len(rec), len(TrackingColumns))
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tracking row %d: bad id %q: %w", n+1, rec[0], err)
		}
		it := TrackedItem{
			ID:               id,
			URL:              rec[1],
			Name:             rec[2],
			Description:      rec[3],
			Customer:         rec[4],
			SourceName:       rec[5],
			SourceEmail:      rec[6],
			Status:           rec[7],
			CreatedAt:        ParseTime(rec[8]),
			UpdatedAt:        ParseTime(rec[9]),
			ResponseDeadline: ParseTime(rec[10]),
			RoadmapDeadline:  ParseTime(rec[11]),
			ResponseMet:      parseBool(rec[12]),
			RoadmapMet:       parseBool(rec[13]),
			LocationStatus:   rec[14],
			Extra:            make(map[string]string, len(t.ExtraColumns)),
		}
		for i, col := range t.ExtraColumns {
			idx := len(TrackingColumns) + i
			if idx < len(rec) {
				it.Extra[col] = rec[idx]
			}
		}
		t.Rows = append(t.Rows, it)
	}
	return t, nil
}

// FormatTime renders a nullable timestamp cell; nil becomes an empty cell.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimeLayout)
}

// ParseTime parses a timestamp in any of the shapes this system meets: the
// table's own layout, RFC 3339 (API payloads), or a bare date. Unparseable
// or empty input degrades to nil, never an error.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{
		TimeLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return false
	}
	return b
}
