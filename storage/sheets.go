// storage/sheets.go
package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/gewnthar/ideatrack/models"
)

// Default tab titles for the two regions of the spreadsheet.
const (
	DefaultTrackingSheet = "Tracking"
	DefaultRunsSheet     = "Runs"
)

// SheetsStore persists the tracking table in a Google spreadsheet. The main
// table and the Runs log are separate tabs of the same spreadsheet, so a
// full rewrite of the tracking tab leaves the audit trail alone.
type SheetsStore struct {
	ctx           context.Context
	svc           *sheets.Service
	spreadsheetID string
	trackingSheet string
	runsSheet     string
	now           func() time.Time
}

// NewSheetsStore authenticates with a service-account credentials file and
// binds to one spreadsheet. The context scopes every API call made through
// the store; a reconciliation pass holds a single store for its lifetime.
func NewSheetsStore(ctx context.Context, credentialsFile, spreadsheetID, trackingSheet, runsSheet string) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	if trackingSheet == "" {
		trackingSheet = DefaultTrackingSheet
	}
	if runsSheet == "" {
		runsSheet = DefaultRunsSheet
	}
	return &SheetsStore{
		ctx:           ctx,
		svc:           svc,
		spreadsheetID: spreadsheetID,
		trackingSheet: trackingSheet,
		runsSheet:     runsSheet,
		now:           time.Now,
	}, nil
}

// Location identifies the spreadsheet and tab.
func (s *SheetsStore) Location() string {
	return fmt.Sprintf("spreadsheet %s (%s)", s.spreadsheetID, s.trackingSheet)
}

// Exists reports whether the tracking tab is present and non-empty.
func (s *SheetsStore) Exists() bool {
	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf(s.trackingSheet)).
		Context(s.ctx).Do()
	if err != nil {
		return false
	}
	return len(vr.Values) > 0
}

// Read loads the whole tracking tab.
func (s *SheetsStore) Read() (*models.Table, error) {
	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf(s.trackingSheet)).
		Context(s.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", s.trackingSheet, err)
	}
	if len(vr.Values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Location())
	}

	header := cellsToStrings(vr.Values[0])
	records := make([][]string, 0, len(vr.Values)-1)
	for _, row := range vr.Values[1:] {
		records = append(records, cellsToStrings(row))
	}
	table, err := models.TableFromRecords(header, records)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", s.trackingSheet, err)
	}
	return table, nil
}

// Write clears the tracking tab and rewrites it from scratch.
func (s *SheetsStore) Write(t *models.Table) error {
	if err := s.ensureSheet(s.trackingSheet); err != nil {
		return err
	}
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, s.rangeOf(s.trackingSheet),
		&sheets.ClearValuesRequest{}).Context(s.ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", s.trackingSheet, err)
	}

	values := [][]interface{}{stringsToCells(t.Header())}
	for _, rec := range t.Records() {
		values = append(values, stringsToCells(rec))
	}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rangeOf(s.trackingSheet),
		&sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", s.trackingSheet, err)
	}
	return nil
}

// RecordRun appends one audit row to the Runs tab, creating the tab and its
// header on first use.
func (s *SheetsStore) RecordRun(kind string, added, updated int) error {
	if err := s.ensureSheet(s.runsSheet); err != nil {
		return err
	}

	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf(s.runsSheet)).
		Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read runs sheet %s: %w", s.runsSheet, err)
	}
	if len(vr.Values) == 0 {
		header := stringsToCells(models.RunColumns)
		if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rangeOf(s.runsSheet),
			&sheets.ValueRange{Values: [][]interface{}{header}}).
			ValueInputOption("RAW").Context(s.ctx).Do(); err != nil {
			return fmt.Errorf("failed to write runs header: %w", err)
		}
	}

	row := []interface{}{
		kind,
		s.now().UTC().Format(models.TimeLayout),
		strconv.Itoa(added),
		strconv.Itoa(updated),
	}
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.rangeOf(s.runsSheet),
		&sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append run record: %w", err)
	}
	return nil
}

// ReadRuns returns the audit log oldest-first. An absent tab or an empty
// region means zero prior runs.
func (s *SheetsStore) ReadRuns() ([]models.RunRecord, error) {
	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf(s.runsSheet)).
		Context(s.ctx).Do()
	if err != nil {
		return nil, nil
	}
	var out []models.RunRecord
	for i, row := range vr.Values {
		if i == 0 {
			continue // header
		}
		cells := cellsToStrings(row)
		if len(cells) < 4 {
			continue
		}
		rec := models.RunRecord{Type: cells[0]}
		if t := models.ParseTime(cells[1]); t != nil {
			rec.Timestamp = *t
		}
		rec.RecordsAdded, _ = strconv.Atoi(cells[2])
		rec.RecordsUpdated, _ = strconv.Atoi(cells[3])
		out = append(out, rec)
	}
	return out, nil
}

func (s *SheetsStore) ensureSheet(title string) error {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet %s: %w", s.spreadsheetID, err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}
	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", title, err)
	}
	return nil
}

// rangeOf quotes a tab title for use as an A1 range covering the whole tab.
func (s *SheetsStore) rangeOf(title string) string {
	return "'" + title + "'"
}

func cellsToStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = fmt.Sprint(c)
	}
	return out
}

func stringsToCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}
