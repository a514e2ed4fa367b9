// sla/manager.go
//
// Orchestration of the two reconciliation flows: full resync (init) and
// incremental update. Composes the item source, the filter pipeline, the
// compliance calculator and the storage backend.
package sla

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/gewnthar/ideatrack/models"
	"github.com/gewnthar/ideatrack/storage"
)

// Source is the external item collaborator the engine consumes. Detail
// fetching and time-scoping of the delta happen on the source's side; the
// engine consumes results sequentially.
type Source interface {
	FetchAll(ctx context.Context) ([]models.ItemResult, error)
	FetchUpdatedSince(ctx context.Context, since time.Time) ([]models.ItemResult, error)
	// Teams returns the group id to name lookup, built once per pass.
	Teams(ctx context.Context) (map[int64]string, error)
}

// Manager runs reconciliation passes against a Store and a Source.
type Manager struct {
	cfg  Config
	calc *Calculator
	log  *zap.SugaredLogger
	now  func() time.Time
}

// NewManager builds a manager with the wall clock.
func NewManager(cfg Config, log *zap.SugaredLogger) *Manager {
	return &Manager{cfg: cfg, calc: NewCalculator(cfg), log: log, now: time.Now}
}

// NewManagerAt builds a manager with a fixed clock for tests.
func NewManagerAt(cfg Config, log *zap.SugaredLogger, now func() time.Time) *Manager {
	return &Manager{cfg: cfg, calc: NewCalculatorAt(cfg, now), log: log, now: now}
}

// RunInit performs a full resync: every eligible external record becomes a
// row, computed with no prior deadline facts, and the whole table is
// written followed by one init audit row.
func (m *Manager) RunInit(ctx context.Context, store storage.Store, src Source) error {
	m.log.Infof("Service: Initializing tracking table at %s", store.Location())

	results, err := src.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch records: %w", err)
	}
	teams, err := src.Teams(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch team mapping: %w", err)
	}
	m.log.Infof("Service: Fetched %d records, %d teams", len(results), len(teams))

	ideas := m.usable(results)
	ideas, stats := ApplyFilters(ideas, m.cfg.Filters)
	m.logFilterStats(stats)

	text, dropdown := collectLabels(ideas)
	teamCols := TeamColumnNames(teams)
	table := &models.Table{ExtraColumns: extraColumns(text, dropdown, teamCols)}

	statusCounts := map[string]int{}
	for _, idea := range ideas {
		item := buildItem(idea, m.cfg.URLPrefix, text, dropdown, teams)
		applySnapshot(&item, m.calc.Compute(idea, ExistingDeadlines{}))
		table.Rows = append(table.Rows, item)
		statusCounts[labelOrNone(item.Status)]++
	}

	if err := store.Write(table); err != nil {
		return fmt.Errorf("failed to write tracking table: %w", err)
	}
	if err := store.RecordRun(models.RunTypeInit, len(table.Rows), 0); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	m.logSummary("INITIALIZATION", table, statusCounts)
	return nil
}

// RunUpdate performs an incremental pass: fetch the lookback delta, filter
// it, and reconcile it against the stored table with insert, update, skip
// and opportunistic-delete semantics. A missing store self-heals to a full
// resync.
func (m *Manager) RunUpdate(ctx context.Context, store storage.Store, src Source) error {
	if !store.Exists() {
		m.log.Infof("Service: No tracking table at %s yet; running initial resync instead", store.Location())
		return m.RunInit(ctx, store, src)
	}

	since := m.now().UTC().AddDate(0, 0, -m.cfg.LookbackDays)
	m.log.Infof("Service: Fetching records updated since %s (%d-day lookback)",
		since.Format("2006-01-02"), m.cfg.LookbackDays)

	results, err := src.FetchUpdatedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to fetch delta: %w", err)
	}
	teams, err := src.Teams(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch team mapping: %w", err)
	}
	m.log.Infof("Service: Fetched %d changed records, %d teams", len(results), len(teams))

	usable := m.usable(results)

	// Observed = successfully classified this pass. Records whose fetch
	// failed outright never count as observed, so cleanup cannot delete a
	// row because of a fetch failure.
	observed := map[int64]bool{}
	for _, idea := range usable {
		observed[idea.ID] = true
	}

	filtered, stats := ApplyFilters(usable, m.cfg.Filters)
	m.logFilterStats(stats)
	inFilter := map[int64]bool{}
	for _, idea := range filtered {
		inFilter[idea.ID] = true
	}

	table, err := store.Read()
	if err != nil {
		return fmt.Errorf("failed to read tracking table: %w", err)
	}
	m.log.Infof("Service: Existing table has %d rows", len(table.Rows))

	index := map[int64]int{}
	for i, row := range table.Rows {
		index[row.ID] = i
	}

	text, dropdown := collectLabels(filtered)
	teamCols := TeamColumnNames(teams)
	m.mergeColumns(table, text, dropdown, teamCols)

	var added, updated, skipped int
	for _, idea := range filtered {
		if i, ok := index[idea.ID]; ok {
			stored := table.Rows[i]
			if !fetchedNewer(models.ParseTime(idea.UpdatedAt), stored.UpdatedAt) {
				skipped++
				continue
			}
			m.log.Infof("Service: Updating record %d: %s", idea.ID, truncate(idea.Name, 50))
			item := buildItem(idea, m.cfg.URLPrefix, text, dropdown, teams)
			applySnapshot(&item, m.calc.Compute(idea, ExistingDeadlines{
				Response: stored.ResponseDeadline,
				Roadmap:  stored.RoadmapDeadline,
			}))
			m.fillDefaults(&item, table.ExtraColumns, teams)
			table.Rows[i] = item
			updated++
		} else {
			m.log.Infof("Service: Adding record %d: %s", idea.ID, truncate(idea.Name, 50))
			item := buildItem(idea, m.cfg.URLPrefix, text, dropdown, teams)
			applySnapshot(&item, m.calc.Compute(idea, ExistingDeadlines{}))
			m.fillDefaults(&item, table.ExtraColumns, teams)
			table.Rows = append(table.Rows, item)
			index[idea.ID] = len(table.Rows) - 1
			added++
		}
	}

	// Opportunistic cleanup: rows re-observed this pass that no longer
	// pass the filters. Rows not fetched are left untouched.
	removed := m.removeFilteredOut(table, observed, inFilter)

	if err := store.Write(table); err != nil {
		return fmt.Errorf("failed to write tracking table: %w", err)
	}
	if err := store.RecordRun(models.RunTypeUpdate, added, updated); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	m.log.Infof("Service: Update complete: %d added, %d updated, %d removed, %d skipped; table now has %d rows",
		added, updated, removed, skipped, len(table.Rows))
	return nil
}

// usable keeps the records the engine can classify: full fetches and
// partial ones (best available data). Failed records are logged and
// conservatively excluded.
func (m *Manager) usable(results []models.ItemResult) []models.RawIdea {
	var out []models.RawIdea
	for _, r := range results {
		switch r.Outcome {
		case models.FetchFailed:
			m.log.Warnf("Service: Skipping record %d, fetch failed: %v", r.Idea.ID, r.Err)
		case models.FetchPartial:
			m.log.Warnf("Service: Using partial data for record %d: %v", r.Idea.ID, r.Err)
			out = append(out, r.Idea)
		default:
			out = append(out, r.Idea)
		}
	}
	return out
}

// mergeColumns adopts dynamic columns this pass introduced. Existing rows
// get "0" for a new team column and an empty cell otherwise, and the column
// order is rebuilt as custom columns first, then team columns by team id.
func (m *Manager) mergeColumns(table *models.Table, text, dropdown, teamCols []string) {
	teamName := map[string]bool{}
	for _, n := range teamCols {
		teamName[n] = true
	}
	have := map[string]bool{}
	for _, c := range table.ExtraColumns {
		have[c] = true
	}

	// Stored columns that are not team columns keep their stored order.
	var customs []string
	for _, c := range table.ExtraColumns {
		if !teamName[c] {
			customs = append(customs, c)
		}
	}
	for _, c := range extraColumns(text, dropdown, nil) {
		if !have[c] {
			customs = append(customs, c)
			m.log.Infof("Service: Adopting new column %q", c)
		}
	}

	rebuilt := append(append([]string(nil), customs...), teamCols...)
	for _, c := range rebuilt {
		if !have[c] {
			def := ""
			if teamName[c] {
				def = "0"
			}
			for i := range table.Rows {
				if table.Rows[i].Extra == nil {
					table.Rows[i].Extra = map[string]string{}
				}
				table.Rows[i].Extra[c] = def
			}
		}
	}
	table.ExtraColumns = rebuilt
}

// fillDefaults pads a freshly built row with cells for columns that exist
// in the table but not in this record's batch.
func (m *Manager) fillDefaults(it *models.TrackedItem, columns []string, teams map[int64]string) {
	teamName := map[string]bool{}
	for _, n := range teams {
		teamName[n] = true
	}
	for _, c := range columns {
		if _, ok := it.Extra[c]; !ok {
			if teamName[c] {
				it.Extra[c] = "0"
			} else {
				it.Extra[c] = ""
			}
		}
	}
}

func (m *Manager) removeFilteredOut(table *models.Table, observed, inFilter map[int64]bool) int {
	kept := table.Rows[:0:0]
	removed := 0
	for _, row := range table.Rows {
		if observed[row.ID] && !inFilter[row.ID] {
			m.log.Infof("Service: Removing record %d, no longer passes filters: %s",
				row.ID, truncate(row.Name, 50))
			removed++
			continue
		}
		kept = append(kept, row)
	}
	table.Rows = kept
	return removed
}

// fetchedNewer reports whether the fetched timestamp is strictly newer than
// the stored one. Missing fetched time means skip; missing stored time
// means the fetch wins.
func fetchedNewer(fetched, stored *time.Time) bool {
	if fetched == nil {
		return false
	}
	if stored == nil {
		return true
	}
	return fetched.After(*stored)
}

func (m *Manager) logFilterStats(stats FilterStats) {
	m.log.Infof("Service: Applying filtering rules...")
	m.log.Infof("  Filtered by creation date floor: %d", stats.DateFiltered)
	m.log.Infof("  Filtered by source cutoff rule: %d", stats.SourceFiltered)
	m.log.Infof("  Filtered by sentinel customer: %d", stats.CustomerFiltered)
	m.log.Infof("  Total filtered: %d, remaining: %d", stats.TotalFiltered(), stats.Remaining)
}

func (m *Manager) logSummary(title string, table *models.Table, statusCounts map[string]int) {
	m.log.Infof("Service: %s COMPLETE, %d rows tracked", title, len(table.Rows))

	statuses := make([]string, 0, len(statusCounts))
	for s := range statusCounts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		m.log.Infof("  %s: %d", s, statusCounts[s])
	}

	var respMet, roadMet int
	for _, row := range table.Rows {
		if row.ResponseMet {
			respMet++
		}
		if row.RoadmapMet {
			roadMet++
		}
	}
	if n := len(table.Rows); n > 0 {
		m.log.Infof("Service: Response SLA met: %d/%d, Roadmap SLA met: %d/%d", respMet, n, roadMet, n)
	}
}

func labelOrNone(status string) string {
	if status == "" {
		return "(no status)"
	}
	return status
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
