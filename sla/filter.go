// sla/filter.go
package sla

import "github.com/gewnthar/ideatrack/models"

// FilterStats reports how many records each exclusion rule removed, counted
// in the order the rules ran.
type FilterStats struct {
	Initial          int
	DateFiltered     int
	SourceFiltered   int
	CustomerFiltered int
	Remaining        int
}

// TotalFiltered is the number of records removed across all rules.
func (s FilterStats) TotalFiltered() int {
	return s.Initial - s.Remaining
}

// ApplyFilters runs the ordered exclusion rules over a batch:
//
//  1. keep only records created on or after the configured floor
//  2. drop records from one named source created strictly before a second,
//     independent cutoff
//  3. drop records whose customer equals the sentinel value exactly
//
// The retained set does not depend on rule order, but the per-rule counts
// reflect sequential application for user-facing diagnostics. An empty
// batch returns immediately with all-zero statistics.
func ApplyFilters(items []models.RawIdea, cfg FilterConfig) ([]models.RawIdea, FilterStats) {
	stats := FilterStats{Initial: len(items)}
	if len(items) == 0 {
		return items, stats
	}

	kept := items
	if !cfg.CreatedAfter.IsZero() {
		next := kept[:0:0]
		for _, it := range kept {
			created := models.ParseTime(it.CreatedAt)
			// A record whose creation time cannot be read cannot be
			// shown to satisfy the floor; it is dropped.
			if created != nil && !created.Before(cfg.CreatedAfter) {
				next = append(next, it)
			}
		}
		stats.DateFiltered = len(kept) - len(next)
		kept = next
	}

	if cfg.ExcludeSource != "" {
		next := kept[:0:0]
		for _, it := range kept {
			created := models.ParseTime(it.CreatedAt)
			if it.SourceName == cfg.ExcludeSource && created != nil && created.Before(cfg.ExcludeSourceBefore) {
				continue
			}
			next = append(next, it)
		}
		stats.SourceFiltered = len(kept) - len(next)
		kept = next
	}

	if cfg.ExcludeCustomer != "" {
		next := kept[:0:0]
		for _, it := range kept {
			if it.Customer == cfg.ExcludeCustomer {
				continue
			}
			next = append(next, it)
		}
		stats.CustomerFiltered = len(kept) - len(next)
		kept = next
	}

	stats.Remaining = len(kept)
	return kept, stats
}
