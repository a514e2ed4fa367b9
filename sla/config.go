// sla/config.go
package sla

import "time"

// Config carries every threshold the calculator, filter pipeline and
// reconciliation engine need. Values are passed in at construction so the
// pure components stay testable in isolation.
type Config struct {
	// ResponseWindowDays is the inclusive number of days after creation
	// within which a record must leave the initial status.
	ResponseWindowDays int
	// RoadmapWindowDays is the inclusive number of days after creation
	// within which a record must reach a terminal decision status.
	RoadmapWindowDays int
	// InitialStatus is the "not yet started" status label.
	InitialStatus string
	// TerminalStatuses are the decision states that trigger the roadmap
	// deadline.
	TerminalStatuses []string
	// LookbackDays scopes the incremental delta fetch.
	LookbackDays int
	// URLPrefix is prepended to record ids to build row URLs.
	URLPrefix string

	Filters FilterConfig
}

// FilterConfig holds the exclusion thresholds for the filter pipeline.
// These look like one-off operational cleanup values, so they are supplied
// here rather than hard-coded in the rules.
type FilterConfig struct {
	// CreatedAfter is the global inclusion floor: records created before
	// this instant are dropped. Zero disables the rule.
	CreatedAfter time.Time
	// ExcludeSource names one source whose records are dropped when
	// created strictly before ExcludeSourceBefore. Empty disables the rule.
	ExcludeSource       string
	ExcludeSourceBefore time.Time
	// ExcludeCustomer drops records whose customer field equals this
	// value exactly, no trimming, case-sensitive. Empty disables the rule.
	ExcludeCustomer string
}

// DefaultConfig returns the production thresholds: 14-day response window,
// 60-day roadmap window, 14-day delta lookback, and the stock status labels.
func DefaultConfig() Config {
	return Config{
		ResponseWindowDays: 14,
		RoadmapWindowDays:  60,
		InitialStatus:      "On deck",
		TerminalStatuses:   []string{"Accepted", "Rejected"},
		LookbackDays:       14,
		Filters: FilterConfig{
			ExcludeCustomer: "TEST",
		},
	}
}

func (c Config) isTerminal(status string) bool {
	for _, s := range c.TerminalStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// responseOpen reports whether a record has not yet started responding:
// empty status is treated the same as the initial status.
func (c Config) responseOpen(status string) bool {
	return status == "" || status == c.InitialStatus
}
