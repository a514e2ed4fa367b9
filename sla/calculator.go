// sla/calculator.go
//
// Pure compliance arithmetic. No I/O; the clock is injected so boundary
// behavior is testable.
package sla

import (
	"time"

	"github.com/gewnthar/ideatrack/models"
)

// ExistingDeadlines carries previously persisted deadline dates into a
// recomputation. Non-nil values are historical facts and are never
// overwritten.
type ExistingDeadlines struct {
	Response *time.Time
	Roadmap  *time.Time
}

// Snapshot is the compliance state derived for one record.
type Snapshot struct {
	ResponseDeadline *time.Time
	RoadmapDeadline  *time.Time

	// Met: the milestone was reached, the status is still valid for the
	// category, and it happened within the window (inclusive).
	ResponseMet bool
	RoadmapMet  bool

	// In good standing: met, or not yet overdue.
	ResponseInGoodStanding bool
	RoadmapInGoodStanding  bool
}

// Calculator computes compliance snapshots against configured windows.
type Calculator struct {
	cfg Config
	now func() time.Time
}

// NewCalculator returns a calculator using the wall clock.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg, now: time.Now}
}

// NewCalculatorAt returns a calculator with a fixed clock for tests.
func NewCalculatorAt(cfg Config, now func() time.Time) *Calculator {
	return &Calculator{cfg: cfg, now: now}
}

// Compute derives the compliance snapshot for a record.
//
// Deadline dates are stamped from updated_at (falling back to the current
// time) the first time the entry condition holds, and are write-once after
// that. Compliance math always anchors on created_at; a missing or
// unparseable created_at forces met=false and good-standing=false for both
// categories while stamping still proceeds.
func (c *Calculator) Compute(idea models.RawIdea, existing ExistingDeadlines) Snapshot {
	status := ExtractStatus(idea.CustomDropdownFields)
	created := models.ParseTime(idea.CreatedAt)
	updated := models.ParseTime(idea.UpdatedAt)

	stamp := c.now().UTC()
	if updated != nil {
		stamp = *updated
	}

	snap := Snapshot{
		ResponseDeadline: existing.Response,
		RoadmapDeadline:  existing.Roadmap,
	}

	// Stamp deadlines once. The response deadline records when the status
	// first left the initial state; the roadmap deadline records when it
	// first reached a terminal decision.
	if snap.ResponseDeadline == nil && !c.cfg.responseOpen(status) {
		d := stamp
		snap.ResponseDeadline = &d
	}
	if snap.RoadmapDeadline == nil && c.cfg.isTerminal(status) {
		d := stamp
		snap.RoadmapDeadline = &d
	}

	if created != nil {
		if snap.ResponseDeadline != nil && !c.cfg.responseOpen(status) {
			snap.ResponseMet = daysBetween(*created, *snap.ResponseDeadline) <= c.cfg.ResponseWindowDays
		}
		if snap.RoadmapDeadline != nil && c.cfg.isTerminal(status) {
			snap.RoadmapMet = daysBetween(*created, *snap.RoadmapDeadline) <= c.cfg.RoadmapWindowDays
		}

		now := c.now().UTC()
		snap.ResponseInGoodStanding = snap.ResponseMet ||
			(snap.ResponseDeadline == nil && c.cfg.responseOpen(status) &&
				daysBetween(*created, now) <= c.cfg.ResponseWindowDays)
		snap.RoadmapInGoodStanding = snap.RoadmapMet ||
			(snap.RoadmapDeadline == nil && !c.cfg.isTerminal(status) &&
				daysBetween(*created, now) <= c.cfg.RoadmapWindowDays)
	}

	return snap
}

// daysBetween counts whole elapsed days from a to b, truncating partial
// days. Matches the inclusive "<= window" boundary: responding at exactly
// window days counts as met.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
