package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gewnthar/ideatrack/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// rawIdea builds a minimal record with the given dropdown status. An empty
// status leaves the attribute bag without a status field entirely.
func rawIdea(status, created, updated string) models.RawIdea {
	idea := models.RawIdea{
		ID:        1,
		Name:      "test idea",
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if status != "" {
		idea.CustomDropdownFields = models.FieldList{
			{Label: "Idea Status", Value: strPtr(status)},
		}
	}
	return idea
}

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func TestCompute_OpenStatusStampsNothing(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-01-10 00:00:00")))

	snap := calc.Compute(rawIdea("On deck", "2024-01-01 00:00:00", "2024-01-05 00:00:00"), ExistingDeadlines{})

	assert.Nil(t, snap.ResponseDeadline)
	assert.Nil(t, snap.RoadmapDeadline)
	assert.False(t, snap.ResponseMet)
	assert.False(t, snap.RoadmapMet)
	// Nine days in, both windows are still open.
	assert.True(t, snap.ResponseInGoodStanding)
	assert.True(t, snap.RoadmapInGoodStanding)
}

func TestCompute_ResponseStampedFromUpdatedAt(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-01-20 00:00:00")))

	snap := calc.Compute(rawIdea("In Review", "2024-01-01 00:00:00", "2024-01-15 00:00:00"), ExistingDeadlines{})

	if assert.NotNil(t, snap.ResponseDeadline) {
		assert.Equal(t, ts("2024-01-15 00:00:00"), *snap.ResponseDeadline)
	}
	assert.Nil(t, snap.RoadmapDeadline)
	// 14 days elapsed, window is inclusive.
	assert.True(t, snap.ResponseMet)
	assert.True(t, snap.ResponseInGoodStanding)
	assert.False(t, snap.RoadmapMet)
	// Not terminal yet and only 19 days old, so roadmap is still on track.
	assert.True(t, snap.RoadmapInGoodStanding)
}

func TestCompute_ResponseOneDayPastWindow(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-01-20 00:00:00")))

	snap := calc.Compute(rawIdea("In Review", "2024-01-01 00:00:00", "2024-01-16 00:00:00"), ExistingDeadlines{})

	if assert.NotNil(t, snap.ResponseDeadline) {
		assert.Equal(t, ts("2024-01-16 00:00:00"), *snap.ResponseDeadline)
	}
	assert.False(t, snap.ResponseMet)
	assert.False(t, snap.ResponseInGoodStanding)
}

func TestCompute_PartialDaysTruncate(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-01-20 00:00:00")))

	// 14 days and 23 hours truncates to 14 whole days: still met.
	snap := calc.Compute(rawIdea("In Review", "2024-01-01 00:00:00", "2024-01-15 23:00:00"), ExistingDeadlines{})
	assert.True(t, snap.ResponseMet)
}

func TestCompute_TerminalStatusStampsBothDeadlines(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-03-10 00:00:00")))

	// 61 days from creation to the terminal decision: roadmap missed.
	snap := calc.Compute(rawIdea("Accepted", "2024-01-01 00:00:00", "2024-03-02 00:00:00"), ExistingDeadlines{})

	if assert.NotNil(t, snap.ResponseDeadline) {
		assert.Equal(t, ts("2024-03-02 00:00:00"), *snap.ResponseDeadline)
	}
	if assert.NotNil(t, snap.RoadmapDeadline) {
		assert.Equal(t, ts("2024-03-02 00:00:00"), *snap.RoadmapDeadline)
	}
	assert.False(t, snap.ResponseMet)
	assert.False(t, snap.RoadmapMet)
	assert.False(t, snap.RoadmapInGoodStanding)
}

func TestCompute_TerminalWithinRoadmapWindow(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-03-10 00:00:00")))

	// Exactly 60 days: inclusive boundary counts as met.
	snap := calc.Compute(rawIdea("Accepted", "2024-01-01 00:00:00", "2024-03-01 00:00:00"), ExistingDeadlines{})

	assert.True(t, snap.RoadmapMet)
	assert.True(t, snap.RoadmapInGoodStanding)
}

func TestCompute_ExistingDeadlinesNeverOverwritten(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-02-01 00:00:00")))

	first := ts("2024-01-03 00:00:00")
	snap := calc.Compute(
		rawIdea("Accepted", "2024-01-01 00:00:00", "2024-01-30 00:00:00"),
		ExistingDeadlines{Response: &first},
	)

	if assert.NotNil(t, snap.ResponseDeadline) {
		assert.Equal(t, first, *snap.ResponseDeadline)
	}
	// Judged against the original stamp, not the later update.
	assert.True(t, snap.ResponseMet)
}

func TestCompute_RecomputeIsIdempotent(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-02-01 00:00:00")))
	idea := rawIdea("In Review", "2024-01-01 00:00:00", "2024-01-10 00:00:00")

	first := calc.Compute(idea, ExistingDeadlines{})
	second := calc.Compute(idea, ExistingDeadlines{
		Response: first.ResponseDeadline,
		Roadmap:  first.RoadmapDeadline,
	})

	assert.Equal(t, first, second)
}

func TestCompute_MissingUpdatedAtStampsNow(t *testing.T) {
	now := ts("2024-01-08 12:00:00")
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(now))

	snap := calc.Compute(rawIdea("In Review", "2024-01-01 00:00:00", ""), ExistingDeadlines{})

	if assert.NotNil(t, snap.ResponseDeadline) {
		assert.Equal(t, now, *snap.ResponseDeadline)
	}
	assert.True(t, snap.ResponseMet)
}

func TestCompute_MissingCreatedAt(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-01-10 00:00:00")))

	for _, created := range []string{"", "not-a-date"} {
		snap := calc.Compute(rawIdea("Accepted", created, "2024-01-05 00:00:00"), ExistingDeadlines{})

		// Stamping still happens; compliance cannot be shown.
		assert.NotNil(t, snap.ResponseDeadline)
		assert.NotNil(t, snap.RoadmapDeadline)
		assert.False(t, snap.ResponseMet)
		assert.False(t, snap.RoadmapMet)
		assert.False(t, snap.ResponseInGoodStanding)
		assert.False(t, snap.RoadmapInGoodStanding)
	}
}

func TestCompute_MetImpliesGoodStanding(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2025-06-01 00:00:00")))

	// Long past both windows in wall time, but both milestones were hit in
	// time; met keeps the record in good standing forever.
	snap := calc.Compute(rawIdea("Accepted", "2024-01-01 00:00:00", "2024-01-10 00:00:00"), ExistingDeadlines{})

	assert.True(t, snap.ResponseMet)
	assert.True(t, snap.ResponseInGoodStanding)
	assert.True(t, snap.RoadmapMet)
	assert.True(t, snap.RoadmapInGoodStanding)
}

func TestCompute_OverdueOpenRecord(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-04-01 00:00:00")))

	// Still "On deck" 91 days after creation: nothing stamped, everything
	// out of standing.
	snap := calc.Compute(rawIdea("On deck", "2024-01-01 00:00:00", "2024-01-01 00:00:00"), ExistingDeadlines{})

	assert.Nil(t, snap.ResponseDeadline)
	assert.Nil(t, snap.RoadmapDeadline)
	assert.False(t, snap.ResponseInGoodStanding)
	assert.False(t, snap.RoadmapInGoodStanding)
}

func TestCompute_EmptyStatusTreatedAsOpen(t *testing.T) {
	calc := NewCalculatorAt(DefaultConfig(), fixedClock(ts("2024-01-05 00:00:00")))

	snap := calc.Compute(rawIdea("", "2024-01-01 00:00:00", "2024-01-02 00:00:00"), ExistingDeadlines{})

	assert.Nil(t, snap.ResponseDeadline)
	assert.True(t, snap.ResponseInGoodStanding)
}
