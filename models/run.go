// models/run.go
package models

import "time"

// Run types recorded in the audit log.
const (
	RunTypeInit   = "init"
	RunTypeUpdate = "update"
)

// RunColumns is the fixed header of the Runs region.
var RunColumns = []string{"type", "timestamp", "records_added", "records_updated"}

// RunRecord is one row of the append-only audit log. Exactly one is written
// per reconciliation pass, after the main table write succeeds.
type RunRecord struct {
	Type           string
	Timestamp      time.Time
	RecordsAdded   int
	RecordsUpdated int
}
