// sla/status.go
package sla

import (
	"strings"

	"github.com/gewnthar/ideatrack/models"
)

// statusFieldLabel is the attribute label that carries the categorical
// status of a record, matched case-insensitively.
const statusFieldLabel = "idea status"

// LookupAttribute finds the value for a label in an attribute bag.
// Matching is case-insensitive and the first occurrence wins. An explicit
// null value reports found with an empty string.
func LookupAttribute(fields []models.AttributeField, label string) (string, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.Label, label) {
			if f.Value == nil {
				return "", true
			}
			return *f.Value, true
		}
	}
	return "", false
}

// ExtractStatus pulls the status value out of a record's dropdown bag.
// Absent field, explicit null, or a missing bag all yield "".
func ExtractStatus(fields []models.AttributeField) string {
	v, _ := LookupAttribute(fields, statusFieldLabel)
	return v
}
