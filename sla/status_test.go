package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gewnthar/ideatrack/models"
)

func strPtr(s string) *string { return &s }

func TestExtractStatus(t *testing.T) {
	fields := models.FieldList{
		{Label: "Priority", Value: strPtr("High")},
		{Label: "Idea Status", Value: strPtr("Accepted")},
	}
	assert.Equal(t, "Accepted", ExtractStatus(fields))
}

func TestExtractStatus_CaseInsensitive(t *testing.T) {
	fields := models.FieldList{
		{Label: "IDEA STATUS", Value: strPtr("On deck")},
	}
	assert.Equal(t, "On deck", ExtractStatus(fields))
}

func TestExtractStatus_FirstMatchWins(t *testing.T) {
	fields := models.FieldList{
		{Label: "idea status", Value: strPtr("In Review")},
		{Label: "Idea Status", Value: strPtr("Accepted")},
	}
	assert.Equal(t, "In Review", ExtractStatus(fields))
}

func TestExtractStatus_ExplicitNullValue(t *testing.T) {
	fields := models.FieldList{
		{Label: "Idea Status", Value: nil},
	}
	assert.Equal(t, "", ExtractStatus(fields))
}

func TestExtractStatus_MissingBag(t *testing.T) {
	assert.Equal(t, "", ExtractStatus(nil))
	assert.Equal(t, "", ExtractStatus(models.FieldList{}))
}

func TestLookupAttribute(t *testing.T) {
	fields := models.FieldList{
		{Label: "Problem", Value: strPtr("Exports are slow")},
	}

	v, ok := LookupAttribute(fields, "problem")
	assert.True(t, ok)
	assert.Equal(t, "Exports are slow", v)

	_, ok = LookupAttribute(fields, "solution")
	assert.False(t, ok)
}
