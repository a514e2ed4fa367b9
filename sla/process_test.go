package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gewnthar/ideatrack/models"
)

func TestIdeaURL(t *testing.T) {
	assert.Equal(t, "https://example.com/ideas/42", IdeaURL("https://example.com/ideas", 42))
	assert.Equal(t, "https://example.com/ideas/42", IdeaURL("https://example.com/ideas/", 42))
	assert.Equal(t, "", IdeaURL("", 42))
}

func TestCollectLabels(t *testing.T) {
	ideas := []models.RawIdea{
		{
			CustomTextFields: models.FieldList{
				{Label: "Problem", Value: strPtr("a")},
				{Label: "Solution", Value: strPtr("b")},
			},
			CustomDropdownFields: models.FieldList{
				{Label: "Idea Status", Value: strPtr("On deck")},
			},
		},
		{
			CustomTextFields: models.FieldList{
				{Label: "Problem", Value: strPtr("c")}, // duplicate label
				{Label: "", Value: strPtr("d")},        // blank labels are ignored
			},
			CustomDropdownFields: models.FieldList{
				{Label: "Effort", Value: nil},
			},
		},
	}

	text, dropdown := collectLabels(ideas)

	assert.Equal(t, []string{"Problem", "Solution"}, text)
	assert.Equal(t, []string{"Effort", "Idea Status"}, dropdown)
}

func TestTeamColumnNames_OrderedByID(t *testing.T) {
	names := TeamColumnNames(map[int64]string{
		30: "Web",
		10: "Platform",
		20: "Mobile",
	})
	assert.Equal(t, []string{"Platform", "Mobile", "Web"}, names)
}

func TestExtraColumns_Order(t *testing.T) {
	cols := extraColumns([]string{"Problem"}, []string{"Effort"}, []string{"Platform", "Web"})
	assert.Equal(t, []string{"Custom: Problem", "Dropdown: Effort", "Platform", "Web"}, cols)
}

func TestBuildItem(t *testing.T) {
	idea := models.RawIdea{
		ID:          7,
		Name:        "Faster exports",
		Description: "Bulk export is slow",
		Customer:    "Acme",
		SourceName:  "Jane Doe",
		SourceEmail: "jane@example.com",
		CreatedAt:   "2024-01-01T00:00:00Z",
		UpdatedAt:   "2024-01-10T08:30:00Z",
		CustomTextFields: models.FieldList{
			{Label: "Problem", Value: strPtr("Exports time out")},
		},
		CustomDropdownFields: models.FieldList{
			{Label: "Idea Status", Value: strPtr("In Review")},
		},
		TeamIDs:        models.IDList{10},
		LocationStatus: "visible",
	}
	teams := map[int64]string{10: "Platform", 20: "Mobile"}

	it := buildItem(idea, "https://example.com/ideas", []string{"Problem", "Solution"}, []string{"Idea Status"}, teams)

	assert.Equal(t, int64(7), it.ID)
	assert.Equal(t, "https://example.com/ideas/7", it.URL)
	assert.Equal(t, "In Review", it.Status)
	if assert.NotNil(t, it.CreatedAt) {
		assert.Equal(t, "2024-01-01 00:00:00", models.FormatTime(it.CreatedAt))
	}
	assert.Equal(t, map[string]string{
		"Custom: Problem":       "Exports time out",
		"Custom: Solution":      "", // known column the record lacks
		"Dropdown: Idea Status": "In Review",
		"Platform":              "1",
		"Mobile":                "0",
	}, it.Extra)
}
