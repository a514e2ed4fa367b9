// sla/process.go
//
// Expansion of raw records into table rows: dynamic column discovery,
// team membership columns, and row URL generation.
package sla

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gewnthar/ideatrack/models"
)

// Dynamic column name prefixes for the two attribute bags.
const (
	customColumnPrefix   = "Custom: "
	dropdownColumnPrefix = "Dropdown: "
)

// IdeaURL builds the row URL for a record id. Trailing slashes on the
// prefix are handled so double slashes never appear.
func IdeaURL(prefix string, id int64) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/" + strconv.FormatInt(id, 10)
}

// collectLabels gathers the distinct attribute labels across a batch, one
// set per bag, each sorted for a deterministic column order.
func collectLabels(ideas []models.RawIdea) (text, dropdown []string) {
	textSeen := map[string]bool{}
	dropSeen := map[string]bool{}
	for _, idea := range ideas {
		for _, f := range idea.CustomTextFields {
			if f.Label != "" && !textSeen[f.Label] {
				textSeen[f.Label] = true
				text = append(text, f.Label)
			}
		}
		for _, f := range idea.CustomDropdownFields {
			if f.Label != "" && !dropSeen[f.Label] {
				dropSeen[f.Label] = true
				dropdown = append(dropdown, f.Label)
			}
		}
	}
	sort.Strings(text)
	sort.Strings(dropdown)
	return text, dropdown
}

// TeamColumnNames returns the group column names ordered by group id.
func TeamColumnNames(teams map[int64]string) []string {
	ids := make([]int64, 0, len(teams))
	for id := range teams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, teams[id])
	}
	return names
}

// extraColumns assembles the dynamic column order: custom text columns,
// dropdown columns, then team columns sorted by team id.
func extraColumns(text, dropdown, teamCols []string) []string {
	out := make([]string, 0, len(text)+len(dropdown)+len(teamCols))
	for _, l := range text {
		out = append(out, customColumnPrefix+l)
	}
	for _, l := range dropdown {
		out = append(out, dropdownColumnPrefix+l)
	}
	return append(out, teamCols...)
}

// buildItem converts a raw record into a table row, filling the dynamic
// cells for every known column. Compliance fields are applied separately.
func buildItem(idea models.RawIdea, urlPrefix string, text, dropdown []string, teams map[int64]string) models.TrackedItem {
	it := models.TrackedItem{
		ID:             idea.ID,
		URL:            IdeaURL(urlPrefix, idea.ID),
		Name:           idea.Name,
		Description:    idea.Description,
		Customer:       idea.Customer,
		SourceName:     idea.SourceName,
		SourceEmail:    idea.SourceEmail,
		Status:         ExtractStatus(idea.CustomDropdownFields),
		CreatedAt:      models.ParseTime(idea.CreatedAt),
		UpdatedAt:      models.ParseTime(idea.UpdatedAt),
		LocationStatus: idea.LocationStatus,
		Extra:          map[string]string{},
	}

	for _, label := range text {
		v, _ := LookupAttribute(idea.CustomTextFields, label)
		it.Extra[customColumnPrefix+label] = v
	}
	for _, label := range dropdown {
		v, _ := LookupAttribute(idea.CustomDropdownFields, label)
		it.Extra[dropdownColumnPrefix+label] = v
	}

	member := map[int64]bool{}
	for _, id := range idea.TeamIDs {
		member[id] = true
	}
	for id, name := range teams {
		if member[id] {
			it.Extra[name] = "1"
		} else {
			it.Extra[name] = "0"
		}
	}
	return it
}

// applySnapshot copies calculator output onto a row.
func applySnapshot(it *models.TrackedItem, snap Snapshot) {
	it.ResponseDeadline = snap.ResponseDeadline
	it.RoadmapDeadline = snap.RoadmapDeadline
	it.ResponseMet = snap.ResponseMet
	it.RoadmapMet = snap.RoadmapMet
	it.ResponseInGoodStanding = snap.ResponseInGoodStanding
	it.RoadmapInGoodStanding = snap.RoadmapInGoodStanding
}
