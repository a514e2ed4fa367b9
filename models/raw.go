// models/raw.go
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// AttributeField is one {label, value} pair from a record's free-form
// attribute bag. Value is a pointer because the API sends explicit nulls.
type AttributeField struct {
	Label string  `json:"label"`
	Value *string `json:"value"`
}

// FieldList is an attribute bag that tolerates the shapes the API actually
// sends: a JSON array, a JSON string containing an array, or null. Anything
// malformed decodes to an empty bag instead of failing the record.
type FieldList []AttributeField

func (f *FieldList) UnmarshalJSON(data []byte) error {
	*f = nil
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var fields []AttributeField
	if err := json.Unmarshal(data, &fields); err == nil {
		*f = fields
		return nil
	}
	// Some payloads double-encode the bag as a JSON string.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(s), &fields); err == nil {
			*f = fields
		}
	}
	return nil
}

// IDList accepts either a JSON array of numbers or a comma-separated string,
// both of which occur in team_ids payloads.
type IDList []int64

func (l *IDList) UnmarshalJSON(data []byte) error {
	*l = nil
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err == nil {
		*l = ids
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil
		}
		*l = append(*l, id)
	}
	return nil
}

// RawIdea is an externally sourced record as fetched, before filtering and
// compliance calculation. Timestamps stay as strings here; parsing is the
// calculator's concern so that malformed values degrade per record.
type RawIdea struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Customer             string    `json:"customer"`
	SourceName           string    `json:"source_name"`
	SourceEmail          string    `json:"source_email"`
	LocationStatus       string    `json:"location_status"`
	CreatedAt            string    `json:"created_at"`
	UpdatedAt            string    `json:"updated_at"`
	CustomTextFields     FieldList `json:"custom_text_fields"`
	CustomDropdownFields FieldList `json:"custom_dropdown_fields"`
	TeamIDs              IDList    `json:"team_ids"`
}

// FetchOutcome classifies how much of a record the source could deliver.
type FetchOutcome int

const (
	// FetchFull means the list row was enhanced with its detail payload.
	FetchFull FetchOutcome = iota
	// FetchPartial means the detail fetch failed and only list data is
	// available; the record is still classified best-effort.
	FetchPartial
	// FetchFailed means nothing usable was retrieved; the record is
	// conservatively excluded and does not count as observed.
	FetchFailed
)

// ItemResult is the explicit per-record outcome the engine aggregates
// instead of swallowing per-item fetch errors.
type ItemResult struct {
	Idea    RawIdea
	Outcome FetchOutcome
	Err     error
}
