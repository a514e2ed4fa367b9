package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldList_Array(t *testing.T) {
	var f FieldList
	require.NoError(t, json.Unmarshal([]byte(`[{"label":"Problem","value":"slow"},{"label":"Effort","value":null}]`), &f))

	require.Len(t, f, 2)
	assert.Equal(t, "Problem", f[0].Label)
	require.NotNil(t, f[0].Value)
	assert.Equal(t, "slow", *f[0].Value)
	assert.Nil(t, f[1].Value)
}

func TestFieldList_DoubleEncoded(t *testing.T) {
	var f FieldList
	require.NoError(t, json.Unmarshal([]byte(`"[{\"label\":\"Problem\",\"value\":\"slow\"}]"`), &f))

	require.Len(t, f, 1)
	assert.Equal(t, "Problem", f[0].Label)
}

func TestFieldList_DegradesToEmpty(t *testing.T) {
	for _, in := range []string{`null`, `""`, `"not json"`, `42`, `{"label":"x"}`} {
		var f FieldList
		assert.NoError(t, json.Unmarshal([]byte(in), &f), "input %s", in)
		assert.Empty(t, f, "input %s", in)
	}
}

func TestIDList(t *testing.T) {
	var l IDList
	require.NoError(t, json.Unmarshal([]byte(`[1, 2, 3]`), &l))
	assert.Equal(t, IDList{1, 2, 3}, l)

	l = nil
	require.NoError(t, json.Unmarshal([]byte(`"4, 5 ,6"`), &l))
	assert.Equal(t, IDList{4, 5, 6}, l)

	l = nil
	require.NoError(t, json.Unmarshal([]byte(`null`), &l))
	assert.Empty(t, l)

	l = nil
	require.NoError(t, json.Unmarshal([]byte(`"not numbers"`), &l))
	assert.Empty(t, l)
}

func TestRawIdea_Decode(t *testing.T) {
	payload := `{
		"id": 12,
		"name": "Faster exports",
		"customer": "Acme",
		"source_name": "Jane Doe",
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-10T08:30:00Z",
		"custom_dropdown_fields": [{"label": "Idea Status", "value": "On deck"}],
		"team_ids": [10, 20],
		"location_status": "visible"
	}`
	var idea RawIdea
	require.NoError(t, json.Unmarshal([]byte(payload), &idea))

	assert.Equal(t, int64(12), idea.ID)
	assert.Equal(t, "Acme", idea.Customer)
	assert.Equal(t, "2024-01-01T00:00:00Z", idea.CreatedAt)
	require.Len(t, idea.CustomDropdownFields, 1)
	assert.Equal(t, IDList{10, 20}, idea.TeamIDs)
}
