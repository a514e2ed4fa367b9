package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-10 08:30:00", "2024-01-10 08:30:00"},
		{"2024-01-10T08:30:00Z", "2024-01-10 08:30:00"},
		{"2024-01-10T08:30:00.123456Z", "2024-01-10 08:30:00"},
		{"2024-01-10T09:30:00+01:00", "2024-01-10 08:30:00"}, // normalized to UTC
		{"2024-01-10T08:30:00", "2024-01-10 08:30:00"},
		{"2024-01-10", "2024-01-10 00:00:00"},
		{"  2024-01-10  ", "2024-01-10 00:00:00"},
	}
	for _, c := range cases {
		got := ParseTime(c.in)
		require.NotNil(t, got, "input %q", c.in)
		assert.Equal(t, c.want, got.Format(TimeLayout), "input %q", c.in)
		assert.Equal(t, time.UTC, got.Location(), "input %q", c.in)
	}
}

func TestParseTime_Unparseable(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "2024-13-40"} {
		assert.Nil(t, ParseTime(in), "input %q", in)
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", FormatTime(nil))
	ts := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-10 08:30:00", FormatTime(&ts))
}

func TestTableRecordsRoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table := &Table{
		ExtraColumns: []string{"Custom: Problem", "Platform"},
		Rows: []TrackedItem{
			{
				ID:        7,
				URL:       "https://example.com/ideas/7",
				Name:      "a name",
				Status:    "On deck",
				CreatedAt: &created,
				Extra:     map[string]string{"Custom: Problem": "slow", "Platform": "1"},
			},
		},
	}

	got, err := TableFromRecords(table.Header(), table.Records())
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, table.ExtraColumns, got.ExtraColumns)
	assert.Equal(t, int64(7), got.Rows[0].ID)
	assert.Equal(t, "slow", got.Rows[0].Extra["Custom: Problem"])
	require.NotNil(t, got.Rows[0].CreatedAt)
	assert.Equal(t, created, *got.Rows[0].CreatedAt)
	assert.Nil(t, got.Rows[0].UpdatedAt)
}

func TestTableFromRecords_RejectsBadHeader(t *testing.T) {
	_, err := TableFromRecords([]string{"id", "url"}, nil)
	assert.ErrorContains(t, err, "header")

	header := append([]string(nil), TrackingColumns...)
	header[0] = "identifier"
	_, err = TableFromRecords(header, nil)
	assert.ErrorContains(t, err, "unexpected tracking column")
}

func TestTableFromRecords_HeaderCaseInsensitive(t *testing.T) {
	header := append([]string(nil), TrackingColumns...)
	header[2] = " NAME "
	_, err := TableFromRecords(header, nil)
	assert.NoError(t, err)
}

func TestTableFromRecords_BadID(t *testing.T) {
	rec := make([]string, len(TrackingColumns))
	rec[0] = "seven"
	_, err := TableFromRecords(TrackingColumns, [][]string{rec})
	assert.ErrorContains(t, err, "bad id")
}

func TestClone_IsDeep(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := &Table{
		ExtraColumns: []string{"Platform"},
		Rows: []TrackedItem{
			{ID: 1, CreatedAt: &created, Extra: map[string]string{"Platform": "1"}},
		},
	}

	clone := orig.Clone()
	clone.ExtraColumns[0] = "changed"
	clone.Rows[0].Extra["Platform"] = "0"
	*clone.Rows[0].CreatedAt = created.AddDate(1, 0, 0)

	assert.Equal(t, "Platform", orig.ExtraColumns[0])
	assert.Equal(t, "1", orig.Rows[0].Extra["Platform"])
	assert.Equal(t, created, *orig.Rows[0].CreatedAt)
}
