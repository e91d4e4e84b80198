package timesheet

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/domain"
)

func TestRender_RangeWithMetadata(t *testing.T) {
	period, err := ResolveRange(RangeRequest{ClientID: 1, StartDate: "2024-01-01", EndDate: "2024-01-01", Timezone: "America/New_York"})
	require.NoError(t, err)

	entries := []*domain.TimeEntry{
		closedEntry(1, utc(2024, 1, 1, 14, 0, 0), utc(2024, 1, 1, 16, 30, 0), "Design, review"),
	}
	res, err := Aggregate(entries, period, 50)
	require.NoError(t, err)

	body, err := Render(res, period, "Acme Corp", utc(2024, 1, 2, 3, 4, 5))
	require.NoError(t, err)

	want := strings.Join([]string{
		"Client,Acme Corp",
		"Period Start,2024-01-01",
		"Period End,2024-01-01",
		"Timezone,America/New_York",
		"Generated At (UTC),2024-01-02 03:04:05",
		"",
		"Date,Start Time,End Time,Duration (HH:MM:SS),Duration (hrs),Description,Rate,Amount",
		`2024-01-01,09:00:00,11:30:00,02:30:00,2.5000,"Design, review",50.00,125.00`,
		",,Total:,02:30:00,2.5000,,,125.00",
		"",
	}, "\r\n")
	assert.Equal(t, want, string(body))
}

func TestRender_MonthlyHasNoMetadata(t *testing.T) {
	entries := []*domain.TimeEntry{
		closedEntry(1, utc(2024, 1, 15, 9, 0, 0), utc(2024, 1, 15, 17, 30, 0), "Build"),
		closedEntry(2, utc(2024, 1, 16, 9, 0, 0), utc(2024, 1, 16, 9, 20, 0), ""),
	}
	res, err := Aggregate(entries, january2024(), 50)
	require.NoError(t, err)

	body, err := Render(res, january2024(), "Acme", time.Now())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "Date", records[0][0])
	assert.Equal(t, []string{"2024-01-15", "09:00:00", "17:30:00", "08:30:00", "8.5000", "Build", "50.00", "425.00"}, records[1])
	assert.Equal(t, []string{"2024-01-16", "09:00:00", "09:20:00", "00:20:00", "0.3333", "", "50.00", "16.67"}, records[2])
	assert.Equal(t, []string{"", "", "Total:", "08:50:00", "8.8333", "", "", "441.67"}, records[3])
}

func TestRender_RowsUseLocalTime(t *testing.T) {
	period, err := ResolveRange(RangeRequest{ClientID: 1, StartDate: "2024-07-01", EndDate: "2024-07-02", Timezone: "Asia/Tokyo"})
	require.NoError(t, err)

	// 23:30 UTC on June 30 is 08:30 on July 1 in Tokyo.
	entries := []*domain.TimeEntry{closedEntry(1, utc(2024, 6, 30, 23, 30, 0), utc(2024, 7, 1, 1, 0, 0), "")}
	res, err := Aggregate(entries, period, 0)
	require.NoError(t, err)

	body, err := Render(res, period, "Tokyo Co", utc(2024, 7, 3, 0, 0, 0))
	require.NoError(t, err)
	assert.Contains(t, string(body), "2024-07-01,08:30:00,10:00:00,01:30:00,1.5000,,0.00,0.00")
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3599, "00:59:59"},
		{30600, "08:30:00"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHMS(tt.seconds))
	}
}

func TestFormatNumbersAreFixedPoint(t *testing.T) {
	assert.Equal(t, "0.0000", FormatHours(0.00000001))
	assert.Equal(t, "1234567.00", FormatMoney(1234567))
	assert.Equal(t, "0.00", FormatMoney(1e-9))
}
