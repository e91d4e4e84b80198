package timesheet

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/domain"
)

func closedEntry(id int64, start, end time.Time, notes string) *domain.TimeEntry {
	e := domain.NewClosedEntry(1, 1, start, end, notes)
	e.ID = id
	return e
}

func utc(y int, m time.Month, d, h, min, s int) time.Time {
	return time.Date(y, m, d, h, min, s, 0, time.UTC)
}

func january2024() domain.Period {
	return domain.MonthlyPeriod{Month: time.January, Year: 2024}
}

func TestAggregate_FullDayExample(t *testing.T) {
	entries := []*domain.TimeEntry{
		closedEntry(1, utc(2024, 1, 15, 9, 0, 0), utc(2024, 1, 15, 17, 30, 0), "Build"),
	}

	res, err := Aggregate(entries, january2024(), 50.0)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, int64(30600), row.Seconds)
	assert.Equal(t, 8.5, row.Hours)
	assert.Equal(t, 425.0, row.Amount)
	assert.Equal(t, int64(30600), res.TotalSeconds)
	assert.Equal(t, 8.5, res.TotalHours())
	assert.Equal(t, "08:30:00", FormatHMS(res.TotalSeconds))
	assert.Equal(t, "8.5000", FormatHours(res.TotalHours()))
	assert.Equal(t, "425.00", FormatMoney(res.TotalAmount))
}

func TestAggregate_Clipping(t *testing.T) {
	tests := []struct {
		name        string
		start, end  time.Time
		wantSeconds int64
		wantStart   time.Time
		wantEnd     time.Time
	}{
		{
			name:        "spans period start",
			start:       utc(2023, 12, 31, 22, 0, 0),
			end:         utc(2024, 1, 1, 2, 0, 0),
			wantSeconds: 2 * 3600,
			wantStart:   utc(2024, 1, 1, 0, 0, 0),
			wantEnd:     utc(2024, 1, 1, 2, 0, 0),
		},
		{
			name:        "spans period end",
			start:       utc(2024, 1, 31, 23, 15, 0),
			end:         utc(2024, 2, 1, 1, 0, 0),
			wantSeconds: 45 * 60,
			wantStart:   utc(2024, 1, 31, 23, 15, 0),
			wantEnd:     utc(2024, 2, 1, 0, 0, 0),
		},
		{
			name:        "covers whole period",
			start:       utc(2023, 12, 1, 0, 0, 0),
			end:         utc(2024, 3, 1, 0, 0, 0),
			wantSeconds: 31 * 24 * 3600,
			wantStart:   utc(2024, 1, 1, 0, 0, 0),
			wantEnd:     utc(2024, 2, 1, 0, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Aggregate([]*domain.TimeEntry{closedEntry(1, tt.start, tt.end, "")}, january2024(), 10)
			require.NoError(t, err)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, tt.wantSeconds, res.Rows[0].Seconds)
			assert.Equal(t, tt.wantStart, res.Rows[0].Start)
			assert.Equal(t, tt.wantEnd, res.Rows[0].End)
		})
	}
}

func TestAggregate_DiscardsOutsideAndBoundaryTouches(t *testing.T) {
	entries := []*domain.TimeEntry{
		// ends exactly where the period starts
		closedEntry(1, utc(2023, 12, 31, 20, 0, 0), utc(2024, 1, 1, 0, 0, 0), "before"),
		// counted
		closedEntry(2, utc(2024, 1, 10, 9, 0, 0), utc(2024, 1, 10, 10, 0, 0), "inside"),
		// starts exactly where the period ends
		closedEntry(3, utc(2024, 2, 1, 0, 0, 0), utc(2024, 2, 1, 3, 0, 0), "after"),
		// entirely outside
		closedEntry(4, utc(2023, 6, 1, 9, 0, 0), utc(2023, 6, 1, 17, 0, 0), "last summer"),
		// zero length
		closedEntry(5, utc(2024, 1, 11, 9, 0, 0), utc(2024, 1, 11, 9, 0, 0), "blink"),
	}

	res, err := Aggregate(entries, january2024(), 100)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(2), res.Rows[0].EntryID)
	assert.Equal(t, int64(3600), res.TotalSeconds)
	assert.Equal(t, 100.0, res.TotalAmount)
}

func TestAggregate_FloorsSubSecondDurations(t *testing.T) {
	start := utc(2024, 1, 5, 12, 0, 0)
	entries := []*domain.TimeEntry{
		closedEntry(1, start, start.Add(500*time.Millisecond), "too short"),
		closedEntry(2, start.Add(time.Hour), start.Add(time.Hour+1900*time.Millisecond), "one second"),
	}

	res, err := Aggregate(entries, january2024(), 36)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(1), res.Rows[0].Seconds)
	assert.InDelta(t, 0.01, res.Rows[0].Amount, 1e-12)
}

func TestAggregate_NoEntries(t *testing.T) {
	open := domain.NewTimeEntry(1, 1, "still going")
	open.StartTime = utc(2024, 1, 20, 9, 0, 0)

	tests := []struct {
		name    string
		entries []*domain.TimeEntry
	}{
		{"nothing at all", nil},
		{"only open entries", []*domain.TimeEntry{open}},
		{"only outside entries", []*domain.TimeEntry{closedEntry(1, utc(2024, 3, 1, 9, 0, 0), utc(2024, 3, 1, 10, 0, 0), "")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Aggregate(tt.entries, january2024(), 50)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrNoEntries))
		})
	}
}

func TestAggregate_TotalsAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	period, err := ResolveRange(RangeRequest{ClientID: 1, StartDate: "2024-03-01", EndDate: "2024-03-31", Timezone: "Europe/Berlin"})
	require.NoError(t, err)
	pStart, pEnd := period.Bounds()

	var entries []*domain.TimeEntry
	cursor := pStart.Add(-36 * time.Hour)
	for i := 0; i < 200; i++ {
		start := cursor.Add(time.Duration(rng.Int63n(int64(6*time.Hour))) + 1500*time.Millisecond)
		end := start.Add(time.Duration(rng.Int63n(int64(5 * time.Hour))))
		entries = append(entries, closedEntry(int64(i+1), start, end, ""))
		cursor = end
	}

	first, err := Aggregate(entries, period, 87.5)
	require.NoError(t, err)
	second, err := Aggregate(entries, period, 87.5)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var sum int64
	var amount float64
	for _, row := range first.Rows {
		assert.False(t, row.Start.Before(pStart))
		assert.False(t, row.End.After(pEnd))
		assert.Positive(t, row.Seconds)
		sum += row.Seconds
		amount += row.Amount
	}
	assert.Equal(t, sum, first.TotalSeconds)
	assert.Equal(t, amount, first.TotalAmount)
}
