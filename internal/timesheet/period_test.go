package timesheet

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/domain"
)

func TestResolveRange_NewYorkSingleDay(t *testing.T) {
	p, err := ResolveRange(RangeRequest{
		ClientID:  1,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-01",
		Timezone:  "America/New_York",
	})
	require.NoError(t, err)

	start, end := p.Bounds()
	assert.Equal(t, "2024-01-01T05:00:00Z", start.Format(time.RFC3339))
	assert.Equal(t, "2024-01-02T05:00:00Z", end.Format(time.RFC3339))
	assert.Equal(t, "America/New_York", p.TimezoneName())
	assert.Equal(t, "2024-01-01", p.StartDate())
	assert.Equal(t, "2024-01-01", p.EndDate())
}

func TestResolveRange_AcrossDaylightSaving(t *testing.T) {
	// US clocks spring forward on 2024-03-10.
	p, err := ResolveRange(RangeRequest{
		ClientID:  1,
		StartDate: "2024-03-09",
		EndDate:   "2024-03-11",
		Timezone:  "America/New_York",
	})
	require.NoError(t, err)

	start, end := p.Bounds()
	assert.Equal(t, "2024-03-09T05:00:00Z", start.Format(time.RFC3339))
	assert.Equal(t, "2024-03-12T04:00:00Z", end.Format(time.RFC3339))
	assert.Equal(t, 71*time.Hour, end.Sub(start))

	loc := p.Location()
	assert.Equal(t, "2024-03-09 00:00:00", start.In(loc).Format("2006-01-02 15:04:05"))
	assert.Equal(t, "2024-03-12 00:00:00", end.In(loc).Format("2006-01-02 15:04:05"))
	assert.Equal(t, "2024-03-11", p.EndDate())
}

func TestResolveRange_BlankTimezoneIsUTC(t *testing.T) {
	p, err := ResolveRange(RangeRequest{ClientID: 1, StartDate: "2024-02-01", EndDate: "2024-02-29", Timezone: "  "})
	require.NoError(t, err)

	start, end := p.Bounds()
	assert.Equal(t, "UTC", p.TimezoneName())
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestResolveRange_MaxSpan(t *testing.T) {
	// 2024 is a leap year: Jan 1 through Dec 31 is exactly 366 days.
	_, err := ResolveRange(RangeRequest{ClientID: 1, StartDate: "2024-01-01", EndDate: "2024-12-31"})
	require.NoError(t, err)

	_, err = ResolveRange(RangeRequest{ClientID: 1, StartDate: "2024-01-01", EndDate: "2025-01-01"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "exceeds 366 days")
}

func TestResolveRange_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     RangeRequest
		wantMsg string
	}{
		{"missing client", RangeRequest{StartDate: "2024-01-01", EndDate: "2024-01-02"}, "missing required fields"},
		{"missing start", RangeRequest{ClientID: 1, EndDate: "2024-01-02"}, "missing required fields"},
		{"missing end", RangeRequest{ClientID: 1, StartDate: "2024-01-01"}, "missing required fields"},
		{"bad start", RangeRequest{ClientID: 1, StartDate: "2024-13-01", EndDate: "2024-01-02"}, "invalid data format"},
		{"bad end", RangeRequest{ClientID: 1, StartDate: "2024-01-01", EndDate: "01/02/2024"}, "invalid data format"},
		{"end before start", RangeRequest{ClientID: 1, StartDate: "2024-01-02", EndDate: "2024-01-01"}, "end date must be on or after start date"},
		{"unknown zone", RangeRequest{ClientID: 1, StartDate: "2024-01-01", EndDate: "2024-01-02", Timezone: "Nowhere/Special"}, "invalid timezone"},
		{"host zone", RangeRequest{ClientID: 1, StartDate: "2024-01-01", EndDate: "2024-01-01", Timezone: "Local"}, "invalid timezone"},
		// Order matters: the date check fires before the zone is even looked at.
		{"end before start wins over zone", RangeRequest{ClientID: 1, StartDate: "2024-01-02", EndDate: "2024-01-01", Timezone: "Nowhere/Special"}, "end date must be on or after start date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveRange(tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestResolveRange_DayCountMatchesBounds(t *testing.T) {
	zones := []string{"UTC", "America/New_York", "Europe/London", "Australia/Lord_Howe", "Asia/Kolkata"}
	ranges := [][2]string{
		{"2024-01-01", "2024-01-01"},
		{"2024-03-01", "2024-03-31"},
		{"2024-10-20", "2024-11-10"},
		{"2023-06-15", "2024-06-14"},
	}

	for _, tz := range zones {
		for _, r := range ranges {
			p, err := ResolveRange(RangeRequest{ClientID: 1, StartDate: r[0], EndDate: r[1], Timezone: tz})
			require.NoError(t, err, "%s %v", tz, r)

			loc := p.Location()
			start, end := p.Bounds()
			localStart := start.In(loc)
			localEnd := end.In(loc)

			assert.Equal(t, r[0], localStart.Format(domain.DateLayout))
			assert.Zero(t, localStart.Hour()+localStart.Minute(), "%s %v start not midnight", tz, r)
			assert.Zero(t, localEnd.Hour()+localEnd.Minute(), "%s %v end not midnight", tz, r)
			assert.Equal(t, r[1], p.EndDate())

			s, _ := time.Parse(domain.DateLayout, r[0])
			e, _ := time.Parse(domain.DateLayout, r[1])
			days := DaysInclusive(s, e)
			assert.Equal(t, e.AddDate(0, 0, 1), s.AddDate(0, 0, days))
		}
	}
}

func TestResolveMonthly(t *testing.T) {
	p, err := ResolveMonthly(MonthlyRequest{ClientID: 1, Month: 12, Year: 2030})
	require.NoError(t, err)

	start, end := p.Bounds()
	assert.Equal(t, time.Date(2030, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, domain.PeriodMonthly, p.Type())
}

func TestResolveMonthly_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     MonthlyRequest
		wantMsg string
	}{
		{"missing client", MonthlyRequest{Month: 1, Year: 2024}, "missing required fields"},
		{"missing month", MonthlyRequest{ClientID: 1, Year: 2024}, "missing required fields"},
		{"month too big", MonthlyRequest{ClientID: 1, Month: 13, Year: 2024}, "invalid month"},
		{"negative month", MonthlyRequest{ClientID: 1, Month: -1, Year: 2024}, "invalid month"},
		{"year too early", MonthlyRequest{ClientID: 1, Month: 1, Year: 2019}, "invalid year"},
		{"year too late", MonthlyRequest{ClientID: 1, Month: 1, Year: 2031}, "invalid year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveMonthly(tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}
