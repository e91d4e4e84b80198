package timesheet

import (
	"strings"
	"time"

	"github.com/andy/tallysheet/internal/domain"
)

const (
	// MaxRangeDays is the longest explicit range, counting both end dates.
	MaxRangeDays = 366

	minYear = 2020
	maxYear = 2030
)

// RangeRequest asks for an explicit date range in a timezone.
// Dates are YYYY-MM-DD; a blank timezone means UTC.
type RangeRequest struct {
	ClientID  int64
	StartDate string
	EndDate   string
	Timezone  string
}

// MonthlyRequest asks for a calendar month in UTC.
type MonthlyRequest struct {
	ClientID int64
	Month    int
	Year     int
}

// ResolveRange validates req and computes its UTC bounds: local midnight of
// the start date up to local midnight of the day after the end date.
func ResolveRange(req RangeRequest) (domain.RangePeriod, error) {
	tzName := strings.TrimSpace(req.Timezone)
	if tzName == "" {
		tzName = "UTC"
	}

	if req.ClientID == 0 || strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return domain.RangePeriod{}, domain.NewValidationError("missing required fields")
	}
	if req.ClientID < 0 {
		return domain.RangePeriod{}, domain.NewValidationError("invalid data format")
	}

	startDate, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return domain.RangePeriod{}, domain.NewValidationError("invalid data format")
	}
	endDate, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.EndDate))
	if err != nil {
		return domain.RangePeriod{}, domain.NewValidationError("invalid data format")
	}

	if endDate.Before(startDate) {
		return domain.RangePeriod{}, domain.NewValidationError("end date must be on or after start date")
	}

	// Both dates parse as UTC midnights, so the difference is whole days.
	if DaysInclusive(startDate, endDate) > MaxRangeDays {
		return domain.RangePeriod{}, domain.NewValidationError("range exceeds 366 days")
	}

	loc, err := domain.LoadZone(tzName)
	if err != nil {
		return domain.RangePeriod{}, domain.NewValidationError("invalid timezone")
	}

	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, loc)
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day()+1, 0, 0, 0, 0, loc)

	return domain.RangePeriod{
		Start:    start.UTC(),
		End:      end.UTC(),
		Timezone: tzName,
	}, nil
}

// ResolveMonthly validates req and returns the month as a period.
func ResolveMonthly(req MonthlyRequest) (domain.MonthlyPeriod, error) {
	if req.ClientID == 0 || req.Month == 0 || req.Year == 0 {
		return domain.MonthlyPeriod{}, domain.NewValidationError("missing required fields")
	}
	if req.ClientID < 0 {
		return domain.MonthlyPeriod{}, domain.NewValidationError("invalid data format")
	}
	if req.Month < 1 || req.Month > 12 {
		return domain.MonthlyPeriod{}, domain.NewValidationError("invalid month")
	}
	if req.Year < minYear || req.Year > maxYear {
		return domain.MonthlyPeriod{}, domain.NewValidationError("invalid year")
	}

	return domain.MonthlyPeriod{Month: time.Month(req.Month), Year: req.Year}, nil
}

// DaysInclusive counts calendar days from start to end, both included.
// Both arguments must be midnights in the same zone without DST shifts (UTC).
func DaysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
