package domain

import (
	"fmt"
	"strings"
	"time"
)

type PeriodType string

const (
	PeriodMonthly PeriodType = "monthly"
	PeriodRange   PeriodType = "range"
)

// DateLayout is the calendar date format used for period labels.
const DateLayout = "2006-01-02"

// Period is a billing window: a half-open UTC interval [start, end).
// It is implemented only by MonthlyPeriod and RangePeriod.
type Period interface {
	Type() PeriodType
	Bounds() (start, end time.Time)
	TimezoneName() string
	Location() *time.Location
	isPeriod()
}

// MonthlyPeriod is a calendar month in UTC.
type MonthlyPeriod struct {
	Month time.Month
	Year  int
}

func (MonthlyPeriod) isPeriod() {}

func (MonthlyPeriod) Type() PeriodType { return PeriodMonthly }

func (MonthlyPeriod) TimezoneName() string { return "UTC" }

func (MonthlyPeriod) Location() *time.Location { return time.UTC }

// Bounds returns midnight UTC on the 1st and on the 1st of the following month.
// time.Date normalises month 13 into January of the next year.
func (p MonthlyPeriod) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(p.Year, p.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// RangePeriod is an explicit date range resolved in an IANA timezone.
type RangePeriod struct {
	Start    time.Time
	End      time.Time
	Timezone string
}

func (RangePeriod) isPeriod() {}

func (RangePeriod) Type() PeriodType { return PeriodRange }

func (p RangePeriod) TimezoneName() string {
	if p.Timezone == "" {
		return "UTC"
	}
	return p.Timezone
}

func (p RangePeriod) Bounds() (time.Time, time.Time) {
	return p.Start.UTC(), p.End.UTC()
}

// Location loads the period's zone, falling back to UTC for names the
// local tz database no longer knows.
func (p RangePeriod) Location() *time.Location {
	loc, err := LoadZone(p.TimezoneName())
	if err != nil {
		return time.UTC
	}
	return loc
}

// StartDate is the first calendar day covered, in the period's zone.
func (p RangePeriod) StartDate() string {
	return p.Start.In(p.Location()).Format(DateLayout)
}

// EndDate is the last calendar day covered, in the period's zone.
func (p RangePeriod) EndDate() string {
	return p.End.Add(-time.Microsecond).In(p.Location()).Format(DateLayout)
}

// LoadZone loads an IANA zone by name. "Local" is refused: it names whatever
// zone the host runs in, so a stored period would render differently on
// another machine.
func LoadZone(name string) (*time.Location, error) {
	if strings.EqualFold(name, "Local") {
		return nil, fmt.Errorf("unknown time zone %s", name)
	}
	return time.LoadLocation(name)
}
