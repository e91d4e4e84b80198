package domain

import (
	"math"
	"strconv"
	"time"
)

// DeletedClientName labels timesheets whose client is gone and whose
// snapshot carries no name.
const DeletedClientName = "Deleted Client"

// Timesheet is an immutable generated report for one client and one period.
// ClientID is a weak reference; ClientName is captured at generation time.
type Timesheet struct {
	ID           int64
	OwnerID      int64
	ClientID     int64
	ClientName   string
	Period       Period
	EntryCount   int
	TotalSeconds int64
	TotalHours   float64
	TotalAmount  float64
	CSV          []byte
	CreatedAt    time.Time

	// ClientExists is filled by listing queries; false when the client row is gone.
	ClientExists bool
}

// DisplayClientName returns the snapshot name, or DeletedClientName.
func (t *Timesheet) DisplayClientName() string {
	if t.ClientName == "" {
		return DeletedClientName
	}
	return t.ClientName
}

// TimesheetSummary is the metadata view returned by generate and list.
type TimesheetSummary struct {
	ID            int64
	ClientID      int64
	ClientName    string
	ClientDeleted bool
	PeriodType    PeriodType

	// Range periods
	StartDate string
	EndDate   string
	Timezone  string

	// Monthly periods
	Month time.Month
	Year  int

	EntryCount  int
	TotalHours  float64
	TotalAmount float64
	CreatedAt   time.Time
}

// Summary builds the summary view, rounding hours to 4 places and the amount to 2.
func (t *Timesheet) Summary() TimesheetSummary {
	s := TimesheetSummary{
		ID:            t.ID,
		ClientID:      t.ClientID,
		ClientName:    t.DisplayClientName(),
		ClientDeleted: !t.ClientExists,
		EntryCount:    t.EntryCount,
		TotalHours:    roundTo(t.TotalHours, 4),
		TotalAmount:   roundTo(t.TotalAmount, 2),
		CreatedAt:     t.CreatedAt.UTC(),
	}

	switch p := t.Period.(type) {
	case RangePeriod:
		s.PeriodType = PeriodRange
		s.StartDate = p.StartDate()
		s.EndDate = p.EndDate()
		s.Timezone = p.TimezoneName()
	case MonthlyPeriod:
		s.PeriodType = PeriodMonthly
		s.Month = p.Month
		s.Year = p.Year
	}

	return s
}

// PeriodLabel renders the period for humans: "2024-01-01 to 2024-01-31 (UTC)" or "March 2024".
func (s TimesheetSummary) PeriodLabel() string {
	if s.PeriodType == PeriodRange {
		return s.StartDate + " to " + s.EndDate + " (" + s.Timezone + ")"
	}
	return s.Month.String() + " " + strconv.Itoa(s.Year)
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
