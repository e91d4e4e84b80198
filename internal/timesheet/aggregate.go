package timesheet

import (
	"time"

	"github.com/andy/tallysheet/internal/domain"
)

// Row is one billable entry after clipping to the period.
type Row struct {
	EntryID int64
	Start   time.Time // effective, UTC
	End     time.Time // effective, UTC
	Seconds int64
	Hours   float64
	Amount  float64
	Notes   string
}

// Result holds the aggregated rows of a period and their totals.
// TotalAmount is the sum of the row amounts, not TotalHours * Rate.
type Result struct {
	Rows         []Row
	TotalSeconds int64
	TotalAmount  float64
	Rate         float64
}

func (r *Result) TotalHours() float64 {
	return float64(r.TotalSeconds) / 3600
}

func (r *Result) EntryCount() int {
	return len(r.Rows)
}

// Aggregate clips entries to the period and totals what remains. Entries
// are expected ordered by start time; open entries are ignored. A period
// with nothing billable left yields a no-entries error.
func Aggregate(entries []*domain.TimeEntry, period domain.Period, rate float64) (*Result, error) {
	periodStart, periodEnd := period.Bounds()
	res := &Result{Rate: rate}

	for _, e := range entries {
		if e.EndTime == nil {
			continue
		}

		start := laterOf(e.StartTime.UTC(), periodStart)
		end := earlierOf(e.EndTime.UTC(), periodEnd)
		if !end.After(start) {
			continue
		}

		seconds := int64(end.Sub(start) / time.Second)
		if seconds <= 0 {
			continue
		}

		hours := float64(seconds) / 3600
		amount := hours * rate

		res.Rows = append(res.Rows, Row{
			EntryID: e.ID,
			Start:   start,
			End:     end,
			Seconds: seconds,
			Hours:   hours,
			Amount:  amount,
			Notes:   e.Notes,
		})
		res.TotalSeconds += seconds
		res.TotalAmount += amount
	}

	if len(res.Rows) == 0 {
		return nil, domain.NewNoEntriesError("no time entries found for this period")
	}

	return res, nil
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
