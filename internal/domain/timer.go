package domain

import "time"

// RunningTimer is an open entry together with the client it is tracking.
type RunningTimer struct {
	Entry      *TimeEntry
	ClientID   int64
	ClientName string
	HourlyRate float64
}

// Elapsed returns the time since the timer started
func (t *RunningTimer) Elapsed(now time.Time) time.Duration {
	d := now.Sub(t.Entry.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// AccruedValue returns the billable value so far at the client's rate
func (t *RunningTimer) AccruedValue(now time.Time) float64 {
	return t.Elapsed(now).Hours() * t.HourlyRate
}
