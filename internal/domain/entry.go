package domain

import (
	"errors"
	"time"
)

// TimeEntry is a tracked interval. An entry with a nil EndTime is open
// (its timer is running) and is never billed.
type TimeEntry struct {
	ID        int64
	OwnerID   int64
	ClientID  *int64 // nil once the client is deleted
	Notes     string
	StartTime time.Time
	EndTime   *time.Time
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTimeEntry creates an open entry starting now
func NewTimeEntry(ownerID, clientID int64, notes string) *TimeEntry {
	now := time.Now().UTC()
	return &TimeEntry{
		OwnerID:   ownerID,
		ClientID:  &clientID,
		Notes:     notes,
		StartTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewClosedEntry creates a finished entry for a known interval
func NewClosedEntry(ownerID, clientID int64, start, end time.Time, notes string) *TimeEntry {
	now := time.Now().UTC()
	start, end = start.UTC(), end.UTC()
	return &TimeEntry{
		OwnerID:   ownerID,
		ClientID:  &clientID,
		Notes:     notes,
		StartTime: start,
		EndTime:   &end,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Duration returns the duration of the entry, measured to now if still open
func (e *TimeEntry) Duration() time.Duration {
	if e.EndTime == nil {
		return time.Since(e.StartTime)
	}
	return e.EndTime.Sub(e.StartTime)
}

// IsRunning returns true if the entry has no end time
func (e *TimeEntry) IsRunning() bool {
	return e.EndTime == nil
}

// Stop closes the entry at endTime
func (e *TimeEntry) Stop(endTime time.Time) {
	endTime = endTime.UTC()
	e.EndTime = &endTime
	e.UpdatedAt = time.Now().UTC()
}

// BelongsTo reports whether the entry is attached to the given client
func (e *TimeEntry) BelongsTo(clientID int64) bool {
	return e.ClientID != nil && *e.ClientID == clientID
}

// Validate returns an error if the entry is invalid
func (e *TimeEntry) Validate() error {
	if e.OwnerID <= 0 {
		return errors.New("owner ID is required")
	}
	if e.StartTime.IsZero() {
		return errors.New("start time is required")
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return errors.New("end time must be after start time")
	}
	return nil
}
