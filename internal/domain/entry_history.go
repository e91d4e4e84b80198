package domain

import "time"

// EntryHistory is one audit record for a changed entry field.
type EntryHistory struct {
	ID           int64
	EntryID      int64
	FieldName    string
	OldValue     string
	NewValue     string
	ChangeReason string
	ChangedAt    time.Time
}
