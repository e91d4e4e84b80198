package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

// timeLayout stores times as fixed-width UTC text with nanoseconds. Every
// stored value has the same width, so text comparison orders chronologically
// and sub-second endpoints survive the round trip.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	// ErrNotFound is returned when a row does not exist or belongs to another owner.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert or update hits a UNIQUE constraint.
	ErrDuplicate = errors.New("duplicate")
)

// parseTime parses a stored time. RFC3339 accepts the fixed-width form as
// well as values written without a fraction.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// formatTime renders t in the storage layout
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nowUTC() string {
	return formatTime(time.Now())
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// wrapWrite turns constraint violations into ErrDuplicate.
func wrapWrite(what string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %v", what, ErrDuplicate, err)
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}

// checkAffected returns ErrNotFound when a write touched no rows.
func checkAffected(res sql.Result, what string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
