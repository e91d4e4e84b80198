package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
)

// TimerRepo is a SQLite implementation of TimerRepository. A running timer
// is an open row in time_entries; there is no separate timer table.
type TimerRepo struct {
	db db.DBTX
}

// NewTimerRepo creates a new TimerRepo
func NewTimerRepo(q db.DBTX) *TimerRepo {
	return &TimerRepo{db: q}
}

// GetRunning returns the open entry for a client, or nil if the timer is idle
func (r *TimerRepo) GetRunning(ctx context.Context, ownerID, clientID int64) (*domain.TimeEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE owner_id = ? AND client_id = ? AND end_time IS NULL AND is_deleted = 0
	`

	entry, err := scanTimeEntry(r.db.QueryRowContext(ctx, query, ownerID, clientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get running timer: %w", err)
	}
	return entry, nil
}

// ListRunning returns every running timer of the owner with its client
func (r *TimerRepo) ListRunning(ctx context.Context, ownerID int64) ([]*domain.RunningTimer, error) {
	query := `
		SELECT e.id, e.owner_id, e.client_id, e.notes, e.start_time, e.end_time, e.is_deleted,
		       e.created_at, e.updated_at, c.name, c.hourly_rate
		FROM time_entries e
		JOIN clients c ON c.id = e.client_id
		WHERE e.owner_id = ? AND e.end_time IS NULL AND e.is_deleted = 0
		ORDER BY e.start_time, e.id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list running timers: %w", err)
	}
	defer rows.Close()

	timers := make([]*domain.RunningTimer, 0)
	for rows.Next() {
		t := &domain.RunningTimer{}
		entry, err := scanTimeEntry(scanFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &t.ClientName, &t.HourlyRate)...)
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to scan running timer: %w", err)
		}
		t.Entry = entry
		if entry.ClientID != nil {
			t.ClientID = *entry.ClientID
		}
		timers = append(timers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating running timers: %w", err)
	}

	return timers, nil
}

// Stop closes an open entry, optionally replacing its notes
func (r *TimerRepo) Stop(ctx context.Context, ownerID, entryID int64, end time.Time, notes *string) error {
	query := `
		UPDATE time_entries
		SET end_time = ?, notes = COALESCE(?, notes), updated_at = ?
		WHERE owner_id = ? AND id = ? AND end_time IS NULL AND is_deleted = 0
	`

	var notesArg any
	if notes != nil {
		notesArg = *notes
	}

	result, err := r.db.ExecContext(ctx, query, formatTime(end), notesArg, nowUTC(), ownerID, entryID)
	if err != nil {
		return fmt.Errorf("failed to stop timer: %w", err)
	}
	return checkAffected(result, fmt.Sprintf("running entry %d", entryID))
}

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }
