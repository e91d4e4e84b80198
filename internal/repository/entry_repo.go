package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
)

const entryColumns = `id, owner_id, client_id, notes, start_time, end_time, is_deleted, created_at, updated_at`

// EntryRepo is a SQLite implementation of TimeEntryRepository
type EntryRepo struct {
	db db.DBTX
}

// NewEntryRepo creates a new EntryRepo
func NewEntryRepo(q db.DBTX) *EntryRepo {
	return &EntryRepo{db: q}
}

// Create inserts a new time entry. Starting a second open entry for the same
// client yields ErrDuplicate.
func (r *EntryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid time entry: %w", err)
	}

	query := `
		INSERT INTO time_entries (owner_id, client_id, notes, start_time, end_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.OwnerID,
		nullableID(entry.ClientID),
		entry.Notes,
		formatTime(entry.StartTime),
		nullableTime(entry.EndTime),
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return wrapWrite("create time entry", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get time entry ID: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByID retrieves one of the owner's live entries
func (r *EntryRepo) GetByID(ctx context.Context, ownerID, id int64) (*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE owner_id = ? AND id = ? AND is_deleted = 0`

	entry, err := scanTimeEntry(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("time entry %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return entry, nil
}

// Update rewrites an entry and records one history row per changed field.
// Run it inside a transaction so the audit trail and the change land together.
func (r *EntryRepo) Update(ctx context.Context, entry *domain.TimeEntry, reason string) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid time entry: %w", err)
	}

	old, err := r.GetByID(ctx, entry.OwnerID, entry.ID)
	if err != nil {
		return err
	}

	query := `
		UPDATE time_entries
		SET client_id = ?, notes = ?, start_time = ?, end_time = ?, updated_at = ?
		WHERE owner_id = ? AND id = ? AND is_deleted = 0
	`

	entry.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		nullableID(entry.ClientID),
		entry.Notes,
		formatTime(entry.StartTime),
		nullableTime(entry.EndTime),
		formatTime(entry.UpdatedAt),
		entry.OwnerID,
		entry.ID,
	)
	if err != nil {
		return wrapWrite("update time entry", err)
	}
	if err := checkAffected(result, fmt.Sprintf("time entry %d", entry.ID)); err != nil {
		return err
	}

	return r.createAuditRecords(ctx, old, entry, reason)
}

// SoftDelete marks a time entry as deleted
func (r *EntryRepo) SoftDelete(ctx context.Context, ownerID, id int64, reason string) error {
	query := `
		UPDATE time_entries
		SET is_deleted = 1, updated_at = ?
		WHERE owner_id = ? AND id = ? AND is_deleted = 0
	`

	result, err := r.db.ExecContext(ctx, query, nowUTC(), ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	if err := checkAffected(result, fmt.Sprintf("time entry %d", id)); err != nil {
		return err
	}

	historyQuery := `
		INSERT INTO entry_history (entry_id, field_name, old_value, new_value, change_reason, changed_at)
		VALUES (?, 'is_deleted', '0', '1', ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, historyQuery, id, reason, nowUTC()); err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

// List retrieves the owner's entries, newest first
func (r *EntryRepo) List(ctx context.Context, ownerID int64, filter EntryFilter) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE owner_id = ? AND is_deleted = 0`
	args := []any{ownerID}

	if filter.ClientID != nil {
		query += " AND client_id = ?"
		args = append(args, *filter.ClientID)
	}
	if filter.From != nil {
		query += " AND start_time >= ?"
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		query += " AND start_time < ?"
		args = append(args, formatTime(*filter.To))
	}

	query += " ORDER BY start_time DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	return r.query(ctx, query, args...)
}

// ListClosedOverlapping returns the closed entries of one client that
// intersect [start, end), in start order.
func (r *EntryRepo) ListClosedOverlapping(ctx context.Context, ownerID, clientID int64, start, end time.Time) ([]*domain.TimeEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE owner_id = ?
		  AND client_id = ?
		  AND is_deleted = 0
		  AND end_time IS NOT NULL
		  AND end_time > ?
		  AND start_time < ?
		ORDER BY start_time, id
	`

	return r.query(ctx, query, ownerID, clientID, formatTime(start), formatTime(end))
}

// GetHistory retrieves the audit trail for one of the owner's entries
func (r *EntryRepo) GetHistory(ctx context.Context, ownerID, entryID int64) ([]*domain.EntryHistory, error) {
	query := `
		SELECT h.id, h.entry_id, h.field_name, COALESCE(h.old_value, ''), COALESCE(h.new_value, ''),
		       COALESCE(h.change_reason, ''), h.changed_at
		FROM entry_history h
		JOIN time_entries e ON e.id = h.entry_id
		WHERE e.owner_id = ? AND h.entry_id = ?
		ORDER BY h.changed_at DESC, h.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry history: %w", err)
	}
	defer rows.Close()

	history := make([]*domain.EntryHistory, 0)
	for rows.Next() {
		h := &domain.EntryHistory{}
		var changedAt string

		err := rows.Scan(
			&h.ID,
			&h.EntryID,
			&h.FieldName,
			&h.OldValue,
			&h.NewValue,
			&h.ChangeReason,
			&changedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		if h.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, fmt.Errorf("failed to parse changed_at: %w", err)
		}

		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return history, nil
}

func (r *EntryRepo) query(ctx context.Context, query string, args ...any) ([]*domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

// createAuditRecords creates history records for changed fields
func (r *EntryRepo) createAuditRecords(ctx context.Context, old, updated *domain.TimeEntry, reason string) error {
	changedAt := nowUTC()

	insertHistory := func(fieldName, oldVal, newVal string) error {
		if oldVal == newVal {
			return nil
		}
		query := `
			INSERT INTO entry_history (entry_id, field_name, old_value, new_value, change_reason, changed_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := r.db.ExecContext(ctx, query, updated.ID, fieldName, oldVal, newVal, reason, changedAt); err != nil {
			return fmt.Errorf("failed to audit %s change: %w", fieldName, err)
		}
		return nil
	}

	changes := [][3]string{
		{"client_id", idString(old.ClientID), idString(updated.ClientID)},
		{"notes", old.Notes, updated.Notes},
		{"start_time", auditTime(old.StartTime), auditTime(updated.StartTime)},
		{"end_time", timeString(old.EndTime), timeString(updated.EndTime)},
	}
	for _, c := range changes {
		if err := insertHistory(c[0], c[1], c[2]); err != nil {
			return err
		}
	}

	return nil
}

func idString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func timeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return auditTime(*t)
}

// auditTime is the history form of a time: RFC3339, with a fraction only when
// there is one.
func auditTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// scanTimeEntry reads one row selected with entryColumns
func scanTimeEntry(s rowScanner) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{}
	var clientID sql.NullInt64
	var startTime, createdAt, updatedAt string
	var endTime sql.NullString

	err := s.Scan(
		&entry.ID,
		&entry.OwnerID,
		&clientID,
		&entry.Notes,
		&startTime,
		&endTime,
		&entry.IsDeleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if clientID.Valid {
		id := clientID.Int64
		entry.ClientID = &id
	}
	if entry.StartTime, err = parseTime(startTime); err != nil {
		return nil, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if entry.EndTime, err = parseNullableTime(endTime); err != nil {
		return nil, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return entry, nil
}
