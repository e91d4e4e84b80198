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

const timesheetColumns = `
	t.id, t.owner_id, t.client_id, t.client_name, t.period_type, t.month, t.year,
	t.period_start_utc, t.period_end_utc, t.period_timezone, t.entry_count,
	t.total_seconds, t.total_hours, t.total_amount, t.csv_data, t.created_at,
	c.id IS NOT NULL
`

const timesheetFrom = `
	FROM timesheets t
	LEFT JOIN clients c ON c.id = t.client_id AND c.owner_id = t.owner_id
`

// TimesheetRepo is a SQLite implementation of TimesheetRepository
type TimesheetRepo struct {
	db db.DBTX
}

// NewTimesheetRepo creates a new TimesheetRepo
func NewTimesheetRepo(q db.DBTX) *TimesheetRepo {
	return &TimesheetRepo{db: q}
}

// Create stores a generated timesheet. A record for the same owner, client
// and period already present yields ErrDuplicate.
func (r *TimesheetRepo) Create(ctx context.Context, ts *domain.Timesheet) error {
	start, end := ts.Period.Bounds()

	var month, year any
	if mp, ok := ts.Period.(domain.MonthlyPeriod); ok {
		month, year = int(mp.Month), mp.Year
	}

	query := `
		INSERT INTO timesheets (
			owner_id, client_id, client_name, period_type, month, year,
			period_start_utc, period_end_utc, period_timezone, entry_count,
			total_seconds, total_hours, total_amount, csv_data, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		ts.OwnerID,
		ts.ClientID,
		ts.ClientName,
		string(ts.Period.Type()),
		month,
		year,
		formatTime(start),
		formatTime(end),
		ts.Period.TimezoneName(),
		ts.EntryCount,
		ts.TotalSeconds,
		ts.TotalHours,
		ts.TotalAmount,
		ts.CSV,
		formatTime(ts.CreatedAt),
	)
	if err != nil {
		return wrapWrite("create timesheet", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get timesheet ID: %w", err)
	}

	ts.ID = id
	return nil
}

// Exists reports whether the owner already has a timesheet for the client and period
func (r *TimesheetRepo) Exists(ctx context.Context, ownerID, clientID int64, period domain.Period) (bool, error) {
	start, end := period.Bounds()
	query := `
		SELECT EXISTS (
			SELECT 1 FROM timesheets
			WHERE owner_id = ? AND client_id = ? AND period_type = ?
			  AND period_start_utc = ? AND period_end_utc = ? AND period_timezone = ?
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query,
		ownerID, clientID, string(period.Type()),
		formatTime(start), formatTime(end), period.TimezoneName(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check timesheet existence: %w", err)
	}
	return exists, nil
}

// GetByID retrieves one of the owner's timesheets including its CSV body
func (r *TimesheetRepo) GetByID(ctx context.Context, ownerID, id int64) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + timesheetFrom + ` WHERE t.owner_id = ? AND t.id = ?`

	ts, err := scanTimesheet(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timesheet %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}
	return ts, nil
}

// ListByOwner returns the owner's timesheets, most recent first
func (r *TimesheetRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + timesheetFrom + `
		WHERE t.owner_id = ?
		ORDER BY t.created_at DESC, t.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	sheets := make([]*domain.Timesheet, 0)
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		sheets = append(sheets, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timesheets: %w", err)
	}

	return sheets, nil
}

// Delete removes one of the owner's timesheets
func (r *TimesheetRepo) Delete(ctx context.Context, ownerID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timesheets WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}
	return checkAffected(result, fmt.Sprintf("timesheet %d", id))
}

func scanTimesheet(s rowScanner) (*domain.Timesheet, error) {
	ts := &domain.Timesheet{}
	var periodType, startUTC, endUTC, timezone, createdAt string
	var month, year sql.NullInt64

	err := s.Scan(
		&ts.ID,
		&ts.OwnerID,
		&ts.ClientID,
		&ts.ClientName,
		&periodType,
		&month,
		&year,
		&startUTC,
		&endUTC,
		&timezone,
		&ts.EntryCount,
		&ts.TotalSeconds,
		&ts.TotalHours,
		&ts.TotalAmount,
		&ts.CSV,
		&createdAt,
		&ts.ClientExists,
	)
	if err != nil {
		return nil, err
	}

	if ts.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	switch domain.PeriodType(periodType) {
	case domain.PeriodMonthly:
		if !month.Valid || !year.Valid {
			return nil, fmt.Errorf("monthly timesheet %d has no month/year", ts.ID)
		}
		ts.Period = domain.MonthlyPeriod{Month: time.Month(month.Int64), Year: int(year.Int64)}
	case domain.PeriodRange:
		start, err := parseTime(startUTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse period_start_utc: %w", err)
		}
		end, err := parseTime(endUTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse period_end_utc: %w", err)
		}
		ts.Period = domain.RangePeriod{Start: start, End: end, Timezone: timezone}
	default:
		return nil, fmt.Errorf("unknown period type %q", periodType)
	}

	return ts, nil
}
