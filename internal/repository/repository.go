package repository

import (
	"context"
	"time"

	"github.com/andy/tallysheet/internal/domain"
)

// UserRepository manages owners
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateTier(ctx context.Context, id int64, tier domain.Tier) error
}

// ClientRepository manages client persistence. Every lookup is owner-scoped.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, ownerID, id int64) (*domain.Client, error)
	GetByName(ctx context.Context, ownerID int64, name string) (*domain.Client, error)
	List(ctx context.Context, ownerID int64) ([]*domain.Client, error)
	Count(ctx context.Context, ownerID int64) (int, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, ownerID, id int64) error
}

// EntryFilter narrows TimeEntryRepository.List
type EntryFilter struct {
	ClientID *int64
	From     *time.Time // entries starting at or after
	To       *time.Time // entries starting before
	Limit    int
	Offset   int
}

// TimeEntryRepository manages time entry persistence with audit trail
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *domain.TimeEntry) error
	GetByID(ctx context.Context, ownerID, id int64) (*domain.TimeEntry, error)
	Update(ctx context.Context, entry *domain.TimeEntry, reason string) error // Creates audit records
	SoftDelete(ctx context.Context, ownerID, id int64, reason string) error
	List(ctx context.Context, ownerID int64, filter EntryFilter) ([]*domain.TimeEntry, error)
	// ListClosedOverlapping returns closed entries with end > start and
	// start < end, ordered by start time.
	ListClosedOverlapping(ctx context.Context, ownerID, clientID int64, start, end time.Time) ([]*domain.TimeEntry, error)
	GetHistory(ctx context.Context, ownerID, entryID int64) ([]*domain.EntryHistory, error)
}

// TimerRepository reads and closes open entries
type TimerRepository interface {
	GetRunning(ctx context.Context, ownerID, clientID int64) (*domain.TimeEntry, error) // nil if none
	ListRunning(ctx context.Context, ownerID int64) ([]*domain.RunningTimer, error)
	Stop(ctx context.Context, ownerID, entryID int64, end time.Time, notes *string) error
}

// TimesheetRepository manages generated timesheets
type TimesheetRepository interface {
	Create(ctx context.Context, ts *domain.Timesheet) error
	Exists(ctx context.Context, ownerID, clientID int64, period domain.Period) (bool, error)
	GetByID(ctx context.Context, ownerID, id int64) (*domain.Timesheet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Timesheet, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
