package service

import (
	"errors"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/repository"
)

// Stores bundles the repositories a use case works with, all bound to the
// same connection or transaction.
type Stores struct {
	Users      repository.UserRepository
	Clients    repository.ClientRepository
	Entries    repository.TimeEntryRepository
	Timers     repository.TimerRepository
	Timesheets repository.TimesheetRepository
}

// StoresFunc builds Stores over q.
type StoresFunc func(q db.DBTX) Stores

// SQLiteStores binds the SQLite repositories to q.
func SQLiteStores(q db.DBTX) Stores {
	return Stores{
		Users:      repository.NewUserRepo(q),
		Clients:    repository.NewClientRepo(q),
		Entries:    repository.NewEntryRepo(q),
		Timers:     repository.NewTimerRepo(q),
		Timesheets: repository.NewTimesheetRepo(q),
	}
}

// notFound maps a repository miss to a domain not-found error, passing
// anything else through.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewNotFoundError(msg)
	}
	return err
}
