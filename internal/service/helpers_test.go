package service

import (
	"testing"
	"time"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/testutil"
)

var fixedNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fixture struct {
	db    *db.DB
	uow   db.UnitOfWork
	owner *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &fixture{
		db:    database,
		uow:   testutil.NewTestUoW(database),
		owner: testutil.CreateUser(t, database, "owner@example.com"),
	}
}

func (f *fixture) timesheets() TimesheetService {
	return NewTimesheetService(f.uow, SQLiteStores, fixedClock)
}
