package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/repository"
)

// ClientOption customises a client built by NewTestClient.
type ClientOption func(*domain.Client)

func WithRate(rate float64) ClientOption {
	return func(c *domain.Client) { c.HourlyRate = rate }
}

// EntryOption customises an entry built by NewTestEntry.
type EntryOption func(*domain.TimeEntry)

func WithNotes(notes string) EntryOption {
	return func(e *domain.TimeEntry) { e.Notes = notes }
}

// Open leaves the entry running.
func Open() EntryOption {
	return func(e *domain.TimeEntry) { e.EndTime = nil }
}

// CreateUser stores a user with the given email.
func CreateUser(t *testing.T, q db.DBTX, email string) *domain.User {
	t.Helper()
	u := domain.NewUser(email)
	if err := repository.NewUserRepo(q).Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

// CreateClient stores a client for the owner.
func CreateClient(t *testing.T, q db.DBTX, ownerID int64, name string, opts ...ClientOption) *domain.Client {
	t.Helper()
	c := domain.NewClient(ownerID, name, 0)
	for _, opt := range opts {
		opt(c)
	}
	if err := repository.NewClientRepo(q).Create(context.Background(), c); err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// CreateEntry stores a closed entry for the client spanning start to end.
func CreateEntry(t *testing.T, q db.DBTX, ownerID, clientID int64, start, end time.Time, opts ...EntryOption) *domain.TimeEntry {
	t.Helper()
	e := domain.NewClosedEntry(ownerID, clientID, start, end, "")
	for _, opt := range opts {
		opt(e)
	}
	if err := repository.NewEntryRepo(q).Create(context.Background(), e); err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}
	return e
}

// UTC is shorthand for a UTC wall-clock instant.
func UTC(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}
