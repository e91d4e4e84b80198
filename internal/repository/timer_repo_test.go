package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/repository"
	"github.com/andy/tallysheet/internal/testutil"
)

func TestTimerRepo_OneRunningEntryPerClient(t *testing.T) {
	database := testutil.NewTestDB(t)
	entries := repository.NewEntryRepo(database)
	timers := repository.NewTimerRepo(database)
	ctx := context.Background()
	owner := testutil.CreateUser(t, database, "a@example.com")
	acme := testutil.CreateClient(t, database, owner.ID, "Acme", testutil.WithRate(60))
	beta := testutil.CreateClient(t, database, owner.ID, "Beta")

	idle, err := timers.GetRunning(ctx, owner.ID, acme.ID)
	require.NoError(t, err)
	assert.Nil(t, idle)

	first := domain.NewTimeEntry(owner.ID, acme.ID, "")
	require.NoError(t, entries.Create(ctx, first))

	second := domain.NewTimeEntry(owner.ID, acme.ID, "")
	assert.ErrorIs(t, entries.Create(ctx, second), repository.ErrDuplicate)

	// another client may run at the same time
	require.NoError(t, entries.Create(ctx, domain.NewTimeEntry(owner.ID, beta.ID, "")))

	running, err := timers.ListRunning(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, running, 2)
	assert.Equal(t, "Acme", running[0].ClientName)
	assert.Equal(t, 60.0, running[0].HourlyRate)
	assert.Equal(t, acme.ID, running[0].ClientID)
}

func TestTimerRepo_Stop(t *testing.T) {
	database := testutil.NewTestDB(t)
	entries := repository.NewEntryRepo(database)
	timers := repository.NewTimerRepo(database)
	ctx := context.Background()
	owner := testutil.CreateUser(t, database, "a@example.com")
	c := testutil.CreateClient(t, database, owner.ID, "Acme")

	e := domain.NewTimeEntry(owner.ID, c.ID, "started")
	e.StartTime = testutil.UTC(2024, 1, 2, 9, 0)
	require.NoError(t, entries.Create(ctx, e))

	notes := "wrapped up"
	require.NoError(t, timers.Stop(ctx, owner.ID, e.ID, testutil.UTC(2024, 1, 2, 10, 0), &notes))
	assert.ErrorIs(t, timers.Stop(ctx, owner.ID, e.ID, testutil.UTC(2024, 1, 2, 11, 0), nil), repository.ErrNotFound)

	got, err := entries.GetByID(ctx, owner.ID, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EndTime)
	assert.Equal(t, testutil.UTC(2024, 1, 2, 10, 0), *got.EndTime)
	assert.Equal(t, "wrapped up", got.Notes)

	// a new timer can start once the previous one is closed
	require.NoError(t, entries.Create(ctx, domain.NewTimeEntry(owner.ID, c.ID, "")))
}
