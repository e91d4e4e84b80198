package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/repository"
	"github.com/andy/tallysheet/internal/testutil"
	"github.com/andy/tallysheet/internal/timesheet"
)

func TestEntryRepo_ListClosedOverlapping(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewEntryRepo(database)
	ctx := context.Background()
	owner := testutil.CreateUser(t, database, "a@example.com")
	other := testutil.CreateUser(t, database, "b@example.com")
	c := testutil.CreateClient(t, database, owner.ID, "Acme")
	c2 := testutil.CreateClient(t, database, owner.ID, "Beta")
	oc := testutil.CreateClient(t, database, other.ID, "Acme")

	start := testutil.UTC(2024, 1, 1, 0, 0)
	end := testutil.UTC(2024, 2, 1, 0, 0)

	late := testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2024, 1, 20, 9, 0), testutil.UTC(2024, 1, 20, 12, 0))
	spanning := testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2023, 12, 31, 22, 0), testutil.UTC(2024, 1, 1, 2, 0))
	early := testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2024, 1, 3, 9, 0), testutil.UTC(2024, 1, 3, 11, 0))

	// excluded: touches start, touches end, wrong client, wrong owner, deleted, open
	testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2023, 12, 31, 20, 0), start)
	testutil.CreateEntry(t, database, owner.ID, c.ID, end, testutil.UTC(2024, 2, 1, 3, 0))
	testutil.CreateEntry(t, database, owner.ID, c2.ID, testutil.UTC(2024, 1, 5, 9, 0), testutil.UTC(2024, 1, 5, 10, 0))
	testutil.CreateEntry(t, database, other.ID, oc.ID, testutil.UTC(2024, 1, 5, 9, 0), testutil.UTC(2024, 1, 5, 10, 0))
	deleted := testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2024, 1, 6, 9, 0), testutil.UTC(2024, 1, 6, 10, 0))
	require.NoError(t, repo.SoftDelete(ctx, owner.ID, deleted.ID, "mistake"))
	testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2024, 1, 7, 9, 0), time.Time{}, testutil.Open())

	got, err := repo.ListClosedOverlapping(ctx, owner.ID, c.ID, start, end)
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{spanning.ID, early.ID, late.ID}, ids)
}

func TestEntryRepo_KeepsSubSecondTimes(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewEntryRepo(database)
	ctx := context.Background()
	owner := testutil.CreateUser(t, database, "a@example.com")
	c := testutil.CreateClient(t, database, owner.ID, "Acme")

	// 0.8s of work that straddles a whole second
	start := testutil.UTC(2024, 1, 2, 9, 0).Add(600 * time.Millisecond)
	end := testutil.UTC(2024, 1, 2, 9, 0).Add(1400 * time.Millisecond)
	e := testutil.CreateEntry(t, database, owner.ID, c.ID, start, end)

	got, err := repo.GetByID(ctx, owner.ID, e.ID)
	require.NoError(t, err)
	assert.True(t, start.Equal(got.StartTime))
	assert.True(t, end.Equal(*got.EndTime))

	period := domain.MonthlyPeriod{Month: time.January, Year: 2024}
	pStart, pEnd := period.Bounds()
	entries, err := repo.ListClosedOverlapping(ctx, owner.ID, c.ID, pStart, pEnd)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = timesheet.Aggregate(entries, period, 100)
	assert.ErrorIs(t, err, domain.ErrNoEntries)

	// stored text still orders chronologically across the fraction
	later := testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2024, 1, 2, 9, 0).Add(900*time.Millisecond), testutil.UTC(2024, 1, 2, 9, 5))
	entries, err = repo.ListClosedOverlapping(ctx, owner.ID, c.ID, pStart, pEnd)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []int64{e.ID, later.ID}, []int64{entries[0].ID, entries[1].ID})
}

func TestEntryRepo_UpdateWritesHistory(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewEntryRepo(database)
	ctx := context.Background()
	owner := testutil.CreateUser(t, database, "a@example.com")
	c := testutil.CreateClient(t, database, owner.ID, "Acme")
	e := testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2024, 1, 2, 9, 0), testutil.UTC(2024, 1, 2, 10, 0), testutil.WithNotes("draft"))

	newEnd := testutil.UTC(2024, 1, 2, 11, 0)
	e.EndTime = &newEnd
	e.Notes = "final"
	require.NoError(t, repo.Update(ctx, e, "forgot to stop"))

	got, err := repo.GetByID(ctx, owner.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Notes)
	assert.Equal(t, newEnd, *got.EndTime)

	history, err := repo.GetHistory(ctx, owner.ID, e.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	fields := map[string]*domain.EntryHistory{}
	for _, h := range history {
		fields[h.FieldName] = h
	}
	assert.Equal(t, "draft", fields["notes"].OldValue)
	assert.Equal(t, "final", fields["notes"].NewValue)
	assert.Equal(t, "2024-01-02T11:00:00Z", fields["end_time"].NewValue)
	assert.Equal(t, "forgot to stop", fields["end_time"].ChangeReason)
}

func TestEntryRepo_SoftDelete(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewEntryRepo(database)
	ctx := context.Background()
	owner := testutil.CreateUser(t, database, "a@example.com")
	c := testutil.CreateClient(t, database, owner.ID, "Acme")
	e := testutil.CreateEntry(t, database, owner.ID, c.ID, testutil.UTC(2024, 1, 2, 9, 0), testutil.UTC(2024, 1, 2, 10, 0))

	require.NoError(t, repo.SoftDelete(ctx, owner.ID, e.ID, "duplicate"))
	assert.ErrorIs(t, repo.SoftDelete(ctx, owner.ID, e.ID, "again"), repository.ErrNotFound)

	_, err := repo.GetByID(ctx, owner.ID, e.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	history, err := repo.GetHistory(ctx, owner.ID, e.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "is_deleted", history[0].FieldName)
}

func TestEntryRepo_ListFiltersAndPages(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewEntryRepo(database)
	ctx := context.Background()
	owner := testutil.CreateUser(t, database, "a@example.com")
	a := testutil.CreateClient(t, database, owner.ID, "A")
	b := testutil.CreateClient(t, database, owner.ID, "B")

	for day := 1; day <= 5; day++ {
		testutil.CreateEntry(t, database, owner.ID, a.ID, testutil.UTC(2024, 1, day, 9, 0), testutil.UTC(2024, 1, day, 10, 0))
	}
	testutil.CreateEntry(t, database, owner.ID, b.ID, testutil.UTC(2024, 1, 9, 9, 0), testutil.UTC(2024, 1, 9, 10, 0))

	all, err := repo.List(ctx, owner.ID, repository.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, testutil.UTC(2024, 1, 9, 9, 0), all[0].StartTime)

	page, err := repo.List(ctx, owner.ID, repository.EntryFilter{ClientID: &a.ID, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, testutil.UTC(2024, 1, 4, 9, 0), page[0].StartTime)
	assert.Equal(t, testutil.UTC(2024, 1, 3, 9, 0), page[1].StartTime)

	from := testutil.UTC(2024, 1, 2, 0, 0)
	to := testutil.UTC(2024, 1, 4, 0, 0)
	window, err := repo.List(ctx, owner.ID, repository.EntryFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, window, 2)
}
