package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/timesheet"
)

func TestPeriodRequest(t *testing.T) {
	req, err := periodRequest(7, true, "3", "2024")
	require.NoError(t, err)
	assert.Equal(t, timesheet.MonthlyRequest{ClientID: 7, Month: 3, Year: 2024}, req)

	req, err = periodRequest(7, false, "2024-01-01", "2024-01-31", "Europe/Paris")
	require.NoError(t, err)
	assert.Equal(t, timesheet.RangeRequest{ClientID: 7, StartDate: "2024-01-01", EndDate: "2024-01-31", Timezone: "Europe/Paris"}, req)

	_, err = periodRequest(7, true, "March", "2024")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "March 2024 (UTC)", periodLabel(domain.TimesheetSummary{PeriodType: domain.PeriodMonthly, Month: time.March, Year: 2024}))
	assert.Equal(t, "2024-01-01 to 2024-01-07 (UTC)", periodLabel(domain.TimesheetSummary{
		PeriodType: domain.PeriodRange, StartDate: "2024-01-01", EndDate: "2024-01-07", Timezone: "UTC",
	}))
}

func TestTimesheetsModel_GenerateAndSave(t *testing.T) {
	a, owner := newTestApp(t)
	ctx := context.Background()

	client, err := a.Clients.Create(ctx, owner.ID, "Acme Corp", 100)
	require.NoError(t, err)
	start := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	_, err = a.Entries.Add(ctx, owner.ID, client.ID, start, start.Add(2*time.Hour), "design review")
	require.NoError(t, err)

	m := NewTimesheetsModel(a, owner).(*TimesheetsModel)
	drive(t, m, m.Init())
	assert.Empty(t, m.sheets)

	// pick the client, then a calendar month
	_, cmd := m.Update(keyPress("n"))
	drive(t, m, cmd)
	require.Equal(t, timesheetViewGenPickClient, m.mode)
	require.Len(t, m.genClients, 1)

	m.Update(keyPress("m"))
	require.Equal(t, timesheetViewGenPeriod, m.mode)
	assert.True(t, m.genMonthly)
	m.genForm.set(fieldMonth, "3")
	m.genForm.set(fieldYear, "2024")

	_, cmd = m.Update(keyPress("ctrl+s"))
	drive(t, m, cmd)
	require.NoError(t, m.err)
	require.Equal(t, timesheetViewGenPreview, m.mode)
	assert.Equal(t, "Acme_Corp_March_2024_timesheet.csv", m.preview.Filename)
	assert.Equal(t, 200.0, m.preview.Result.TotalAmount)
	assert.Contains(t, m.View(), "design review")

	// nothing is stored until the preview is confirmed
	sheets, err := a.Timesheets.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, sheets)

	_, cmd = m.Update(keyPress("enter"))
	reload := drive(t, m, cmd)
	assert.Equal(t, timesheetViewList, m.mode)
	assert.Contains(t, m.statusMsg, "Acme Corp")
	drive(t, m, reload)
	require.Len(t, m.sheets, 1)

	_, cmd = m.Update(keyPress("o"))
	reload = drive(t, m, cmd)
	require.NoError(t, m.err)
	drive(t, m, reload)
	body, err := os.ReadFile(filepath.Join(a.Config.Timesheets.ExportDir, "Acme_Corp_March_2024_timesheet.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "design review")

	// a second generation for the same month is rejected and shown on the preview
	_, cmd = m.Update(keyPress("n"))
	drive(t, m, cmd)
	m.Update(keyPress("m"))
	m.genForm.set(fieldMonth, "3")
	m.genForm.set(fieldYear, "2024")
	_, cmd = m.Update(keyPress("ctrl+s"))
	drive(t, m, cmd)
	_, cmd = m.Update(keyPress("enter"))
	drive(t, m, cmd)
	assert.ErrorIs(t, m.err, domain.ErrConflict)
	assert.Equal(t, timesheetViewGenPreview, m.mode)
}

func TestTimesheetsModel_Delete(t *testing.T) {
	a, owner := newTestApp(t)
	ctx := context.Background()

	client, err := a.Clients.Create(ctx, owner.ID, "Acme", 50)
	require.NoError(t, err)
	start := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	_, err = a.Entries.Add(ctx, owner.ID, client.ID, start, start.Add(time.Hour), "")
	require.NoError(t, err)
	_, err = a.Timesheets.GenerateMonthly(ctx, owner.ID, timesheet.MonthlyRequest{ClientID: client.ID, Month: 1, Year: 2024})
	require.NoError(t, err)

	m := NewTimesheetsModel(a, owner).(*TimesheetsModel)
	drive(t, m, m.Init())
	require.Len(t, m.sheets, 1)

	// anything but y cancels
	m.Update(keyPress("x"))
	assert.True(t, m.IsCapturingInput())
	m.Update(keyPress("n"))
	assert.Equal(t, timesheetViewList, m.mode)

	m.Update(keyPress("x"))
	_, cmd := m.Update(keyPress("y"))
	reload := drive(t, m, cmd)
	drive(t, m, reload)
	assert.Empty(t, m.sheets)
}
