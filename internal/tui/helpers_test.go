package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/app"
	"github.com/andy/tallysheet/internal/config"
	"github.com/andy/tallysheet/internal/domain"
)

func newTestApp(t *testing.T) (*app.App, *domain.User) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "tallysheet.db")
	cfg.Timesheets.ExportDir = filepath.Join(dir, "out")

	a, err := app.Open(cfg, "k", nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	owner, err := a.Owner(context.Background(), "me@example.com")
	require.NoError(t, err)
	return a, owner
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive runs cmd and feeds its message back into m
func drive(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	return next
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$1,234.50", formatMoney(1234.5))
	assert.Equal(t, "-$5.00", formatMoney(-5))
	assert.Equal(t, "1h 30m", formatHours(1.5))
	assert.Equal(t, "45m", formatHours(0.75))
	assert.Equal(t, "2h", formatHours(2))
	assert.Equal(t, "01:02:03", formatClock(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "00:00:00", formatClock(-time.Second))
	assert.Equal(t, "Café ...", truncateStr("Café Society", 8))
	assert.Equal(t, "short", truncateStr("short", 8))
}

func TestForm_Navigation(t *testing.T) {
	f := newForm(
		formField{label: "A:"},
		formField{label: "B:"},
	)
	f.start()

	res, _ := f.update(keyPress("x"))
	assert.Equal(t, formEditing, res)
	assert.Equal(t, "x", f.value(0))

	res, _ = f.update(keyPress("enter"))
	assert.Equal(t, formEditing, res)
	assert.Equal(t, 1, f.focus)

	res, _ = f.update(keyPress("enter"))
	assert.Equal(t, formSubmitted, res)

	res, _ = f.update(keyPress("esc"))
	assert.Equal(t, formCancelled, res)
}
