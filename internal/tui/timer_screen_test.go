package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerModel_ToggleAndDiscard(t *testing.T) {
	a, owner := newTestApp(t)
	ctx := context.Background()

	acme, err := a.Clients.Create(ctx, owner.ID, "Acme", 60)
	require.NoError(t, err)
	_, err = a.Clients.Create(ctx, owner.ID, "Beta", 80)
	require.NoError(t, err)

	m := NewTimerModel(a, owner).(*TimerModel)
	drive(t, m, m.Init())
	require.Len(t, m.clients, 2)
	assert.Empty(t, m.running)

	// clients are listed by name, so 1 is Acme
	_, cmd := m.Update(keyPress("1"))
	drive(t, m, drive(t, m, cmd))
	require.Contains(t, m.running, acme.ID)
	assert.Equal(t, "Started Acme", m.statusMsg)

	// the second client runs independently
	_, cmd = m.Update(keyPress("2"))
	drive(t, m, drive(t, m, cmd))
	assert.Len(t, m.running, 2)
	assert.Contains(t, m.View(), "●")

	_, cmd = m.Update(keyPress("1"))
	drive(t, m, drive(t, m, cmd))
	assert.NotContains(t, m.running, acme.ID)
	assert.Contains(t, m.statusMsg, "Stopped Acme")

	// pressing 1 left the cursor on Acme; move down to Beta and discard
	m.Update(keyPress("j"))
	_, cmd = m.Update(keyPress("X"))
	drive(t, m, drive(t, m, cmd))
	assert.Empty(t, m.running)

	running, err := a.Timers.Running(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, running)
}
