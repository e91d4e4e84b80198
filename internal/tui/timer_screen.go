package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/tallysheet/internal/app"
	"github.com/andy/tallysheet/internal/domain"
)

// TimerTickMsg is sent every second while a timer is running (screen-local)
type TimerTickMsg struct{}

// tickTimer returns a command that sends TimerTickMsg every second
func tickTimer() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TimerTickMsg{}
	})
}

// timersLoadedMsg carries the owner's clients and their running timers
type timersLoadedMsg struct {
	clients []*domain.Client
	running []*domain.RunningTimer
	err     error
}

// timerChangedMsg reports a finished start, stop or discard
type timerChangedMsg struct {
	status string
	err    error
}

func loadTimersCmd(a *app.App, ownerID int64) tea.Cmd {
	return func() tea.Msg {
		ctx := ctxb()
		clients, err := a.Clients.List(ctx, ownerID)
		if err != nil {
			return timersLoadedMsg{err: err}
		}
		running, err := a.Timers.Running(ctx, ownerID)
		return timersLoadedMsg{clients: clients, running: running, err: err}
	}
}

// TimerModel lists clients with one independent timer each
type TimerModel struct {
	app   *app.App
	owner *domain.User

	clients []*domain.Client
	running map[int64]*domain.RunningTimer
	cursor  int

	statusMsg string
	err       error
}

// NewTimerModel creates a new TimerModel
func NewTimerModel(a *app.App, owner *domain.User) tea.Model {
	return &TimerModel{
		app:     a,
		owner:   owner,
		running: make(map[int64]*domain.RunningTimer),
	}
}

// Init loads clients and timers
func (m *TimerModel) Init() tea.Cmd {
	return loadTimersCmd(m.app, m.owner.ID)
}

// Update handles key events and ticks
func (m *TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		return m, loadTimersCmd(m.app, m.owner.ID)

	case timersLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.clients = msg.clients
		m.running = make(map[int64]*domain.RunningTimer, len(msg.running))
		for _, t := range msg.running {
			m.running[t.ClientID] = t
		}
		if m.cursor >= len(m.clients) {
			m.cursor = max(len(m.clients)-1, 0)
		}
		if len(m.running) > 0 {
			return m, tickTimer()
		}
		return m, nil

	case timerChangedMsg:
		if msg.err != nil {
			m.statusMsg = ""
			return m, func() tea.Msg { return ErrorMsg{Err: msg.err} }
		}
		m.statusMsg = msg.status
		return m, loadTimersCmd(m.app, m.owner.ID)

	case TimerTickMsg:
		if len(m.running) == 0 {
			return m, nil
		}
		return m, tickTimer()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *TimerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.clients)-1 {
			m.cursor++
		}
		return m, nil
	case msg.String() == " " || key.Matches(msg, DefaultKeyMap.Select):
		if c := m.selected(); c != nil {
			return m, m.toggle(c)
		}
	case msg.String() == "X":
		if c := m.selected(); c != nil && m.running[c.ID] != nil {
			return m, m.discard(c)
		}
	}

	// 1-9 toggles the nth client directly
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		idx := int(s[0] - '1')
		if idx < len(m.clients) {
			m.cursor = idx
			return m, m.toggle(m.clients[idx])
		}
	}
	return m, nil
}

func (m *TimerModel) selected() *domain.Client {
	if m.cursor < 0 || m.cursor >= len(m.clients) {
		return nil
	}
	return m.clients[m.cursor]
}

func (m *TimerModel) toggle(c *domain.Client) tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	if m.running[c.ID] != nil {
		return func() tea.Msg {
			entry, err := a.Timers.Stop(ctxb(), ownerID, c.ID, nil)
			if err != nil {
				return timerChangedMsg{err: err}
			}
			return timerChangedMsg{status: fmt.Sprintf("Stopped %s: %s", c.Name, formatHours(entry.Duration().Hours()))}
		}
	}
	return func() tea.Msg {
		if _, err := a.Timers.Start(ctxb(), ownerID, c.ID, ""); err != nil {
			return timerChangedMsg{err: err}
		}
		return timerChangedMsg{status: fmt.Sprintf("Started %s", c.Name)}
	}
}

func (m *TimerModel) discard(c *domain.Client) tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	return func() tea.Msg {
		if err := a.Timers.Discard(ctxb(), ownerID, c.ID); err != nil {
			return timerChangedMsg{err: err}
		}
		return timerChangedMsg{status: fmt.Sprintf("Discarded timer for %s", c.Name)}
	}
}

// View renders one row per client
func (m *TimerModel) View() string {
	if m.err != nil {
		return errorStyle.
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.clients) == 0 {
		return subtitleStyle.Render("  No clients yet. Press c to add one.")
	}

	var b strings.Builder
	now := time.Now()

	for i, c := range m.clients {
		label := "  "
		if i < 9 {
			label = fmt.Sprintf("%d ", i+1)
		}

		state := subtitleStyle.Render("○")
		clock := subtitleStyle.Render("--:--:--")
		value := ""
		if t := m.running[c.ID]; t != nil {
			state = timerRunningStyle.Render("●")
			clock = timerValueStyle.Render(formatClock(t.Elapsed(now)))
			value = formatMoney(t.AccruedValue(now))
		}

		line := fmt.Sprintf("%s%s %-24s %s  %s", label, state, truncateStr(c.Name, 24), clock, value)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n  " + statusStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("  [enter/space] start/stop  [1-9] toggle  [X] discard running"))
	return b.String()
}
