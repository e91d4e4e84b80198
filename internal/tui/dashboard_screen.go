package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/tallysheet/internal/app"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/service"
)

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// DashboardModel shows the current week and the running timers
type DashboardModel struct {
	app   *app.App
	owner *domain.User

	week    *service.WeekSummary
	running []*domain.RunningTimer

	loading bool
	err     error
}

type dashboardDataMsg struct {
	week    *service.WeekSummary
	running []*domain.RunningTimer
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App, owner *domain.User) tea.Model {
	return &DashboardModel{app: a, owner: owner, loading: true}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	tz := a.Config.Timesheets.DefaultTimezone
	return func() tea.Msg {
		ctx := ctxb()

		week, err := a.Reports.WeekSummary(ctx, ownerID, time.Now(), tz)
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("week summary: %w", err)}
		}

		running, err := a.Timers.Running(ctx, ownerID)
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("running timers: %w", err)}
		}

		return dashboardDataMsg{week: week, running: running}
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.week = msg.week
		m.running = msg.running
		if len(m.running) > 0 {
			return m, tickTimer()
		}
		return m, nil

	case TimerTickMsg:
		if len(m.running) > 0 {
			return m, tickTimer()
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var b strings.Builder

	fmt.Fprintf(&b, "  Week of %s (%s)\n", m.week.Period.StartDate(), m.week.Period.Timezone)
	fmt.Fprintf(&b, "  Tracked:  %-12s  Value:  %s\n\n",
		formatHours(m.week.TotalHours()),
		timerValueStyle.Render(formatMoney(m.week.TotalAmount)),
	)

	b.WriteString(m.renderDays())
	b.WriteString("\n")
	b.WriteString(m.renderClients())
	b.WriteString("\n")
	b.WriteString(m.renderRunning())

	return b.String()
}

func (m *DashboardModel) renderDays() string {
	var b strings.Builder
	b.WriteString(" ")
	for _, d := range weekdays {
		fmt.Fprintf(&b, " %-7s", d.String()[:3])
	}
	b.WriteString("\n ")
	for _, d := range weekdays {
		secs := m.week.ByDay[d]
		cell := "-"
		if secs > 0 {
			cell = formatHours(float64(secs) / 3600)
		}
		fmt.Fprintf(&b, " %-7s", cell)
	}
	b.WriteString("\n")
	return b.String()
}

func (m *DashboardModel) renderClients() string {
	header := "  By Client\n"
	if len(m.week.ByClient) == 0 {
		return header + subtitleStyle.Render("  Nothing tracked this week") + "\n"
	}

	s := header
	for _, c := range m.week.ByClient {
		s += fmt.Sprintf("  %-24s %8s  %12s\n",
			truncateStr(c.ClientName, 24),
			formatHours(c.Hours()),
			formatMoney(c.Amount),
		)
	}
	return s
}

func (m *DashboardModel) renderRunning() string {
	if len(m.running) == 0 {
		return subtitleStyle.Render("  No running timers") + "\n"
	}

	now := time.Now()
	s := "  Running\n"
	for _, t := range m.running {
		s += fmt.Sprintf("  %s %-24s [%s]  %s\n",
			timerRunningStyle.Render("●"),
			truncateStr(t.ClientName, 24),
			timerValueStyle.Render(formatClock(t.Elapsed(now))),
			formatMoney(t.AccruedValue(now)),
		)
	}
	return s
}
