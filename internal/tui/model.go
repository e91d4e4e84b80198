package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/tallysheet/internal/app"
	"github.com/andy/tallysheet/internal/domain"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenTimer
	ScreenClients
	ScreenTimesheets
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "This Week"
	case ScreenTimer:
		return "Timers"
	case ScreenClients:
		return "Clients"
	case ScreenTimesheets:
		return "Timesheets"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	owner         *domain.User
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	dashboard  tea.Model
	timer      tea.Model
	clients    tea.Model
	timesheets tea.Model

	checkedFirstRun bool

	err error
}

// New creates a new root model acting for owner
func New(a *app.App, owner *domain.User) Model {
	return Model{
		app:           a,
		owner:         owner,
		currentScreen: ScreenDashboard,
		dashboard:     NewDashboardModel(a, owner),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.checkFirstRun(),
	}
	if m.dashboard != nil {
		cmds = append(cmds, m.dashboard.Init())
	}
	return tea.Batch(cmds...)
}

// checkFirstRun checks whether the owner has any clients yet
func (m *Model) checkFirstRun() tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	return func() tea.Msg {
		clients, err := a.Clients.List(ctxb(), ownerID)
		if err != nil {
			return firstRunCheckMsg{hasClients: true} // assume yes on error
		}
		return firstRunCheckMsg{hasClients: len(clients) > 0}
	}
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	refresh := func() tea.Msg { return RefreshDataMsg{} }
	switch screen {
	case ScreenDashboard:
		if m.dashboard == nil {
			m.dashboard = NewDashboardModel(m.app, m.owner)
			return m.dashboard.Init()
		}
		return refresh
	case ScreenTimer:
		if m.timer == nil {
			m.timer = NewTimerModel(m.app, m.owner)
			return m.timer.Init()
		}
		return refresh
	case ScreenClients:
		if m.clients == nil {
			m.clients = NewClientsModel(m.app, m.owner)
			return m.clients.Init()
		}
		return refresh
	case ScreenTimesheets:
		if m.timesheets == nil {
			m.timesheets = NewTimesheetsModel(m.app, m.owner)
			return m.timesheets.Init()
		}
		return refresh
	}
	return nil
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) active() tea.Model {
	switch m.currentScreen {
	case ScreenDashboard:
		return m.dashboard
	case ScreenTimer:
		return m.timer
	case ScreenClients:
		return m.clients
	case ScreenTimesheets:
		return m.timesheets
	}
	return nil
}

func (m *Model) setActive(screen tea.Model) {
	switch m.currentScreen {
	case ScreenDashboard:
		m.dashboard = screen
	case ScreenTimer:
		m.timer = screen
	case ScreenClients:
		m.clients = screen
	case ScreenTimesheets:
		m.timesheets = screen
	}
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.active().(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	return m.initScreen(screen)
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				// timers live in the database and keep running after exit
				return m, tea.Quit
			case key.Matches(msg, DefaultKeyMap.Dashboard):
				return m, m.switchTo(ScreenDashboard)
			case key.Matches(msg, DefaultKeyMap.Timer):
				return m, m.switchTo(ScreenTimer)
			case key.Matches(msg, DefaultKeyMap.Clients):
				return m, m.switchTo(ScreenClients)
			case key.Matches(msg, DefaultKeyMap.Timesheets):
				return m, m.switchTo(ScreenTimesheets)
			}
		}

	case firstRunCheckMsg:
		if !m.checkedFirstRun && !msg.hasClients {
			m.checkedFirstRun = true
			initCmd := m.switchTo(ScreenClients)
			openFormCmd := func() tea.Msg { return OpenNewClientFormMsg{} }
			return m, tea.Batch(initCmd, openFormCmd)
		}
		m.checkedFirstRun = true
		return m, nil

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	screen := m.active()
	if screen == nil {
		return m, nil
	}
	screen, cmd := screen.Update(msg)
	m.setActive(screen)
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("tallysheet - %s", m.currentScreen.String())) +
		subtitleStyle.Render("  "+m.owner.Email)
	footer := footerStyle.Render("[W]eek  [T]imers  [C]lients  [S]heets  [Q]uit")

	content := "Loading..."
	if screen := m.active(); screen != nil {
		content = screen.View()
	}

	errorDisplay := ""
	if m.err != nil {
		errorDisplay = errorStyle.Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	innerWidth := m.width - 6 // border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI for owner
func Run(a *app.App, owner *domain.User) error {
	p := tea.NewProgram(New(a, owner), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
