package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/tallysheet/internal/app"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/service"
)

// clientMode represents the current screen mode
type clientMode int

const (
	clientModeList clientMode = iota
	clientModeNew
	clientModeEdit
	clientModeConfirmDelete
)

// form field indices
const (
	fieldName = iota
	fieldRate
)

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	app       *app.App
	owner     *domain.User
	clients   []*domain.Client
	cursor    int
	weekStats map[int64]service.ClientWeek
	loading   bool
	err       error
	statusMsg string

	// Form state
	mode          clientMode
	form          *form
	editingID     int64 // 0 for new client
	autoNewClient bool  // open new client form after data loads
}

type clientsDataMsg struct {
	clients   []*domain.Client
	weekStats map[int64]service.ClientWeek
	err       error
}

type clientSavedMsg struct {
	status string
	err    error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App, owner *domain.User) tea.Model {
	return &ClientsModel{
		app:       a,
		owner:     owner,
		weekStats: make(map[int64]service.ClientWeek),
		loading:   true,
	}
}

// IsCapturingInput returns true when the form or the delete prompt is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode != clientModeList
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	tz := a.Config.Timesheets.DefaultTimezone
	return func() tea.Msg {
		ctx := ctxb()

		clients, err := a.Clients.List(ctx, ownerID)
		if err != nil {
			return clientsDataMsg{err: err}
		}

		stats := make(map[int64]service.ClientWeek)
		if week, err := a.Reports.WeekSummary(ctx, ownerID, time.Now(), tz); err == nil {
			for _, cw := range week.ByClient {
				stats[cw.ClientID] = cw
			}
		}

		return clientsDataMsg{clients: clients, weekStats: stats}
	}
}

func (m *ClientsModel) openForm(editing *domain.Client) tea.Cmd {
	m.form = newForm(
		formField{label: "Name:", placeholder: "Client name", charLimit: 100, width: 40},
		formField{label: "Rate ($/hr):", placeholder: "150.00", charLimit: 10, width: 15},
	)
	m.mode = clientModeNew
	m.editingID = 0
	if editing != nil {
		m.form.set(fieldName, editing.Name)
		m.form.set(fieldRate, strconv.FormatFloat(editing.HourlyRate, 'f', 2, 64))
		m.mode = clientModeEdit
		m.editingID = editing.ID
	}
	m.err = nil
	return m.form.start()
}

func (m *ClientsModel) saveClient() tea.Cmd {
	a, ownerID, editingID := m.app, m.owner.ID, m.editingID
	name := m.form.value(fieldName)
	rateStr := m.form.value(fieldRate)

	return func() tea.Msg {
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return clientSavedMsg{err: fmt.Errorf("invalid rate: %q", rateStr)}
		}

		if editingID > 0 {
			c, err := a.Clients.Update(ctxb(), ownerID, editingID, service.ClientUpdate{Name: &name, HourlyRate: &rate})
			if err != nil {
				return clientSavedMsg{err: err}
			}
			return clientSavedMsg{status: "Saved: " + c.Name}
		}

		c, err := a.Clients.Create(ctxb(), ownerID, name, rate)
		if err != nil {
			return clientSavedMsg{err: err}
		}
		return clientSavedMsg{status: "Added: " + c.Name}
	}
}

func (m *ClientsModel) deleteClient(c *domain.Client) tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	return func() tea.Msg {
		if err := a.Clients.Delete(ctxb(), ownerID, c.ID); err != nil {
			return clientSavedMsg{err: err}
		}
		return clientSavedMsg{status: "Deleted: " + c.Name}
	}
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle OpenNewClientFormMsg at the top so it works regardless of mode
	if _, ok := msg.(OpenNewClientFormMsg); ok {
		if m.loading {
			m.autoNewClient = true
			return m, nil
		}
		return m, m.openForm(nil)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.clients = msg.clients
			m.weekStats = msg.weekStats
			if m.cursor >= len(m.clients) {
				m.cursor = max(0, len(m.clients)-1)
			}
		}
		if m.autoNewClient {
			m.autoNewClient = false
			return m, m.openForm(nil)
		}
		return m, nil

	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			if m.mode == clientModeConfirmDelete {
				m.mode = clientModeList
			}
			return m, nil
		}
		m.mode = clientModeList
		m.statusMsg = msg.status
		m.loading = true
		return m, m.loadClients()
	}

	switch m.mode {
	case clientModeNew, clientModeEdit:
		res, cmd := m.form.update(msg)
		switch res {
		case formCancelled:
			m.mode = clientModeList
			m.err = nil
			return m, nil
		case formSubmitted:
			return m, m.saveClient()
		}
		return m, cmd

	case clientModeConfirmDelete:
		if k, ok := msg.(tea.KeyMsg); ok {
			if k.String() == "y" && m.cursor < len(m.clients) {
				return m, m.deleteClient(m.clients[m.cursor])
			}
			m.mode = clientModeList
		}
		return m, nil
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}

	m.statusMsg = ""
	m.err = nil

	switch {
	case key.Matches(k, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(k, DefaultKeyMap.Down):
		if m.cursor < len(m.clients)-1 {
			m.cursor++
		}
	case key.Matches(k, DefaultKeyMap.New):
		return m, m.openForm(nil)
	case key.Matches(k, DefaultKeyMap.Select):
		if m.cursor < len(m.clients) {
			return m, m.openForm(m.clients[m.cursor])
		}
	case key.Matches(k, DefaultKeyMap.Delete):
		if m.cursor < len(m.clients) {
			m.mode = clientModeConfirmDelete
		}
	}

	return m, nil
}

func (m *ClientsModel) View() string {
	switch m.mode {
	case clientModeNew, clientModeEdit:
		return m.viewForm()
	}
	return m.viewList()
}

func (m *ClientsModel) viewForm() string {
	var s string

	switch {
	case m.mode == clientModeEdit:
		s += titleStyle.Render("Edit Client") + "\n\n"
	case len(m.clients) == 0:
		s += titleStyle.Render("Welcome to tallysheet!") + "\n"
		s += subtitleStyle.Render("  Add your first client to start tracking time.") + "\n\n"
	default:
		s += titleStyle.Render("New Client") + "\n\n"
	}

	s += m.form.view()

	if m.err != nil {
		s += errorStyle.
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")
	return s
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	var s string
	s += titleStyle.Render("Clients") + "\n\n"

	if m.err != nil {
		s += errorStyle.
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	if m.statusMsg != "" {
		s += statusStyle.
			Render("  "+m.statusMsg) + "\n\n"
	}

	if len(m.clients) == 0 {
		s += subtitleStyle.Render("  No clients yet. Press 'n' to add one.") + "\n"
		return s
	}

	for i, client := range m.clients {
		s += m.renderClient(i, client) + "\n"
	}

	if m.mode == clientModeConfirmDelete && m.cursor < len(m.clients) {
		s += "\n" + warningStyle.Render(
			fmt.Sprintf("  Delete %s? Its entries are kept unassigned. [y/N]", m.clients[m.cursor].Name),
		) + "\n"
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  x: delete")
	return s
}

func (m *ClientsModel) renderClient(index int, client *domain.Client) string {
	selected := index == m.cursor

	indicator := "  "
	nameStyle := lipgloss.NewStyle()
	if selected {
		indicator = "> "
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	stats := m.weekStats[client.ID]
	line1 := indicator + client.Name
	line2 := fmt.Sprintf("    Rate: %s/hr  |  This week: %s  %s",
		formatMoney(client.HourlyRate),
		formatHours(stats.Hours()),
		formatMoney(stats.Amount),
	)

	return nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2)
}
