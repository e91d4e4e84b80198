package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/tallysheet/internal/app"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/service"
	"github.com/andy/tallysheet/internal/timesheet"
)

type timesheetViewMode int

const (
	timesheetViewList          timesheetViewMode = iota
	timesheetViewConfirmDelete                   // Confirming removal of the selected record
	timesheetViewGenPickClient                   // Step 1: pick client
	timesheetViewGenPeriod                       // Step 2: enter the period
	timesheetViewGenPreview                      // Step 3: review before storing
)

// range form field indices
const (
	fieldStart = iota
	fieldEnd
	fieldTimezone
)

// monthly form field indices
const (
	fieldMonth = iota
	fieldYear
)

// TimesheetsModel lists stored timesheets and walks through generating new ones
type TimesheetsModel struct {
	app       *app.App
	owner     *domain.User
	mode      timesheetViewMode
	sheets    []domain.TimesheetSummary
	cursor    int
	loading   bool
	err       error
	statusMsg string

	// Generation state
	genClients []*domain.Client
	genCursor  int
	genClient  *domain.Client
	genMonthly bool
	genForm    *form
	genReq     any // timesheet.RangeRequest or timesheet.MonthlyRequest
	preview    *service.Preview
}

// IsCapturingInput returns true outside the plain list view
func (m *TimesheetsModel) IsCapturingInput() bool {
	return m.mode != timesheetViewList
}

type timesheetsDataMsg struct {
	sheets []domain.TimesheetSummary
	err    error
}

type genClientsMsg struct {
	clients []*domain.Client
	err     error
}

type genPreviewMsg struct {
	preview *service.Preview
	err     error
}

// timesheetDoneMsg reports a finished generate, download or delete
type timesheetDoneMsg struct {
	status string
	err    error
}

// NewTimesheetsModel creates a new timesheets screen model
func NewTimesheetsModel(a *app.App, owner *domain.User) tea.Model {
	return &TimesheetsModel{
		app:     a,
		owner:   owner,
		mode:    timesheetViewList,
		loading: true,
	}
}

func (m *TimesheetsModel) Init() tea.Cmd {
	return m.loadTimesheets()
}

func (m *TimesheetsModel) loadTimesheets() tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	return func() tea.Msg {
		sheets, err := a.Timesheets.List(ctxb(), ownerID)
		return timesheetsDataMsg{sheets: sheets, err: err}
	}
}

func (m *TimesheetsModel) loadGenClients() tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	return func() tea.Msg {
		clients, err := a.Clients.List(ctxb(), ownerID)
		return genClientsMsg{clients: clients, err: err}
	}
}

// openPeriodForm prepares the range or monthly form for the picked client
func (m *TimesheetsModel) openPeriodForm(monthly bool) tea.Cmd {
	m.genMonthly = monthly
	m.mode = timesheetViewGenPeriod
	m.err = nil

	// default to last month, which is what usually gets billed
	now := time.Now()
	lastMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	if monthly {
		m.genForm = newForm(
			formField{label: "Month (1-12):", placeholder: "3", charLimit: 2, width: 4},
			formField{label: "Year:", placeholder: "2024", charLimit: 4, width: 6},
		)
		m.genForm.set(fieldMonth, strconv.Itoa(int(lastMonth.Month())))
		m.genForm.set(fieldYear, strconv.Itoa(lastMonth.Year()))
		return m.genForm.start()
	}

	m.genForm = newForm(
		formField{label: "Start date:", placeholder: "YYYY-MM-DD", charLimit: 10, width: 12},
		formField{label: "End date:", placeholder: "YYYY-MM-DD", charLimit: 10, width: 12},
		formField{label: "Timezone:", placeholder: "America/New_York", charLimit: 64, width: 30},
	)
	m.genForm.set(fieldStart, lastMonth.Format(time.DateOnly))
	m.genForm.set(fieldEnd, lastMonth.AddDate(0, 1, -1).Format(time.DateOnly))
	m.genForm.set(fieldTimezone, m.app.Config.Timesheets.DefaultTimezone)
	return m.genForm.start()
}

// periodRequest turns the form values into a generation request
func periodRequest(clientID int64, monthly bool, values ...string) (any, error) {
	if monthly {
		month, err := strconv.Atoi(values[fieldMonth])
		if err != nil {
			return nil, domain.NewValidationError("invalid month")
		}
		year, err := strconv.Atoi(values[fieldYear])
		if err != nil {
			return nil, domain.NewValidationError("invalid year")
		}
		return timesheet.MonthlyRequest{ClientID: clientID, Month: month, Year: year}, nil
	}
	return timesheet.RangeRequest{
		ClientID:  clientID,
		StartDate: values[fieldStart],
		EndDate:   values[fieldEnd],
		Timezone:  values[fieldTimezone],
	}, nil
}

func (m *TimesheetsModel) formValues() []string {
	values := make([]string, len(m.genForm.inputs))
	for i := range values {
		values[i] = m.genForm.value(i)
	}
	return values
}

func (m *TimesheetsModel) loadPreview() tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	req, err := periodRequest(m.genClient.ID, m.genMonthly, m.formValues()...)
	if err != nil {
		return func() tea.Msg { return genPreviewMsg{err: err} }
	}
	m.genReq = req

	return func() tea.Msg {
		var p *service.Preview
		var err error
		switch r := req.(type) {
		case timesheet.MonthlyRequest:
			p, err = a.Timesheets.PreviewMonthly(ctxb(), ownerID, r)
		case timesheet.RangeRequest:
			p, err = a.Timesheets.PreviewRange(ctxb(), ownerID, r)
		}
		return genPreviewMsg{preview: p, err: err}
	}
}

func (m *TimesheetsModel) generate() tea.Cmd {
	a, ownerID, req := m.app, m.owner.ID, m.genReq
	return func() tea.Msg {
		var s *domain.TimesheetSummary
		var err error
		switch r := req.(type) {
		case timesheet.MonthlyRequest:
			s, err = a.Timesheets.GenerateMonthly(ctxb(), ownerID, r)
		case timesheet.RangeRequest:
			s, err = a.Timesheets.GenerateRange(ctxb(), ownerID, r)
		}
		if err != nil {
			return timesheetDoneMsg{err: err}
		}
		return timesheetDoneMsg{status: fmt.Sprintf("Generated timesheet #%d for %s (%s)", s.ID, s.ClientName, formatMoney(s.TotalAmount))}
	}
}

// download writes the stored CSV into the configured export directory
func (m *TimesheetsModel) download(id int64) tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	dir := a.Config.Timesheets.ExportDir
	return func() tea.Msg {
		d, err := a.Timesheets.Download(ctxb(), ownerID, id)
		if err != nil {
			return timesheetDoneMsg{err: err}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return timesheetDoneMsg{err: fmt.Errorf("failed to create export directory: %w", err)}
		}
		path := filepath.Join(dir, d.Filename)
		if err := os.WriteFile(path, d.Body, 0o644); err != nil {
			return timesheetDoneMsg{err: fmt.Errorf("failed to write timesheet: %w", err)}
		}
		return timesheetDoneMsg{status: "Saved " + path}
	}
}

func (m *TimesheetsModel) remove(id int64) tea.Cmd {
	a, ownerID := m.app, m.owner.ID
	return func() tea.Msg {
		if err := a.Timesheets.Delete(ctxb(), ownerID, id); err != nil {
			return timesheetDoneMsg{err: err}
		}
		return timesheetDoneMsg{status: fmt.Sprintf("Deleted timesheet #%d", id)}
	}
}

func (m *TimesheetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadTimesheets()

	case timesheetsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.sheets = msg.sheets
			if m.cursor >= len(m.sheets) {
				m.cursor = max(0, len(m.sheets)-1)
			}
		}
		return m, nil

	case genClientsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = timesheetViewList
			return m, nil
		}
		m.genClients = msg.clients
		m.genCursor = 0
		m.mode = timesheetViewGenPickClient
		return m, nil

	case genPreviewMsg:
		// errors stay on the form so the period can be corrected
		m.err = msg.err
		if msg.err == nil {
			m.preview = msg.preview
			m.mode = timesheetViewGenPreview
		}
		return m, nil

	case timesheetDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			if m.mode == timesheetViewConfirmDelete {
				m.mode = timesheetViewList
			}
			return m, nil
		}
		m.mode = timesheetViewList
		m.preview = nil
		m.statusMsg = msg.status
		m.loading = true
		return m, m.loadTimesheets()

	case tea.KeyMsg:
		switch m.mode {
		case timesheetViewList:
			return m.updateList(msg)
		case timesheetViewConfirmDelete:
			m.mode = timesheetViewList
			if msg.String() == "y" && m.cursor < len(m.sheets) {
				return m, m.remove(m.sheets[m.cursor].ID)
			}
			return m, nil
		case timesheetViewGenPickClient:
			return m.updateGenPickClient(msg)
		case timesheetViewGenPreview:
			return m.updateGenPreview(msg)
		}
	}

	if m.mode == timesheetViewGenPeriod {
		res, cmd := m.genForm.update(msg)
		switch res {
		case formCancelled:
			m.mode = timesheetViewGenPickClient
			m.err = nil
			return m, nil
		case formSubmitted:
			return m, m.loadPreview()
		}
		return m, cmd
	}

	return m, nil
}

func (m *TimesheetsModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.statusMsg = ""
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.sheets)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.New):
		return m, m.loadGenClients()
	case key.Matches(msg, DefaultKeyMap.Download):
		if m.cursor < len(m.sheets) {
			return m, m.download(m.sheets[m.cursor].ID)
		}
	case key.Matches(msg, DefaultKeyMap.Delete):
		if m.cursor < len(m.sheets) {
			m.mode = timesheetViewConfirmDelete
		}
	}
	return m, nil
}

func (m *TimesheetsModel) updateGenPickClient(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = timesheetViewList
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.genCursor > 0 {
			m.genCursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.genCursor < len(m.genClients)-1 {
			m.genCursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select), msg.String() == "m":
		if m.genCursor < len(m.genClients) {
			m.genClient = m.genClients[m.genCursor]
			return m, m.openPeriodForm(msg.String() == "m")
		}
	}
	return m, nil
}

func (m *TimesheetsModel) updateGenPreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = timesheetViewGenPeriod
		m.preview = nil
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Select):
		return m, m.generate()
	}
	return m, nil
}

func (m *TimesheetsModel) View() string {
	switch m.mode {
	case timesheetViewGenPickClient:
		return m.viewGenPickClient()
	case timesheetViewGenPeriod:
		return m.viewGenPeriod()
	case timesheetViewGenPreview:
		return m.viewGenPreview()
	}
	return m.viewList()
}

func (m *TimesheetsModel) errLine() string {
	if m.err == nil {
		return ""
	}
	return errorStyle.
		Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
}

func (m *TimesheetsModel) viewList() string {
	if m.loading {
		return "Loading timesheets..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Timesheets") + "\n\n")
	b.WriteString(m.errLine())
	if m.statusMsg != "" {
		b.WriteString(statusStyle.Render("  "+m.statusMsg) + "\n\n")
	}

	if len(m.sheets) == 0 {
		b.WriteString(subtitleStyle.Render("  No timesheets yet. Press 'n' to generate one.") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  %-5s %-22s %-36s %8s %12s\n", "ID", "Client", "Period", "Hours", "Amount")
	for i, s := range m.sheets {
		client := truncateStr(s.ClientName, 22)
		if s.ClientDeleted {
			client = truncateStr(s.ClientName+" (deleted)", 22)
		}
		line := fmt.Sprintf("  %-5d %-22s %-36s %8.2f %12s",
			s.ID, client, truncateStr(periodLabel(s), 36), s.TotalHours, formatMoney(s.TotalAmount))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.mode == timesheetViewConfirmDelete && m.cursor < len(m.sheets) {
		b.WriteString("\n" + warningStyle.Render(
			fmt.Sprintf("  Delete timesheet #%d? [y/N]", m.sheets[m.cursor].ID),
		) + "\n")
		return b.String()
	}

	b.WriteString("\n" + helpStyle.Render("  j/k: navigate  n: new  o: save csv to "+m.app.Config.Timesheets.ExportDir+"  x: delete"))
	return b.String()
}

func (m *TimesheetsModel) viewGenPickClient() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Timesheet") + subtitleStyle.Render("  step 1 of 3: client") + "\n\n")

	if len(m.genClients) == 0 {
		b.WriteString(subtitleStyle.Render("  No clients yet. Add one on the clients screen.") + "\n\n")
		b.WriteString(helpStyle.Render("  esc: back"))
		return b.String()
	}

	for i, c := range m.genClients {
		line := fmt.Sprintf("  %-30s %s/hr", truncateStr(c.Name, 30), formatMoney(c.HourlyRate))
		if i == m.genCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("  enter: date range  m: calendar month  esc: back"))
	return b.String()
}

func (m *TimesheetsModel) viewGenPeriod() string {
	var b strings.Builder
	kind := "date range"
	if m.genMonthly {
		kind = "calendar month (UTC)"
	}
	b.WriteString(titleStyle.Render("New Timesheet: "+m.genClient.Name) + subtitleStyle.Render("  step 2 of 3: "+kind) + "\n\n")
	b.WriteString(m.genForm.view())
	b.WriteString(m.errLine())
	b.WriteString(helpStyle.Render("  tab: next field  enter: preview  esc: back"))
	return b.String()
}

func (m *TimesheetsModel) viewGenPreview() string {
	p := m.preview
	res := p.Result
	loc := p.Period.Location()

	var b strings.Builder
	b.WriteString(titleStyle.Render("New Timesheet: "+p.ClientName) + subtitleStyle.Render("  step 3 of 3: review") + "\n\n")
	fmt.Fprintf(&b, "  %s\n\n", subtitleStyle.Render(p.Filename))

	limit := min(len(res.Rows), 12)
	for _, r := range res.Rows[:limit] {
		start, end := r.Start.In(loc), r.End.In(loc)
		fmt.Fprintf(&b, "  %s  %s-%s  %s  %10s  %s\n",
			start.Format(time.DateOnly),
			start.Format("15:04"),
			end.Format("15:04"),
			timesheet.FormatHMS(r.Seconds),
			formatMoney(r.Amount),
			truncateStr(r.Notes, 30),
		)
	}
	if more := len(res.Rows) - limit; more > 0 {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("  ... and %d more", more)) + "\n")
	}

	fmt.Fprintf(&b, "\n  Total: %s (%s hrs)  %s at %s/hr\n\n",
		timesheet.FormatHMS(res.TotalSeconds),
		timesheet.FormatHours(res.TotalHours()),
		timerValueStyle.Render(formatMoney(res.TotalAmount)),
		formatMoney(res.Rate),
	)
	b.WriteString(m.errLine())
	b.WriteString(helpStyle.Render("  enter: generate and store  esc: back"))
	return b.String()
}

// periodLabel describes a stored timesheet's period for the list
func periodLabel(s domain.TimesheetSummary) string {
	if s.PeriodType == domain.PeriodMonthly {
		return fmt.Sprintf("%s %d (UTC)", s.Month, s.Year)
	}
	return fmt.Sprintf("%s to %s (%s)", s.StartDate, s.EndDate, s.Timezone)
}
