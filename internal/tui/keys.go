package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Dashboard  key.Binding
	Timer      key.Binding
	Clients    key.Binding
	Timesheets key.Binding

	// Actions
	Select   key.Binding
	New      key.Binding
	Delete   key.Binding
	Download key.Binding

	// Movement
	Up   key.Binding
	Down key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Dashboard:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "week")),
	Timer:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timers")),
	Clients:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clients")),
	Timesheets: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "timesheets")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Download:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "save csv")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
