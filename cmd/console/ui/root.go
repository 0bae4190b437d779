package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateDashboard state = iota
	stateConfirm
)

type RootModel struct {
	State     state
	Session   *Session
	Dashboard DashboardModel
	Confirm   ConfirmModel
	Quitting  bool
	width     int
	height    int
}

func NewRootModel(s *Session) RootModel {
	return RootModel{
		State:     stateDashboard,
		Session:   s,
		Dashboard: NewDashboardModel(s, 0, 0),
	}
}

func (m RootModel) Init() tea.Cmd {
	return m.Dashboard.Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quitting = true
			return m, tea.Quit
		}

	case confirmRequestMsg:
		m.State = stateConfirm
		m.Confirm = ConfirmModel{Op: msg.Op, Prompt: msg.Prompt}
		return m, nil

	case confirmResultMsg:
		m.State = stateDashboard
		if msg.Accepted {
			return m, m.Session.ClearCmd(msg.Op)
		}
		return m, nil
	}

	switch m.State {
	case stateConfirm:
		// Keys belong to the dialog; everything else still reaches the
		// dashboard so polling and toasts keep flowing.
		if _, ok := msg.(tea.KeyMsg); ok {
			newConfirm, cmd := m.Confirm.Update(msg)
			m.Confirm = newConfirm
			return m, cmd
		}
		newDash, cmd := m.Dashboard.Update(msg)
		m.Dashboard = newDash
		cmds = append(cmds, cmd)

	case stateDashboard:
		newDash, cmd := m.Dashboard.Update(msg)
		m.Dashboard = newDash
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m RootModel) View() string {
	if m.Quitting {
		return "Bye!\n"
	}
	if m.State == stateConfirm {
		dialog := m.Confirm.View()
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
		}
		return docStyle.Render(dialog)
	}
	return m.Dashboard.View()
}
