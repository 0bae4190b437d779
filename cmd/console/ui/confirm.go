package ui

import (
	"proxy-console/internal/dashboard"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is the y/n dialog shown before clearing cache or logs.
type ConfirmModel struct {
	Op     dashboard.Op
	Prompt string
}

// confirmResultMsg closes the dialog. Accepted is false on decline.
type confirmResultMsg struct {
	Op       dashboard.Op
	Accepted bool
}

func (m ConfirmModel) Update(msg tea.Msg) (ConfirmModel, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y", "enter":
		return m, answer(m.Op, true)
	case "n", "N", "esc", "q":
		return m, answer(m.Op, false)
	}
	return m, nil
}

func answer(op dashboard.Op, accepted bool) tea.Cmd {
	return func() tea.Msg { return confirmResultMsg{Op: op, Accepted: accepted} }
}

func (m ConfirmModel) View() string {
	return dialogStyle.Render(m.Prompt + "\n\n" + blurredStyle.Render("y confirm • n cancel"))
}
