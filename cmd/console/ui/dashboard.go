package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"proxy-console/internal/dashboard"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const historyLimit = 8

type DashboardModel struct {
	Session *Session
	Input   textinput.Model
	Sites   table.Model
	History HistoryModel
	Current dashboard.View
	// ShowHistory toggles the journal panel.
	ShowHistory bool
}

// confirmRequestMsg asks the root model to open the confirmation dialog.
type confirmRequestMsg struct {
	Op     dashboard.Op
	Prompt string
}

func NewDashboardModel(s *Session, width, height int) DashboardModel {
	in := textinput.New()
	in.Placeholder = "example.com"
	in.Prompt = "Block: "
	in.CharLimit = 255

	t := table.New(
		table.WithColumns([]table.Column{{Title: "Blocked site", Width: 48}}),
		table.WithFocused(true),
		table.WithHeight(tableHeight(height)),
	)
	sStyle := table.DefaultStyles()
	sStyle.Header = sStyle.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	sStyle.Selected = sStyle.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(sStyle)

	return DashboardModel{
		Session: s,
		Input:   in,
		Sites:   t,
		History: HistoryModel{Session: s},
		Current: dashboard.Render(s.Ctrl.ViewModel()),
	}
}

func tableHeight(h int) int {
	if h-18 < 3 {
		return 3
	}
	return h - 18
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.Session.WaitForChange, m.Session.RefreshCmd())
}

// sync pulls the latest view-model into the widgets.
func (m *DashboardModel) sync() {
	m.Current = dashboard.Render(m.Session.Ctrl.ViewModel())
	if m.Input.Value() != m.Current.BlockInput {
		m.Input.SetValue(m.Current.BlockInput)
	}
	sites := append([]string(nil), m.Current.BlockedSites...)
	sort.Strings(sites)
	rows := make([]table.Row, 0, len(sites))
	for _, s := range sites {
		rows = append(rows, table.Row{s})
	}
	m.Sites.SetRows(rows)
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case viewChangedMsg:
		m.sync()
		cmds := []tea.Cmd{m.Session.WaitForChange}
		if m.ShowHistory {
			cmds = append(cmds, m.Session.LoadHistoryCmd(historyLimit))
		}
		return m, tea.Batch(cmds...)

	case commandDoneMsg:
		m.sync()
		if m.ShowHistory {
			return m, m.Session.LoadHistoryCmd(historyLimit)
		}
		return m, nil

	case historyLoadedMsg:
		m.History, cmd = m.History.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.Sites.SetHeight(tableHeight(msg.Height))
		return m, nil

	case tea.KeyMsg:
		if m.Input.Focused() {
			return m.updateInput(msg)
		}
		switch k := msg.String(); k {
		case "s":
			return m, m.Session.StartCmd()
		case "x":
			return m, m.Session.StopCmd()
		case "/":
			m.Sites.Blur()
			cmd = m.Input.Focus()
			return m, cmd
		case "u":
			if row := m.Sites.SelectedRow(); len(row) > 0 {
				return m, m.Session.UnblockCmd(row[0])
			}
			return m, nil
		case "c":
			return m, func() tea.Msg {
				return confirmRequestMsg{Op: dashboard.OpClearCache, Prompt: dashboard.PromptClearCache}
			}
		case "l":
			return m, func() tea.Msg {
				return confirmRequestMsg{Op: dashboard.OpClearLogs, Prompt: dashboard.PromptClearLogs}
			}
		case "h":
			m.ShowHistory = !m.ShowHistory
			if m.ShowHistory {
				return m, m.Session.LoadHistoryCmd(historyLimit)
			}
			return m, nil
		case "r":
			return m, m.Session.RefreshCmd()
		case "q":
			return m, tea.Quit
		default:
			if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(m.Session.Presets) {
				return m, m.Session.QuickBlockCmd(m.Session.Presets[n-1])
			}
		}
	}

	m.Sites, cmd = m.Sites.Update(msg)
	return m, cmd
}

func (m DashboardModel) updateInput(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.Session.Ctrl.SetBlockInput(m.Input.Value())
		return m, m.Session.BlockCmd()
	case tea.KeyEsc:
		m.Input.Blur()
		m.Sites.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	m.Session.Ctrl.SetBlockInput(m.Input.Value())
	return m, cmd
}

func (m DashboardModel) pending(op dashboard.Op) bool {
	for k := range m.Current.Pending {
		if k.Op == op {
			return true
		}
	}
	return false
}

func (m DashboardModel) statusLine() string {
	v := m.Current
	var indicator string
	switch {
	case strings.HasSuffix(v.IndicatorClass, " running"):
		indicator = runningStyle.Render("● " + v.StatusText)
	case strings.HasSuffix(v.IndicatorClass, " stopped"):
		indicator = stoppedStyle.Render("● " + v.StatusText)
	default:
		indicator = unknownStyle.Render("○ " + v.StatusText)
	}
	line := "Proxy: " + indicator
	if m.pending(dashboard.OpStart) {
		line += blurredStyle.Render("  starting...")
	}
	if m.pending(dashboard.OpStop) {
		line += blurredStyle.Render("  stopping...")
	}
	return line
}

func counter(label, value string) string {
	return counterLabelStyle.Render(label+" ") + counterValueStyle.Render(value)
}

func (m DashboardModel) presetsLine() string {
	if len(m.Session.Presets) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.Session.Presets))
	for i, p := range m.Session.Presets {
		if i >= 9 {
			break
		}
		label := fmt.Sprintf("%d %s", i+1, p)
		if m.Current.Pending[dashboard.CommandKey{Op: dashboard.OpQuickBlock, Arg: p}] {
			label += "…"
		}
		parts = append(parts, label)
	}
	return blurredStyle.Render("Quick block: ") + strings.Join(parts, "  ")
}

func (m DashboardModel) toastLine() string {
	v := m.Current
	if !v.ToastVisible || v.ToastText == "" {
		return ""
	}
	sev := strings.TrimPrefix(v.ToastClass, "toast show ")
	return toastStyle(sev).Render(v.ToastText)
}

func (m DashboardModel) View() string {
	v := m.Current
	var b strings.Builder
	b.WriteString(titleStyle.Render("Proxy Console") + "\n\n")
	b.WriteString(m.statusLine() + "\n\n")
	b.WriteString(strings.Join([]string{
		counter("Total requests", v.TotalRequests),
		counter("Blocked requests", v.BlockedRequests),
		counter("Cached items", v.CachedItems),
		counter("Blocked sites", v.BlockedSitesCount),
	}, "   ") + "\n\n")

	input := m.Input.View()
	if m.Input.Focused() {
		input = focusedStyle.Render("▌") + input
	}
	if m.pending(dashboard.OpBlockSite) {
		input += blurredStyle.Render("  blocking...")
	}
	b.WriteString(input + "\n")
	if p := m.presetsLine(); p != "" {
		b.WriteString(p + "\n")
	}
	b.WriteString("\n" + m.Sites.View() + "\n")

	if m.ShowHistory {
		b.WriteString("\n" + m.History.View() + "\n")
	}

	b.WriteString("\n")
	if t := m.toastLine(); t != "" {
		b.WriteString(t + "\n")
	} else {
		b.WriteString("\n")
	}
	b.WriteString(blurredStyle.Render("s start • x stop • / block • u unblock • 1-9 quick block • c clear cache • l clear logs • h history • r refresh • q quit"))
	return docStyle.Render(b.String())
}
