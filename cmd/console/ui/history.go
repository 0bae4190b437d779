package ui

import (
	"fmt"
	"strings"

	"proxy-console/internal/history"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// HistoryModel shows the newest command journal entries.
type HistoryModel struct {
	Session *Session
	Entries []history.Entry
	Counts  map[history.Outcome]int64
	Err     error
	Loaded  bool
}

func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	if h, ok := msg.(historyLoadedMsg); ok {
		m.Entries, m.Counts, m.Err, m.Loaded = h.Entries, h.Counts, h.Err, true
	}
	return m, nil
}

func outcomeMark(o history.Outcome) string {
	switch o {
	case history.OutcomeSuccess:
		return runningStyle.Render("✓")
	case history.OutcomeSkipped:
		return blurredStyle.Render("·")
	}
	return stoppedStyle.Render("✗")
}

// totals renders the non-zero outcome counts, e.g. "success 4  failure 1".
func (m HistoryModel) totals() string {
	var parts []string
	for _, o := range history.Outcomes {
		if n := m.Counts[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", o, humanize.Comma(n)))
		}
	}
	return strings.Join(parts, "  ")
}

func (m HistoryModel) View() string {
	var b strings.Builder
	header := "Recent commands"
	if t := m.totals(); t != "" {
		header += "  " + t
	}
	b.WriteString(blurredStyle.Render(header) + "\n")
	switch {
	case m.Session.History == nil:
		b.WriteString(blurredStyle.Render("  history disabled (console.history.driver)"))
		return b.String()
	case m.Err != nil:
		b.WriteString("  " + errorMessageStyle(m.Err.Error()))
		return b.String()
	case !m.Loaded:
		b.WriteString(blurredStyle.Render("  loading..."))
		return b.String()
	case len(m.Entries) == 0:
		b.WriteString(blurredStyle.Render("  nothing yet"))
		return b.String()
	}
	for i, e := range m.Entries {
		op := e.Op
		if e.Argument != "" {
			op += " " + e.Argument
		}
		line := fmt.Sprintf("  %s %-28s %-40s %s", outcomeMark(e.Outcome), op, e.Message,
			blurredStyle.Render(humanize.Time(e.CreatedAt)))
		if e.DurationMS > 0 {
			line += blurredStyle.Render(fmt.Sprintf(" (%dms)", e.DurationMS))
		}
		b.WriteString(line)
		if i < len(m.Entries)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}
