package ui

import (
	"context"

	"proxy-console/internal/dashboard"
	"proxy-console/internal/history"

	tea "github.com/charmbracelet/bubbletea"
)

// Session ties the terminal UI to a running controller.
type Session struct {
	Ctx     context.Context
	Ctrl    *dashboard.Controller
	Presets []string
	// History is nil when the journal is disabled.
	History *history.Repository
}

// viewChangedMsg is sent whenever the controller reports a change.
type viewChangedMsg struct{}

// commandDoneMsg is sent when a dispatched command returns.
type commandDoneMsg struct{ Op dashboard.Op }

// historyLoadedMsg carries the latest journal entries and totals per outcome.
type historyLoadedMsg struct {
	Entries []history.Entry
	Counts  map[history.Outcome]int64
	Err     error
}

// WaitForChange is a tea.Cmd that blocks until the view-model changes.
func (s *Session) WaitForChange() tea.Msg {
	select {
	case <-s.Ctrl.Changes():
		return viewChangedMsg{}
	case <-s.Ctx.Done():
		return nil
	}
}

func (s *Session) run(op dashboard.Op, fn func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(s.Ctx)
		return commandDoneMsg{Op: op}
	}
}

func (s *Session) StartCmd() tea.Cmd { return s.run(dashboard.OpStart, s.Ctrl.StartServer) }
func (s *Session) StopCmd() tea.Cmd  { return s.run(dashboard.OpStop, s.Ctrl.StopServer) }
func (s *Session) BlockCmd() tea.Cmd { return s.run(dashboard.OpBlockSite, s.Ctrl.BlockSite) }

func (s *Session) UnblockCmd(pattern string) tea.Cmd {
	return s.run(dashboard.OpUnblockSite, func(ctx context.Context) { s.Ctrl.UnblockSite(ctx, pattern) })
}

func (s *Session) QuickBlockCmd(site string) tea.Cmd {
	return s.run(dashboard.OpQuickBlock, func(ctx context.Context) { s.Ctrl.QuickBlock(ctx, site) })
}

// confirmed is the Confirmer used after the dialog already got a "yes".
func confirmed(string) bool { return true }

func (s *Session) ClearCmd(op dashboard.Op) tea.Cmd {
	switch op {
	case dashboard.OpClearCache:
		return s.run(op, func(ctx context.Context) { s.Ctrl.ClearCache(ctx, confirmed) })
	case dashboard.OpClearLogs:
		return s.run(op, func(ctx context.Context) { s.Ctrl.ClearLogs(ctx, confirmed) })
	}
	return nil
}

func (s *Session) RefreshCmd() tea.Cmd {
	return func() tea.Msg {
		_ = s.Ctrl.RefreshStats(s.Ctx)
		return nil
	}
}

func (s *Session) LoadHistoryCmd(limit int) tea.Cmd {
	return func() tea.Msg {
		if s.History == nil {
			return historyLoadedMsg{}
		}
		entries, err := s.History.Latest(limit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		counts := make(map[history.Outcome]int64, len(history.Outcomes))
		for _, o := range history.Outcomes {
			n, err := s.History.CountByOutcome(o)
			if err != nil {
				return historyLoadedMsg{Err: err}
			}
			counts[o] = n
		}
		return historyLoadedMsg{Entries: entries, Counts: counts}
	}
}
