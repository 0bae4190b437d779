package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"proxy-console/internal/dashboard"
	"proxy-console/internal/history"
	"proxy-console/network"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type fakeBackend struct {
	mu    sync.Mutex
	hits  map[string]int
	reply map[string]string
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func newSession(t *testing.T) (*Session, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{hits: map[string]int{}, reply: map[string]string{
		network.StatsPath:       `{"total_requests":100,"blocked_requests":7,"cached_items":3,"blocked_sites_count":2,"server_running":true,"blocked_sites":["b.com","a.com"]}`,
		network.ClearCachePath:  `{"status":"success","message":"Cache cleared successfully"}`,
		network.UnblockSitePath: `{"status":"success","message":"Unblocked: a.com"}`,
		network.QuickBlockPath:  `{"status":"error","message":"pattern exists"}`,
	}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.hits[r.URL.Path]++
		body := fb.reply[r.URL.Path]
		fb.mu.Unlock()
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	client := network.NewAdminClient(srv.URL, 0, zerolog.Nop())
	ctrl := dashboard.New(client, dashboard.Options{Logger: zerolog.Nop()})
	return &Session{Ctx: context.Background(), Ctrl: ctrl, Presets: []string{"youtube", "facebook"}}, fb
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to m and runs the returned command once, feeding back any
// message it produces that the root model cares about.
func step(t *testing.T, m RootModel, msg tea.Msg) RootModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(RootModel)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case confirmRequestMsg, confirmResultMsg, commandDoneMsg:
		return step(t, m, out)
	}
	return m
}

func TestClearCacheNeedsConfirmation(t *testing.T) {
	s, fb := newSession(t)
	m := NewRootModel(s)

	m = step(t, m, key("c"))
	if m.State != stateConfirm || m.Confirm.Prompt != dashboard.PromptClearCache {
		t.Fatalf("expected confirm dialog, state=%v prompt=%q", m.State, m.Confirm.Prompt)
	}
	if !strings.Contains(m.View(), dashboard.PromptClearCache) {
		t.Fatal("dialog not rendered")
	}
	m = step(t, m, key("n"))
	if m.State != stateDashboard || fb.count(network.ClearCachePath) != 0 {
		t.Fatalf("decline sent request: state=%v hits=%d", m.State, fb.count(network.ClearCachePath))
	}

	m = step(t, m, key("c"))
	m = step(t, m, key("y"))
	if fb.count(network.ClearCachePath) != 1 || fb.count(network.StatsPath) != 1 {
		t.Fatalf("accept: clear=%d stats=%d", fb.count(network.ClearCachePath), fb.count(network.StatsPath))
	}
	v := m.Dashboard.Current
	if v.ToastText != "Cache cleared successfully" || v.TotalRequests != "100" {
		t.Fatalf("view after clear %+v", v)
	}
}

func TestBlockInputEmptyShowsValidationError(t *testing.T) {
	s, fb := newSession(t)
	m := NewRootModel(s)
	m = step(t, m, key("/"))
	if !m.Dashboard.Input.Focused() {
		t.Fatal("input not focused")
	}
	m = step(t, m, key(" "))
	m = step(t, m, key("enter"))
	if fb.count(network.BlockSitePath) != 0 {
		t.Fatal("empty pattern sent")
	}
	if m.Dashboard.Current.ToastText != dashboard.MsgEmptyPattern {
		t.Fatalf("toast %q", m.Dashboard.Current.ToastText)
	}
	if m.Dashboard.Input.Value() != " " {
		t.Fatalf("input changed to %q", m.Dashboard.Input.Value())
	}
}

func TestUnblockSelectedRow(t *testing.T) {
	s, fb := newSession(t)
	m := NewRootModel(s)
	if err := s.Ctrl.RefreshStats(s.Ctx); err != nil {
		t.Fatal(err)
	}
	m = step(t, m, viewChangedMsg{})
	if rows := m.Dashboard.Sites.Rows(); len(rows) != 2 || rows[0][0] != "a.com" {
		t.Fatalf("rows %v", rows)
	}
	m = step(t, m, key("u"))
	if fb.count(network.UnblockSitePath) != 1 {
		t.Fatal("unblock not sent")
	}
	if m.Dashboard.Current.ToastText != "Unblocked: a.com" {
		t.Fatalf("toast %q", m.Dashboard.Current.ToastText)
	}
}

func TestQuickBlockPresetKeys(t *testing.T) {
	s, fb := newSession(t)
	m := NewRootModel(s)
	m = step(t, m, key("2"))
	if fb.count(network.QuickBlockPath) != 1 {
		t.Fatal("quick block not sent")
	}
	v := m.Dashboard.Current
	if v.ToastText != "pattern exists" || v.ToastClass != "toast show error" {
		t.Fatalf("toast %q %q", v.ToastText, v.ToastClass)
	}
	if fb.count(network.StatsPath) != 0 {
		t.Fatal("failure must not resync")
	}
	m = step(t, m, key("9"))
	if fb.count(network.QuickBlockPath) != 1 {
		t.Fatal("out-of-range preset dispatched")
	}
}

func TestHistoryPanelShowsOutcomeTotals(t *testing.T) {
	s, _ := newSession(t)
	db, err := history.Connect(history.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	s.History = history.NewRepository(db)
	for _, o := range []history.Outcome{history.OutcomeSuccess, history.OutcomeSuccess, history.OutcomeSkipped} {
		if err := s.History.Record(history.Entry{Op: "start", Outcome: o}); err != nil {
			t.Fatal(err)
		}
	}

	hm, _ := HistoryModel{Session: s}.Update(s.LoadHistoryCmd(10)())
	if len(hm.Entries) != 3 || hm.Counts[history.OutcomeSuccess] != 2 {
		t.Fatalf("loaded %d entries, counts %v", len(hm.Entries), hm.Counts)
	}
	v := hm.View()
	if !strings.Contains(v, "success 2") || !strings.Contains(v, "skipped 1") {
		t.Fatalf("totals missing from header:\n%s", v)
	}
	if strings.Contains(v, "failure") {
		t.Fatalf("zero outcomes should be hidden:\n%s", v)
	}
}
