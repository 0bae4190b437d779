package history

import (
	"path/filepath"
	"testing"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Connect(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return NewRepository(db)
}

func TestConnectDisabled(t *testing.T) {
	db, err := Connect(Config{})
	if db != nil || err != nil {
		t.Fatalf("expected disabled journal, got %v %v", db, err)
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	if _, err := Connect(Config{Driver: "postgres"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestRecordAndLatest(t *testing.T) {
	r := openTestRepo(t)
	for _, e := range []Entry{
		{Op: "start", Outcome: OutcomeSuccess, Message: "Proxy server started on port 8080"},
		{Op: "block-site", Argument: "a.com", Outcome: OutcomeFailure, Message: "Already blocked: a.com"},
		{Op: "clear-cache", Outcome: OutcomeTransport, Message: "Failed to clear cache"},
	} {
		if err := r.Record(e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	latest, err := r.Latest(2)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 2 || latest[0].Op != "clear-cache" || latest[1].Argument != "a.com" {
		t.Fatalf("unexpected latest %+v", latest)
	}
	if latest[0].CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}
	n, err := r.CountByOutcome(OutcomeFailure)
	if err != nil || n != 1 {
		t.Fatalf("count failure = %d, %v", n, err)
	}
}

func TestPrune(t *testing.T) {
	r := openTestRepo(t)
	for i := 0; i < 5; i++ {
		if err := r.Record(Entry{Op: "stop", Outcome: OutcomeSuccess}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Prune(2); err != nil {
		t.Fatalf("prune: %v", err)
	}
	all, err := r.Latest(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != 5 || all[1].ID != 4 {
		t.Fatalf("unexpected entries after prune %+v", all)
	}
}
