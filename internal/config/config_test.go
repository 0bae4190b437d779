package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func load(path string) (AppConfig, error) {
	s, err := Open(path)
	if err != nil {
		return AppConfig{}, err
	}
	return s.Config(), nil
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendURL != "http://localhost:5000" {
		t.Fatalf("backend url %q", cfg.BackendURL)
	}
	if cfg.PollInterval != DefaultPollInterval || cfg.ToastTTL != DefaultToastTTL {
		t.Fatalf("intervals %v %v", cfg.PollInterval, cfg.ToastTTL)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("request timeout %v", cfg.RequestTimeout)
	}
	if len(cfg.QuickBlock) != 4 || cfg.QuickBlock[0] != "youtube" {
		t.Fatalf("quick block presets %v", cfg.QuickBlock)
	}
	if cfg.History.Driver != "sqlite" || cfg.History.Keep != 1000 || cfg.Auth.Secret != "" {
		t.Fatalf("history/auth %+v %+v", cfg.History, cfg.Auth)
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	body := `console:
  backend:
    url: http://proxy.lan:5000/
  poll_interval: 10s
  toast_ttl: 0s
  quick_block: [reddit]
  history:
    driver: MySQL
    keep: -3
    mysql:
      name: audit
  auth:
    secret: s3cret
    exp_min: -1
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendURL != "http://proxy.lan:5000" {
		t.Fatalf("backend url %q", cfg.BackendURL)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("poll interval %v", cfg.PollInterval)
	}
	if cfg.ToastTTL != DefaultToastTTL {
		t.Fatalf("toast ttl should fall back, got %v", cfg.ToastTTL)
	}
	if len(cfg.QuickBlock) != 1 || cfg.QuickBlock[0] != "reddit" {
		t.Fatalf("quick block %v", cfg.QuickBlock)
	}
	if cfg.History.Driver != "mysql" || cfg.History.Keep != 0 || cfg.History.MySQL.Name != "audit" || cfg.History.MySQL.Port != 3306 {
		t.Fatalf("history %+v", cfg.History)
	}
	if cfg.Auth.Secret != "s3cret" || cfg.Auth.ExpMin != 5 {
		t.Fatalf("auth %+v", cfg.Auth)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CONSOLE_BACKEND_URL", "http://env:1")
	cfg, err := load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendURL != "http://env:1" {
		t.Fatalf("backend url %q", cfg.BackendURL)
	}
}

func TestBadYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	if err := os.WriteFile(path, []byte("console: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWatchDeliversReloadedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("console:\n  poll_interval: 3s\n  toast_ttl: 3s\n")
	src, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	changes := make(chan AppConfig, 16)
	src.Watch(func(c AppConfig, e fsnotify.Event) {
		if filepath.Clean(e.Name) != filepath.Clean(path) {
			return
		}
		select {
		case changes <- c:
		default:
		}
	})

	write("console:\n  poll_interval: 7s\n  toast_ttl: 500ms\n")
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			// a write can surface as several events, the first may see a truncated file
			if c.PollInterval == 7*time.Second && c.ToastTTL == 500*time.Millisecond {
				if got := src.Config(); got.PollInterval != 7*time.Second {
					t.Fatalf("source not updated, poll=%v", got.PollInterval)
				}
				return
			}
		case <-timeout:
			t.Fatal("no reload with the new poll_interval / toast_ttl")
		}
	}
}
