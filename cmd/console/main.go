package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"proxy-console/cmd/console/ui"
	"proxy-console/internal/auth"
	"proxy-console/internal/config"
	"proxy-console/internal/dashboard"
	"proxy-console/internal/history"
	"proxy-console/internal/logger"
	"proxy-console/network"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"
)

func main() {
	var (
		cfgPath   = flag.String("config", "config/console.yaml", "Path to configuration file")
		execOp    = flag.String("exec", "", "Run one command and exit: stats, start, stop, block, unblock, quick-block, clear-cache, clear-logs")
		arg       = flag.String("arg", "", "Pattern for block/unblock, preset name for quick-block")
		assumeYes = flag.Bool("yes", false, "Do not ask before clear-cache and clear-logs")
		watch     = flag.Bool("watch", false, "Log snapshots instead of starting the terminal UI")
	)
	flag.Parse()

	src, err := config.Open(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	cfg := src.Config()

	interactive := *execOp == "" && !*watch && term.IsTerminal(int(os.Stdout.Fd()))
	logPath := cfg.LogPath
	if *execOp == "" && !interactive {
		// watch mode: the log is the output
		logPath = ""
	}
	if err := logger.Init(logPath, cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	repo, err := openHistory(cfg.History)
	if err != nil {
		logger.Errorf("history disabled: %v", err)
	}

	client := network.NewAdminClient(cfg.BackendURL, cfg.RequestTimeout, logger.L)
	if cfg.Auth.Secret != "" {
		client.Tokens = auth.NewSigner(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Subject, cfg.Auth.ExpMin)
	}

	opts := dashboard.Options{Logger: logger.L, ToastTTL: cfg.ToastTTL}
	if repo != nil {
		opts.Recorder = repo
	}
	ctrl := dashboard.New(client, opts)
	poller := dashboard.NewPoller(ctrl.RefreshStats, cfg.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(*cfgPath); err == nil {
		src.Watch(func(c config.AppConfig, e fsnotify.Event) {
			logger.Infof("config changed (%s), poll=%s toast=%s", e.Name, c.PollInterval, c.ToastTTL)
			poller.SetInterval(c.PollInterval)
			ctrl.SetToastTTL(c.ToastTTL)
		})
	}

	switch {
	case *execOp != "":
		confirm := stdinConfirmer(os.Stdin, os.Stdout)
		if *assumeYes {
			confirm = func(string) bool { return true }
		}
		code := runOnce(ctx, ctrl, *execOp, *arg, confirm, os.Stdout)
		stop()
		os.Exit(code)

	case !interactive:
		logger.Infof("watching %s every %s", cfg.BackendURL, cfg.PollInterval)
		runWatch(ctx, ctrl, poller)

	default:
		go poller.Run(ctx)
		sess := &ui.Session{Ctx: ctx, Ctrl: ctrl, Presets: cfg.QuickBlock, History: repo}
		p := tea.NewProgram(ui.NewRootModel(sess), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			logger.Errorf("ui: %v", err)
			fmt.Fprintln(os.Stderr, "ui:", err)
			os.Exit(1)
		}
	}
}

// openHistory connects the command journal and trims it to h.Keep entries.
// A nil repository means the journal is disabled.
func openHistory(h config.History) (*history.Repository, error) {
	hdb, err := history.Connect(history.Config{
		Driver:   h.Driver,
		Path:     h.Path,
		Host:     h.MySQL.Host,
		Port:     h.MySQL.Port,
		User:     h.MySQL.User,
		Password: h.MySQL.Pass,
		DBName:   h.MySQL.Name,
	})
	if err != nil || hdb == nil {
		return nil, err
	}
	repo := history.NewRepository(hdb)
	if h.Keep > 0 {
		if err := repo.Prune(h.Keep); err != nil {
			logger.Errorf("history prune: %v", err)
		} else {
			logger.Debugf("history pruned to newest %d entries", h.Keep)
		}
	}
	return repo, nil
}
