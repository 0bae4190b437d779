package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"proxy-console/internal/dashboard"
	"proxy-console/internal/logger"
)

// stdinConfirmer asks on out and accepts only "y" or "yes".
func stdinConfirmer(in io.Reader, out io.Writer) dashboard.Confirmer {
	r := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, _ := r.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func printView(out io.Writer, v dashboard.View) {
	fmt.Fprintf(out, "status:         %s\n", v.StatusText)
	fmt.Fprintf(out, "total requests: %s\n", v.TotalRequests)
	fmt.Fprintf(out, "blocked:        %s\n", v.BlockedRequests)
	fmt.Fprintf(out, "cached items:   %s\n", v.CachedItems)
	fmt.Fprintf(out, "blocked sites:  %s\n", v.BlockedSitesCount)
	for _, s := range v.BlockedSites {
		fmt.Fprintf(out, "  - %s\n", s)
	}
}

// runOnce performs a single operation and returns the process exit code:
// 0 on success or a declined confirmation, 1 on an error toast, 2 on usage.
func runOnce(ctx context.Context, ctrl *dashboard.Controller, op, arg string, confirm dashboard.Confirmer, out io.Writer) int {
	switch op {
	case "stats":
		if err := ctrl.RefreshStats(ctx); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return 1
		}
		printView(out, dashboard.Render(ctrl.ViewModel()))
		return 0
	case "start":
		ctrl.StartServer(ctx)
	case "stop":
		ctrl.StopServer(ctx)
	case "block":
		ctrl.SetBlockInput(arg)
		ctrl.BlockSite(ctx)
	case "unblock", "quick-block":
		if arg == "" {
			fmt.Fprintf(out, "%s needs -arg\n", op)
			return 2
		}
		if op == "unblock" {
			ctrl.UnblockSite(ctx, arg)
		} else {
			ctrl.QuickBlock(ctx, arg)
		}
	case "clear-cache":
		ctrl.ClearCache(ctx, confirm)
	case "clear-logs":
		ctrl.ClearLogs(ctx, confirm)
	default:
		fmt.Fprintf(out, "unknown command %q\n", op)
		return 2
	}

	t := ctrl.ViewModel().Toast
	if t.Seq == 0 {
		fmt.Fprintln(out, "aborted")
		return 0
	}
	fmt.Fprintf(out, "[%s] %s\n", t.Severity, t.Message)
	if t.Severity != dashboard.SeveritySuccess {
		return 1
	}
	return 0
}

// runWatch polls until ctx is done and logs every applied snapshot.
func runWatch(ctx context.Context, ctrl *dashboard.Controller, poller *dashboard.Poller) {
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()
	var last dashboard.View
	for {
		select {
		case <-ctx.Done():
			<-done
			return
		case <-ctrl.Changes():
			v := dashboard.Render(ctrl.ViewModel())
			if v.StatusText == last.StatusText && v.TotalRequests == last.TotalRequests &&
				v.BlockedRequests == last.BlockedRequests && v.CachedItems == last.CachedItems &&
				v.BlockedSitesCount == last.BlockedSitesCount {
				continue
			}
			last = v
			logger.L.Info().
				Str("status", v.StatusText).
				Str("total_requests", v.TotalRequests).
				Str("blocked_requests", v.BlockedRequests).
				Str("cached_items", v.CachedItems).
				Str("blocked_sites", v.BlockedSitesCount).
				Msg("snapshot")
		}
	}
}
