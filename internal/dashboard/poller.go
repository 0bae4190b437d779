package dashboard

import (
	"context"
	"sync"
	"time"
)

// Poller calls refresh on a fixed period. Ticks do not wait for the previous
// refresh to finish, so slow responses may overlap.
type Poller struct {
	refresh  func(context.Context) error
	interval time.Duration
	reset    chan time.Duration
}

func NewPoller(refresh func(context.Context) error, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Poller{refresh: refresh, interval: interval, reset: make(chan time.Duration, 1)}
}

// SetInterval changes the period from the next tick on. Safe to call from
// any goroutine.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-p.reset:
	default:
	}
	p.reset <- d
}

// Run refreshes once immediately, then every interval until ctx is done. It
// waits for in-flight refreshes before returning.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	fire := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.refresh(ctx)
		}()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	fire()
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-p.reset:
			ticker.Reset(d)
		case <-ticker.C:
			fire()
		}
	}
}
