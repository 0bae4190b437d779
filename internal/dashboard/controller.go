package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"proxy-console/internal/history"
	"proxy-console/network"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	MsgEmptyPattern  = "Please enter a website URL"
	PromptClearCache = "Are you sure you want to clear the cache?"
	PromptClearLogs  = "Are you sure you want to clear all logs?"
	DefaultToastTTL  = 3 * time.Second
)

// Fallback toast text per operation when the backend gave no usable answer.
var fallbackText = map[Op]string{
	OpStart:       "Failed to start server",
	OpStop:        "Failed to stop server",
	OpBlockSite:   "Failed to block site",
	OpUnblockSite: "Failed to unblock site",
	OpQuickBlock:  "Failed to block site",
	OpClearCache:  "Failed to clear cache",
	OpClearLogs:   "Failed to clear logs",
}

// FallbackText returns the fixed transport-failure message for op.
func FallbackText(op Op) string { return fallbackText[op] }

var ErrEmptyPattern = errors.New("empty block pattern")

// Client is the admin API surface the controller drives.
type Client interface {
	Stats(ctx context.Context) (network.StatsSnapshot, error)
	Start(ctx context.Context) (network.Result, error)
	Stop(ctx context.Context) (network.Result, error)
	BlockSite(ctx context.Context, pattern string) (network.Result, error)
	UnblockSite(ctx context.Context, pattern string) (network.Result, error)
	QuickBlock(ctx context.Context, site string) (network.Result, error)
	ClearCache(ctx context.Context) (network.Result, error)
	ClearLogs(ctx context.Context) (network.Result, error)
}

// Recorder receives one entry per command attempt.
type Recorder interface {
	Record(e history.Entry) error
}

// Confirmer asks the operator a yes/no question.
type Confirmer func(prompt string) bool

type Options struct {
	Recorder Recorder
	Logger   zerolog.Logger
	ToastTTL time.Duration
}

// Controller owns the dashboard view-model. All methods are safe for
// concurrent use; requests run without holding the lock.
type Controller struct {
	client   Client
	recorder Recorder
	log      zerolog.Logger

	// afterFunc schedules toast dismissal; replaced in tests.
	afterFunc func(time.Duration, func())

	statsSeq atomic.Uint64

	mu         sync.Mutex
	vm         ViewModel
	appliedSeq uint64
	toastTTL   time.Duration

	changes chan struct{}
}

func New(client Client, opts Options) *Controller {
	ttl := opts.ToastTTL
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Controller{
		client:    client,
		recorder:  opts.Recorder,
		log:       opts.Logger,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		vm:        ViewModel{Pending: map[CommandKey]bool{}},
		toastTTL:  ttl,
		changes:   make(chan struct{}, 1),
	}
}

// Changes signals (coalesced) that the view-model changed.
func (c *Controller) Changes() <-chan struct{} { return c.changes }

// ViewModel returns a copy of the current state.
func (c *Controller) ViewModel() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vm.clone()
}

func (c *Controller) SetToastTTL(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.toastTTL = d
	c.mu.Unlock()
}

func (c *Controller) SetBlockInput(s string) {
	c.mu.Lock()
	c.vm.BlockInput = s
	c.mu.Unlock()
}

// IsPending reports whether the command for key is in flight.
func (c *Controller) IsPending(key CommandKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vm.Pending[key]
}

// RefreshStats fetches a snapshot and applies it unless a newer one was
// applied meanwhile. Failures are logged only; the view keeps its last state.
func (c *Controller) RefreshStats(ctx context.Context) error {
	seq := c.statsSeq.Add(1)
	snap, err := c.client.Stats(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("error updating stats")
		return err
	}
	c.mu.Lock()
	if seq <= c.appliedSeq {
		c.mu.Unlock()
		c.log.Debug().Uint64("seq", seq).Msg("dropping stale snapshot")
		return nil
	}
	c.appliedSeq = seq
	c.vm.Snapshot = snap
	c.vm.HasSnapshot = true
	c.mu.Unlock()
	c.changed()
	return nil
}

func (c *Controller) StartServer(ctx context.Context) {
	c.mutate(ctx, CommandKey{Op: OpStart}, "", c.client.Start, nil)
}

func (c *Controller) StopServer(ctx context.Context) {
	c.mutate(ctx, CommandKey{Op: OpStop}, "", c.client.Stop, nil)
}

// BlockSite submits the trimmed block input. The input is cleared only on
// success.
func (c *Controller) BlockSite(ctx context.Context) {
	c.mu.Lock()
	pattern := strings.TrimSpace(c.vm.BlockInput)
	c.mu.Unlock()

	key := CommandKey{Op: OpBlockSite}
	if pattern == "" {
		c.log.Debug().Err(ErrEmptyPattern).Msg("block rejected")
		c.record(key.Op, "", "", history.OutcomeRejected, MsgEmptyPattern, 0)
		c.notify(MsgEmptyPattern, SeverityError, nil)
		return
	}
	call := func(ctx context.Context) (network.Result, error) { return c.client.BlockSite(ctx, pattern) }
	c.mutate(ctx, key, pattern, call, func(vm *ViewModel) { vm.BlockInput = "" })
}

// UnblockSite trusts pattern as given.
func (c *Controller) UnblockSite(ctx context.Context, pattern string) {
	call := func(ctx context.Context) (network.Result, error) { return c.client.UnblockSite(ctx, pattern) }
	c.mutate(ctx, CommandKey{Op: OpUnblockSite, Arg: pattern}, pattern, call, nil)
}

func (c *Controller) QuickBlock(ctx context.Context, site string) {
	call := func(ctx context.Context) (network.Result, error) { return c.client.QuickBlock(ctx, site) }
	c.mutate(ctx, CommandKey{Op: OpQuickBlock, Arg: site}, site, call, nil)
}

func (c *Controller) ClearCache(ctx context.Context, confirm Confirmer) {
	c.clear(ctx, OpClearCache, PromptClearCache, confirm, c.client.ClearCache)
}

func (c *Controller) ClearLogs(ctx context.Context, confirm Confirmer) {
	c.clear(ctx, OpClearLogs, PromptClearLogs, confirm, c.client.ClearLogs)
}

// DismissToast hides the toast if seq is still the one on screen.
func (c *Controller) DismissToast(seq uint64) {
	c.mu.Lock()
	if c.vm.Toast.Seq != seq || !c.vm.Toast.Visible {
		c.mu.Unlock()
		return
	}
	c.vm.Toast.Visible = false
	c.mu.Unlock()
	c.changed()
}

// mutate runs a state-changing command: success toasts and resyncs, a
// server failure toasts its message, a transport failure toasts the fallback.
func (c *Controller) mutate(ctx context.Context, key CommandKey, arg string, call func(context.Context) (network.Result, error), onSuccess func(*ViewModel)) {
	res, started, err := c.dispatch(ctx, key, arg, call)
	if !started {
		return
	}
	if err != nil {
		c.log.Error().Err(err).Str("op", string(key.Op)).Msg("command failed")
		c.notify(fallbackText[key.Op], SeverityError, nil)
		return
	}
	switch r := res.(type) {
	case network.Success:
		c.notify(r.Msg, SeveritySuccess, onSuccess)
		_ = c.RefreshStats(ctx)
	case network.Failure:
		c.notify(r.Msg, SeverityError, nil)
	}
}

func (c *Controller) clear(ctx context.Context, op Op, prompt string, confirm Confirmer, call func(context.Context) (network.Result, error)) {
	if confirm == nil || !confirm(prompt) {
		return
	}
	res, started, err := c.dispatch(ctx, CommandKey{Op: op}, "", call)
	if !started {
		return
	}
	if err != nil {
		c.log.Error().Err(err).Str("op", string(op)).Msg("command failed")
		c.notify(fallbackText[op], SeverityError, nil)
		return
	}
	// any server answer resyncs, even a failure
	c.notify(res.Message(), res.Severity(), nil)
	_ = c.RefreshStats(ctx)
}

// dispatch marks key pending, performs call and records the outcome. started
// is false when the same command was already in flight and nothing was sent.
func (c *Controller) dispatch(ctx context.Context, key CommandKey, arg string, call func(context.Context) (network.Result, error)) (res network.Result, started bool, err error) {
	c.mu.Lock()
	if c.vm.Pending[key] {
		c.mu.Unlock()
		c.log.Debug().Str("op", string(key.Op)).Str("arg", key.Arg).Msg("command already pending, ignoring")
		c.record(key.Op, arg, "", history.OutcomeSkipped, "already pending", 0)
		return nil, false, nil
	}
	c.vm.Pending[key] = true
	c.mu.Unlock()
	c.changed()

	id := uuid.NewString()
	start := time.Now()
	res, err = call(network.WithRequestID(ctx, id))
	elapsed := time.Since(start)

	c.mu.Lock()
	delete(c.vm.Pending, key)
	c.mu.Unlock()

	switch {
	case err != nil:
		c.record(key.Op, arg, id, history.OutcomeTransport, err.Error(), elapsed)
	case isSuccess(res):
		c.record(key.Op, arg, id, history.OutcomeSuccess, res.Message(), elapsed)
	default:
		c.record(key.Op, arg, id, history.OutcomeFailure, res.Message(), elapsed)
	}
	return res, true, err
}

func isSuccess(r network.Result) bool {
	_, ok := r.(network.Success)
	return ok
}

func (c *Controller) notify(msg, severity string, mut func(*ViewModel)) {
	c.mu.Lock()
	if mut != nil {
		mut(&c.vm)
	}
	seq := c.vm.Toast.Seq + 1
	c.vm.Toast = Toast{Message: msg, Severity: severity, Visible: true, Seq: seq}
	ttl := c.toastTTL
	c.mu.Unlock()
	c.changed()
	c.afterFunc(ttl, func() { c.DismissToast(seq) })
}

func (c *Controller) record(op Op, arg, requestID string, outcome history.Outcome, msg string, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	e := history.Entry{
		RequestID:  requestID,
		Op:         string(op),
		Argument:   arg,
		Outcome:    outcome,
		Message:    msg,
		DurationMS: elapsed.Milliseconds(),
	}
	if err := c.recorder.Record(e); err != nil {
		c.log.Warn().Err(err).Str("op", e.Op).Msg("record history")
	}
}

func (c *Controller) changed() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
