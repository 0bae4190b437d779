package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBody caps how much of a response is read before decoding.
const maxBody = 1 << 20

var (
	errMissingStatus  = errors.New("response has no status field")
	errMissingRunning = errors.New("response has no server_running field")
)

// TokenSource supplies the bearer token attached to admin requests.
type TokenSource interface {
	Token() (string, error)
}

type requestIDKey struct{}

// WithRequestID makes the next request issued with ctx carry id as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AdminClient talks to the proxy's admin HTTP API.
type AdminClient struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenSource
}

// NewAdminClient builds a client for baseURL. A zero timeout leaves the
// transport default in place.
func NewAdminClient(baseURL string, timeout time.Duration, log zerolog.Logger) *AdminClient {
	return &AdminClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: &loggingTransport{next: http.DefaultTransport, log: log},
		},
	}
}

// Stats fetches the current snapshot. Every failure is a *TransportError.
func (c *AdminClient) Stats(ctx context.Context) (StatsSnapshot, error) {
	var snap StatsSnapshot
	status, body, err := c.do(ctx, http.MethodGet, StatsPath, nil)
	if err != nil {
		return snap, &TransportError{Op: "stats", Err: err}
	}
	if status < 200 || status > 299 {
		return snap, &TransportError{Op: "stats", Err: fmt.Errorf("unexpected status %d", status)}
	}
	var raw statsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return snap, &TransportError{Op: "stats", Err: fmt.Errorf("decode: %w", err)}
	}
	if raw.ServerRunning == nil {
		return snap, &TransportError{Op: "stats", Err: errMissingRunning}
	}
	return raw.snapshot(), nil
}

func (c *AdminClient) Start(ctx context.Context) (Result, error) {
	return c.command(ctx, "start", StartPath, nil)
}

func (c *AdminClient) Stop(ctx context.Context) (Result, error) {
	return c.command(ctx, "stop", StopPath, nil)
}

func (c *AdminClient) BlockSite(ctx context.Context, pattern string) (Result, error) {
	return c.command(ctx, "block-site", BlockSitePath, PatternRequest{Pattern: pattern})
}

func (c *AdminClient) UnblockSite(ctx context.Context, pattern string) (Result, error) {
	return c.command(ctx, "unblock-site", UnblockSitePath, PatternRequest{Pattern: pattern})
}

func (c *AdminClient) QuickBlock(ctx context.Context, site string) (Result, error) {
	return c.command(ctx, "quick-block", QuickBlockPath, QuickBlockRequest{Site: site})
}

func (c *AdminClient) ClearCache(ctx context.Context) (Result, error) {
	return c.command(ctx, "clear-cache", ClearCachePath, nil)
}

func (c *AdminClient) ClearLogs(ctx context.Context) (Result, error) {
	return c.command(ctx, "clear-logs", ClearLogsPath, nil)
}

// command posts body to path and decodes the {status, message} answer. The
// HTTP status code is not consulted: a JSON body with a status field is a
// server result, anything else is a transport failure.
func (c *AdminClient) command(ctx context.Context, op, path string, body any) (Result, error) {
	_, raw, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	var resp commandResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	if resp.Status == nil {
		return nil, &TransportError{Op: op, Err: errMissingStatus}
	}
	return decodeResult(resp), nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", id)
	if c.Tokens != nil {
		tok, err := c.Tokens.Token()
		if err != nil {
			return 0, nil, fmt.Errorf("token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, raw, nil
}
