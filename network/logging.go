package network

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type loggingTransport struct {
	next http.RoundTripper
	log  zerolog.Logger
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	duration := time.Since(start)
	if err != nil {
		t.log.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Str("request_id", r.Header.Get("X-Request-ID")).Dur("duration", duration).Msg("request failed")
		return nil, err
	}
	t.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("status", resp.StatusCode).Str("request_id", r.Header.Get("X-Request-ID")).Dur("duration", duration).Msg("request")
	return resp, nil
}
