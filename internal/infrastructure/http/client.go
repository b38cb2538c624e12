package http

import (
	"log/slog"
	"net/http"
	"time"

	ctxutil "rechnungswerk/ms_einvoice_core/internal/infrastructure/context"
)

// ClientConfig holds configuration for outbound HTTP clients.
type ClientConfig struct {
	Timeout         time.Duration
	MaxConnsPerHost int
	Logger          *slog.Logger
}

// NewClient creates an HTTP client with connection pooling and, when a
// logger is provided, per-request logging of outbound calls.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = &ClientConfig{}
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	maxConnsPerHost := config.MaxConnsPerHost
	if maxConnsPerHost == 0 {
		maxConnsPerHost = 50
	}

	responseHeaderTimeout := timeout
	if responseHeaderTimeout < 60*time.Second {
		responseHeaderTimeout = 60 * time.Second
	}

	var rt http.RoundTripper = &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   maxConnsPerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if config.Logger != nil {
		rt = &loggingRoundTripper{next: rt, log: config.Logger}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}

// loggingRoundTripper logs outbound requests with their duration and
// status. Authorization headers never reach the log output.
type loggingRoundTripper struct {
	next http.RoundTripper
	log  *slog.Logger
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	correlationID := ctxutil.GetCorrelationID(req.Context())
	start := time.Now()

	resp, err := l.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		l.log.Error("Outbound request failed",
			"method", req.Method,
			"url", req.URL.Redacted(),
			"duration_ms", duration.Milliseconds(),
			"correlation_id", correlationID,
			"error", err,
		)
		return nil, err
	}

	l.log.Debug("Outbound request completed",
		"method", req.Method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"correlation_id", correlationID,
	)

	return resp, nil
}
