// Package workersai implements provider.Responder against a remote
// inference endpoint that accepts {"messages":[...]} and answers
// {"result":{"response":"..."}} (the Cloudflare Workers AI run shape).
package workersai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/flemzord/warelay/internal/conversation"
	"github.com/flemzord/warelay/internal/core"
	"github.com/flemzord/warelay/internal/metrics"
	"github.com/flemzord/warelay/internal/provider"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ModuleID is the lifecycle identifier of the responder.
const ModuleID core.ModuleID = "provider.workersai"

// maxErrorBodySize caps how much of an error response body is read and logged.
const maxErrorBodySize = 4096

// Compile-time interface guards.
var (
	_ provider.Responder = (*Client)(nil)
	_ core.Starter       = (*Client)(nil)
)

// Client calls the remote inference endpoint.
type Client struct {
	config  Config
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithMetrics records request latency on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// WithTracer wraps each request in a span.
func WithTracer(t trace.Tracer) Option {
	return func(cl *Client) { cl.tracer = t }
}

// New creates a Client. Configuration problems are not reported here:
// an invalid endpoint fails each Respond call with provider.ErrConfiguration.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModuleInfo implements core.Module.
func (c *Client) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// Start warns about an unusable endpoint so operators notice before the
// first message arrives.
func (c *Client) Start() error {
	if !c.config.endpointValid() {
		c.logger.Warn("AI_API_URL is missing or invalid; every reply will fail until it is fixed",
			"url", c.config.URL)
		return nil
	}
	if c.config.Token == "" {
		c.logger.Warn("AI_API_TOKEN is empty; requests will be sent unauthenticated")
	}
	return nil
}

// Respond implements provider.Responder.
func (c *Client) Respond(ctx context.Context, history conversation.History) (string, error) {
	if !c.config.endpointValid() {
		return "", fmt.Errorf("%w: AI_API_URL %q is not a valid http(s) URL", provider.ErrConfiguration, c.config.URL)
	}

	ctx, span := c.tracer.Start(ctx, "workersai.respond",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("warelay.history_len", len(history))),
	)
	defer span.End()

	start := time.Now()
	reply, status, err := c.do(ctx, history)
	c.metrics.ObserveAIRequest(status, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream failure")
		return "", err
	}
	return reply, nil
}

// do performs the POST and returns the reply plus a status label for metrics.
func (c *Client) do(ctx context.Context, history conversation.History) (string, string, error) {
	payload, err := json.Marshal(buildRequest(c.config.SystemPrompt, history))
	if err != nil {
		return "", "encode_error", fmt.Errorf("%w: marshal request: %w", provider.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return "", "request_error", fmt.Errorf("%w: create request: %w", provider.ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Caller cancellation is not an upstream failure.
		if ctx.Err() != nil {
			return "", "canceled", ctx.Err()
		}
		c.logger.Error("AI request failed", "error", err)
		return "", "network_error", fmt.Errorf("%w: %w", provider.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	status := strconv.Itoa(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		c.logger.Error("AI request failed",
			"status", resp.StatusCode,
			"response", string(body),
		)
		return "", status, fmt.Errorf("%w: HTTP %d", provider.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if ctx.Err() != nil {
			return "", "canceled", ctx.Err()
		}
		return "", "read_error", fmt.Errorf("%w: read response: %w", provider.ErrUpstream, err)
	}

	reply, err := parseReply(body)
	if err != nil {
		c.logger.Error("AI response has an unexpected shape", "status", resp.StatusCode, "error", err)
		return "", "decode_error", fmt.Errorf("%w: %w", provider.ErrUpstream, err)
	}
	if reply == FallbackReply {
		c.logger.Warn("AI response carries no result.response, using fallback", "status", resp.StatusCode)
	}
	return reply, status, nil
}
