package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/FACorreiaa/notion-city-proxy/config"
	"github.com/FACorreiaa/notion-city-proxy/internal/types"
)

const maxResponseBytes = 8 << 20

// Client talks to the Notion REST API with a single bearer token.
// It is safe for concurrent use.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	token      string
	apiVersion string
	timeout    time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg *config.NotionConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		logger: logger,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		apiVersion: cfg.APIVersion,
		timeout:    cfg.Timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryDatabase runs a single, unpaginated query against databaseID. The
// whole exchange, body read included, is bounded by the configured timeout.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, query types.QueryDatabaseRequest) (*types.QueryDatabaseResponse, error) {
	l := c.logger.With(slog.String("method", "QueryDatabase"), slog.String("database_id", databaseID))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, url.PathEscape(databaseID))
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	l.DebugContext(ctx, "Sending query to Notion", slog.String("url", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classify(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := newHTTPError(resp.StatusCode, body)
		l.WarnContext(ctx, "Notion returned an error status",
			slog.Int("status", he.StatusCode),
			slog.String("code", he.Code),
			slog.String("message", he.Message),
		)
		return nil, he
	}

	var out types.QueryDatabaseResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}

	l.DebugContext(ctx, "Notion query completed",
		slog.Int("results", len(out.Results)),
		slog.Bool("has_more", out.HasMore),
	)
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	}
	return &TransportError{Err: err}
}
