package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"stockscan/internal/config"
	"stockscan/internal/logging"
	"stockscan/internal/services"
)

const (
	tagsPath     = "/api/v1/warehouse/tags/"
	scanPath     = "/api/v1/warehouse/scan"
	projectsPath = "/api/v1/projects/"

	maxErrorBody = 64 << 10
)

// HTTPDoer describes the HTTP client used by the API client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ReachabilityObserver is told whether each request reached the server.
type ReachabilityObserver interface {
	Observe(reachable bool)
}

// Client talks to the warehouse and projects endpoints.
type Client struct {
	baseURL  string
	token    string
	http     HTTPDoer
	observer ReachabilityObserver
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithObserver reports reachability of every request to o.
func WithObserver(o ReachabilityObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.NewComponentLogger(logger, "warehouse-api") }
}

// New constructs a client for baseURL.
func New(baseURL, token string, doer HTTPDoer, opts ...Option) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    doer,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client using the configured endpoint, token and timeout.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}
	return New(cfg.API.BaseURL, cfg.API.Token, httpClient, opts...)
}

// LookupTag fetches the classification for a scanned tag value.
func (c *Client) LookupTag(ctx context.Context, tagValue string) (TagPayload, error) {
	endpoint := c.baseURL + tagsPath + url.PathEscape(tagValue)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil, "lookup tag")
	if err != nil {
		return TagPayload{}, err
	}
	var payload TagPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return TagPayload{}, services.Wrap(services.ErrOther, "warehouse", "lookup tag", "decode response", err)
	}
	payload.Raw = json.RawMessage(body)
	return payload, nil
}

// SubmitScan records a stock movement. idempotencyKey is sent when non-empty so
// a replayed queued scan is not booked twice.
func (c *Client) SubmitScan(ctx context.Context, req ScanRequest, idempotencyKey string) error {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	_, err := c.do(ctx, http.MethodPost, c.baseURL+scanPath, req, headers, "submit scan")
	return err
}

// UpdateProjectDates reschedules a project.
func (c *Client) UpdateProjectDates(ctx context.Context, projectID int64, dates ProjectDates) error {
	endpoint := c.baseURL + projectsPath + strconv.FormatInt(projectID, 10) + "/dates"
	_, err := c.do(ctx, http.MethodPut, endpoint, dates, nil, "update project dates")
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any, headers map[string]string, operation string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "warehouse", operation, "encode request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, services.Wrap(services.ErrOther, "warehouse", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", operation, ctx.Err())
		}
		c.observe(false)
		c.logger.Debug("request did not reach server",
			logging.String("operation", operation),
			logging.String(logging.FieldCorrelationID, requestID),
			logging.Error(err),
		)
		return nil, services.Wrap(services.ErrNetwork, "warehouse", operation, "request failed", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := decodeAPIError(resp.StatusCode, body)
		c.observe(!errors.Is(apiErr, services.ErrNetwork))
		c.logger.Debug("api error response",
			logging.String("operation", operation),
			logging.Int("status", resp.StatusCode),
			logging.String("code", apiErr.Code),
			logging.String(logging.FieldCorrelationID, requestID),
		)
		return nil, fmt.Errorf("%s: %w", operation, apiErr)
	}
	c.observe(true)
	if readErr != nil {
		return nil, services.Wrap(services.ErrNetwork, "warehouse", operation, "read response", readErr)
	}
	return body, nil
}

func (c *Client) observe(reachable bool) {
	if c.observer != nil {
		c.observer.Observe(reachable)
	}
}

// CloseIdleConnections releases pooled connections held by the transport.
func (c *Client) CloseIdleConnections() {
	if closer, ok := c.http.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}
