package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/slacksum-agent/internal/domain/notification"
	apperrors "github.com/yanqian/slacksum-agent/pkg/errors"
)

const (
	defaultBaseURL = "http://localhost:3000"
	defaultPath    = "/api/push/send"
	errorBodyLimit = 4 << 10
)

// Options configures the relay client.
type Options struct {
	BaseURL     string
	Path        string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
}

// Client posts notification payloads to the dashboard's push endpoint.
type Client struct {
	endpoint    string
	apiKey      string
	maxAttempts int
	baseBackoff time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewClient builds a relay client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	path := opts.Path
	if path == "" {
		path = defaultPath
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Client{
		endpoint:    strings.TrimRight(base, "/") + path,
		apiKey:      strings.TrimSpace(opts.APIKey),
		maxAttempts: attempts,
		baseBackoff: opts.BaseBackoff,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "push.client"),
		sleep:  sleepContext,
	}
}

// Send implements notification.RelayClient.
func (c *Client) Send(ctx context.Context, payload notification.Payload) (notification.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode notification payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.baseBackoff * time.Duration(1<<(attempt-2))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		result, err := c.post(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxAttempts || ctx.Err() != nil {
			break
		}
		c.logger.Warn("relay call failed, retrying", "attempt", attempt, "error", err)
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (notification.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &notification.UpstreamError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read relay response: %w", err)
	}
	if !json.Valid(raw) {
		return nil, apperrors.Wrap(apperrors.CodeRelayInvalidResponse, "invalid relay response", fmt.Errorf("status=%d body=%q", resp.StatusCode, truncate(raw)))
	}
	return notification.Result(raw), nil
}

// retryable allows one more try for transport failures and gateway style upstream errors.
func retryable(err error) bool {
	var upstream *notification.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if apperrors.IsCode(err, apperrors.CodeRelayInvalidResponse) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(raw []byte) string {
	if len(raw) > 256 {
		return string(raw[:256])
	}
	return string(raw)
}

var _ notification.RelayClient = (*Client)(nil)
