package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/ports"
)

// Client talks to an external sentiment model service over HTTP.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
}

var _ ports.SentimentBackend = (*Client)(nil)

// NewClient creates a reusable HTTP client. rps <= 0 disables rate limiting.
func NewClient(endpoint, apiKey string, rps float64, burst int) *Client {
	c := &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.http = client
	return c
}

// Name identifies the backend in scored articles and logs.
func (c *Client) Name() string {
	return "inference"
}

// Classify posts the text to /sentiment and maps the reply to a prediction.
// Outages (network errors, 429 and 5xx) wrap domain.ErrClassifierUnavailable.
func (c *Client) Classify(ctx context.Context, text string) (domain.Prediction, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.Prediction{}, fmt.Errorf("%w: rate limit: %w", domain.ErrClassifierUnavailable, err)
		}
	}

	var resp struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := c.post(ctx, "/sentiment", map[string]any{"text": text}, &resp); err != nil {
		return domain.Prediction{}, err
	}

	label, ok := domain.ParseLabel(resp.Label)
	if !ok {
		return domain.Prediction{}, fmt.Errorf("%w: unknown label %q", domain.ErrInvalidPrediction, resp.Label)
	}
	return domain.Prediction{Label: label, Confidence: resp.Score}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: do request: %w", domain.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: unexpected status %s", domain.ErrClassifierUnavailable, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrInvalidPrediction, err)
	}
	return nil
}
