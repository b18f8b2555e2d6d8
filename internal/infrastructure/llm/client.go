package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"NewsSentiment/internal/config"
)

const (
	maxRetries = 2
	baseDelay  = 500 * time.Millisecond
)

// Generator is the part of an eino chat model the adapters use.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// NewChatModel connects to an OpenAI-compatible endpoint.
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (*openai.ChatModel, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, errors.New("llm client misconfigured: api key and model are required")
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return chatModel, nil
}

// Client sends single-turn prompts through a rate-limited generator.
type Client struct {
	gen     Generator
	limiter *rate.Limiter
}

// NewClient wraps gen; rps <= 0 disables rate limiting.
func NewClient(gen Generator, rps float64, burst int) *Client {
	c := &Client{gen: gen}
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

// Complete returns the trimmed model reply. Throttled calls are retried
// with exponential backoff.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c == nil || c.gen == nil {
		return "", errors.New("llm client is nil")
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		resp, err := c.gen.Generate(ctx, messages)
		if err == nil {
			if resp == nil {
				return "", errors.New("empty model response")
			}
			return strings.TrimSpace(resp.Content), nil
		}
		if !throttled(err) || i == maxRetries {
			return "", err
		}

		lastErr = err
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(baseDelay * time.Duration(1<<i)):
		}
	}
	return "", lastErr
}

func throttled(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// stripFences removes a markdown code fence around a JSON reply.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
