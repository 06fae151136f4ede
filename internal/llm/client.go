package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyCompletion is returned when the model responds with no usable text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Config captures the connection and sampling settings for the completions
// endpoint. The endpoint is OpenAI-compatible; self-hosted servers typically
// ignore the API key.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int64
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.APIKey == "" {
		c.APIKey = "NULL"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 512
	}
	if c.Temperature < 0 {
		c.Temperature = 0
	}
	if c.TopP <= 0 {
		c.TopP = 0.9
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

// Client issues prompt completions against a single endpoint. Identical
// concurrent prompts are collapsed into one upstream call and results are
// memoized in the response cache, which must not alter semantics, only
// latency.
type Client struct {
	api      openai.Client
	cfg      Config
	cache    *ResponseCache
	inflight singleflight.Group
	logger   *slog.Logger
}

// NewClient wires a completions client. The cache may be nil to disable
// memoization (used by tests exercising fallback chains).
func NewClient(cfg Config, cache *ResponseCache, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:    openai.NewClient(opts...),
		cfg:    cfg,
		cache:  cache,
		logger: logger,
	}
}

// Complete returns the raw completion text for prompt. The call is bounded by
// the configured timeout regardless of the caller's context. The chat shape is
// tried first; servers whose chat template rejects the request fall back to
// the legacy text-completion shape.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("llm: prompt is empty")
	}

	if cached, ok := c.cache.Get(prompt); ok {
		return cached, nil
	}

	value, err, _ := c.inflight.Do(CacheKey(prompt), func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		text, err := c.complete(callCtx, prompt)
		if err != nil {
			return "", err
		}
		c.cache.Put(prompt, text)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	text, chatErr := c.chatCompletion(ctx, prompt)
	if chatErr == nil {
		c.logger.Debug("completion served", "shape", "chat", "duration", time.Since(start))
		return text, nil
	}
	if ctx.Err() != nil {
		return "", chatErr
	}

	c.logger.Debug("chat completion rejected, retrying with text shape", "error", chatErr)

	text, textErr := c.textCompletion(ctx, prompt)
	if textErr != nil {
		return "", fmt.Errorf("llm: completion failed (chat: %v): %w", chatErr, textErr)
	}
	c.logger.Debug("completion served", "shape", "text", "duration", time.Since(start))
	return text, nil
}

func (c *Client) chatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(c.cfg.MaxTokens),
		Temperature: openai.Float(c.cfg.Temperature),
		TopP:        openai.Float(c.cfg.TopP),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (c *Client) textCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Completions.New(ctx, openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(c.cfg.Model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(prompt),
		},
		MaxTokens:   openai.Int(c.cfg.MaxTokens),
		Temperature: openai.Float(c.cfg.Temperature),
		TopP:        openai.Float(c.cfg.TopP),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
