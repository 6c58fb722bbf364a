package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// Client implements domain.Completer on top of a langchaingo model.
// Every Complete call is a single attempt; there is no retry or backoff.
type Client struct {
	model llms.Model
	cfg   config.LLMConfig
}

// New validates the oracle settings and builds the provider client.
func New(cfg config.LLMConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := NewHTTPClient(cfg.Timeout)

	var (
		model llms.Model
		err   error
	)
	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(httpClient),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case "ollama":
		model, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s LLM client: %w", cfg.Provider, err)
	}

	logger.Get().Info("Initialized completion client",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))
	return &Client{model: model, cfg: cfg}, nil
}

// NewWithModel wraps an existing model. The config is still validated so a
// missing credential is reported the same way as with New.
func NewWithModel(model llms.Model, cfg config.LLMConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, errors.New("model cannot be nil")
	}
	return &Client{model: model, cfg: cfg}, nil
}

// Complete sends one prompt and returns the completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.model == nil {
		return "", &domain.ConfigurationError{Setting: "llm"}
	}
	if c.cfg.Provider == "openai" && strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", &domain.ConfigurationError{Setting: "llm.api_key"}
	}

	l := logger.Get()
	opts := []llms.CallOption{llms.WithTemperature(c.cfg.Temperature)}
	if c.cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.cfg.MaxTokens))
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}, opts...)
	if err != nil {
		upErr := AsUpstreamError(err)
		l.Error("LLM call failed",
			zap.Error(err),
			zap.Int("status", upErr.StatusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Int("prompt_chars", len(prompt)))
		return "", upErr
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", &domain.EmptyResponseError{Reason: "no choices in response"}
	}
	var text strings.Builder
	for _, choice := range resp.Choices {
		if choice == nil {
			continue
		}
		text.WriteString(choice.Content)
	}
	result := strings.TrimSpace(text.String())
	if result == "" {
		reason := "empty content"
		if resp.Choices[0] != nil && resp.Choices[0].StopReason != "" {
			reason = "empty content, stop reason " + resp.Choices[0].StopReason
		}
		return "", &domain.EmptyResponseError{Reason: reason}
	}

	l.Debug("LLM call succeeded",
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("completion_chars", len(result)))
	return result, nil
}

// AsUpstreamError classifies a provider SDK failure as an upstream error,
// keeping the status and body captured by the transport when present.
func AsUpstreamError(err error) *domain.UpstreamError {
	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) {
		return upErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.UpstreamError{Err: fmt.Errorf("LLM request timed out: %w", err)}
	}
	return &domain.UpstreamError{Err: err}
}

var _ domain.Completer = (*Client)(nil)
