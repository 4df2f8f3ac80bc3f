// Package llm provides the chat-completion client used by the generation
// planner and the relevance filter. OpenRouter speaks the OpenAI
// chat/completions wire format, so one adapter covers every routed model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hefgen/metricgen/internal/config"
)

// ProviderOpenRouter is the provider name used in error attribution.
const ProviderOpenRouter = "openrouter"

// Request is a normalized chat-completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Usage captures token accounting reported by the provider.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Response is a normalized chat-completion response.
type Response struct {
	Content   string
	Model     string
	RequestID string
	Usage     Usage
}

// Client is the minimal completion capability the generation layer needs.
// Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// OpenRouterClient implements Client against the OpenRouter
// chat/completions API.
type OpenRouterClient struct {
	cfg    config.OpenRouterConfig
	http   *http.Client
	logger *slog.Logger
}

// NewOpenRouterClient creates a client from resolved configuration.
// A nil logger falls back to slog.Default.
func NewOpenRouterClient(cfg config.OpenRouterConfig, logger *slog.Logger) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultOpenRouterBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenRouterClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "llm", "provider", ProviderOpenRouter),
	}
}

// Complete sends one chat-completion request and returns the normalized
// response. Provider failures come back as *ProviderError with a
// retryability classification.
func (c *OpenRouterClient) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.User})

	body := map[string]any{
		"model":       c.cfg.Model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &ProviderError{
			Provider: ProviderOpenRouter,
			Message:  err.Error(),
			Type:     ErrorTypeNetwork,
		}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read completion response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseProviderError(httpResp.StatusCode, respBody)
	}

	var resp struct {
		ID      string `json:"id"`
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int64 `json:"prompt_tokens"`
			CompletionTokens int64 `json:"completion_tokens"`
			TotalTokens      int64 `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parse completion response: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}

	c.logger.DebugContext(ctx, "completion received",
		"model", resp.Model,
		"finish_reason", resp.Choices[0].FinishReason,
		"total_tokens", resp.Usage.TotalTokens)

	return &Response{
		Content:   resp.Choices[0].Message.Content,
		Model:     resp.Model,
		RequestID: resp.ID,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// parseProviderError converts a non-200 response body to a ProviderError.
// OpenRouter uses the OpenAI error envelope.
func parseProviderError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &ProviderError{
			Provider:   ProviderOpenRouter,
			StatusCode: statusCode,
			Message:    errResp.Error.Message,
			Code:       fmt.Sprintf("%v", errResp.Error.Code),
			Type:       classifyStatus(statusCode),
		}
	}
	return &ProviderError{
		Provider:   ProviderOpenRouter,
		StatusCode: statusCode,
		Message:    string(body),
		Type:       classifyStatus(statusCode),
	}
}
