// Package openai implements llm.Completer against any OpenAI-compatible
// chat completions endpoint (OpenAI itself, the Hugging Face router).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/telemetry"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	// HuggingFaceBaseURL is the OpenAI-compatible Hugging Face inference router.
	HuggingFaceBaseURL = "https://router.huggingface.co/v1"

	defaultTimeout = 60 * time.Second
	noAnswer       = "No answer."
)

// Config configures a Client.
type Config struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client implements llm.Completer using Chat Completions.
type Client struct {
	provider    string
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewClient constructs a new client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for %s", providerName(cfg.Provider))
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required for %s", providerName(cfg.Provider))
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		provider:    providerName(cfg.Provider),
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

func providerName(p string) string {
	if p = strings.TrimSpace(p); p != "" {
		return p
	}
	return "openai"
}

func (c *Client) Name() string  { return c.provider }
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *usage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends the request and returns the first choice. Transient failures
// match llm.ErrServiceUnavailable.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	start := time.Now()
	text, u, err := c.completeOnce(ctx, req)
	if err != nil {
		return llm.Completion{}, llm.Classify(err)
	}
	logUsage(c.provider, c.model, req.Title, u, time.Since(start))
	return llm.Completion{Text: text, Provider: c.provider, Model: c.model}, nil
}

func (c *Client) completeOnce(ctx context.Context, req llm.Request) (string, *usage, error) {
	msgs := llm.Messages(req)
	reqMessages := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	temp := c.temperature
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    reqMessages,
		MaxTokens:   c.maxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return "", nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", nil, fmt.Errorf("%s request timeout: %w", c.provider, err)
		}
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, &llm.StatusError{Provider: c.provider, Status: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("%s response parse: %w", c.provider, err)
	}
	if parsed.Error != nil {
		return "", nil, fmt.Errorf("%s error: %s (%s)", c.provider, parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return noAnswer, parsed.Usage, nil
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		content = noAnswer
	}
	return content, parsed.Usage, nil
}

func logUsage(provider, model, title string, u *usage, elapsed time.Duration) {
	fields := map[string]any{
		"provider":    provider,
		"model":       model,
		"title":       title,
		"duration_ms": telemetry.DurationMs(elapsed),
	}
	if u != nil {
		fields["prompt_tokens"] = u.PromptTokens
		fields["completion_tokens"] = u.CompletionTokens
		fields["total_tokens"] = u.TotalTokens
	}
	telemetry.Info("llm.completion", fields)
}

var _ llm.Completer = (*Client)(nil)
