// Package gemini implements llm.Completer on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/telemetry"
)

const (
	providerName = "gemini"
	DefaultModel = "gemini-1.5-flash"
	noAnswer     = "No answer."
)

// Client wraps a genai client bound to one model.
type Client struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

// NewClient dials the Gemini API with an API key.
func NewClient(ctx context.Context, apiKey, model string, maxTokens int, temperature float64) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Client{
		client:      cl,
		model:       model,
		maxTokens:   int32(maxTokens),
		temperature: float32(temperature),
	}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *Client) Name() string  { return providerName }
func (c *Client) Model() string { return c.model }

// Complete replays history into a chat session and sends the user turn.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	start := time.Now()
	m := c.client.GenerativeModel(c.model)
	if strings.TrimSpace(req.System) != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if c.maxTokens > 0 {
		m.SetMaxOutputTokens(c.maxTokens)
	}
	m.SetTemperature(c.temperature)

	cs := m.StartChat()
	cs.History = toContents(req.History)

	resp, err := cs.SendMessage(ctx, genai.Text(req.User))
	if err != nil {
		return llm.Completion{}, classify(fmt.Errorf("gemini generate: %w", err))
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		text = noAnswer
	}
	telemetry.Info("llm.completion", map[string]any{
		"provider":    providerName,
		"model":       c.model,
		"title":       req.Title,
		"duration_ms": telemetry.DurationMs(time.Since(start)),
	})
	return llm.Completion{Text: text, Provider: providerName, Model: c.model}, nil
}

func toContents(history []llm.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := ""
		switch m.Role {
		case llm.RoleUser:
			role = "user"
		case llm.RoleAssistant:
			role = "model"
		default:
			continue
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// classify lifts googleapi status codes into llm.StatusError before the
// shared classification runs.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return llm.Classify(fmt.Errorf("%w: %w", &llm.StatusError{Provider: providerName, Status: gerr.Code, Body: gerr.Message}, err))
	}
	return llm.Classify(err)
}

var _ llm.Completer = (*Client)(nil)
