package genai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"intelligence-layer/internal/domain"
	"intelligence-layer/internal/infra/httpclient"

	"github.com/sashabaranov/go-openai"
)

const maxTokens = 2048

// Client adapts an OpenAI-compatible chat completion endpoint to the
// domain.ModelClient capability. BaseURL is configurable so any compatible
// gateway can serve as the provider.
type Client struct {
	api    *openai.Client
	logger *slog.Logger
}

func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpclient.NewPooledClient(timeout)
	return &Client{api: openai.NewClientWithConfig(cfg), logger: logger}
}

// GenerateStructured sends the prompt parts as one chat completion. The first
// text part becomes the system message; remaining parts become user messages.
// Binary parts are inlined base64-encoded with their MIME type labeled.
func (c *Client) GenerateStructured(ctx context.Context, model string, parts []domain.PromptPart, jsonMode bool) (*domain.ModelOutput, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: buildMessages(parts),
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens.
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return &domain.ModelOutput{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}

func buildMessages(parts []domain.PromptPart) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(parts))
	for _, part := range parts {
		content := part.Text
		if len(part.Data) > 0 {
			content = fmt.Sprintf("Attached document (%s, base64):\n%s",
				part.MIMEType, base64.StdEncoding.EncodeToString(part.Data))
		}
		role := openai.ChatMessageRoleUser
		if len(messages) == 0 && len(part.Data) == 0 {
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: content})
	}
	return messages
}

var _ domain.ModelClient = (*Client)(nil)
