package genai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"intelligence-layer/internal/domain"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestGenerateStructured(t *testing.T) {
	var captured openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: `{"recommendations":["consolidate suppliers"]}`}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL+"/v1", 5*time.Second, testLogger())
	out, err := client.GenerateStructured(context.Background(), "gpt-4o", []domain.PromptPart{
		domain.TextPart("system prompt"),
		domain.TextPart("payload"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, `{"recommendations":["consolidate suppliers"]}`, out.Text)

	assert.Equal(t, "gpt-4o", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, captured.ResponseFormat.Type)
}

func TestGenerateStructured_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL+"/v1", 5*time.Second, testLogger())
	_, err := client.GenerateStructured(context.Background(), "gpt-4o", []domain.PromptPart{domain.TextPart("p")}, false)
	assert.Error(t, err)
}

func TestBuildMessages_BinaryPart(t *testing.T) {
	messages := buildMessages([]domain.PromptPart{
		domain.TextPart("system"),
		domain.BinaryPart([]byte{0x25, 0x50, 0x44, 0x46}, "application/pdf"),
	})
	require.Len(t, messages, 2)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	assert.Contains(t, messages[1].Content, "application/pdf")
}
