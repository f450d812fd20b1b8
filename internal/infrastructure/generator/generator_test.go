package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/coyote/internal/config"
)

func anthropicConfig(baseURL string) config.GeneratorConfig {
	return config.GeneratorConfig{
		Provider:  "anthropic",
		Model:     "claude-sonnet-4-20250514",
		BaseURL:   baseURL,
		MaxTokens: 1024,
		APIKey:    "sk-test",
	}
}

func TestAnthropicComplete(t *testing.T) {
	var gotRequest anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "### Root Cause\n"},
				{"type": "text", "text": "nil session entry"},
			},
		})
	}))
	defer server.Close()

	gen := NewAnthropic(anthropicConfig(server.URL), time.Minute)
	text, err := gen.Complete(context.Background(), "investigate this")
	require.NoError(t, err)

	assert.Equal(t, "### Root Cause\nnil session entry", text)
	assert.Equal(t, "claude-sonnet-4-20250514", gotRequest.Model)
	assert.Equal(t, 1024, gotRequest.MaxTokens)
	require.Len(t, gotRequest.Messages, 1)
	assert.Equal(t, "user", gotRequest.Messages[0].Role)
	assert.Equal(t, "investigate this", gotRequest.Messages[0].Content)
}

func TestAnthropicAPIErrorSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer server.Close()

	gen := NewAnthropic(anthropicConfig(server.URL), time.Minute)
	_, err := gen.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestAnthropicRejectsEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"content": []map[string]string{}})
	}))
	defer server.Close()

	gen := NewAnthropic(anthropicConfig(server.URL), time.Minute)
	_, err := gen.Complete(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "report body"}},
			},
		})
	}))
	defer server.Close()

	gen := NewOpenAI(config.GeneratorConfig{
		Provider: "openai",
		Model:    "gpt-4o",
		BaseURL:  server.URL,
		APIKey:   "sk-test",
	}, time.Minute)

	text, err := gen.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "report body", text)
}

func TestCompleteHonorsContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and can
		// observe the client disconnect; otherwise r.Context() is never
		// cancelled and server.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	gen := NewAnthropic(anthropicConfig(server.URL), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := gen.Complete(ctx, "prompt")
	assert.Error(t, err)
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.APIKey = "sk-test"

	gen, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, gen)

	cfg.Generator.Provider = "openai"
	gen, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, gen)
}

func TestNewRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	_, err := New(cfg)
	assert.Error(t, err)
}
