package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/flagwise/internal/config"
	"github.com/harrison/flagwise/internal/models"
)

func testConfig(provider, baseURL string) config.LLMConfig {
	cfg := config.DefaultConfig().LLM
	cfg.Provider = provider
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	return cfg
}

func sampleRequest() Request {
	return Request{
		APIKey:      "key-123",
		Message:     "he reads my texts",
		Preamble:    "You are a supportive listener.",
		Temperature: 0.5,
		History: []Turn{
			{Role: models.RoleUser, Message: "hi"},
			{Role: models.RoleAssistant, Message: "hello, what's on your mind?"},
		},
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig(config.ProviderCohere, "http://x")
	c, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &limitedCompleter{}, c)

	cfg.RequestsPerMinute = 0
	c, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &CohereClient{}, c)

	cfg = testConfig(config.ProviderOpenAI, "http://x")
	cfg.RequestsPerMinute = 0
	c, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = New(testConfig("carrier-pigeon", "http://x"))
	assert.Error(t, err)
}

func TestCohere_Complete(t *testing.T) {
	var got cohereRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  That sounds hard.  "}`))
	}))
	defer server.Close()

	client := NewCohereClient(testConfig(config.ProviderCohere, server.URL+"/"))
	text, err := client.Complete(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "That sounds hard.", text)
	assert.Equal(t, "he reads my texts", got.Message)
	assert.Equal(t, "command-r", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	assert.Equal(t, 0.5, got.Temperature)
	require.Len(t, got.ChatHistory, 2)
	assert.Equal(t, "USER", got.ChatHistory[0].Role)
	assert.Equal(t, "CHATBOT", got.ChatHistory[1].Role)
}

func TestCohere_MessageFieldFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"legacy reply"}`))
	}))
	defer server.Close()

	text, err := NewCohereClient(testConfig(config.ProviderCohere, server.URL)).Complete(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "legacy reply", text)
}

func TestCohere_StatusErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		unauthorized bool
		rateLimited  bool
	}{
		{"401 invalid key", http.StatusUnauthorized, true, false},
		{"429 quota", http.StatusTooManyRequests, false, true},
		{"500 server", http.StatusInternalServerError, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			}))
			defer server.Close()

			_, err := NewCohereClient(testConfig(config.ProviderCohere, server.URL)).Complete(context.Background(), sampleRequest())
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Contains(t, se.Body, "nope")
			assert.Equal(t, tt.unauthorized, IsUnauthorized(err))
			assert.Equal(t, tt.rateLimited, IsRateLimited(err))
		})
	}
}

func TestCohere_EmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"   "}`))
	}))
	defer server.Close()

	_, err := NewCohereClient(testConfig(config.ProviderCohere, server.URL)).Complete(context.Background(), sampleRequest())
	assert.Error(t, err)
}

func TestCohere_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewCohereClient(testConfig(config.ProviderCohere, server.URL)).Complete(ctx, sampleRequest())
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
}

func TestMissingAPIKey(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	req := sampleRequest()
	req.APIKey = ""

	_, err := NewCohereClient(testConfig(config.ProviderCohere, server.URL)).Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoAPIKey)
	_, err = NewOpenAIClient(testConfig(config.ProviderOpenAI, server.URL)).Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.Equal(t, 0, calls)
}

func TestOpenAI_Complete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"I hear you."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	cfg := testConfig(config.ProviderOpenAI, server.URL)
	cfg.Model = "gpt-4o-mini"
	text, err := NewOpenAIClient(cfg).Complete(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "I hear you.", text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "he reads my texts", got.Messages[3].Content)
}

func TestOpenAI_StatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAIClient(testConfig(config.ProviderOpenAI, server.URL)).Complete(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.False(t, IsUnauthorized(err))
}

func TestOpenAI_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	_, err := NewOpenAIClient(testConfig(config.ProviderOpenAI, server.URL)).Complete(context.Background(), sampleRequest())
	assert.Error(t, err)
}
