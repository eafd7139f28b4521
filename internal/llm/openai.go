package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/harrison/flagwise/internal/config"
	"github.com/harrison/flagwise/internal/models"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	config     config.LLMConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a client. An empty BaseURL uses the go-openai default.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	return &OpenAIClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Complete maps the request onto a system message, the history and the
// current user message.
func (o *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		return "", ErrNoAPIKey
	}

	cfg := openai.DefaultConfig(req.APIKey)
	if o.config.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.config.BaseURL, "/")
	}
	cfg.HTTPClient = o.httpClient
	client := openai.NewClientWithConfig(cfg)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.Preamble != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.Preamble})
	}
	for _, t := range req.History {
		role := openai.ChatMessageRoleUser
		if t.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Message})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Message})

	chatReq := openai.ChatCompletionRequest{
		Model:       firstNonEmpty(req.Model, o.config.Model),
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}
	if chatReq.MaxTokens == 0 {
		chatReq.MaxTokens = o.config.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai returned an empty reply")
	}
	return text, nil
}

// classifyOpenAIError turns go-openai HTTP failures into *StatusError so the
// caller can branch on status the same way for both providers.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return fmt.Errorf("openai request: %w", err)
}
