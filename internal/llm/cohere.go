package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/harrison/flagwise/internal/config"
	"github.com/harrison/flagwise/internal/models"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 512

type cohereTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type cohereRequest struct {
	Message     string       `json:"message"`
	Model       string       `json:"model,omitempty"`
	Preamble    string       `json:"preamble,omitempty"`
	ChatHistory []cohereTurn `json:"chat_history,omitempty"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

// Older deployments answer with "message" instead of "text".
type cohereResponse struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

// CohereClient calls the Cohere v1 chat endpoint.
type CohereClient struct {
	config     config.LLMConfig
	httpClient *http.Client
}

// NewCohereClient creates a client whose HTTP timeout comes from cfg.Timeout.
func NewCohereClient(cfg config.LLMConfig) *CohereClient {
	return &CohereClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Complete sends one chat request. Request fields left zero fall back to
// the client configuration.
func (c *CohereClient) Complete(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		return "", ErrNoAPIKey
	}

	body := cohereRequest{
		Message:     req.Message,
		Model:       firstNonEmpty(req.Model, c.config.Model),
		Preamble:    req.Preamble,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = c.config.MaxTokens
	}
	for _, t := range req.History {
		body.ChatHistory = append(body.ChatHistory, cohereTurn{Role: cohereRole(t.Role), Message: t.Message})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode cohere request: %w", err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/v1/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build cohere request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("cohere request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out cohereResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode cohere response: %w", err)
	}
	text := strings.TrimSpace(firstNonEmpty(out.Text, out.Message))
	if text == "" {
		return "", fmt.Errorf("cohere returned an empty reply")
	}
	return text, nil
}

func cohereRole(r models.Role) string {
	if r == models.RoleAssistant {
		return "CHATBOT"
	}
	return "USER"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
