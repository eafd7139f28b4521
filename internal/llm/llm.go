// Package llm talks to external language-model chat APIs. Two backends are
// supported: Cohere's v1 chat endpoint and any OpenAI-compatible endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/harrison/flagwise/internal/config"
	"github.com/harrison/flagwise/internal/models"
)

// ErrNoAPIKey is returned when a request carries no API key.
var ErrNoAPIKey = errors.New("no API key configured")

// StatusError is a non-2xx reply from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm request failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err is a 401 from the provider.
func IsUnauthorized(err error) bool {
	return statusIs(err, http.StatusUnauthorized)
}

// IsRateLimited reports whether err is a 429 from the provider.
func IsRateLimited(err error) bool {
	return statusIs(err, http.StatusTooManyRequests)
}

func statusIs(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Turn is one prior transcript message.
type Turn struct {
	Role    models.Role
	Message string
}

// Request is a single chat completion.
type Request struct {
	APIKey      string
	Model       string
	Message     string
	Preamble    string
	History     []Turn
	Temperature float64
	MaxTokens   int
}

// Completer returns the model's reply text for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds the client configured by cfg.Provider, capped at
// cfg.RequestsPerMinute.
func New(cfg config.LLMConfig) (Completer, error) {
	var c Completer
	switch cfg.Provider {
	case config.ProviderCohere:
		c = NewCohereClient(cfg)
	case config.ProviderOpenAI:
		c = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	return Limited(c, cfg.RequestsPerMinute), nil
}
