package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/flagwise/internal/filelock"
)

// LLM providers.
const (
	ProviderCohere = "cohere"
	ProviderOpenAI = "openai"
)

// Storage timeout bounds; reads racing the store give up after StorageTimeout.
const (
	MinStorageTimeout = 1 * time.Second
	MaxStorageTimeout = 10 * time.Second
)

// LLMConfig configures the optional language-model backend used by the
// counselor when enhanced AI is switched on.
type LLMConfig struct {
	// Provider selects the client: "cohere" or "openai"
	Provider string

	// Model is passed through to the provider
	Model string

	// BaseURL overrides the provider endpoint (useful for proxies and tests)
	BaseURL string

	// Timeout bounds a single completion call
	Timeout time.Duration

	Temperature float64
	MaxTokens   int

	// HistoryTurns is how many trailing transcript turns are sent
	HistoryTurns int

	// RequestsPerMinute caps completion calls; 0 disables the cap
	RequestsPerMinute int
}

// CounselorConfig holds defaults for the chat counselor.
type CounselorConfig struct {
	// EnhancedAIDefault seeds the enhancedAI setting when it has never been set
	EnhancedAIDefault bool
}

// Config represents flagwise configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string

	// LogDir is where session logs go; relative paths resolve against the home dir
	LogDir string

	// DBPath is the SQLite database; relative paths resolve against the home dir
	DBPath string

	// StorageTimeout is how long a store read may take before the cached copy is used
	StorageTimeout time.Duration

	// Locale picks the response template catalog
	Locale string

	// Country is the fallback for the userCountry setting
	Country string

	LLM       LLMConfig
	Counselor CounselorConfig
}

// fileConfig is the on-disk shape. Durations are strings ("3s") and booleans
// are pointers so an explicit false can be told apart from an absent key.
type fileConfig struct {
	LogLevel       string `yaml:"log_level,omitempty"`
	LogDir         string `yaml:"log_dir,omitempty"`
	DBPath         string `yaml:"db_path,omitempty"`
	StorageTimeout string `yaml:"storage_timeout,omitempty"`
	Locale         string `yaml:"locale,omitempty"`
	Country        string `yaml:"country,omitempty"`
	LLM            struct {
		Provider          string   `yaml:"provider,omitempty"`
		Model             string   `yaml:"model,omitempty"`
		BaseURL           string   `yaml:"base_url,omitempty"`
		Timeout           string   `yaml:"timeout,omitempty"`
		Temperature       *float64 `yaml:"temperature,omitempty"`
		MaxTokens         int      `yaml:"max_tokens,omitempty"`
		HistoryTurns      int      `yaml:"history_turns,omitempty"`
		RequestsPerMinute *int     `yaml:"requests_per_minute,omitempty"`
	} `yaml:"llm"`
	Counselor struct {
		EnhancedAIDefault *bool `yaml:"enhanced_ai_default,omitempty"`
	} `yaml:"counselor"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogDir:         "logs",
		DBPath:         "flagwise.db",
		StorageTimeout: 3 * time.Second,
		Locale:         "en",
		Country:        "US",
		LLM: LLMConfig{
			Provider:          ProviderCohere,
			Model:             "command-r",
			BaseURL:           "https://api.cohere.ai",
			Timeout:           30 * time.Second,
			Temperature:       0.7,
			MaxTokens:         500,
			HistoryTurns:      10,
			RequestsPerMinute: 20,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// A missing file yields the defaults; a malformed one is an error.
// Values present in the file replace the defaults field by field.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogDir != "" {
		cfg.LogDir = fc.LogDir
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.StorageTimeout != "" {
		d, err := time.ParseDuration(fc.StorageTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid storage_timeout %q: %w", fc.StorageTimeout, err)
		}
		cfg.StorageTimeout = d
	}
	if fc.Locale != "" {
		cfg.Locale = fc.Locale
	}
	if fc.Country != "" {
		cfg.Country = fc.Country
	}

	if fc.LLM.Provider != "" {
		cfg.LLM.Provider = fc.LLM.Provider
	}
	if fc.LLM.Model != "" {
		cfg.LLM.Model = fc.LLM.Model
	}
	if fc.LLM.BaseURL != "" {
		cfg.LLM.BaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Timeout != "" {
		d, err := time.ParseDuration(fc.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid llm.timeout %q: %w", fc.LLM.Timeout, err)
		}
		cfg.LLM.Timeout = d
	}
	if fc.LLM.Temperature != nil {
		cfg.LLM.Temperature = *fc.LLM.Temperature
	}
	if fc.LLM.MaxTokens != 0 {
		cfg.LLM.MaxTokens = fc.LLM.MaxTokens
	}
	if fc.LLM.HistoryTurns != 0 {
		cfg.LLM.HistoryTurns = fc.LLM.HistoryTurns
	}
	if fc.LLM.RequestsPerMinute != nil {
		cfg.LLM.RequestsPerMinute = *fc.LLM.RequestsPerMinute
	}
	if fc.Counselor.EnhancedAIDefault != nil {
		cfg.Counselor.EnhancedAIDefault = *fc.Counselor.EnhancedAIDefault
	}

	return cfg, nil
}

// Save writes the configuration to path under a lock.
func (c *Config) Save(path string) error {
	var fc fileConfig
	fc.LogLevel = c.LogLevel
	fc.LogDir = c.LogDir
	fc.DBPath = c.DBPath
	fc.StorageTimeout = c.StorageTimeout.String()
	fc.Locale = c.Locale
	fc.Country = c.Country
	fc.LLM.Provider = c.LLM.Provider
	fc.LLM.Model = c.LLM.Model
	fc.LLM.BaseURL = c.LLM.BaseURL
	fc.LLM.Timeout = c.LLM.Timeout.String()
	temp := c.LLM.Temperature
	fc.LLM.Temperature = &temp
	fc.LLM.MaxTokens = c.LLM.MaxTokens
	fc.LLM.HistoryTurns = c.LLM.HistoryTurns
	rpm := c.LLM.RequestsPerMinute
	fc.LLM.RequestsPerMinute = &rpm
	enhanced := c.Counselor.EnhancedAIDefault
	fc.Counselor.EnhancedAIDefault = &enhanced

	data, err := yaml.Marshal(&fc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return filelock.LockAndWrite(path, data, 0600)
}

// Resolve returns a copy whose relative LogDir and DBPath are anchored at home.
func (c *Config) Resolve(home string) *Config {
	out := *c
	if !filepath.IsAbs(out.LogDir) {
		out.LogDir = filepath.Join(home, out.LogDir)
	}
	if out.DBPath != ":memory:" && !filepath.IsAbs(out.DBPath) {
		out.DBPath = filepath.Join(home, out.DBPath)
	}
	return &out
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}

	if c.StorageTimeout < MinStorageTimeout || c.StorageTimeout > MaxStorageTimeout {
		return fmt.Errorf("storage_timeout must be between %v and %v, got %v", MinStorageTimeout, MaxStorageTimeout, c.StorageTimeout)
	}

	if c.Locale == "" {
		return fmt.Errorf("locale cannot be empty")
	}
	if len(c.Country) != 2 {
		return fmt.Errorf("country must be a two-letter code, got %q", c.Country)
	}

	switch c.LLM.Provider {
	case ProviderCohere, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid llm.provider %q, must be one of: cohere, openai", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be > 0, got %v", c.LLM.Timeout)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be > 0, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.HistoryTurns < 0 {
		return fmt.Errorf("llm.history_turns must be >= 0, got %d", c.LLM.HistoryTurns)
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute must be >= 0, got %d", c.LLM.RequestsPerMinute)
	}

	return nil
}
