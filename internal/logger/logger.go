// Package logger provides the log sinks used across flagwise.
//
// Core packages accept a Sink and never print directly. Messages carry ids,
// counts and branch names; journal and chat text is never logged.
package logger

import "strings"

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Sink receives leveled log messages.
type Sink interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) LogDebug(string) {}
func (Nop) LogInfo(string)  {}
func (Nop) LogWarn(string)  {}
func (Nop) LogError(string) {}

// Multi fans a message out to several sinks.
type Multi []Sink

func (m Multi) LogDebug(message string) {
	for _, s := range m {
		s.LogDebug(message)
	}
}

func (m Multi) LogInfo(message string) {
	for _, s := range m {
		s.LogInfo(message)
	}
}

func (m Multi) LogWarn(message string) {
	for _, s := range m {
		s.LogWarn(message)
	}
}

func (m Multi) LogError(message string) {
	for _, s := range m {
		s.LogError(message)
	}
}

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	normalized := strings.ToLower(strings.TrimSpace(level))
	return normalizeLogLevel(normalized) == normalized
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func allowed(configured, message string) bool {
	return logLevelToInt(message) >= logLevelToInt(configured)
}
