package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLogger writes each CLI session to its own timestamped file under the
// log directory and keeps latest.log pointing at the newest one.
type FileLogger struct {
	logDir   string
	file     *os.File
	path     string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates logDir if needed, opens session-YYYYMMDD-HHMMSS.log
// and replaces the latest.log symlink.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(logDir, fmt.Sprintf("session-%s.log", stamp))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create session log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(path), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		file:     file,
		path:     path,
		logLevel: normalizeLogLevel(logLevel),
	}
	fl.write(fmt.Sprintf("=== flagwise session started %s ===\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// Path returns the session log file path.
func (fl *FileLogger) Path() string {
	return fl.path
}

func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }
func (fl *FileLogger) LogInfo(message string)  { fl.logWithLevel("INFO", message) }
func (fl *FileLogger) LogWarn(message string)  { fl.logWithLevel("WARN", message) }
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !allowed(fl.logLevel, strings.ToLower(level)) {
		return
	}
	fl.write(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message))
}

// Close flushes and closes the session file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.file != nil {
		if err := fl.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync session log: %w", err)
		}
		if err := fl.file.Close(); err != nil {
			return fmt.Errorf("failed to close session log: %w", err)
		}
		fl.file = nil
	}
	return nil
}

func (fl *FileLogger) write(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.file != nil {
		fl.file.WriteString(message)
		fl.file.Sync()
	}
}
