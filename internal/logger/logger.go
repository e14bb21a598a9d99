// Package logger provides file-backed structured logging for promptly.
//
// The TUI owns stdout, so everything is written to a log file
// (~/.promptly/logs/promptly.log by default). Callers should prefer
// WithComponent for structured output; Log remains for printf-style lines.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	file    *os.File
	level   = new(slog.LevelVar)
	current *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	current = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LogDir returns the directory log files are written to.
func LogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".promptly", "logs"), nil
}

// DefaultLogPath returns the path of the main log file.
func DefaultLogPath() (string, error) {
	dir, err := LogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "promptly.log"), nil
}

// Init opens path for appending and routes all loggers to it.
// Calling Init again closes the previous file.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if file != nil {
		file.Close()
	}
	file = f
	current = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

// SetDebug toggles debug level output.
func SetDebug(debug bool) {
	if debug {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// Get returns the process logger.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// WithComponent returns a logger tagged with component=name.
func WithComponent(name string) *slog.Logger {
	return Get().With("component", name)
}

// Log writes a printf-style debug line.
func Log(format string, args ...any) {
	Get().Debug(fmt.Sprintf(format, args...))
}

// Close flushes and closes the log file. Loggers obtained earlier keep
// working but write nowhere.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	current = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Reset restores the discard logger. Used by tests.
func Reset() {
	Close()
	SetDebug(false)
}

// ClearLogs removes every *.log file in the log directory and returns how many were removed.
func ClearLogs() (int, error) {
	dir, err := LogDir()
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
