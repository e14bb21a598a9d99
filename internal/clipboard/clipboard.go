// Package clipboard copies text (app and chat links) to the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/trypromptly/promptly-cli/internal/logger"
)

var (
	mu          sync.Mutex
	initialized bool

	// initFn and writeFn are swapped out by tests
	initFn  = clipboard.Init
	writeFn = func(text string) { clipboard.Write(clipboard.FmtText, []byte(text)) }
)

// Init initializes the clipboard. Safe to call multiple times.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked()
}

func initLocked() error {
	if initialized {
		return nil
	}
	if err := initFn(); err != nil {
		logger.WithComponent("clipboard").Warn("failed to initialize clipboard", "error", err)
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	initialized = true
	return nil
}

// WriteText puts text on the clipboard, initializing it on first use.
func WriteText(text string) error {
	if text == "" {
		return fmt.Errorf("nothing to copy")
	}
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return err
	}
	writeFn(text)
	logger.WithComponent("clipboard").Debug("copied text", "length", len(text))
	return nil
}
