// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"github.com/gen2brain/beeep"
	"github.com/trypromptly/promptly-cli/internal/logger"
)

// notifier is the function that sends notifications, swappable for tests
var notifier = beeep.Notify

// SetNotifier replaces the notification function (for testing).
func SetNotifier(fn func(title, message string, icon any) error) {
	notifier = fn
}

// ResetNotifier restores the beeep notifier.
func ResetNotifier() {
	notifier = beeep.Notify
}

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	log := logger.WithComponent("notification")
	log.Debug("sending notification", "title", title)
	// Empty icon lets beeep use the platform default
	err := notifier(title, message, "")
	if err != nil {
		log.Warn("failed to send notification", "error", err)
	}
	return err
}

// AppCreated announces an app created from a template.
func AppCreated(appName, location string) error {
	return Send("Promptly", appName+" is ready at "+location)
}
