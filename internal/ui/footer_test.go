package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
)

func TestNewFooter(t *testing.T) {
	footer := NewFooter()

	if len(footer.bindings) == 0 {
		t.Error("Expected default bindings to be set")
	}
	if footer.flashMessage != nil {
		t.Error("Expected no flash message initially")
	}
}

func TestFooter_SetFlash(t *testing.T) {
	footer := NewFooter()
	footer.SetFlash("Test error message", FlashError)

	if footer.flashMessage == nil {
		t.Fatal("Expected flash message to be set")
	}
	if footer.flashMessage.Text != "Test error message" {
		t.Errorf("Expected text 'Test error message', got %q", footer.flashMessage.Text)
	}
	if footer.flashMessage.Duration != DefaultFlashDuration {
		t.Errorf("Expected duration %v, got %v", DefaultFlashDuration, footer.flashMessage.Duration)
	}
}

func TestFooter_SetFlashWithDuration(t *testing.T) {
	footer := NewFooter()
	footer.SetFlashWithDuration("Custom duration", FlashInfo, 10*time.Second)

	if footer.flashMessage.Duration != 10*time.Second {
		t.Errorf("Expected duration 10s, got %v", footer.flashMessage.Duration)
	}
}

func TestFooter_ClearFlash(t *testing.T) {
	footer := NewFooter()
	if footer.HasFlash() {
		t.Error("Expected HasFlash() to return false initially")
	}

	footer.SetFlash("Test message", FlashInfo)
	if !footer.HasFlash() {
		t.Error("Expected HasFlash() to return true")
	}

	footer.ClearFlash()
	if footer.HasFlash() {
		t.Error("Expected HasFlash() to return false after ClearFlash()")
	}
}

func TestFlashMessage_IsExpired(t *testing.T) {
	fresh := &FlashMessage{CreatedAt: time.Now(), Duration: 5 * time.Second}
	if fresh.IsExpired() {
		t.Error("New message should not be expired")
	}

	old := &FlashMessage{CreatedAt: time.Now().Add(-10 * time.Second), Duration: 5 * time.Second}
	if !old.IsExpired() {
		t.Error("Old message should be expired")
	}
}

func TestFooter_ClearIfExpired(t *testing.T) {
	footer := NewFooter()
	footer.SetFlash("Not expired", FlashInfo)

	if footer.ClearIfExpired() {
		t.Error("Should not clear non-expired message")
	}

	footer.flashMessage.CreatedAt = time.Now().Add(-10 * time.Second)
	if !footer.ClearIfExpired() {
		t.Error("Should clear expired message")
	}
	if footer.HasFlash() {
		t.Error("Flash should be cleared")
	}
}

func TestFooter_FlashReplacesBindings(t *testing.T) {
	footer := NewFooter()
	footer.SetWidth(100)

	if !strings.Contains(ansi.Strip(footer.View()), "use template") {
		t.Error("Expected default bindings without a flash")
	}

	footer.SetFlash("Server unreachable", FlashError)
	view := ansi.Strip(footer.View())
	if !strings.Contains(view, "Server unreachable") {
		t.Error("Flash message should be visible in view")
	}
	if strings.Contains(view, "use template") {
		t.Error("Bindings should be hidden while a flash is showing")
	}
}

func TestFooter_FlashIcons(t *testing.T) {
	tests := []struct {
		name string
		typ  FlashType
		icon string
	}{
		{"Error", FlashError, "✕"},
		{"Warning", FlashWarning, "⚠"},
		{"Info", FlashInfo, "ℹ"},
		{"Success", FlashSuccess, "✓"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			footer := NewFooter()
			footer.SetWidth(80)
			footer.SetFlash("Test message", tt.typ)
			if !strings.Contains(footer.View(), tt.icon) {
				t.Errorf("Expected %s flash to contain icon %q", tt.name, tt.icon)
			}
		})
	}
}

func TestFooter_ModeBindings(t *testing.T) {
	tests := []struct {
		mode    FooterMode
		compact bool
		want    string
		notWant string
	}{
		{FooterContent, false, "reload", "cancel"},
		{FooterModal, false, "cancel", "reload"},
		{FooterDetail, false, "scroll", "reload"},
		{FooterNav, false, "↑/↓", "←/→"},
		{FooterNav, true, "←/→", "↑/↓"},
	}
	for _, tt := range tests {
		footer := NewFooter()
		footer.SetWidth(120)
		footer.SetContext(tt.mode, tt.compact)
		view := ansi.Strip(footer.View())
		if !strings.Contains(view, tt.want) {
			t.Errorf("mode %d compact=%v: missing %q in %q", tt.mode, tt.compact, tt.want, view)
		}
		if strings.Contains(view, tt.notWant) {
			t.Errorf("mode %d compact=%v: unexpected %q in %q", tt.mode, tt.compact, tt.notWant, view)
		}
	}
}

func TestFlashTick(t *testing.T) {
	if FlashTick() == nil {
		t.Error("FlashTick() should return a command")
	}
}
