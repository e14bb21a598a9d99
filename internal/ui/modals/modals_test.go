package modals

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

func init() {
	SetStyles(
		lipgloss.NewStyle(), lipgloss.NewStyle(), lipgloss.NewStyle(),
		lipgloss.Color("#6366F1"), lipgloss.Color("#0EA5E9"), lipgloss.Color("#F9FAFB"),
		lipgloss.Color("#9CA3AF"), lipgloss.Color("#111827"), lipgloss.Color("#F59E0B"),
		50, 120, 60,
	)
}

func TestNameAppState(t *testing.T) {
	s := NewNameAppState("chatbot", "Chatbot", "Answer questions", "  My bot ")

	if s.Name() != "My bot" {
		t.Errorf("Name() = %q, want trimmed", s.Name())
	}
	if s.Title() != "Create app from Chatbot" {
		t.Errorf("Title() = %q", s.Title())
	}
	view := ansi.Strip(s.Render())
	if !strings.Contains(view, "Answer questions") || !strings.Contains(view, "App name") {
		t.Errorf("Render() = %q", view)
	}
}

func TestNameAppState_EnterAndEscapeAreNotConsumed(t *testing.T) {
	s := NewNameAppState("chatbot", "Chatbot", "", "Chatbot")
	for _, msg := range []tea.KeyPressMsg{{Code: tea.KeyEnter}, {Code: tea.KeyEscape}} {
		next, cmd := s.Update(msg)
		if cmd != nil {
			t.Errorf("%s should be left to the app", msg.String())
		}
		if next.(*NameAppState).Name() != "Chatbot" {
			t.Errorf("%s changed the name", msg.String())
		}
	}
}

func TestNameAppState_CreatingIgnoresInput(t *testing.T) {
	s := NewNameAppState("chatbot", "Chatbot", "", "Chatbot")
	s.Creating = true
	s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})

	if s.Name() != "Chatbot" {
		t.Errorf("Name() = %q while creating", s.Name())
	}
	if s.Help() != "Creating app..." {
		t.Errorf("Help() = %q", s.Help())
	}
}

func TestHelpState(t *testing.T) {
	s := NewHelpState([]HelpSection{
		{Title: "Navigation", Shortcuts: []HelpShortcut{{Key: "tab", Desc: "switch focus"}}},
		{Title: "Gallery", Shortcuts: []HelpShortcut{{Key: "enter", Desc: "use template"}}},
	})

	sc := s.SelectedShortcut()
	if sc == nil || sc.Key != "tab" {
		t.Fatalf("SelectedShortcut() = %+v, want first shortcut", sc)
	}
	if s.IsFiltering() {
		t.Error("should not start filtering")
	}
	if !strings.Contains(ansi.Strip(s.Render()), "Keyboard Shortcuts") {
		t.Error("Render() should include the title")
	}
}
