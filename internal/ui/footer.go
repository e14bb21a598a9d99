package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// FlashType is the severity of a flash message
type FlashType int

const (
	FlashError FlashType = iota
	FlashWarning
	FlashInfo
	FlashSuccess
)

// DefaultFlashDuration is how long a flash stays in the footer
const DefaultFlashDuration = 5 * time.Second

// FlashMessage is a transient status line that replaces the key bindings
type FlashMessage struct {
	Text      string
	Type      FlashType
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the message has outlived its duration
func (m *FlashMessage) IsExpired() bool {
	return time.Since(m.CreatedAt) >= m.Duration
}

// FlashTickMsg is sent periodically so expired flashes can be cleared
type FlashTickMsg time.Time

// FlashTick returns a command that fires a FlashTickMsg after one second
func FlashTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// FooterMode selects which bindings the footer offers
type FooterMode int

const (
	FooterContent FooterMode = iota // Content pane focused
	FooterNav                       // Navigation focused
	FooterModal                     // Naming dialog open
	FooterDetail                    // Template detail pane open
)

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width        int
	bindings     []KeyBinding
	mode         FooterMode
	compact      bool
	flashMessage *FlashMessage
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{
		bindings: []KeyBinding{
			{Key: "enter", Desc: "use template"},
			{Key: "↑/↓", Desc: "select"},
			{Key: "d", Desc: "details"},
			{Key: "tab", Desc: "navigation"},
			{Key: "r", Desc: "reload"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(mode FooterMode, compact bool) {
	f.mode = mode
	f.compact = compact
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetBindings replaces the content pane bindings
func (f *Footer) SetBindings(bindings []KeyBinding) {
	f.bindings = bindings
}

// SetFlash shows a message for DefaultFlashDuration
func (f *Footer) SetFlash(text string, flashType FlashType) {
	f.SetFlashWithDuration(text, flashType, DefaultFlashDuration)
}

// SetFlashWithDuration shows a message for a custom duration
func (f *Footer) SetFlashWithDuration(text string, flashType FlashType, d time.Duration) {
	f.flashMessage = &FlashMessage{
		Text:      text,
		Type:      flashType,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// ClearFlash removes any flash message
func (f *Footer) ClearFlash() {
	f.flashMessage = nil
}

// HasFlash reports whether a flash message is showing
func (f *Footer) HasFlash() bool {
	return f.flashMessage != nil
}

// ClearIfExpired clears an expired flash and reports whether it did
func (f *Footer) ClearIfExpired() bool {
	if f.flashMessage != nil && f.flashMessage.IsExpired() {
		f.flashMessage = nil
		return true
	}
	return false
}

func (f *Footer) currentBindings() []KeyBinding {
	switch f.mode {
	case FooterModal:
		return []KeyBinding{
			{Key: "enter", Desc: "create app"},
			{Key: "esc", Desc: "cancel"},
		}
	case FooterDetail:
		return []KeyBinding{
			{Key: "enter", Desc: "use template"},
			{Key: "pgup/dn", Desc: "scroll"},
			{Key: "esc", Desc: "back"},
		}
	case FooterNav:
		move := "↑/↓"
		if f.compact {
			move = "←/→"
		}
		return []KeyBinding{
			{Key: "enter", Desc: "go"},
			{Key: move, Desc: "move"},
			{Key: "tab", Desc: "content"},
			{Key: "q", Desc: "quit"},
		}
	default:
		return f.bindings
	}
}

// View renders the footer
func (f *Footer) View() string {
	if f.flashMessage != nil {
		return f.renderFlash()
	}

	var parts []string
	for _, b := range f.currentBindings() {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}
	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")
	return FooterStyle.Width(f.width).Render(content)
}

func (f *Footer) renderFlash() string {
	var icon string
	var color = ColorInfo
	switch f.flashMessage.Type {
	case FlashError:
		icon, color = "✕", ColorError
	case FlashWarning:
		icon, color = "⚠", ColorWarning
	case FlashInfo:
		icon, color = "ℹ", ColorInfo
	case FlashSuccess:
		icon, color = "✓", ColorSuccess
	}

	text := icon + " " + f.flashMessage.Text
	if f.width > 4 {
		text = ansi.Truncate(text, f.width-2, "…")
	}
	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	return FooterStyle.Width(f.width).Render(style.Render(text))
}
