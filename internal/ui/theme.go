package ui

import (
	"fmt"
	"sort"

	"charm.land/lipgloss/v2"
	"github.com/trypromptly/promptly-cli/internal/ui/modals"
)

// Theme defines a complete color palette for the application.
type Theme struct {
	// Name is the display name of the theme
	Name string

	// Primary is the main accent color (focus, highlights, header)
	Primary string
	// Secondary is used for links, keys and the chat bubble
	Secondary string

	Bg          string // Main background
	Text        string // Primary text
	TextMuted   string // Secondary/muted text
	TextInverse string // Text on colored backgrounds

	Warning string
	Error   string
	Info    string
	Success string

	Border      string // Default borders
	BorderFocus string // Focused borders (defaults to Primary if empty)

	// CodeStyle is the chroma style used for JSON previews
	CodeStyle string
}

// GetBorderFocus returns the focused border color, defaulting to Primary
func (t Theme) GetBorderFocus() string {
	if t.BorderFocus != "" {
		return t.BorderFocus
	}
	return t.Primary
}

// ThemeName is a type for theme identifiers
type ThemeName string

// Available theme names
const (
	ThemePromptly ThemeName = "promptly"
	ThemeNord     ThemeName = "nord"
	ThemeDracula  ThemeName = "dracula"
	ThemeLight    ThemeName = "light"
)

// DefaultTheme is the default theme name
const DefaultTheme = ThemePromptly

// BuiltinThemes contains all built-in themes
var BuiltinThemes = map[ThemeName]Theme{
	ThemePromptly: {
		Name:        "Promptly",
		Primary:     "#6366F1",
		Secondary:   "#0EA5E9",
		Bg:          "#111827",
		Text:        "#F9FAFB",
		TextMuted:   "#9CA3AF",
		TextInverse: "#111827",
		Warning:     "#F59E0B",
		Error:       "#EF4444",
		Info:        "#0EA5E9",
		Success:     "#10B981",
		Border:      "#374151",
		CodeStyle:   "monokai",
	},
	ThemeNord: {
		Name:        "Nord",
		Primary:     "#88C0D0",
		Secondary:   "#81A1C1",
		Bg:          "#2E3440",
		Text:        "#ECEFF4",
		TextMuted:   "#D8DEE9",
		TextInverse: "#2E3440",
		Warning:     "#EBCB8B",
		Error:       "#BF616A",
		Info:        "#81A1C1",
		Success:     "#A3BE8C",
		Border:      "#4C566A",
		CodeStyle:   "nord",
	},
	ThemeDracula: {
		Name:        "Dracula",
		Primary:     "#BD93F9",
		Secondary:   "#8BE9FD",
		Bg:          "#282A36",
		Text:        "#F8F8F2",
		TextMuted:   "#6272A4",
		TextInverse: "#282A36",
		Warning:     "#FFB86C",
		Error:       "#FF5555",
		Info:        "#8BE9FD",
		Success:     "#50FA7B",
		Border:      "#44475A",
		CodeStyle:   "dracula",
	},
	ThemeLight: {
		Name:        "Light",
		Primary:     "#4F46E5",
		Secondary:   "#0284C7",
		Bg:          "#FFFFFF",
		Text:        "#111827",
		TextMuted:   "#6B7280",
		TextInverse: "#FFFFFF",
		Warning:     "#D97706",
		Error:       "#DC2626",
		Info:        "#0284C7",
		Success:     "#059669",
		Border:      "#D1D5DB",
		CodeStyle:   "github",
	},
}

// currentTheme holds the active theme name
var currentTheme = DefaultTheme

func init() {
	regenerateStyles(BuiltinThemes[DefaultTheme])
}

// ThemeNames returns all theme names in sorted order
func ThemeNames() []ThemeName {
	names := make([]ThemeName, 0, len(BuiltinThemes))
	for name := range BuiltinThemes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// GetTheme returns a theme by name, falling back to the default
func GetTheme(name ThemeName) Theme {
	if t, ok := BuiltinThemes[name]; ok {
		return t
	}
	return BuiltinThemes[DefaultTheme]
}

// CurrentTheme returns the active theme
func CurrentTheme() Theme {
	return GetTheme(currentTheme)
}

// CurrentThemeName returns the active theme name
func CurrentThemeName() ThemeName {
	return currentTheme
}

// SetTheme switches the palette and rebuilds every style
func SetTheme(name ThemeName) {
	if _, ok := BuiltinThemes[name]; !ok {
		name = DefaultTheme
	}
	currentTheme = name
	regenerateStyles(BuiltinThemes[name])
}

// SetThemeByName sets the theme from a config string. Empty selects the default.
func SetThemeByName(name string) error {
	if name == "" {
		SetTheme(DefaultTheme)
		return nil
	}
	if _, ok := BuiltinThemes[ThemeName(name)]; !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	SetTheme(ThemeName(name))
	return nil
}

// regenerateStyles rebuilds all package-level styles from the theme colors
func regenerateStyles(t Theme) {
	ColorPrimary = lipgloss.Color(t.Primary)
	ColorSecondary = lipgloss.Color(t.Secondary)
	ColorMuted = lipgloss.Color(t.TextMuted)
	ColorBorder = lipgloss.Color(t.Border)
	ColorBorderFocus = lipgloss.Color(t.GetBorderFocus())
	ColorBg = lipgloss.Color(t.Bg)
	ColorText = lipgloss.Color(t.Text)
	ColorTextMuted = lipgloss.Color(t.TextMuted)
	ColorTextInverse = lipgloss.Color(t.TextInverse)
	ColorWarning = lipgloss.Color(t.Warning)
	ColorInfo = lipgloss.Color(t.Info)
	ColorError = lipgloss.Color(t.Error)
	ColorSuccess = lipgloss.Color(t.Success)

	FooterStyle = FooterStyle.Foreground(ColorTextMuted)
	FooterKeyStyle = FooterKeyStyle.Foreground(ColorSecondary)
	FooterDescStyle = FooterDescStyle.Foreground(ColorTextMuted)

	PanelStyle = PanelStyle.BorderForeground(ColorBorder)
	PanelFocusedStyle = PanelFocusedStyle.BorderForeground(ColorBorderFocus)
	PanelTitleStyle = PanelTitleStyle.Foreground(ColorPrimary)

	NavItemStyle = NavItemStyle.Foreground(ColorText)
	NavSelectedStyle = NavSelectedStyle.Background(ColorPrimary).Foreground(ColorText)
	NavActiveStyle = NavActiveStyle.Foreground(ColorSecondary)
	NavExternalStyle = NavExternalStyle.Foreground(ColorTextMuted)

	CardStyle = CardStyle.BorderForeground(ColorBorder)
	CardSelectedStyle = CardSelectedStyle.BorderForeground(ColorBorderFocus)
	CardTitleStyle = CardTitleStyle.Foreground(ColorText)
	CardDescStyle = CardDescStyle.Foreground(ColorTextMuted)

	ModalStyle = ModalStyle.BorderForeground(ColorPrimary)
	ModalTitleStyle = ModalTitleStyle.Foreground(ColorPrimary)
	ModalHelpStyle = ModalHelpStyle.Foreground(ColorTextMuted)

	StatusLoadingStyle = StatusLoadingStyle.Foreground(ColorSecondary)
	StatusErrorStyle = StatusErrorStyle.Foreground(ColorError)
	StatusMutedStyle = StatusMutedStyle.Foreground(ColorTextMuted)

	ChatBubbleStyle = ChatBubbleStyle.Foreground(ColorTextInverse).Background(ColorSecondary)

	refreshModalStyles()
}

// refreshModalStyles pushes the current styles into the modals package
func refreshModalStyles() {
	modals.SetStyles(
		ModalTitleStyle, ModalHelpStyle, StatusErrorStyle,
		ColorPrimary, ColorSecondary, ColorText, ColorTextMuted, ColorTextInverse, ColorWarning,
		ModalInputWidth, ModalInputCharLimit, ModalWidth,
	)
}
