package ui

import "charm.land/lipgloss/v2"

// Color palette, overwritten by SetTheme
var (
	ColorPrimary     = lipgloss.Color("#6366F1") // Indigo
	ColorSecondary   = lipgloss.Color("#0EA5E9") // Sky
	ColorMuted       = lipgloss.Color("#6B7280") // Gray
	ColorBorder      = lipgloss.Color("#374151") // Dark gray
	ColorBorderFocus = lipgloss.Color("#6366F1")
	ColorBg          = lipgloss.Color("#111827")
	ColorText        = lipgloss.Color("#F9FAFB")
	ColorTextMuted   = lipgloss.Color("#9CA3AF")
	ColorTextInverse = lipgloss.Color("#111827")
	ColorWarning     = lipgloss.Color("#F59E0B")
	ColorInfo        = lipgloss.Color("#0EA5E9")
	ColorError       = lipgloss.Color("#EF4444")
	ColorSuccess     = lipgloss.Color("#10B981")
)

// Footer styles
var (
	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	PanelFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderFocus)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)
)

// Navigation styles, shared by the sidebar and the compact nav bar
var (
	NavItemStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	NavSelectedStyle = lipgloss.NewStyle().
				Background(ColorPrimary).
				Foreground(ColorText).
				Bold(true).
				Padding(0, 1)

	// NavActiveStyle marks the entry of the current page
	NavActiveStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			Padding(0, 1)

	NavExternalStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Italic(true).
				Padding(0, 1)
)

// Gallery card styles
var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	CardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderFocus).
				Padding(0, 1)

	CardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	CardDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2).
			Width(ModalWidth)

	ModalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	ModalHelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			MarginTop(1)
)

// Status styles
var (
	StatusLoadingStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Italic(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusMutedStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Italic(true)
)

// Chat widget style
var (
	ChatBubbleStyle = lipgloss.NewStyle().
			Foreground(ColorTextInverse).
			Background(ColorSecondary).
			Bold(true).
			Padding(0, 1)
)
