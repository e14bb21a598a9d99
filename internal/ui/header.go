package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

const headerTitle = " promptly"

// Header represents the top header bar
type Header struct {
	width int
	page  string
	user  string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetPage sets the page title shown on the right
func (h *Header) SetPage(page string) {
	h.page = page
}

// SetUser sets the logged in user shown after the page title
func (h *Header) SetUser(user string) {
	h.user = user
}

// View renders the header
func (h *Header) View() string {
	var right string
	if h.page != "" {
		right = h.page
	}
	if h.user != "" {
		if right != "" {
			right += " · "
		}
		right += h.user
	}
	if right != "" {
		right += " "
	}

	paddingLen := h.width - ansi.StringWidth(headerTitle) - ansi.StringWidth(right)
	if paddingLen < 0 {
		paddingLen = 0
	}
	content := headerTitle + strings.Repeat(" ", paddingLen) + right
	if h.width > 0 {
		content = ansi.Truncate(content, h.width, "")
	}
	return renderGradient(content)
}

// parseHexColor parses a hex color string (e.g., "#6366F1") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders content on a background fading from the primary
// color to the main background
func renderGradient(content string) string {
	if content == "" {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	endR, endG, endB := parseHexColor(theme.Bg)
	textColor := lipgloss.Color(theme.Text)

	runes := []rune(content)
	width := len(runes)
	titleLen := len([]rune(headerTitle))
	var result strings.Builder

	for i, r := range runes {
		t := float64(i) / float64(width)
		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		style := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))).
			Foreground(textColor).
			Bold(i < titleLen)
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
