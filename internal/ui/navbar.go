package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/trypromptly/promptly-cli/internal/keys"
)

// NavBar is the compact, single-row top navigation
type NavBar struct {
	items       []MenuItem
	selected    int
	currentPath string
	focused     bool
	width       int
}

// NewNavBar creates an empty nav bar
func NewNavBar() *NavBar {
	return &NavBar{}
}

// SetItems replaces the entries, keeping the selection in range
func (n *NavBar) SetItems(items []MenuItem) {
	n.items = items
	if n.selected >= len(items) {
		n.selected = max(len(items)-1, 0)
	}
}

// Items returns the current entries
func (n *NavBar) Items() []MenuItem {
	return n.items
}

// SetCurrentPath marks the entry of the current page and selects it
func (n *NavBar) SetCurrentPath(path string) {
	n.currentPath = path
	if i := activeIndex(n.items, path); i >= 0 {
		n.selected = i
	}
}

// SetFocused sets whether keys move the selection
func (n *NavBar) SetFocused(focused bool) {
	n.focused = focused
}

// SetWidth sets the bar width
func (n *NavBar) SetWidth(width int) {
	n.width = width
}

// SelectedItem returns the highlighted entry
func (n *NavBar) SelectedItem() (MenuItem, bool) {
	if n.selected < 0 || n.selected >= len(n.items) {
		return MenuItem{}, false
	}
	return n.items[n.selected], true
}

// HandleKey moves the selection. Returns true if the key was consumed.
func (n *NavBar) HandleKey(key string) bool {
	if len(n.items) == 0 {
		return false
	}
	switch key {
	case keys.Left, "h", keys.ShiftTab:
		n.selected = (n.selected - 1 + len(n.items)) % len(n.items)
	case keys.Right, "l":
		n.selected = (n.selected + 1) % len(n.items)
	case keys.Home:
		n.selected = 0
	case keys.End:
		n.selected = len(n.items) - 1
	default:
		return false
	}
	return true
}

// View renders the bar
func (n *NavBar) View() string {
	parts := make([]string, 0, len(n.items))
	for i, item := range n.items {
		label := item.Label
		if item.External {
			label += " ↗"
		}
		var style lipgloss.Style
		switch {
		case n.focused && i == n.selected:
			style = NavSelectedStyle
		case item.Path == n.currentPath && !item.External:
			style = NavActiveStyle
		case item.External:
			style = NavExternalStyle
		default:
			style = NavItemStyle
		}
		parts = append(parts, style.Render(label))
	}
	line := strings.Join(parts, "")
	if n.width > 0 {
		line = ansi.Truncate(line, n.width, "…")
	}
	return line
}
