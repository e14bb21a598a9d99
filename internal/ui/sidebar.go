package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/trypromptly/promptly-cli/internal/keys"
)

// Sidebar is the expanded, persistent left navigation
type Sidebar struct {
	items       []MenuItem
	selectedIdx int
	currentPath string
	width       int
	height      int
	focused     bool
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	return &Sidebar{}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the sidebar width
func (s *Sidebar) Width() int {
	return s.width
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetItems replaces the menu, keeping the selection in range
func (s *Sidebar) SetItems(items []MenuItem) {
	s.items = items
	if s.selectedIdx >= len(items) {
		s.selectedIdx = max(len(items)-1, 0)
	}
}

// Items returns the menu entries
func (s *Sidebar) Items() []MenuItem {
	return s.items
}

// SetCurrentPath marks the entry of the current page and selects it
func (s *Sidebar) SetCurrentPath(path string) {
	s.currentPath = path
	if i := activeIndex(s.items, path); i >= 0 {
		s.selectedIdx = i
	}
}

// SelectedItem returns the highlighted entry
func (s *Sidebar) SelectedItem() (MenuItem, bool) {
	if s.selectedIdx < 0 || s.selectedIdx >= len(s.items) {
		return MenuItem{}, false
	}
	return s.items[s.selectedIdx], true
}

// Update handles selection keys while focused
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !s.focused {
		return s, nil
	}
	switch keyMsg.String() {
	case keys.Up, "k", keys.CtrlP:
		if s.selectedIdx > 0 {
			s.selectedIdx--
		}
	case keys.Down, "j", keys.CtrlN:
		if s.selectedIdx < len(s.items)-1 {
			s.selectedIdx++
		}
	case keys.Home:
		s.selectedIdx = 0
	case keys.End:
		s.selectedIdx = max(len(s.items)-1, 0)
	}
	return s, nil
}

// View renders the sidebar
func (s *Sidebar) View() string {
	ctx := GetViewContext()

	style := PanelStyle
	if s.focused {
		style = PanelFocusedStyle
	}
	innerWidth := ctx.InnerWidth(s.width)
	innerHeight := ctx.InnerHeight(s.height)

	lines := make([]string, 0, len(s.items))
	for i, item := range s.items {
		label := ansi.Truncate(item.Label, max(innerWidth-4, 1), "…")
		var itemStyle lipgloss.Style
		switch {
		case i == s.selectedIdx && s.focused:
			itemStyle = NavSelectedStyle
			label = "> " + label
		case item.Path == s.currentPath:
			itemStyle = NavActiveStyle
			label = "• " + label
		default:
			itemStyle = NavItemStyle
			label = "  " + label
		}
		lines = append(lines, itemStyle.Width(innerWidth).Render(label))
	}
	if len(lines) > innerHeight && innerHeight > 0 {
		lines = lines[:innerHeight]
	}

	return style.
		Width(s.width).
		Height(s.height).
		Render(strings.Join(lines, "\n"))
}
