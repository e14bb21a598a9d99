package ui

import (
	"sync"

	"github.com/trypromptly/promptly-cli/internal/logger"
)

// ViewContext holds centralized layout calculations.
// All size calculations should go through this to avoid duplication.
type ViewContext struct {
	// Terminal dimensions
	TerminalWidth  int
	TerminalHeight int

	// Compact selects the top navigation bar instead of the sidebar
	Compact bool

	// Calculated dimensions
	HeaderHeight  int
	FooterHeight  int
	NavHeight     int
	ContentHeight int
	SidebarWidth  int
	ContentWidth  int

	mu sync.Mutex
}

// Global view context instance
var ctx *ViewContext
var ctxOnce sync.Once

// GetViewContext returns the singleton ViewContext instance
func GetViewContext() *ViewContext {
	ctxOnce.Do(func() {
		ctx = &ViewContext{
			HeaderHeight: HeaderHeight,
			FooterHeight: FooterHeight,
		}
		logger.WithComponent("ui").Debug("ViewContext initialized")
	})
	return ctx
}

// NewViewContext returns an unshared context. Used by tests and headless rendering.
func NewViewContext() *ViewContext {
	return &ViewContext{HeaderHeight: HeaderHeight, FooterHeight: FooterHeight}
}

// UpdateTerminalSize recalculates all dimensions for a terminal size and
// navigation mode. Call it from the event loop when either changes.
func (v *ViewContext) UpdateTerminalSize(width, height int, compact bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < MinTerminalHeight {
		height = MinTerminalHeight
	}

	v.TerminalWidth = width
	v.TerminalHeight = height
	v.Compact = compact
	v.HeaderHeight = HeaderHeight
	v.FooterHeight = FooterHeight

	// The chat bubble shares the footer row budget
	available := height - v.HeaderHeight - v.FooterHeight - ChatBubbleHeight
	if compact {
		v.NavHeight = NavBarHeight
		v.SidebarWidth = 0
		v.ContentWidth = width
		v.ContentHeight = available - v.NavHeight
	} else {
		v.NavHeight = 0
		v.SidebarWidth = SidebarWidth
		v.ContentWidth = width - SidebarWidth
		v.ContentHeight = available
	}

	logger.WithComponent("ui").Debug("Terminal size updated",
		"width", width,
		"height", height,
		"compact", compact,
		"contentWidth", v.ContentWidth,
		"contentHeight", v.ContentHeight,
	)
}

// InnerWidth returns the usable width inside a panel with borders
func (v *ViewContext) InnerWidth(panelWidth int) int {
	return panelWidth - BorderSize
}

// InnerHeight returns the usable height inside a panel with borders
func (v *ViewContext) InnerHeight(panelHeight int) int {
	return panelHeight - BorderSize
}
