package ui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// loadingFrames is the shimmering spinner shown while a page loads
var loadingFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// loadingHoldTimes defines how long each frame is held (in ticks).
// First and last frames hold longer.
var loadingHoldTimes = []int{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3}

// LoadingTickMsg advances the spinner animation
type LoadingTickMsg time.Time

// LoadingTick returns a command that sends a tick message after a delay
func LoadingTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return LoadingTickMsg(t)
	})
}

// Loading is the suspended-content placeholder
type Loading struct {
	active bool
	frame  int
	tick   int
	label  string
}

// NewLoading creates an idle spinner
func NewLoading() *Loading {
	return &Loading{label: "Loading..."}
}

// Start activates the spinner and returns the first tick. Returns nil if
// it was already running, so only one tick chain exists.
func (l *Loading) Start(label string) tea.Cmd {
	if label != "" {
		l.label = label
	}
	if l.active {
		return nil
	}
	l.active = true
	l.frame, l.tick = 0, 0
	return LoadingTick()
}

// Stop deactivates the spinner. The pending tick is ignored.
func (l *Loading) Stop() {
	l.active = false
}

// Active reports whether the spinner is showing
func (l *Loading) Active() bool {
	return l.active
}

// Frame returns the current frame glyph
func (l *Loading) Frame() string {
	return loadingFrames[l.frame]
}

// Update advances on LoadingTickMsg and schedules the next tick while active
func (l *Loading) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(LoadingTickMsg); !ok || !l.active {
		return nil
	}
	l.tick++
	if l.tick >= loadingHoldTimes[l.frame%len(loadingHoldTimes)] {
		l.tick = 0
		l.frame = (l.frame + 1) % len(loadingFrames)
	}
	return LoadingTick()
}

// View renders the spinner centered in width x height
func (l *Loading) View(width, height int) string {
	content := StatusLoadingStyle.Render(l.Frame() + " " + l.label)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
