package app

import (
	tea "charm.land/bubbletea/v2"
	"github.com/trypromptly/promptly-cli/internal/clipboard"
	"github.com/trypromptly/promptly-cli/internal/logger"
	"github.com/trypromptly/promptly-cli/internal/router"
	"github.com/trypromptly/promptly-cli/internal/ui/modals"
)

// Shortcut is a keyboard shortcut with its metadata and handler.
// ShortcutRegistry is the single source of truth for the help modal and for
// key dispatch.
type Shortcut struct {
	Key             string                              // The key binding (e.g., "d", "ctrl+r")
	DisplayKey      string                              // Display name in help; defaults to Key
	Description     string                              // Human-readable description
	Category        string                              // Section for help modal grouping
	RequiresGallery bool                                // Only on pages that show the template gallery
	Handler         func(m *Model) (tea.Model, tea.Cmd) // Action to perform
	Condition       func(m *Model) bool                 // Optional extra condition
}

// Categories for organizing shortcuts in the help modal
const (
	CategoryNavigation = "Navigation"
	CategoryTemplates  = "Templates"
	CategoryGeneral    = "General"
)

var categoryOrder = []string{
	CategoryNavigation,
	CategoryTemplates,
	CategoryGeneral,
}

// ShortcutRegistry lists every executable shortcut
var ShortcutRegistry = []Shortcut{
	{
		Key:         "tab",
		DisplayKey:  "Tab",
		Description: "Switch between navigation and content",
		Category:    CategoryNavigation,
		Handler:     shortcutToggleFocus,
	},
	{
		Key:             "d",
		Description:     "Show template details",
		Category:        CategoryTemplates,
		RequiresGallery: true,
		Handler:         shortcutDetail,
		Condition:       func(m *Model) bool { return m.focus == FocusContent },
	},
	{
		Key:             "r",
		Description:     "Reload templates",
		Category:        CategoryTemplates,
		RequiresGallery: true,
		Handler:         shortcutReload,
	},
	{
		Key:         "y",
		Description: "Copy page link",
		Category:    CategoryGeneral,
		Handler:     shortcutCopyPageLink,
	},
	{
		Key:         "c",
		Description: "Copy chat link",
		Category:    CategoryGeneral,
		Handler:     shortcutCopyChatLink,
		Condition:   func(m *Model) bool { return m.chat.EmbedURL() != "" },
	},
	{
		Key:         "q",
		Description: "Quit",
		Category:    CategoryGeneral,
		Handler:     shortcutQuit,
	},
}

// helpShortcut is defined separately to avoid an initialization cycle.
// shortcutHelp reads ShortcutRegistry, so it can't be in the registry itself.
var helpShortcut = Shortcut{
	Key:         "?",
	Description: "Show this help",
	Category:    CategoryGeneral,
}

// DisplayOnlyShortcuts are documented in the help modal but dispatched by
// the focused component.
var DisplayOnlyShortcuts = []Shortcut{
	{Key: "↑/↓/←/→", Description: "Move selection", Category: CategoryNavigation},
	{Key: "enter", Description: "Open page or use template", Category: CategoryNavigation},
	{Key: "esc", Description: "Close dialog or details", Category: CategoryNavigation},
}

func (m *Model) isShortcutApplicable(s Shortcut) bool {
	if s.RequiresGallery && !m.showsGallery() {
		return false
	}
	if s.Condition != nil && !s.Condition(m) {
		return false
	}
	return true
}

// ExecuteShortcut finds and runs the shortcut bound to key. The bool is
// false when no shortcut applies and the key should go to the focused
// component.
func (m *Model) ExecuteShortcut(key string) (tea.Model, tea.Cmd, bool) {
	if key == helpShortcut.Key {
		result, cmd := shortcutHelp(m)
		return result, cmd, true
	}
	for _, s := range ShortcutRegistry {
		if s.Key != key {
			continue
		}
		if !m.isShortcutApplicable(s) {
			logger.WithComponent("app").Debug("shortcut not applicable", "key", key)
			return m, nil, false
		}
		result, cmd := s.Handler(m)
		return result, cmd, true
	}
	return m, nil, false
}

func (m *Model) getApplicableHelpSections(registry []Shortcut, displayOnly []Shortcut) []modals.HelpSection {
	categories := make(map[string][]modals.HelpShortcut)
	add := func(s Shortcut) {
		displayKey := s.DisplayKey
		if displayKey == "" {
			displayKey = s.Key
		}
		categories[s.Category] = append(categories[s.Category], modals.HelpShortcut{
			Key:  displayKey,
			Desc: s.Description,
		})
	}
	for _, s := range displayOnly {
		add(s)
	}
	for _, s := range registry {
		if m.isShortcutApplicable(s) {
			add(s)
		}
	}

	var sections []modals.HelpSection
	for _, cat := range categoryOrder {
		if shortcuts := categories[cat]; len(shortcuts) > 0 {
			sections = append(sections, modals.HelpSection{Title: cat, Shortcuts: shortcuts})
		}
	}
	return sections
}

func shortcutToggleFocus(m *Model) (tea.Model, tea.Cmd) {
	m.toggleFocus()
	return m, nil
}

func shortcutDetail(m *Model) (tea.Model, tea.Cmd) {
	tmpl, ok := m.cards.SelectedTemplate()
	if !ok {
		return m, nil
	}
	return m, tea.Batch(m.loadDetail(tmpl.Slug), m.loading.Start("Loading "+tmpl.Name+"..."))
}

func shortcutReload(m *Model) (tea.Model, tea.Cmd) {
	m.cards.HideDetail()
	return m, tea.Batch(m.loadTemplates(true), m.loading.Start("Loading templates..."))
}

func shortcutCopyPageLink(m *Model) (tea.Model, tea.Cmd) {
	return m, m.copyToClipboard(m.webURL(m.route.Location()), "Page link copied")
}

func shortcutCopyChatLink(m *Model) (tea.Model, tea.Cmd) {
	return m, m.copyToClipboard(m.chat.EmbedURL(), "Chat link copied")
}

func shortcutHelp(m *Model) (tea.Model, tea.Cmd) {
	all := append(append([]Shortcut{}, ShortcutRegistry...), helpShortcut)
	m.modal.Show(modals.NewHelpState(m.getApplicableHelpSections(all, DisplayOnlyShortcuts)))
	return m, nil
}

func shortcutQuit(m *Model) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}

func (m *Model) copyToClipboard(text, flash string) tea.Cmd {
	if err := clipboard.WriteText(text); err != nil {
		logger.WithComponent("app").Warn("clipboard write failed", "error", err)
		return m.ShowFlashWarning("Clipboard unavailable: " + text)
	}
	return m.ShowFlashSuccess(flash)
}

// showsGallery reports whether the current page renders the template cards
func (m *Model) showsGallery() bool {
	return m.route.Name == router.Apps || m.route.Name == router.Template
}
