package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/trypromptly/promptly-cli/internal/router"
	"github.com/trypromptly/promptly-cli/internal/ui"
	"github.com/trypromptly/promptly-cli/internal/ui/modals"
)

// View renders the app
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.SetContent(m.RenderToString())
	return v
}

// RenderToString renders the current screen as a string
func (m *Model) RenderToString() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.modal.IsVisible() {
		return m.modal.View(m.width, m.height)
	}

	m.updateFooterContext()
	ctx := m.viewCtx

	content := lipgloss.NewStyle().
		Width(ctx.ContentWidth).
		Height(ctx.ContentHeight).
		MaxHeight(ctx.ContentHeight).
		Padding(0, 1).
		Render(m.renderPage())

	var body string
	if m.compact {
		body = lipgloss.JoinVertical(lipgloss.Left, m.navbar.View(), content)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), content)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.header.View(),
		body,
		m.chat.View(ctx.TerminalWidth),
		m.footer.View(),
	)
}

// updateSizes recomputes the layout for the terminal size and nav mode
func (m *Model) updateSizes() {
	if m.width == 0 || m.height == 0 {
		return
	}
	ctx := m.viewCtx
	ctx.UpdateTerminalSize(m.width, m.height, m.compact)

	m.header.SetWidth(ctx.TerminalWidth)
	m.footer.SetWidth(ctx.TerminalWidth)
	m.navbar.SetWidth(ctx.TerminalWidth)
	m.sidebar.SetSize(ctx.SidebarWidth, ctx.ContentHeight)
	m.cards.SetSize(ctx.ContentWidth-2, ctx.ContentHeight)
}

func (m *Model) updateFooterContext() {
	mode := ui.FooterContent
	switch {
	case m.modal.IsVisible():
		if _, ok := m.modal.State.(*modals.NameAppState); ok {
			mode = ui.FooterModal
		}
	case m.cards.DetailVisible():
		mode = ui.FooterDetail
	case m.focus == FocusNav:
		mode = ui.FooterNav
	}
	m.footer.SetContext(mode, m.compact)
}

// renderPage renders the routed page into the content area
func (m *Model) renderPage() string {
	ctx := m.viewCtx
	if m.loading.Active() && m.showsGallery() && len(m.gallery.Templates()) == 0 {
		return m.loading.View(ctx.ContentWidth-2, ctx.ContentHeight)
	}

	switch {
	case !m.matched:
		return m.renderMessage("Page not found", "Nothing lives at "+m.route.Path+".")
	case m.showsGallery():
		return m.cards.View()
	case m.route.Name == router.Login:
		return m.renderMessage("Session expired", "Run `promptly login` to sign in again.")
	case m.route.Name == router.AppDetail:
		return m.renderMessage(
			"App "+m.route.Param("uuid"),
			"Your app is ready. Open it in the visual editor:\n"+m.webURL(m.route.Location()),
		)
	default:
		return m.renderMessage(
			pageTitle(m.route),
			"This page opens in the browser:\n"+m.webURL(m.route.Location()),
		)
	}
}

func (m *Model) renderMessage(title, body string) string {
	lines := []string{
		ui.PanelTitleStyle.Render(title),
		"",
		ui.StatusMutedStyle.Render(strings.TrimSpace(body)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
