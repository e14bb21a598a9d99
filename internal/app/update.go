package app

import (
	tea "charm.land/bubbletea/v2"
	"github.com/trypromptly/promptly-cli/internal/api"
	perrors "github.com/trypromptly/promptly-cli/internal/errors"
	"github.com/trypromptly/promptly-cli/internal/gallery"
	"github.com/trypromptly/promptly-cli/internal/keys"
	"github.com/trypromptly/promptly-cli/internal/logger"
	"github.com/trypromptly/promptly-cli/internal/notification"
	"github.com/trypromptly/promptly-cli/internal/router"
	"github.com/trypromptly/promptly-cli/internal/ui"
	"github.com/trypromptly/promptly-cli/internal/ui/modals"
)

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.tracker != nil {
			// Crossing the compact threshold re-enters applyProfile
			m.tracker.Resize(msg.Width)
		}
		m.updateSizes()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case routeChangedMsg:
		cmd := m.handleRouteChanged(msg.Route)
		return m, tea.Batch(m.listenForEvents(), cmd)

	case loginRedirectMsg:
		m.handleLoginRedirect()
		return m, m.listenForEvents()

	case profileFlagsMsg:
		m.store.SetFlags(m.mergeFlagOverrides(msg.Flags, msg.Err))
		return m, nil

	case templatesLoadedMsg:
		return m, m.handleTemplatesLoaded(msg)

	case templateOpenedMsg:
		return m, m.handleTemplateOpened(msg)

	case templateDetailMsg:
		return m, m.handleTemplateDetail(msg)

	case appCreatedMsg:
		return m, m.handleAppCreated(msg)

	case ui.FlashTickMsg:
		if m.footer.ClearIfExpired() || !m.footer.HasFlash() {
			return m, nil
		}
		return m, ui.FlashTick()

	case ui.LoadingTickMsg:
		return m, m.loading.Update(msg)
	}

	if m.modal.IsVisible() {
		_, cmd := m.modal.Update(msg)
		return m, cmd
	}
	if m.cards.DetailVisible() {
		_, cmd := m.cards.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == keys.CtrlC {
		return m, tea.Quit
	}

	if m.modal.IsVisible() {
		return m.handleModalKey(msg)
	}

	if m.cards.DetailVisible() {
		switch key {
		case keys.Escape:
			m.cards.HideDetail()
			return m, nil
		case keys.Enter:
			tmpl, ok := m.cards.SelectedTemplate()
			m.cards.HideDetail()
			if !ok {
				return m, nil
			}
			return m, m.openCard(tmpl.Slug)
		case "q":
			return m, tea.Quit
		}
		_, cmd := m.cards.Update(msg)
		return m, cmd
	}

	if result, cmd, handled := m.ExecuteShortcut(key); handled {
		return result, cmd
	}

	if m.focus == FocusNav {
		return m, m.handleNavKey(msg)
	}

	if m.showsGallery() {
		if key == keys.Enter {
			if tmpl, ok := m.cards.SelectedTemplate(); ok {
				return m, m.openCard(tmpl.Slug)
			}
			return m, nil
		}
		_, cmd := m.cards.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch state := m.modal.State.(type) {
	case *modals.NameAppState:
		switch key {
		case keys.Enter:
			if state.Creating {
				return m, nil
			}
			state.Creating = true
			m.modal.SetError("")
			return m, m.createApp(state.Name())
		case keys.Escape:
			if state.Creating {
				return m, nil
			}
			m.cancelNaming()
			return m, nil
		}

	case *modals.HelpState:
		if !state.IsFiltering() {
			switch key {
			case keys.Escape, "?", "q":
				m.modal.Hide()
				return m, nil
			case keys.Enter:
				selected := state.SelectedShortcut()
				m.modal.Hide()
				if selected == nil {
					return m, nil
				}
				result, cmd, _ := m.ExecuteShortcut(registryKey(selected.Key))
				return result, cmd
			}
		}
	}

	_, cmd := m.modal.Update(msg)
	return m, cmd
}

// openCard routes to a template's naming dialog. When that template is
// already the current route (a previous open failed), the router would not
// move, so the open is retried directly.
func (m *Model) openCard(slug string) tea.Cmd {
	if m.route.Name == router.Template && m.route.Param("slug") == slug {
		logger.WithComponent("app").Debug("retrying template open", "slug", slug)
		return tea.Batch(m.openTemplate(slug), m.loading.Start("Loading template..."))
	}
	m.nav.Navigate(m.gallery.Select(slug))
	return nil
}

// registryKey maps a help display key back to its binding
func registryKey(display string) string {
	for _, s := range ShortcutRegistry {
		if s.DisplayKey == display {
			return s.Key
		}
	}
	return display
}

// cancelNaming closes the naming dialog and returns to the gallery so the
// same template can be opened again.
func (m *Model) cancelNaming() {
	m.gallery.Cancel()
	m.modal.Hide()
	m.nav.Navigate(router.PathApps)
}

func (m *Model) handleNavKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == keys.Enter {
		item, ok := m.selectedNavItem()
		if !ok {
			return nil
		}
		if item.External {
			return m.copyToClipboard(item.Path, item.Label+" link copied")
		}
		m.nav.Navigate(item.Path)
		return nil
	}
	if m.compact {
		m.navbar.HandleKey(key)
		return nil
	}
	_, cmd := m.sidebar.Update(msg)
	return cmd
}

func (m *Model) selectedNavItem() (ui.MenuItem, bool) {
	if m.compact {
		return m.navbar.SelectedItem()
	}
	return m.sidebar.SelectedItem()
}

func (m *Model) toggleFocus() {
	if m.focus == FocusContent {
		m.focus = FocusNav
	} else {
		m.focus = FocusContent
	}
	m.applyFocus()
}

func (m *Model) applyFocus() {
	nav := m.focus == FocusNav
	m.sidebar.SetFocused(nav)
	m.navbar.SetFocused(nav)
	m.cards.SetFocused(!nav)
}

// handleRouteChanged reports the page view and shows the routed page
func (m *Model) handleRouteChanged(r router.Route) tea.Cmd {
	m.route = r
	m.matched = r.Name != ""
	if m.analytics != nil {
		m.analytics.PageView(r.Path, r.Query)
	}

	m.header.SetPage(pageTitle(r))
	m.sidebar.SetCurrentPath(r.Path)
	m.navbar.SetCurrentPath(r.Path)
	m.cards.HideDetail()
	if r.Name != router.Template && m.modal.IsVisible() {
		if _, naming := m.modal.State.(*modals.NameAppState); naming {
			m.modal.Hide()
		}
	}

	switch r.Name {
	case router.Apps:
		m.focus = FocusContent
		m.applyFocus()
		return tea.Batch(m.loadTemplates(false), m.loading.Start("Loading templates..."))
	case router.Template:
		m.focus = FocusContent
		m.applyFocus()
		slug := r.Param("slug")
		m.cards.Select(slug)
		return tea.Batch(m.openTemplate(slug), m.loading.Start("Loading template..."))
	default:
		m.loading.Stop()
		return nil
	}
}

// handleLoginRedirect drops everything tied to the expired session
func (m *Model) handleLoginRedirect() {
	logger.WithComponent("app").Info("session expired, clearing state")
	m.store.SetFlags(nil)
	m.header.SetUser("")
	m.gallery.Detach()
	m.gallery = gallery.New(m.backend)
	m.cards.SetTemplates(nil)
	m.cards.HideDetail()
	m.modal.Hide()
	m.loading.Stop()
}

func (m *Model) handleTemplatesLoaded(msg templatesLoadedMsg) tea.Cmd {
	if m.stale(msg.Gallery, msg.Err) {
		return nil
	}
	if m.route.Name == router.Apps {
		m.loading.Stop()
	}
	if msg.Err != nil {
		m.cards.SetError(perrors.UserMessage(msg.Err))
		return m.ShowFlashError("Could not load templates")
	}
	m.cards.SetTemplates(msg.Templates)
	if m.route.Name == router.Template {
		m.cards.Select(m.route.Param("slug"))
	}
	return nil
}

func (m *Model) handleTemplateOpened(msg templateOpenedMsg) tea.Cmd {
	if m.stale(msg.Gallery, msg.Err) {
		return nil
	}
	if m.route.Name != router.Template || m.route.Param("slug") != msg.Slug {
		return nil
	}
	m.loading.Stop()
	m.cards.SetTemplates(m.gallery.Templates())
	m.cards.Select(msg.Slug)
	if msg.Err != nil {
		cmd := m.ShowFlashError(perrors.UserMessage(msg.Err))
		if perrors.Is(msg.Err, perrors.KindNotFound) {
			m.nav.Navigate(router.PathApps)
		}
		return cmd
	}
	m.modal.Show(modals.NewNameAppState(msg.Slug, msg.Template.Name, msg.Template.Summary(), msg.AppName))
	return nil
}

func (m *Model) handleTemplateDetail(msg templateDetailMsg) tea.Cmd {
	if m.stale(msg.Gallery, msg.Err) {
		return nil
	}
	m.loading.Stop()
	if msg.Err != nil {
		return m.ShowFlashError(perrors.UserMessage(msg.Err))
	}
	if !m.showsGallery() {
		return nil
	}
	m.cards.SetTemplates(m.gallery.Templates())
	m.cards.Select(msg.Template.Slug)
	m.cards.ShowDetail(msg.Template)
	return nil
}

func (m *Model) handleAppCreated(msg appCreatedMsg) tea.Cmd {
	if m.stale(msg.Gallery, msg.Err) {
		return nil
	}
	if msg.Err != nil {
		if state, ok := m.modal.State.(*modals.NameAppState); ok {
			state.Creating = false
		}
		m.modal.SetError(perrors.UserMessage(msg.Err))
		return nil
	}

	m.modal.Hide()
	name := msg.Name
	if app := m.gallery.Created(); app != nil && app.Name != "" {
		name = app.Name
	}
	if m.config.GetNotificationsEnabled() {
		_ = notification.AppCreated(name, m.webURL(msg.Location))
	}
	cmd := m.ShowFlashSuccess("Created " + name)
	m.nav.Navigate(msg.Location)
	return cmd
}

// mergeFlagOverrides layers configured flag overrides on top of the server
// flags. A failed fetch leaves only the overrides.
func (m *Model) mergeFlagOverrides(flags api.ProfileFlags, err error) api.ProfileFlags {
	merged := api.ProfileFlags{}
	if err != nil {
		logger.WithComponent("app").Warn("failed to fetch profile flags", "error", err)
	} else {
		for k, v := range flags {
			merged[k] = v
		}
	}
	for k, v := range m.config.GetProfileFlagsOverride() {
		merged[k] = v
	}
	return merged
}

// pageTitle names a route for the header
func pageTitle(r router.Route) string {
	switch r.Name {
	case router.Apps:
		return "Apps"
	case router.Playground:
		return "Playground"
	case router.Hub:
		return "Discover"
	case router.Endpoints:
		return "Endpoints"
	case router.Data:
		return "Data"
	case router.History:
		return "History"
	case router.Settings:
		return "Settings"
	case router.Organization:
		return "Organization"
	case router.Template:
		return "New App"
	case router.AppDetail:
		return "App"
	case router.Login:
		return "Login"
	default:
		return "Not Found"
	}
}
