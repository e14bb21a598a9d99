package app

import (
	"errors"

	tea "charm.land/bubbletea/v2"
	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/gallery"
	"github.com/trypromptly/promptly-cli/internal/logger"
	"github.com/trypromptly/promptly-cli/internal/router"
)

// routeChangedMsg is sent when the router moves to a new location
type routeChangedMsg struct {
	Route router.Route
}

// loginRedirectMsg is sent before the router moves to the login page
type loginRedirectMsg struct{}

// templatesLoadedMsg carries the template list
type templatesLoadedMsg struct {
	Gallery   *gallery.Gallery
	Templates []api.Template
	Err       error
}

// templateOpenedMsg carries a template resolved for the naming dialog
type templateOpenedMsg struct {
	Gallery  *gallery.Gallery
	Slug     string
	Template api.Template
	AppName  string
	Err      error
}

// templateDetailMsg carries a template resolved for the detail pane
type templateDetailMsg struct {
	Gallery  *gallery.Gallery
	Template api.Template
	Err      error
}

// appCreatedMsg is sent when app creation finishes
type appCreatedMsg struct {
	Gallery  *gallery.Gallery
	Name     string
	Location string
	Err      error
}

// profileFlagsMsg carries the signed-in user's flags
type profileFlagsMsg struct {
	Flags api.ProfileFlags
	Err   error
}

// listenForEvents waits for the next router event
func (m *Model) listenForEvents() tea.Cmd {
	ch := m.events
	done := m.ctx.Done()
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

func (m *Model) fetchFlags() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		flags, err := backend.GetProfileFlags(ctx)
		return profileFlagsMsg{Flags: flags, Err: err}
	}
}

func (m *Model) loadTemplates(reload bool) tea.Cmd {
	ctx, g := m.ctx, m.gallery
	return func() tea.Msg {
		var templates []api.Template
		var err error
		if reload {
			templates, err = g.Reload(ctx)
		} else {
			templates, err = g.Load(ctx)
		}
		return templatesLoadedMsg{Gallery: g, Templates: templates, Err: err}
	}
}

func (m *Model) openTemplate(slug string) tea.Cmd {
	ctx, g := m.ctx, m.gallery
	return func() tea.Msg {
		tmpl, err := g.Open(ctx, slug)
		return templateOpenedMsg{Gallery: g, Slug: slug, Template: tmpl, AppName: g.AppName(), Err: err}
	}
}

func (m *Model) loadDetail(slug string) tea.Cmd {
	ctx, g := m.ctx, m.gallery
	return func() tea.Msg {
		tmpl, err := g.Detail(ctx, slug)
		return templateDetailMsg{Gallery: g, Template: tmpl, Err: err}
	}
}

func (m *Model) createApp(name string) tea.Cmd {
	ctx, g := m.ctx, m.gallery
	return func() tea.Msg {
		location, err := g.Create(ctx, name)
		return appCreatedMsg{Gallery: g, Name: name, Location: location, Err: err}
	}
}

// stale reports whether a response belongs to a gallery that was replaced
// or detached since the command started
func (m *Model) stale(g *gallery.Gallery, err error) bool {
	if g != m.gallery || errors.Is(err, gallery.ErrDetached) {
		logger.WithComponent("app").Debug("dropping stale gallery response")
		return true
	}
	return false
}
