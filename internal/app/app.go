// Package app is the console shell: a Bubble Tea model that lays out the
// navigation, the current page and the template gallery, and reacts to
// route changes coming from the router.
package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/config"
	"github.com/trypromptly/promptly-cli/internal/gallery"
	"github.com/trypromptly/promptly-cli/internal/logger"
	"github.com/trypromptly/promptly-cli/internal/profile"
	"github.com/trypromptly/promptly-cli/internal/router"
	"github.com/trypromptly/promptly-cli/internal/ui"
)

// Focus represents which area receives keys
type Focus int

const (
	FocusContent Focus = iota
	FocusNav
)

// Backend is the server API the shell uses
type Backend interface {
	gallery.Source
	GetProfileFlags(ctx context.Context) (api.ProfileFlags, error)
}

// PageReporter records page views
type PageReporter interface {
	PageView(path, query string)
	Close(ctx context.Context) error
}

// Options wires the model to its collaborators
type Options struct {
	Config    *config.Config
	Backend   Backend
	Navigator *router.Navigator
	Profile   *profile.Store
	Analytics PageReporter
	Version   string
}

// eventBufferSize bounds router events queued between two Updates
const eventBufferSize = 32

// Model is the main Bubble Tea model
type Model struct {
	config    *config.Config
	version   string
	backend   Backend
	nav       *router.Navigator
	store     *profile.Store
	tracker   *profile.Tracker
	analytics PageReporter
	gallery   *gallery.Gallery

	header  *ui.Header
	footer  *ui.Footer
	sidebar *ui.Sidebar
	navbar  *ui.NavBar
	loading *ui.Loading
	chat    *ui.ChatBubble
	cards   *ui.GalleryView
	modal   *ui.Modal
	viewCtx *ui.ViewContext

	width   int
	height  int
	focus   Focus
	compact bool
	flags   api.ProfileFlags
	route   router.Route
	matched bool

	events      chan tea.Msg
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
}

// New creates the shell model. Router events from any goroutine (including
// the login redirect issued by the HTTP client) reach Update through a
// channel listener, so only Update mutates the model.
func New(opts Options) *Model {
	if theme := opts.Config.GetTheme(); theme != "" {
		if err := ui.SetThemeByName(theme); err != nil {
			logger.WithComponent("app").Warn("ignoring unknown theme", "theme", theme)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		config:    opts.Config,
		version:   opts.Version,
		backend:   opts.Backend,
		nav:       opts.Navigator,
		store:     opts.Profile,
		analytics: opts.Analytics,
		gallery:   gallery.New(opts.Backend),
		header:    ui.NewHeader(),
		footer:    ui.NewFooter(),
		sidebar:   ui.NewSidebar(),
		navbar:    ui.NewNavBar(),
		loading:   ui.NewLoading(),
		chat:      ui.NewChatBubble(opts.Config.GetBaseURL(), opts.Config.GetChatAppID()),
		cards:     ui.NewGalleryView(),
		modal:     ui.NewModal(),
		viewCtx:   ui.NewViewContext(),
		focus:     FocusContent,
		events:    make(chan tea.Msg, eventBufferSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	if session := opts.Config.GetSession(); session != nil {
		m.header.SetUser(session.Username)
	}

	m.tracker = profile.NewTracker(m.store, opts.Config.GetCompactWidth())
	if m.tracker == nil {
		logger.WithComponent("app").Warn("profile store already has a width tracker")
	}
	m.unsubscribe = m.store.Subscribe(m.applyProfile)
	m.applyProfile(m.store.Snapshot())

	m.nav.OnLoginRedirect(func() { m.post(loginRedirectMsg{}) })
	m.nav.OnChange(func(r router.Route) { m.post(routeChangedMsg{Route: r}) })
	m.post(routeChangedMsg{Route: m.nav.Current()})

	m.cards.SetFocused(true)
	return m
}

// post queues a router event for Update. Events raised after Close are
// dropped.
func (m *Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	case <-m.ctx.Done():
	}
}

// applyProfile rebuilds the navigation from the profile state. Listeners run
// on the caller's goroutine, which is always the Update loop.
func (m *Model) applyProfile(state profile.State) {
	m.compact = state.IsMobile
	m.flags = state.Flags
	items := ui.MenuItems(m.flags, m.compact, m.config.GetDocsURL())
	m.sidebar.SetItems(items)
	m.navbar.SetItems(items)
	m.sidebar.SetCurrentPath(m.route.Path)
	m.navbar.SetCurrentPath(m.route.Path)
	m.updateSizes()
}

// Init starts the route listener and fetches the profile flags
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenForEvents(),
		m.fetchFlags(),
	)
}

// Close tears the shell down: the resize listener is deregistered, late
// gallery responses are ignored and queued page views are flushed.
func (m *Model) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.cancel()
	if m.tracker != nil {
		m.tracker.Close()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.gallery.Detach()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.analytics.Close(ctx)
}

// Route returns the current route
func (m *Model) Route() router.Route {
	return m.route
}

// Compact reports whether the compact navigation is shown
func (m *Model) Compact() bool {
	return m.compact
}

// Gallery returns the template gallery state
func (m *Model) Gallery() *gallery.Gallery {
	return m.gallery
}

// webURL returns the browser URL of a console location
func (m *Model) webURL(location string) string {
	return m.config.GetBaseURL() + location
}
