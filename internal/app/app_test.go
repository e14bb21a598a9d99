package app

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/config"
	perrors "github.com/trypromptly/promptly-cli/internal/errors"
	"github.com/trypromptly/promptly-cli/internal/gallery"
	"github.com/trypromptly/promptly-cli/internal/profile"
	"github.com/trypromptly/promptly-cli/internal/router"
	"github.com/trypromptly/promptly-cli/internal/ui"
	"github.com/trypromptly/promptly-cli/internal/ui/modals"
)

type fakeBackend struct {
	mu        sync.Mutex
	list      []api.Template
	details   map[string]api.Template
	flags     api.ProfileFlags
	flagsErr  error
	drafts    []api.AppDraft
	createErr error
	// getErrs fail the next GetTemplate for a slug once
	getErrs map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		list: []api.Template{
			{Slug: "chatbot", Name: "Chatbot", Description: "Answer questions"},
			{Slug: "translator", Name: "Translator", Description: "Translate text"},
		},
		details: map[string]api.Template{
			"chatbot": {Slug: "chatbot", Name: "Chatbot", Description: "Answer questions", App: api.AppData{
				"type":       json.RawMessage(`{"id":3}`),
				"processors": json.RawMessage(`[{"api_backend":{"id":"X","name":"ChatGPT"},"config":{"model":"gpt-4"},"input":{"q":"{{q}}"}}]`),
			}},
		},
	}
}

func (f *fakeBackend) ListTemplates(ctx context.Context) ([]api.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Template(nil), f.list...), nil
}

func (f *fakeBackend) GetTemplate(ctx context.Context, slug string) (*api.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.getErrs[slug]; ok {
		delete(f.getErrs, slug)
		return nil, err
	}
	d, ok := f.details[slug]
	if !ok {
		return nil, perrors.TemplateNotFound(slug)
	}
	return &d, nil
}

func (f *fakeBackend) CreateApp(ctx context.Context, draft api.AppDraft) (*api.App, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.drafts = append(f.drafts, draft)
	return &api.App{UUID: "abc-123", Name: "My Bot"}, nil
}

func (f *fakeBackend) GetProfileFlags(ctx context.Context) (api.ProfileFlags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags, f.flagsErr
}

type fakeReporter struct {
	mu     sync.Mutex
	views  []string
	closed int
}

func (r *fakeReporter) PageView(path, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc := path
	if query != "" {
		loc += "?" + query
	}
	r.views = append(r.views, loc)
}

func (r *fakeReporter) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *fakeReporter) Views() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.views...)
}

type testEnv struct {
	model    *Model
	backend  *fakeBackend
	nav      *router.Navigator
	store    *profile.Store
	reporter *fakeReporter
	cfg      *config.Config
}

func newTestEnv(t *testing.T, start string) *testEnv {
	t.Helper()
	cfg := config.New()
	cfg.CompactWidth = 900
	env := &testEnv{
		backend:  newFakeBackend(),
		nav:      router.NewNavigator(start),
		store:    profile.NewStore(),
		reporter: &fakeReporter{},
		cfg:      cfg,
	}
	env.model = New(Options{
		Config:    cfg,
		Backend:   env.backend,
		Navigator: env.nav,
		Profile:   env.store,
		Analytics: env.reporter,
		Version:   "test",
	})
	t.Cleanup(func() { env.model.Close() })
	env.drain()
	return env
}

// drain delivers queued router events to Update. Commands returned by
// Update are not run; tests invoke the command factories they need.
func (e *testEnv) drain() {
	for {
		select {
		case msg := <-e.model.events:
			e.model.Update(msg)
		default:
			return
		}
	}
}

func (e *testEnv) resize(width, height int) {
	e.model.Update(tea.WindowSizeMsg{Width: width, Height: height})
}

func (e *testEnv) press(key string) tea.Cmd {
	var msg tea.KeyPressMsg
	switch key {
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		msg = tea.KeyPressMsg{Code: tea.KeyTab}
	case "right":
		msg = tea.KeyPressMsg{Code: tea.KeyRight}
	case "down":
		msg = tea.KeyPressMsg{Code: tea.KeyDown}
	default:
		r := []rune(key)[0]
		msg = tea.KeyPressMsg{Code: r, Text: key}
	}
	_, cmd := e.model.Update(msg)
	e.drain()
	return cmd
}

func (e *testEnv) loadTemplates() {
	e.model.Update(e.model.loadTemplates(false)())
}

func labels(items []ui.MenuItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func contains(items []string, want string) bool {
	for _, s := range items {
		if s == want {
			return true
		}
	}
	return false
}

func TestNew_ReportsInitialPageView(t *testing.T) {
	env := newTestEnv(t, "/settings?tab=keys")

	views := env.reporter.Views()
	if len(views) != 1 || views[0] != "/settings?tab=keys" {
		t.Fatalf("page views = %v, want [/settings?tab=keys]", views)
	}
	if env.model.Route().Name != router.Settings {
		t.Errorf("route = %q, want settings", env.model.Route().Name)
	}
}

func TestRouteChange_ReportsEveryPageView(t *testing.T) {
	env := newTestEnv(t, "/")

	env.nav.Navigate("/hub")
	env.nav.Navigate("/history?page=2")
	env.nav.Navigate("/history?page=2")
	env.drain()

	want := []string{"/", "/hub", "/history?page=2"}
	got := env.reporter.Views()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("page views = %v, want %v", got, want)
	}
}

func TestResize_SwitchesNavigationMode(t *testing.T) {
	env := newTestEnv(t, "/")

	env.resize(1200, 40)
	if env.model.Compact() {
		t.Fatal("expected expanded navigation at 1200 columns")
	}
	if contains(labels(env.model.sidebar.Items()), "Docs") {
		t.Error("expanded navigation should not offer Docs")
	}

	env.resize(899, 40)
	if !env.model.Compact() {
		t.Fatal("expected compact navigation below 900 columns")
	}
	if !contains(labels(env.model.navbar.Items()), "Docs") {
		t.Error("compact navigation should offer Docs")
	}
	if env.model.viewCtx.SidebarWidth != 0 {
		t.Errorf("sidebar width = %d in compact mode", env.model.viewCtx.SidebarWidth)
	}

	env.resize(900, 40)
	if env.model.Compact() {
		t.Error("900 columns should be expanded")
	}
}

func TestProfileFlags_OrganizationForOwners(t *testing.T) {
	env := newTestEnv(t, "/")
	env.resize(1200, 40)

	if contains(labels(env.model.sidebar.Items()), "Organization") {
		t.Fatal("Organization shown before flags arrive")
	}

	env.backend.flags = api.ProfileFlags{api.FlagOrganizationOwner: true}
	env.model.Update(env.model.fetchFlags()())
	if !contains(labels(env.model.sidebar.Items()), "Organization") {
		t.Error("Organization missing for owner")
	}

	env.resize(600, 40)
	items := labels(env.model.navbar.Items())
	if items[len(items)-1] != "Organization" || items[len(items)-2] != "Docs" {
		t.Errorf("compact items = %v, want Docs then Organization last", items)
	}
}

func TestProfileFlags_FetchErrorKeepsOverrides(t *testing.T) {
	env := newTestEnv(t, "/")
	env.cfg.ProfileFlagsOverride = map[string]bool{api.FlagOrganizationOwner: true}
	env.backend.flagsErr = perrors.E(perrors.KindOffline, "offline")

	env.model.Update(env.model.fetchFlags()())
	if !env.store.Flags().IsOrganizationOwner() {
		t.Error("override should apply when the fetch fails")
	}
}

func TestApps_LoadsTemplates(t *testing.T) {
	env := newTestEnv(t, "/")
	env.resize(1200, 40)
	if !env.model.loading.Active() {
		t.Error("spinner should run while templates load")
	}

	env.loadTemplates()
	if env.model.loading.Active() {
		t.Error("spinner should stop after templates load")
	}
	view := ansi.Strip(env.model.RenderToString())
	for _, want := range []string{"App Templates", "Chatbot", "Translator", ui.GalleryIntro[:20]} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEnterOnCard_NavigatesToTemplate(t *testing.T) {
	env := newTestEnv(t, "/")
	env.resize(1200, 40)
	env.loadTemplates()

	env.press("enter")
	if got := env.nav.Location(); got != "/apps/templates/chatbot" {
		t.Fatalf("location = %q, want /apps/templates/chatbot", got)
	}
	if env.model.Route().Name != router.Template {
		t.Errorf("route = %q, want template", env.model.Route().Name)
	}
}

func TestTemplateRoute_OpensNamingDialog(t *testing.T) {
	env := newTestEnv(t, "/apps/templates/chatbot")
	env.resize(1200, 40)

	env.model.Update(env.model.openTemplate("chatbot")())

	state, ok := env.model.modal.State.(*modals.NameAppState)
	if !ok {
		t.Fatalf("modal state = %T, want *modals.NameAppState", env.model.modal.State)
	}
	if state.TemplateSlug != "chatbot" || state.Name() != "Chatbot" {
		t.Errorf("dialog = %q/%q, want chatbot/Chatbot", state.TemplateSlug, state.Name())
	}
	if !strings.Contains(ansi.Strip(env.model.RenderToString()), "Create app from Chatbot") {
		t.Error("dialog not rendered")
	}
}

func TestTemplateRoute_EnterRetriesFailedOpen(t *testing.T) {
	env := newTestEnv(t, "/apps/templates/chatbot")
	env.resize(1200, 40)
	env.backend.getErrs = map[string]error{
		"chatbot": perrors.E(perrors.Op("api.GetTemplate"), perrors.KindAPI, "bad gateway"),
	}

	env.model.Update(env.model.openTemplate("chatbot")())
	if env.model.modal.IsVisible() {
		t.Fatal("failed open should not show the dialog")
	}
	if got := env.nav.Location(); got != "/apps/templates/chatbot" {
		t.Fatalf("location = %q, want the template route", got)
	}
	if got := env.model.Gallery().State(); got != gallery.TemplatesLoaded {
		t.Errorf("gallery state = %v, want %v", got, gallery.TemplatesLoaded)
	}

	if cmd := env.press("enter"); cmd == nil {
		t.Fatal("enter on the routed card should retry the open")
	}
	if !env.model.loading.Active() {
		t.Error("retry should show the spinner")
	}

	env.model.Update(env.model.openTemplate("chatbot")())
	state, ok := env.model.modal.State.(*modals.NameAppState)
	if !ok || !env.model.modal.IsVisible() {
		t.Fatalf("modal state = %T, want the naming dialog after retry", env.model.modal.State)
	}
	if state.TemplateSlug != "chatbot" {
		t.Errorf("dialog slug = %q", state.TemplateSlug)
	}
}

func TestTemplateRoute_StaleOpenIgnored(t *testing.T) {
	env := newTestEnv(t, "/apps/templates/chatbot")
	cmd := env.model.openTemplate("chatbot")

	env.nav.Navigate("/settings")
	env.drain()
	env.model.Update(cmd())

	if env.model.modal.IsVisible() {
		t.Error("late template response opened a dialog on another page")
	}
}

func TestCreate_NavigatesToNewApp(t *testing.T) {
	env := newTestEnv(t, "/apps/templates/chatbot")
	env.resize(1200, 40)
	env.model.Update(env.model.openTemplate("chatbot")())

	state := env.model.modal.State.(*modals.NameAppState)
	env.press("enter")
	if !state.Creating {
		t.Fatal("enter should start creating")
	}

	env.model.Update(env.model.createApp(state.Name())())
	env.drain()

	if got := env.nav.Location(); got != "/apps/abc-123" {
		t.Errorf("location = %q, want /apps/abc-123", got)
	}
	if env.model.modal.IsVisible() {
		t.Error("dialog should close after creation")
	}
	if len(env.backend.drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(env.backend.drafts))
	}
	draft := env.backend.drafts[0]
	if string(draft["template_slug"]) != `"chatbot"` || string(draft["name"]) != `"Chatbot"` {
		t.Errorf("draft = %s / %s", draft["template_slug"], draft["name"])
	}
	if string(draft["app_type"]) != `{"id":3}` {
		t.Errorf("app_type = %s", draft["app_type"])
	}
	views := env.reporter.Views()
	if views[len(views)-1] != "/apps/abc-123" {
		t.Errorf("last page view = %q", views[len(views)-1])
	}
}

func TestCreate_ErrorKeepsDialogOpen(t *testing.T) {
	env := newTestEnv(t, "/apps/templates/chatbot")
	env.resize(1200, 40)
	env.model.Update(env.model.openTemplate("chatbot")())
	env.backend.createErr = perrors.E(perrors.KindAPI, "server exploded")

	state := env.model.modal.State.(*modals.NameAppState)
	env.press("enter")
	env.model.Update(env.model.createApp(state.Name())())

	if !env.model.modal.IsVisible() {
		t.Fatal("dialog should stay open on error")
	}
	if state.Creating {
		t.Error("dialog should accept input again")
	}
	if env.model.modal.GetError() == "" {
		t.Error("error not shown")
	}
	if env.nav.Location() != "/apps/templates/chatbot" {
		t.Errorf("location = %q", env.nav.Location())
	}
}

func TestCancelNaming_ReturnsToGallery(t *testing.T) {
	env := newTestEnv(t, "/apps/templates/chatbot")
	env.resize(1200, 40)
	env.model.Update(env.model.openTemplate("chatbot")())

	env.press("esc")
	if env.model.modal.IsVisible() {
		t.Error("esc should close the dialog")
	}
	if env.nav.Location() != router.PathApps {
		t.Errorf("location = %q, want /", env.nav.Location())
	}
}

func TestLoginRedirect_ClearsState(t *testing.T) {
	env := newTestEnv(t, "/apps/templates/chatbot")
	env.resize(1200, 40)
	env.store.SetFlags(api.ProfileFlags{api.FlagOrganizationOwner: true})
	env.model.Update(env.model.openTemplate("chatbot")())
	old := env.model.Gallery()

	env.nav.RedirectToLogin()
	env.drain()

	if env.model.Route().Name != router.Login {
		t.Errorf("route = %q, want login", env.model.Route().Name)
	}
	if env.model.modal.IsVisible() {
		t.Error("dialog should close on login redirect")
	}
	if env.store.Flags().IsOrganizationOwner() {
		t.Error("flags should be dropped")
	}
	if env.model.Gallery() == old {
		t.Error("gallery should be replaced")
	}
	if !strings.Contains(ansi.Strip(env.model.RenderToString()), "promptly login") {
		t.Error("login page should explain how to sign in")
	}
}

func TestTab_MovesFocusToNavigation(t *testing.T) {
	env := newTestEnv(t, "/")
	env.resize(1200, 40)

	env.press("tab")
	if env.model.focus != FocusNav {
		t.Fatal("tab should focus navigation")
	}
	env.press("down")
	env.press("enter")
	if env.nav.Location() != router.PathPlayground {
		t.Errorf("location = %q, want /playground", env.nav.Location())
	}
}

func TestDetail_ShowsTemplateApp(t *testing.T) {
	env := newTestEnv(t, "/")
	env.resize(1200, 40)
	env.loadTemplates()

	env.model.Update(env.model.loadDetail("chatbot")())
	if !env.model.cards.DetailVisible() {
		t.Fatal("detail pane not shown")
	}
	if env.model.Gallery().State().String() != "templates-loaded" {
		t.Errorf("detail changed gallery state to %s", env.model.Gallery().State())
	}
	env.press("esc")
	if env.model.cards.DetailVisible() {
		t.Error("esc should close the detail pane")
	}
}

func TestHelp_OpensAndCloses(t *testing.T) {
	env := newTestEnv(t, "/")
	env.resize(1200, 40)

	env.press("?")
	if _, ok := env.model.modal.State.(*modals.HelpState); !ok {
		t.Fatalf("modal state = %T, want help", env.model.modal.State)
	}
	env.press("esc")
	if env.model.modal.IsVisible() {
		t.Error("esc should close help")
	}
}

func TestHelpSections_HideGalleryShortcutsElsewhere(t *testing.T) {
	env := newTestEnv(t, "/settings")
	sections := env.model.getApplicableHelpSections(ShortcutRegistry, nil)
	for _, s := range sections {
		if s.Title == CategoryTemplates {
			t.Error("template shortcuts listed on the settings page")
		}
	}
}

func TestUnknownRoute_RendersNotFound(t *testing.T) {
	env := newTestEnv(t, "/nowhere")
	env.resize(1200, 40)
	if !strings.Contains(ansi.Strip(env.model.RenderToString()), "Page not found") {
		t.Error("unknown route should render not found")
	}
}

func TestView_ShowsChatBubbleAndHeader(t *testing.T) {
	env := newTestEnv(t, "/settings")
	env.resize(1200, 40)
	view := ansi.Strip(env.model.RenderToString())
	for _, want := range []string{"promptly", "Settings", "Ask us"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	env := newTestEnv(t, "/")
	if err := env.model.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := env.model.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if env.reporter.closed != 1 {
		t.Errorf("reporter closed %d times, want 1", env.reporter.closed)
	}

	// Navigation after close must not block on the event channel
	for i := 0; i < eventBufferSize*2; i++ {
		env.nav.Navigate("/hub?i=" + string(rune('a'+i%26)) + string(rune('a'+i/26)))
	}

	tracker := profile.NewTracker(env.store, 900)
	if tracker == nil {
		t.Error("tracker slot should be free after Close")
	}
}
