// Package gallery implements the template gallery: list templates once,
// resolve a template's detail on demand, and create an app from it.
//
// Lifecycle:
//
//	Idle -> TemplatesLoaded -> DetailLoading -> Naming -> Creating -> Created
//
// A template whose list entry already embeds its app skips DetailLoading.
// Cancelling the naming dialog leaves the gallery in DetailLoaded.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/trypromptly/promptly-cli/internal/api"
	perrors "github.com/trypromptly/promptly-cli/internal/errors"
	"github.com/trypromptly/promptly-cli/internal/logger"
	"github.com/trypromptly/promptly-cli/internal/router"
	"golang.org/x/sync/singleflight"
)

// State is the gallery lifecycle state.
type State int

const (
	Idle State = iota
	TemplatesLoaded
	DetailLoading
	DetailLoaded
	Naming
	Creating
	Created
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TemplatesLoaded:
		return "templates-loaded"
	case DetailLoading:
		return "detail-loading"
	case DetailLoaded:
		return "detail-loaded"
	case Naming:
		return "naming"
	case Creating:
		return "creating"
	case Created:
		return "created"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultAppName is used when neither the user nor the template names the app.
const DefaultAppName = "Untitled"

// ErrDetached is returned when a response arrives after Detach.
var ErrDetached = errors.New("gallery detached")

// Source is the subset of the API the gallery needs.
type Source interface {
	ListTemplates(ctx context.Context) ([]api.Template, error)
	GetTemplate(ctx context.Context, slug string) (*api.Template, error)
	CreateApp(ctx context.Context, draft api.AppDraft) (*api.App, error)
}

// Gallery holds the working set of templates and the creation flow.
type Gallery struct {
	src   Source
	group singleflight.Group

	mu        sync.Mutex
	state     State
	templates []api.Template
	loaded    bool
	attached  bool
	selected  string
	appName   string
	created   *api.App
}

// New creates an attached gallery.
func New(src Source) *Gallery {
	return &Gallery{
		src:      src,
		attached: true,
		appName:  DefaultAppName,
	}
}

// State returns the current state.
func (g *Gallery) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Templates returns a copy of the working set.
func (g *Gallery) Templates() []api.Template {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]api.Template(nil), g.templates...)
}

// Selected returns the template chosen by the current route.
func (g *Gallery) Selected() (api.Template, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selected == "" {
		return api.Template{}, false
	}
	i := g.indexLocked(g.selected)
	if i < 0 {
		return api.Template{}, false
	}
	return g.templates[i], true
}

// AppName returns the working app name offered in the naming dialog.
func (g *Gallery) AppName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.appName
}

// Created returns the app created by the last successful Create.
func (g *Gallery) Created() *api.App {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.created
}

// Load fetches the template list. Only the first successful call hits the
// server.
func (g *Gallery) Load(ctx context.Context) ([]api.Template, error) {
	g.mu.Lock()
	if g.loaded {
		out := append([]api.Template(nil), g.templates...)
		g.mu.Unlock()
		return out, nil
	}
	g.mu.Unlock()

	v, err, _ := g.group.Do("list", func() (interface{}, error) {
		return g.src.ListTemplates(ctx)
	})
	if err != nil {
		logger.WithComponent("gallery").Error("failed to list templates", "error", err)
		return nil, err
	}
	templates := v.([]api.Template)

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.attached {
		return nil, ErrDetached
	}
	if !g.loaded {
		g.templates = append([]api.Template(nil), templates...)
		g.loaded = true
		if g.state == Idle {
			g.state = TemplatesLoaded
		}
		logger.WithComponent("gallery").Debug("templates loaded", "count", len(templates))
	}
	return append([]api.Template(nil), g.templates...), nil
}

// Reload drops the working set and fetches it again.
func (g *Gallery) Reload(ctx context.Context) ([]api.Template, error) {
	g.mu.Lock()
	g.loaded = false
	g.templates = nil
	if g.state == TemplatesLoaded {
		g.state = Idle
	}
	g.mu.Unlock()
	return g.Load(ctx)
}

// Open selects the template named by slug and resolves its detail. The
// working app name becomes the template's name. A list entry that already
// embeds its app is returned without a fetch; otherwise the detail is
// fetched once and spliced back at the same position.
func (g *Gallery) Open(ctx context.Context, slug string) (api.Template, error) {
	if _, err := g.Load(ctx); err != nil {
		return api.Template{}, err
	}

	g.mu.Lock()
	i := g.indexLocked(slug)
	if i < 0 {
		g.mu.Unlock()
		return api.Template{}, perrors.TemplateNotFound(slug)
	}
	tmpl := g.templates[i]
	g.selected = slug
	g.appName = tmpl.Name
	if tmpl.HasDetail() {
		g.state = Naming
		g.mu.Unlock()
		return tmpl, nil
	}
	g.state = DetailLoading
	g.mu.Unlock()

	detail, err := g.resolveDetail(ctx, slug)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		// No dialog opens on failure, so the template can be opened again
		if g.attached && g.selected == slug && g.state == DetailLoading {
			g.state = TemplatesLoaded
		}
		return api.Template{}, err
	}
	if g.selected == slug && g.state == DetailLoading {
		g.state = Naming
	}
	return detail, nil
}

// Detail resolves a template's detail without selecting it or changing
// the lifecycle state. It shares the fetch and splice with Open.
func (g *Gallery) Detail(ctx context.Context, slug string) (api.Template, error) {
	if _, err := g.Load(ctx); err != nil {
		return api.Template{}, err
	}
	g.mu.Lock()
	i := g.indexLocked(slug)
	if i < 0 {
		g.mu.Unlock()
		return api.Template{}, perrors.TemplateNotFound(slug)
	}
	if tmpl := g.templates[i]; tmpl.HasDetail() {
		g.mu.Unlock()
		return tmpl, nil
	}
	g.mu.Unlock()
	return g.resolveDetail(ctx, slug)
}

// resolveDetail fetches one template's detail and splices it into the
// working set. Concurrent calls for the same slug share one request, and a
// caller arriving after the splice gets the cached entry.
func (g *Gallery) resolveDetail(ctx context.Context, slug string) (api.Template, error) {
	log := logger.WithComponent("gallery")

	v, err, shared := g.group.Do("detail:"+slug, func() (interface{}, error) {
		g.mu.Lock()
		if i := g.indexLocked(slug); i >= 0 && g.templates[i].HasDetail() {
			cached := g.templates[i]
			g.mu.Unlock()
			return cached, nil
		}
		g.mu.Unlock()

		log.Debug("fetching template detail", "slug", slug)
		fetched, err := g.src.GetTemplate(ctx, slug)
		if err != nil {
			return nil, err
		}
		detail := *fetched
		if detail.Slug == "" {
			detail.Slug = slug
		}

		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.attached {
			return nil, ErrDetached
		}
		if i := g.indexLocked(slug); i >= 0 {
			g.templates[i] = detail
		}
		return detail, nil
	})
	if err != nil {
		if !errors.Is(err, ErrDetached) {
			log.Error("failed to fetch template", "slug", slug, "error", err)
		}
		return api.Template{}, err
	}
	if shared {
		log.Debug("shared in-flight detail fetch", "slug", slug)
	}
	return v.(api.Template), nil
}

// Cancel closes the naming dialog.
func (g *Gallery) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case Naming:
		g.state = DetailLoaded
	case DetailLoading:
		g.state = TemplatesLoaded
	}
}

// Select returns the route of a template card.
func (g *Gallery) Select(slug string) string {
	return router.TemplatePath(slug)
}

// Create submits an app built from the selected template and returns the
// route of the new app.
func (g *Gallery) Create(ctx context.Context, name string) (string, error) {
	op := perrors.Op("gallery.Create")

	g.mu.Lock()
	if g.state == Creating {
		g.mu.Unlock()
		return "", perrors.E(op, perrors.KindInvalid, "an app is already being created")
	}
	i := -1
	if g.selected != "" {
		i = g.indexLocked(g.selected)
	}
	if i < 0 {
		g.mu.Unlock()
		return "", perrors.E(op, perrors.KindInvalid, "no template selected")
	}
	tmpl := g.templates[i]
	if !tmpl.HasDetail() {
		g.mu.Unlock()
		return "", perrors.E(op, perrors.KindInvalid, "template details are not loaded")
	}
	draft, err := BuildDraft(tmpl, name)
	if err != nil {
		g.mu.Unlock()
		return "", err
	}
	prev := g.state
	g.state = Creating
	g.mu.Unlock()

	app, err := g.src.CreateApp(ctx, draft)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		if g.attached {
			g.state = prev
		}
		logger.WithComponent("gallery").Error("failed to create app", "template", tmpl.Slug, "error", err)
		return "", err
	}
	logger.WithComponent("gallery").Info("app created", "template", tmpl.Slug, "uuid", app.UUID)
	if g.attached {
		g.state = Created
		g.created = app
	}
	return router.AppPath(app.UUID), nil
}

// Detach stops the gallery from applying responses that arrive later.
func (g *Gallery) Detach() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attached = false
}

func (g *Gallery) indexLocked(slug string) int {
	for i := range g.templates {
		if g.templates[i].Slug == slug {
			return i
		}
	}
	return -1
}

// BuildDraft builds the creation payload: the template's app data
// shallow-merged with name, app_type and template_slug, with every processor
// narrowed to {api_backend, config, input}. The name falls back to the
// template name, then DefaultAppName.
func BuildDraft(tmpl api.Template, name string) (api.AppDraft, error) {
	op := perrors.Op("gallery.BuildDraft")

	processors, present, err := tmpl.App.Processors()
	if err != nil {
		return nil, perrors.E(op, perrors.KindInvalid, "template processors are malformed", err)
	}
	if !present {
		return nil, perrors.MissingProcessors(tmpl.Slug)
	}

	draft := make(api.AppDraft, len(tmpl.App)+3)
	for k, v := range tmpl.App {
		draft[k] = v
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = tmpl.Name
	}
	if name == "" {
		name = DefaultAppName
	}
	if draft["name"], err = json.Marshal(name); err != nil {
		return nil, perrors.E(op, perrors.KindInvalid, err)
	}

	if typ, ok := tmpl.App["type"]; ok {
		draft["app_type"] = typ
	} else {
		delete(draft, "app_type")
	}

	if draft["template_slug"], err = json.Marshal(tmpl.Slug); err != nil {
		return nil, perrors.E(op, perrors.KindInvalid, err)
	}

	refs := make([]api.ProcessorRef, 0, len(processors))
	for _, p := range processors {
		refs = append(refs, api.ProcessorRef{
			APIBackend: p.BackendID(),
			Config:     p.Config,
			Input:      p.Input,
		})
	}
	if draft["processors"], err = json.Marshal(refs); err != nil {
		return nil, perrors.E(op, perrors.KindInvalid, err)
	}
	return draft, nil
}
