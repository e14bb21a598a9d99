// Package router maps console locations to named pages.
package router

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Name identifies a page.
type Name string

const (
	Apps         Name = "apps"
	Playground   Name = "playground"
	Hub          Name = "hub"
	Endpoints    Name = "endpoints"
	Data         Name = "data"
	History      Name = "history"
	Settings     Name = "settings"
	Organization Name = "organization"
	Template     Name = "template"
	AppDetail    Name = "app"
	Login        Name = "login"
)

// Paths of the fixed pages.
const (
	PathApps         = "/"
	PathPlayground   = "/playground"
	PathHub          = "/hub"
	PathEndpoints    = "/endpoint"
	PathData         = "/data"
	PathHistory      = "/history"
	PathSettings     = "/settings"
	PathOrganization = "/organization"
	PathLogin        = "/login"
)

// Route is a matched location.
type Route struct {
	Name    Name
	Pattern string
	Path    string
	Query   string
	Params  map[string]string
}

// Param returns a URL parameter by key.
func (r Route) Param(key string) string {
	return r.Params[key]
}

// Location returns path plus query string.
func (r Route) Location() string {
	if r.Query == "" {
		return r.Path
	}
	return r.Path + "?" + r.Query
}

var patterns = map[string]Name{
	PathApps:                 Apps,
	PathPlayground:           Playground,
	PathHub:                  Hub,
	PathEndpoints:            Endpoints,
	PathData:                 Data,
	PathHistory:              History,
	PathSettings:             Settings,
	PathOrganization:         Organization,
	"/apps/templates/{slug}": Template,
	"/apps/{uuid}":           AppDetail,
	PathLogin:                Login,
}

var mux = newMux()

func newMux() *chi.Mux {
	r := chi.NewRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	for pattern := range patterns {
		r.Get(pattern, noop)
	}
	return r
}

// Match resolves a location ("/apps/templates/chatbot?x=1") to a route.
func Match(location string) (Route, bool) {
	path, query, _ := strings.Cut(location, "?")
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	rctx := chi.NewRouteContext()
	if !mux.Match(rctx, http.MethodGet, path) {
		return Route{Path: path, Query: query}, false
	}

	pattern := rctx.RoutePattern()
	route := Route{
		Name:    patterns[pattern],
		Pattern: pattern,
		Path:    path,
		Query:   query,
		Params:  make(map[string]string, len(rctx.URLParams.Keys)),
	}
	for i, key := range rctx.URLParams.Keys {
		if v, err := url.PathUnescape(rctx.URLParams.Values[i]); err == nil {
			route.Params[key] = v
		} else {
			route.Params[key] = rctx.URLParams.Values[i]
		}
	}
	return route, true
}

// TemplatePath is the route of a template's creation dialog.
func TemplatePath(slug string) string {
	return "/apps/templates/" + url.PathEscape(slug)
}

// AppPath is the route of a created app.
func AppPath(uuid string) string {
	return "/apps/" + url.PathEscape(uuid)
}
