package router

import (
	"strings"
	"sync"

	"github.com/trypromptly/promptly-cli/internal/logger"
)

// Navigator tracks the current location. It satisfies api.Navigator so the
// HTTP client can send the user to the login page.
type Navigator struct {
	mu       sync.RWMutex
	location string

	onChange []func(Route)
	// onLogin runs on a login redirect and drops in-memory state.
	onLogin func()
}

// NewNavigator starts at location ("/" when empty).
func NewNavigator(location string) *Navigator {
	if location == "" {
		location = PathApps
	}
	return &Navigator{location: location}
}

// OnChange registers fn for every location change.
func (n *Navigator) OnChange(fn func(Route)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = append(n.onChange, fn)
}

// OnLoginRedirect sets the hook run by RedirectToLogin.
func (n *Navigator) OnLoginRedirect(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onLogin = fn
}

// Location returns the current path and query.
func (n *Navigator) Location() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.location
}

// CurrentPath returns the raw current path without the query. Trailing
// slashes are kept, so prefix checks see "/s/" rather than "/s".
func (n *Navigator) CurrentPath() string {
	path, _, _ := strings.Cut(n.Location(), "?")
	if path == "" {
		return PathApps
	}
	return path
}

// Current returns the matched current route.
func (n *Navigator) Current() Route {
	route, _ := Match(n.Location())
	return route
}

// Navigate moves to location. Navigating to the current location is a no-op.
func (n *Navigator) Navigate(location string) Route {
	n.mu.Lock()
	if location == n.location {
		n.mu.Unlock()
		route, _ := Match(location)
		return route
	}
	n.location = location
	listeners := append([]func(Route){}, n.onChange...)
	n.mu.Unlock()

	route, ok := Match(location)
	if !ok {
		logger.WithComponent("router").Warn("no route for location", "location", location)
	}
	for _, fn := range listeners {
		fn(route)
	}
	return route
}

// RedirectToLogin abandons the current page for /login.
func (n *Navigator) RedirectToLogin() {
	n.mu.RLock()
	hook := n.onLogin
	from := n.location
	n.mu.RUnlock()

	logger.WithComponent("router").Info("redirecting to login", "from", from)
	if hook != nil {
		hook()
	}
	n.Navigate(PathLogin)
}
