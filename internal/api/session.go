package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	perrors "github.com/trypromptly/promptly-cli/internal/errors"
	"github.com/trypromptly/promptly-cli/internal/logger"
	"golang.org/x/time/rate"
)

// Navigator is where the client is running: it knows the current route and
// can abandon it for the login page.
type Navigator interface {
	CurrentPath() string
	RedirectToLogin()
}

// SessionPolicy configures CSRF forwarding and the login redirect.
type SessionPolicy struct {
	CSRFCookieName string
	CSRFHeaderName string
	// ExemptPrefixes are routes (public share pages, the hub, embedded
	// apps) where a 401/403 is expected and must not trigger a redirect.
	ExemptPrefixes []string
}

// IsExempt reports whether path starts with one of the exempt prefixes.
func (p SessionPolicy) IsExempt(path string) bool {
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SessionTransport decorates a RoundTripper with the session rules shared
// by every API call:
//   - state-changing requests carry the CSRF cookie value in the CSRF header
//   - a 401 or 403 sends the navigator to /login unless the current route is exempt
//   - a failure with no response becomes a KindOffline error
//
// Responses are always returned unchanged.
type SessionTransport struct {
	Base      http.RoundTripper
	Jar       http.CookieJar
	Policy    SessionPolicy
	Navigator Navigator
}

// RoundTrip implements http.RoundTripper.
func (t *SessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	log := logger.WithComponent("api")

	if isStateChanging(req.Method) && t.Policy.CSRFHeaderName != "" {
		if token := t.csrfToken(req); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set(t.Policy.CSRFHeaderName, token)
		}
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		if resp == nil {
			return nil, classifyTransportError(req, err)
		}
		return resp, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		t.handleAuthFailure(resp.StatusCode)
	}

	log.Debug("response", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
	return resp, nil
}

func (t *SessionTransport) handleAuthFailure(status int) {
	if t.Navigator == nil {
		return
	}
	path := t.Navigator.CurrentPath()
	if t.Policy.IsExempt(path) {
		logger.WithComponent("api").Debug("auth failure on exempt route", "status", status, "path", path)
		return
	}
	logger.WithComponent("api").Info("session lost, redirecting to login", "status", status, "path", path)
	t.Navigator.RedirectToLogin()
}

func (t *SessionTransport) csrfToken(req *http.Request) string {
	if c, err := req.Cookie(t.Policy.CSRFCookieName); err == nil {
		return c.Value
	}
	if t.Jar == nil {
		return ""
	}
	for _, c := range t.Jar.Cookies(req.URL) {
		if c.Name == t.Policy.CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

func (t *SessionTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// classifyTransportError maps a response-less failure to an error kind.
// Caller cancellation is returned untouched.
func classifyTransportError(req *http.Request, err error) error {
	op := perrors.Op("api." + req.Method)
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return perrors.E(op, perrors.KindTimeout, req.URL.Path, err)
	default:
		return perrors.Offline(op, err)
	}
}

// rateLimitedTransport waits on a token bucket before each request.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
