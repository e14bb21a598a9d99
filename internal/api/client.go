// Package api is the promptly REST client. Every client built by New shares
// the same session policy (see SessionTransport), so individual calls never
// decide for themselves how to react to a lost session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trypromptly/promptly-cli/internal/config"
	perrors "github.com/trypromptly/promptly-cli/internal/errors"
	"github.com/trypromptly/promptly-cli/internal/logger"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Policy    SessionPolicy
	Navigator Navigator

	// Cookies are seeded into the jar for BaseURL (the stored login session).
	Cookies []*http.Cookie

	Timeout           time.Duration
	RequestsPerSecond float64

	// Transport is the innermost RoundTripper; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// OptionsFromConfig derives client options from the user's config.
func OptionsFromConfig(cfg *config.Config, nav Navigator) Options {
	cookieName, headerName := cfg.GetCSRFNames()
	opts := Options{
		BaseURL: cfg.GetBaseURL(),
		Policy: SessionPolicy{
			CSRFCookieName: cookieName,
			CSRFHeaderName: headerName,
			ExemptPrefixes: cfg.GetSessionExemptPrefixes(),
		},
		Navigator:         nav,
		Timeout:           cfg.GetRequestTimeout(),
		RequestsPerSecond: cfg.GetRequestsPerSecond(),
	}
	if sess := cfg.GetSession(); sess != nil {
		opts.Cookies = append(opts.Cookies, &http.Cookie{Name: sess.CookieName, Value: sess.Cookie})
		if sess.CSRFToken != "" {
			opts.Cookies = append(opts.Cookies, &http.Cookie{Name: cookieName, Value: sess.CSRFToken})
		}
	}
	return opts
}

// Client is a promptly API client
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

// New creates a client. Each call site gets its own instance; nothing is
// shared between clients except what Options carries.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, perrors.E(perrors.Op("api.New"), perrors.KindConfig, fmt.Sprintf("invalid base URL %q", opts.BaseURL))
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if len(opts.Cookies) > 0 {
		jar.SetCookies(base, opts.Cookies)
	}

	inner := opts.Transport
	if inner == nil {
		inner = http.DefaultTransport
	}
	if opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), rateBurst(opts.RequestsPerSecond))
		inner = &rateLimitedTransport{base: inner, limiter: limiter}
	}

	return &Client{
		baseURL: base,
		client: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
			Transport: &SessionTransport{
				Base:      inner,
				Jar:       jar,
				Policy:    opts.Policy,
				Navigator: opts.Navigator,
			},
		},
	}, nil
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// ListTemplates returns the template summaries
func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var templates []Template
	if err := c.do(ctx, http.MethodGet, "/api/apps/templates", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// GetTemplate returns a template with its embedded app
func (c *Client) GetTemplate(ctx context.Context, slug string) (*Template, error) {
	var tmpl Template
	if err := c.do(ctx, http.MethodGet, "/api/apps/templates/"+url.PathEscape(slug), nil, &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// CreateApp creates an application from a draft
func (c *Client) CreateApp(ctx context.Context, draft AppDraft) (*App, error) {
	var app App
	if err := c.do(ctx, http.MethodPost, "/api/apps", draft, &app); err != nil {
		return nil, err
	}
	if app.UUID == "" {
		return nil, perrors.E(perrors.Op("api.CreateApp"), perrors.KindAPI, "server did not return an app id")
	}
	return &app, nil
}

// GetProfileFlags returns the signed-in user's capability flags
func (c *Client) GetProfileFlags(ctx context.Context) (ProfileFlags, error) {
	flags := ProfileFlags{}
	if err := c.do(ctx, http.MethodGet, "/api/profiles/me/flags", nil, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// joinURL resolves an API path against the base URL
func (c *Client) joinURL(path string) string {
	return strings.TrimRight(c.baseURL.String(), "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := perrors.Op("api." + method + " " + path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return perrors.E(op, perrors.KindInvalid, "failed to marshal request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.joinURL(path), reader)
	if err != nil {
		return perrors.E(op, perrors.KindInvalid, "failed to create request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.WithComponent("api").Debug("request", "method", method, "path", path, "request_id", requestID)
	resp, err := c.client.Do(req)
	if err != nil {
		// Already classified by SessionTransport (offline, timeout) or a
		// caller cancellation; keep the kind and add the op.
		return perrors.E(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
		return perrors.E(op, kindForStatus(resp.StatusCode), statusErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perrors.E(op, perrors.KindAPI, "failed to decode response", err)
	}
	return nil
}

func kindForStatus(status int) perrors.Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return perrors.KindUnauthorized
	case http.StatusNotFound:
		return perrors.KindNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return perrors.KindTimeout
	default:
		return perrors.KindAPI
	}
}

// maxRateBurst caps how many requests may go out back to back.
const maxRateBurst = 10

// rateBurst follows the rate, clamped to [1, maxRateBurst]. The clamp is
// applied before the int conversion so huge rates cannot overflow.
func rateBurst(rps float64) int {
	if rps < 1 {
		return 1
	}
	if rps > maxRateBurst {
		return maxRateBurst
	}
	return int(rps)
}
