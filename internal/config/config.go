package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	perrors "github.com/trypromptly/promptly-cli/internal/errors"
	"github.com/trypromptly/promptly-cli/internal/logger"
)

// Defaults carried over from the hosted web client. They are only defaults:
// every one of them can be overridden in config.json or the environment.
const (
	DefaultBaseURL         = "https://trypromptly.com"
	DefaultCSRFCookieName  = "csrftoken"
	DefaultCSRFHeaderName  = "X-CSRFToken"
	DefaultAnalyticsSiteID = "G-WV60HC9CHD"
	DefaultChatAppID       = "f4d7cb50-1805-4add-80c5-e30334bce53c"
	DefaultDocsURL         = "https://docs.trypromptly.com"

	// DefaultCompactWidth is the terminal width (in columns) below which the
	// shell switches to the compact top navigation.
	DefaultCompactWidth = 100

	DefaultRequestTimeoutSeconds = 30
)

// DefaultSessionExemptPrefixes are the route prefixes where an auth failure
// must not bounce the user to /login (public share, hub and embedded app pages).
var DefaultSessionExemptPrefixes = []string{"/s/", "/hub", "/app/"}

// Environment variables that override the config file.
const (
	EnvBaseURL         = "PROMPTLY_URL"
	EnvAnalyticsSiteID = "PROMPTLY_ANALYTICS_ID"
	EnvAnalyticsSecret = "PROMPTLY_ANALYTICS_SECRET"
	EnvChatAppID       = "PROMPTLY_CHAT_APP_ID"
	EnvCompactWidth    = "PROMPTLY_COMPACT_WIDTH"
)

// Config holds the application configuration
type Config struct {
	BaseURL               string   `json:"base_url"`
	CSRFCookieName        string   `json:"csrf_cookie_name,omitempty"`
	CSRFHeaderName        string   `json:"csrf_header_name,omitempty"`
	SessionExemptPrefixes []string `json:"session_exempt_prefixes,omitempty"`
	RequestTimeoutSeconds int      `json:"request_timeout_seconds,omitempty"`
	RequestsPerSecond     float64  `json:"requests_per_second,omitempty"` // 0 disables client-side rate limiting

	CompactWidth int    `json:"compact_width,omitempty"`
	DocsURL      string `json:"docs_url,omitempty"`
	Theme        string `json:"theme,omitempty"`

	// AnalyticsSiteID is nil when unset (the default site id applies); an
	// explicit empty string disables page-view reporting.
	AnalyticsSiteID    *string `json:"analytics_site_id,omitempty"`
	AnalyticsAPISecret string `json:"analytics_api_secret,omitempty"`
	AnalyticsClientID  string `json:"analytics_client_id,omitempty"` // Stable GA4 client id, generated on first run
	ChatAppID          string `json:"chat_app_id,omitempty"`

	NotificationsEnabled bool `json:"notifications_enabled,omitempty"` // Desktop notification when an app is created

	// Stored login session (see session.go)
	Session *Session `json:"session,omitempty"`

	// ProfileFlagsOverride replaces the flags fetched from the server when set.
	ProfileFlagsOverride map[string]bool `json:"profile_flags_override,omitempty"`

	// overlay holds environment and flag values for this run only
	overlay overlay

	mu       sync.RWMutex
	filePath string
}

// overlay values take precedence over the file and are never saved.
type overlay struct {
	baseURL         *string
	analyticsSiteID *string
	analyticsSecret *string
	chatAppID       *string
	compactWidth    *int
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".promptly"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// New returns a config with default values that is not backed by a file
// until SetFilePath is called.
func New() *Config {
	return &Config{}
}

// Load reads the config from disk, or creates a new one if it doesn't exist.
// A .env file in the working directory and PROMPTLY_* variables override
// values from the file for this run.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithComponent("config").Warn("failed to load .env file", "error", err)
	}

	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, perrors.ConfigLoadFailed(path, err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, perrors.ConfigLoadFailed(path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers PROMPTLY_* environment variables over the file values.
// An empty URL, chat id or secret is ignored; an empty analytics id is
// kept and disables reporting.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.overlay.baseURL = &v
	}
	if v, ok := os.LookupEnv(EnvAnalyticsSiteID); ok {
		c.overlay.analyticsSiteID = &v
	}
	if v := os.Getenv(EnvAnalyticsSecret); v != "" {
		c.overlay.analyticsSecret = &v
	}
	if v := os.Getenv(EnvChatAppID); v != "" {
		c.overlay.chatAppID = &v
	}
	if v := os.Getenv(EnvCompactWidth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.overlay.compactWidth = &n
		} else {
			logger.WithComponent("config").Warn("ignoring invalid compact width", "value", v)
		}
	}
}

// The *Locked resolvers apply overlay, then file value, then default.
// Callers hold c.mu.

func (c *Config) baseURLLocked() string {
	u := c.BaseURL
	if c.overlay.baseURL != nil {
		u = *c.overlay.baseURL
	}
	if u == "" {
		u = DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func (c *Config) exemptPrefixesLocked() []string {
	if c.SessionExemptPrefixes == nil {
		return DefaultSessionExemptPrefixes
	}
	return c.SessionExemptPrefixes
}

func (c *Config) compactWidthLocked() int {
	if c.overlay.compactWidth != nil {
		return *c.overlay.compactWidth
	}
	if c.CompactWidth == 0 {
		return DefaultCompactWidth
	}
	return c.CompactWidth
}

func (c *Config) requestTimeoutSecondsLocked() int {
	if c.RequestTimeoutSeconds == 0 {
		return DefaultRequestTimeoutSeconds
	}
	return c.RequestTimeoutSeconds
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	base := c.baseURLLocked()
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return perrors.ConfigInvalid(fmt.Sprintf("invalid base_url %q: must be an absolute URL", base))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return perrors.ConfigInvalid(fmt.Sprintf("invalid base_url %q: scheme must be http or https", base))
	}
	if w := c.compactWidthLocked(); w < 0 {
		return perrors.ConfigInvalid(fmt.Sprintf("compact_width must not be negative, got %d", w))
	}
	if c.RequestTimeoutSeconds < 0 {
		return perrors.ConfigInvalid(fmt.Sprintf("request_timeout_seconds must not be negative, got %d", c.RequestTimeoutSeconds))
	}
	if c.RequestsPerSecond < 0 {
		return perrors.ConfigInvalid(fmt.Sprintf("requests_per_second must not be negative, got %v", c.RequestsPerSecond))
	}
	for _, p := range c.exemptPrefixesLocked() {
		if !strings.HasPrefix(p, "/") {
			return perrors.ConfigInvalid(fmt.Sprintf("session exempt prefix %q must start with /", p))
		}
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.filePath == "" {
		return perrors.ConfigInvalid("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}

	// The file may hold a session cookie
	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// SetFilePath sets where Save writes the config.
func (c *Config) SetFilePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filePath = path
}

// FilePath returns the backing file path.
func (c *Config) FilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filePath
}

// GetBaseURL returns the API base URL without a trailing slash
func (c *Config) GetBaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURLLocked()
}

// SetBaseURL sets the API base URL saved in the config file
func (c *Config) SetBaseURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.BaseURL = strings.TrimRight(u, "/")
}

// OverrideBaseURL sets the API base URL for this run only; Save keeps the
// file value.
func (c *Config) OverrideBaseURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlay.baseURL = &u
}

// GetSessionExemptPrefixes returns a copy of the exempt route prefixes
func (c *Config) GetSessionExemptPrefixes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prefixes := c.exemptPrefixesLocked()
	out := make([]string, len(prefixes))
	copy(out, prefixes)
	return out
}

// GetRequestTimeout returns the per-request timeout
func (c *Config) GetRequestTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.requestTimeoutSecondsLocked()) * time.Second
}

// GetRequestsPerSecond returns the client-side request rate limit (0 = unlimited)
func (c *Config) GetRequestsPerSecond() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RequestsPerSecond
}

// GetCompactWidth returns the compact layout breakpoint
func (c *Config) GetCompactWidth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.compactWidthLocked()
}

// GetDocsURL returns the documentation link shown in compact navigation
func (c *Config) GetDocsURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orDefault(c.DocsURL, DefaultDocsURL)
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the current theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
}

// GetAnalytics returns the measurement id, API secret and client id
func (c *Config) GetAnalytics() (siteID, apiSecret, clientID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.overlay.analyticsSiteID != nil:
		siteID = *c.overlay.analyticsSiteID
	case c.AnalyticsSiteID != nil:
		siteID = *c.AnalyticsSiteID
	default:
		siteID = DefaultAnalyticsSiteID
	}
	apiSecret = c.AnalyticsAPISecret
	if c.overlay.analyticsSecret != nil {
		apiSecret = *c.overlay.analyticsSecret
	}
	return siteID, apiSecret, c.AnalyticsClientID
}

// SetAnalyticsSiteID stores the measurement id; "" disables reporting
func (c *Config) SetAnalyticsSiteID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AnalyticsSiteID = &id
}

// SetAnalyticsClientID stores the generated GA4 client id
func (c *Config) SetAnalyticsClientID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AnalyticsClientID = id
}

// GetChatAppID returns the published app id backing the chat bubble
func (c *Config) GetChatAppID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.overlay.chatAppID != nil {
		return *c.overlay.chatAppID
	}
	return orDefault(c.ChatAppID, DefaultChatAppID)
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetProfileFlagsOverride returns a copy of the flag overrides
func (c *Config) GetProfileFlagsOverride() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool, len(c.ProfileFlagsOverride))
	for k, v := range c.ProfileFlagsOverride {
		out[k] = v
	}
	return out
}
