package config

import "time"

// Session is a stored browser-equivalent login: the server session cookie
// plus the CSRF cookie that state-changing requests must echo back.
type Session struct {
	CookieName string    `json:"cookie_name"`
	Cookie     string    `json:"cookie"`
	CSRFToken  string    `json:"csrf_token,omitempty"`
	Username   string    `json:"username,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DefaultSessionCookieName is the cookie the server uses for its session.
const DefaultSessionCookieName = "sessionid"

// GetSession returns a copy of the stored session, or nil when logged out.
func (c *Config) GetSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Session == nil {
		return nil
	}
	s := *c.Session
	return &s
}

// SetSession stores a login session.
func (c *Config) SetSession(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.CookieName == "" {
		s.CookieName = DefaultSessionCookieName
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	c.Session = &s
}

// ClearSession forgets the stored login. Returns true if one was present.
func (c *Config) ClearSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.Session != nil
	c.Session = nil
	return had
}

// GetCSRFNames returns the CSRF cookie name and the header it is copied into.
func (c *Config) GetCSRFNames() (cookieName, headerName string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orDefault(c.CSRFCookieName, DefaultCSRFCookieName), orDefault(c.CSRFHeaderName, DefaultCSRFHeaderName)
}
