package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trypromptly/promptly-cli/internal/config"
	perrors "github.com/trypromptly/promptly-cli/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler, nav Navigator) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		BaseURL:   srv.URL,
		Policy:    defaultPolicy(),
		Navigator: nav,
		Cookies:   []*http.Cookie{{Name: "csrftoken", Value: "csrf-abc"}, {Name: "sessionid", Value: "sess-1"}},
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative", "localhost:8000"} {
		_, err := New(Options{BaseURL: raw})
		require.Error(t, err, raw)
		assert.Equal(t, perrors.KindConfig, perrors.GetKind(err))
	}
}

func TestClient_ListTemplates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/apps/templates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err, "request id should be a uuid")
		cookie, err := r.Cookie("sessionid")
		require.NoError(t, err)
		assert.Equal(t, "sess-1", cookie.Value)
		w.Write([]byte(`[
			{"slug":"chatbot","name":"Chatbot","description":"Talk to your docs"},
			{"slug":"summarizer","name":"Summarizer"}
		]`))
	})
	c := newTestClient(t, mux, nil)

	templates, err := c.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "chatbot", templates[0].Slug)
	assert.Equal(t, "Talk to your docs", templates[0].Description)
	assert.False(t, templates[0].HasDetail())
	assert.Equal(t, "summarizer", templates[1].Slug)
}

func TestClient_GetTemplate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/apps/templates/chatbot", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"slug":"chatbot","name":"Chatbot",
			"app":{
				"type":{"id":3,"slug":"text-chat","description":"A chat app"},
				"processors":[{"api_backend":{"id":"X","name":"ChatGPT"},"config":{"model":"gpt-4"},"input":{"q":"{{q}}"}}],
				"config":{"welcome":"hi"}
			}
		}`))
	})
	c := newTestClient(t, mux, nil)

	tmpl, err := c.GetTemplate(context.Background(), "chatbot")
	require.NoError(t, err)
	assert.True(t, tmpl.HasDetail())

	typ, err := tmpl.App.Type()
	require.NoError(t, err)
	assert.Equal(t, "A chat app", typ.Description)
	assert.Equal(t, "A chat app", tmpl.Summary())

	ps, present, err := tmpl.App.Processors()
	require.NoError(t, err)
	assert.True(t, present)
	require.Len(t, ps, 1)
	assert.JSONEq(t, `"X"`, string(ps[0].BackendID()))
	assert.JSONEq(t, `{"welcome":"hi"}`, string(tmpl.App["config"]))
}

func TestClient_GetTemplate_NotFound(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), nil)

	_, err := c.GetTemplate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, perrors.KindNotFound, perrors.GetKind(err))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "/api/apps/templates/missing", statusErr.Path)
}

func TestClient_CreateApp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/apps", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "csrf-abc", r.Header.Get("X-CSRFToken"))

		body, _ := io.ReadAll(r.Body)
		var payload map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.JSONEq(t, `"My bot"`, string(payload["name"]))
		assert.JSONEq(t, `"chatbot"`, string(payload["template_slug"]))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"uuid":"abc123","name":"My bot"}`))
	})
	c := newTestClient(t, mux, nil)

	app, err := c.CreateApp(context.Background(), AppDraft{
		"name":          json.RawMessage(`"My bot"`),
		"template_slug": json.RawMessage(`"chatbot"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", app.UUID)
}

func TestClient_CreateApp_MissingUUID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"x"}`))
	}), nil)

	_, err := c.CreateApp(context.Background(), AppDraft{})
	require.Error(t, err)
	assert.Equal(t, perrors.KindAPI, perrors.GetKind(err))
}

func TestClient_GetProfileFlags(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profiles/me/flags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"IS_ORGANIZATION_OWNER":true,"CAN_PUBLISH":false}`))
	})
	c := newTestClient(t, mux, nil)

	flags, err := c.GetProfileFlags(context.Background())
	require.NoError(t, err)
	assert.True(t, flags.IsOrganizationOwner())
	assert.False(t, flags["CAN_PUBLISH"])
}

func TestClient_UnauthorizedRedirectsAndReturnsError(t *testing.T) {
	nav := &spyNavigator{path: "/apps/templates/chatbot"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}), nav)

	_, err := c.ListTemplates(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.KindUnauthorized, perrors.GetKind(err))
	assert.Equal(t, 1, nav.count())
}

func TestClient_ServerErrorPassesThrough(t *testing.T) {
	nav := &spyNavigator{path: "/"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}), nav)

	_, err := c.ListTemplates(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.KindAPI, perrors.GetKind(err))
	assert.Contains(t, err.Error(), "boom")
	assert.Zero(t, nav.count())
}

func TestClient_Offline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Policy: defaultPolicy()})
	require.NoError(t, err)

	_, err = c.ListTemplates(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.KindOffline, perrors.GetKind(err))
	assert.Contains(t, perrors.UserMessage(err), "unreachable")
}

func TestClient_DecodeError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}), nil)

	_, err := c.ListTemplates(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.KindAPI, perrors.GetKind(err))
}

func TestClient_RateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, RequestsPerSecond: 1})
	require.NoError(t, err)

	_, err = c.ListTemplates(context.Background())
	require.NoError(t, err)

	// The bucket is empty now; a short deadline cannot wait a full second.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ListTemplates(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRateBurst(t *testing.T) {
	tests := []struct {
		rps  float64
		want int
	}{
		{0.5, 1},
		{1, 1},
		{3.7, 3},
		{10, 10},
		{11, maxRateBurst},
		{1e12, maxRateBurst},
		{1e300, maxRateBurst},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rateBurst(tt.rps), "rateBurst(%v)", tt.rps)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.New()
	cfg.SetBaseURL("http://localhost:8000")
	cfg.SetSession(config.Session{Cookie: "sess", CSRFToken: "tok"})
	nav := &spyNavigator{}

	opts := OptionsFromConfig(cfg, nav)
	assert.Equal(t, "http://localhost:8000", opts.BaseURL)
	assert.Equal(t, "csrftoken", opts.Policy.CSRFCookieName)
	assert.Equal(t, "X-CSRFToken", opts.Policy.CSRFHeaderName)
	assert.Equal(t, []string{"/s/", "/hub", "/app/"}, opts.Policy.ExemptPrefixes)
	assert.Same(t, nav, opts.Navigator)
	require.Len(t, opts.Cookies, 2)
	assert.Equal(t, config.DefaultSessionCookieName, opts.Cookies[0].Name)
	assert.Equal(t, "sess", opts.Cookies[0].Value)
	assert.Equal(t, "tok", opts.Cookies[1].Value)
}

func TestProcessor_BackendID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"object", `{"id":"X","name":"ChatGPT","extra":[1,2]}`, `"X"`},
		{"numeric id", `{"id":7}`, `7`},
		{"bare string", `"X"`, `"X"`},
		{"bare number", `12`, `12`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Processor{APIBackend: json.RawMessage(tt.raw)}
			assert.JSONEq(t, tt.want, string(p.BackendID()))
		})
	}
}

func TestAppData_ProcessorsAbsent(t *testing.T) {
	for _, app := range []AppData{{}, {"processors": json.RawMessage(`null`)}} {
		ps, present, err := app.Processors()
		assert.NoError(t, err)
		assert.False(t, present)
		assert.Nil(t, ps)
	}
}

func TestTemplate_Summary(t *testing.T) {
	assert.Equal(t, "own", Template{Description: "own"}.Summary())
	assert.Equal(t, "", Template{}.Summary())
	assert.Equal(t, "typed", Template{App: AppData{"type": json.RawMessage(`{"description":"typed"}`)}}.Summary())
}
