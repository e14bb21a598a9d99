package api

import (
	"bytes"
	"encoding/json"
)

// Template is a reusable blueprint for creating an app. The list endpoint
// returns summaries with App unset; the detail endpoint embeds App.
type Template struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	App         AppData `json:"app,omitempty"`
}

// HasDetail reports whether the template already embeds its app data.
func (t Template) HasDetail() bool {
	return t.App != nil
}

// Summary returns the card text: the description, falling back to the
// app type's description.
func (t Template) Summary() string {
	if t.Description != "" {
		return t.Description
	}
	if typ, err := t.App.Type(); err == nil && typ != nil {
		return typ.Description
	}
	return ""
}

// AppData is the partial application embedded in a template. It is kept as
// raw JSON so fields this client doesn't know about survive the round trip
// into the creation payload.
type AppData map[string]json.RawMessage

// AppType is the declared type of an application.
type AppType struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Slug        string          `json:"slug,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Type decodes the "type" field. Returns nil when absent or null.
func (a AppData) Type() (*AppType, error) {
	raw, ok := a["type"]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var t AppType
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Processors decodes the "processors" field. The bool is false when the
// field is absent or null.
func (a AppData) Processors() ([]Processor, bool, error) {
	raw, ok := a["processors"]
	if !ok || isNull(raw) {
		return nil, false, nil
	}
	var ps []Processor
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, true, err
	}
	return ps, true, nil
}

// Processor is a configured unit as embedded in a template. APIBackend is
// usually the full backend object but may already be a bare id.
type Processor struct {
	APIBackend json.RawMessage `json:"api_backend"`
	Config     json.RawMessage `json:"config"`
	Input      json.RawMessage `json:"input"`
}

// BackendID returns the backend reference to submit: the "id" of an
// embedded backend object, or the value itself when it is already scalar.
func (p Processor) BackendID() json.RawMessage {
	trimmed := bytes.TrimSpace(p.APIBackend)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return p.APIBackend
	}
	var obj struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil
	}
	return obj.ID
}

// ProcessorRef is the narrowed processor shape accepted by POST /api/apps.
// Absent fields stay absent.
type ProcessorRef struct {
	APIBackend json.RawMessage `json:"api_backend,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
}

// AppDraft is the creation payload: the template's app data shallow-merged
// with the user's choices.
type AppDraft map[string]json.RawMessage

// App is the server's view of a created application.
type App struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name,omitempty"`
	Published bool   `json:"is_published,omitempty"`
}

// ProfileFlags are capability flags for the signed-in user.
type ProfileFlags map[string]bool

// FlagOrganizationOwner marks users who administer an organization.
const FlagOrganizationOwner = "IS_ORGANIZATION_OWNER"

// IsOrganizationOwner reports whether the organization menu should be shown.
func (f ProfileFlags) IsOrganizationOwner() bool {
	return f[FlagOrganizationOwner]
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
