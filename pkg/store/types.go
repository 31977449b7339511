package store

import (
	"encoding/json"
	"time"
)

// Document is the single persisted unit. Every mutation rewrites it whole.
type Document struct {
	Settings map[string]interface{} `json:"settings" jsonschema:"description=Free-form settings; see Settings for the recognised keys"`
	Sessions map[string]SessionMeta `json:"sessions" jsonschema:"description=Session metadata keyed by qualified tmux session name"`
	Projects map[string]ProjectMeta `json:"projects" jsonschema:"description=Project naming overlay keyed by absolute path"`
}

// NewDocument returns the default empty document.
func NewDocument() *Document {
	return &Document{
		Settings: map[string]interface{}{},
		Sessions: map[string]SessionMeta{},
		Projects: map[string]ProjectMeta{},
	}
}

func (d *Document) normalize() {
	if d.Settings == nil {
		d.Settings = map[string]interface{}{}
	}
	if d.Sessions == nil {
		d.Sessions = map[string]SessionMeta{}
	}
	if d.Projects == nil {
		d.Projects = map[string]ProjectMeta{}
	}
}

// SessionMeta is the persisted record for one session. Keys written by other
// versions of the tool are kept in Extra and written back unchanged.
type SessionMeta struct {
	Dir             string                     `json:"dir,omitempty" jsonschema:"description=Absolute working directory"`
	ClaudeSessionID string                     `json:"claude_session_id,omitempty" jsonschema:"description=Bound conversation identifier"`
	Label           string                     `json:"label,omitempty"`
	ClaudeArgs      []string                   `json:"claude_args,omitempty" jsonschema:"description=Extra arguments passed to the assistant"`
	Preflight       string                     `json:"preflight,omitempty" jsonschema:"description=Shell command run before the assistant starts"`
	CreatedAt       time.Time                  `json:"created_at,omitempty" jsonschema:"type=string,format=date-time"`
	Extra           map[string]json.RawMessage `json:"-"`
}

var sessionMetaKeys = map[string]bool{
	"dir": true, "claude_session_id": true, "label": true,
	"claude_args": true, "preflight": true, "created_at": true,
}

// MarshalJSON writes the known fields plus any passthrough keys.
func (m SessionMeta) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Dir != "" {
		out["dir"] = m.Dir
	}
	if m.ClaudeSessionID != "" {
		out["claude_session_id"] = m.ClaudeSessionID
	}
	if m.Label != "" {
		out["label"] = m.Label
	}
	if m.ClaudeArgs != nil {
		out["claude_args"] = m.ClaudeArgs
	}
	if m.Preflight != "" {
		out["preflight"] = m.Preflight
	}
	if !m.CreatedAt.IsZero() {
		out["created_at"] = m.CreatedAt.Format(time.RFC3339)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and stashes the rest in Extra.
func (m *SessionMeta) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var known struct {
		Dir             string   `json:"dir"`
		ClaudeSessionID string   `json:"claude_session_id"`
		Label           string   `json:"label"`
		ClaudeArgs      []string `json:"claude_args"`
		Preflight       string   `json:"preflight"`
		CreatedAt       string   `json:"created_at"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	*m = SessionMeta{
		Dir:             known.Dir,
		ClaudeSessionID: known.ClaudeSessionID,
		Label:           known.Label,
		ClaudeArgs:      known.ClaudeArgs,
		Preflight:       known.Preflight,
	}
	if known.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, known.CreatedAt); err == nil {
			m.CreatedAt = ts
		} else {
			// Unparseable timestamps survive a round trip untouched.
			m.setExtra("created_at", raw["created_at"])
		}
	}

	for k, v := range raw {
		if !sessionMetaKeys[k] {
			m.setExtra(k, v)
		}
	}
	return nil
}

func (m *SessionMeta) setExtra(key string, value json.RawMessage) {
	if m.Extra == nil {
		m.Extra = make(map[string]json.RawMessage)
	}
	m.Extra[key] = value
}

// SessionPatch is a shallow merge applied by Update. Nil fields are left
// untouched.
type SessionPatch struct {
	Dir             *string
	ClaudeSessionID *string
	Label           *string
	ClaudeArgs      *[]string
	Preflight       *string
	CreatedAt       *time.Time
	Extra           map[string]interface{}
}

// Apply merges p into m.
func (m *SessionMeta) Apply(p SessionPatch) error {
	if p.Dir != nil {
		m.Dir = *p.Dir
	}
	if p.ClaudeSessionID != nil {
		m.ClaudeSessionID = *p.ClaudeSessionID
	}
	if p.Label != nil {
		m.Label = *p.Label
	}
	if p.ClaudeArgs != nil {
		m.ClaudeArgs = copyArgs(*p.ClaudeArgs)
	}
	if p.Preflight != nil {
		m.Preflight = *p.Preflight
	}
	if p.CreatedAt != nil {
		m.CreatedAt = *p.CreatedAt
	}
	for k, v := range p.Extra {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		m.setExtra(k, data)
	}
	return nil
}

// Clone returns a deep copy so callers never share backing state with a
// loaded document.
func (m SessionMeta) Clone() SessionMeta {
	c := m
	if m.ClaudeArgs != nil {
		c.ClaudeArgs = copyArgs(m.ClaudeArgs)
	}
	if m.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// copyArgs copies args, keeping an empty non-nil slice non-nil.
func copyArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	return out
}

// ProjectMeta is the naming overlay for a project directory.
type ProjectMeta struct {
	Name  string                     `json:"name,omitempty" jsonschema:"description=Custom display name"`
	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON writes the name plus any passthrough keys.
func (p ProjectMeta) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Extra)+1)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the name and stashes the rest in Extra.
func (p *ProjectMeta) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ProjectMeta{}
	for k, v := range raw {
		if k == "name" {
			if err := json.Unmarshal(v, &p.Name); err != nil {
				return err
			}
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[k] = v
	}
	return nil
}

// ProjectPatch is a shallow merge applied by UpdateProject.
type ProjectPatch struct {
	Name *string
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
