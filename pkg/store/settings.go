package store

import (
	"strings"
)

// Settings is the typed view of the document's settings section.
type Settings struct {
	DefaultPreflight string          `json:"default_preflight,omitempty" jsonschema:"description=Preflight command used when a session has none"`
	Shell            string          `json:"shell,omitempty" jsonschema:"description=Shell that runs the launch command,default=zsh"`
	ShellRC          string          `json:"shell_rc,omitempty" jsonschema:"description=Startup file sourced before a preflight command"`
	EnvScript        string          `json:"env_script,omitempty" jsonschema:"description=Environment script sourced when present"`
	AssistantBin     string          `json:"assistant_bin,omitempty" jsonschema:"description=Assistant executable,default=claude"`
	Tmux             TmuxSettings    `json:"tmux,omitempty"`
	Logging          LoggingSettings `json:"logging,omitempty"`
}

// TmuxSettings holds the status-bar options applied to new sessions. Empty
// values are left at tmux's defaults.
type TmuxSettings struct {
	StatusLeft        string `json:"status_left,omitempty"`
	StatusRight       string `json:"status_right,omitempty"`
	StatusLeftLength  string `json:"status_left_length,omitempty" jsonschema:"oneof_type=string;integer"`
	StatusRightLength string `json:"status_right_length,omitempty" jsonschema:"oneof_type=string;integer"`
	StatusStyle       string `json:"status_style,omitempty"`
}

// IsZero reports whether no option is set.
func (t TmuxSettings) IsZero() bool {
	return t == TmuxSettings{}
}

// LoggingSettings configures the logging package.
type LoggingSettings struct {
	Level        string            `json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	ReportCaller bool              `json:"report_caller,omitempty"`
	File         FileSinkSettings  `json:"file,omitempty"`
	Format       LogFormatSettings `json:"format,omitempty"`
}

// FileSinkSettings enables the per-component log file.
type FileSinkSettings struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty" jsonschema:"description=Overrides the default log directory"`
}

// LogFormatSettings selects the console format.
type LogFormatSettings struct {
	Preset           string `json:"preset,omitempty" jsonschema:"enum=default,enum=simple,enum=json"`
	DisableTimestamp bool   `json:"disable_timestamp,omitempty"`
	DisableComponent bool   `json:"disable_component,omitempty"`
}

// Setting defaults applied by Settings.
const (
	DefaultShell        = "zsh"
	DefaultShellRC      = "~/.zsh/.zshrc"
	DefaultEnvScript    = "~/bin/claudenv"
	DefaultAssistantBin = "claude"
)

func (s *Settings) applyDefaults() {
	if s.Shell == "" {
		s.Shell = DefaultShell
	}
	if s.ShellRC == "" {
		s.ShellRC = DefaultShellRC
	}
	if s.EnvScript == "" {
		s.EnvScript = DefaultEnvScript
	}
	if s.AssistantBin == "" {
		s.AssistantBin = DefaultAssistantBin
	}
}

// Settings returns the typed settings with defaults filled in.
func (s *Store) Settings() (Settings, error) {
	doc, err := s.Load()
	if err != nil {
		return Settings{}, err
	}
	return doc.TypedSettings()
}

// TypedSettings decodes the document's settings section.
func (d *Document) TypedSettings() (Settings, error) {
	var settings Settings
	if err := Decode(d.Settings, &settings); err != nil {
		return Settings{}, err
	}
	settings.applyDefaults()
	return settings, nil
}

// UpdateSettings shallow-merges values into the settings section.
func (s *Store) UpdateSettings(values map[string]interface{}) error {
	return s.modify(func(doc *Document) (bool, error) {
		for k, v := range values {
			doc.Settings[k] = v
		}
		return len(values) > 0, nil
	})
}

// SetSetting sets one value. Dotted keys address nested objects
// ("tmux.status_left"), which are created as needed.
func (s *Store) SetSetting(key string, value interface{}) error {
	return s.modify(func(doc *Document) (bool, error) {
		setPath(doc.Settings, strings.Split(key, "."), value)
		return true, nil
	})
}

// UnsetSetting removes one value addressed like SetSetting.
func (s *Store) UnsetSetting(key string) error {
	return s.modify(func(doc *Document) (bool, error) {
		parts := strings.Split(key, ".")
		parent, ok := lookupMap(doc.Settings, parts[:len(parts)-1])
		if !ok {
			return false, nil
		}
		if _, ok := parent[parts[len(parts)-1]]; !ok {
			return false, nil
		}
		delete(parent, parts[len(parts)-1])
		return true, nil
	})
}

// GetSetting returns the raw value at a dotted key.
func (d *Document) GetSetting(key string) (interface{}, bool) {
	parts := strings.Split(key, ".")
	parent, ok := lookupMap(d.Settings, parts[:len(parts)-1])
	if !ok {
		return nil, false
	}
	v, ok := parent[parts[len(parts)-1]]
	return v, ok
}

func setPath(m map[string]interface{}, parts []string, value interface{}) {
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func lookupMap(m map[string]interface{}, parts []string) (map[string]interface{}, bool) {
	for _, p := range parts {
		next, ok := m[p].(map[string]interface{})
		if !ok {
			return nil, false
		}
		m = next
	}
	return m, true
}
