package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/health"
	"github.com/grovetools/pilot/pkg/projects"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/pkg/tmux"
)

func testViews() []sessionView {
	now := time.Now()
	return []sessionView{
		{
			Session: tmux.Session{Name: "claude-api", ShortName: "api", Windows: 1, AttachedClients: 2, RemoteClients: 1, Created: now.Add(-time.Hour), Activity: now},
			Status:  health.StateActive,
			Meta:    store.SessionMeta{Dir: "/src/api", Label: "auth", ClaudeSessionID: "0f8c2d3e-1111-4222-8333-444455556666"},
		},
		{
			Session: tmux.Session{Name: "claude-web", ShortName: "web", Windows: 1, Activity: now.Add(-2 * time.Hour)},
			Status:  health.StateDead,
			Meta:    store.SessionMeta{Dir: "/src/web"},
		},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "pilot.json"), nil)
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{
		"new", "resume", "list", "status", "kill", "rename", "label", "logs",
		"projects", "project-name", "config", "tmux-setup", "prune", "paths", "version",
	} {
		t.Run(name, func(t *testing.T) {
			found, _, err := root.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, found.Name())
		})
	}
}

func TestSessionList(t *testing.T) {
	views := testViews()

	t.Run("dead hidden", func(t *testing.T) {
		live := liveOnly(views)
		require.Len(t, live, 1)
		assert.Equal(t, "api", live[0].ShortName)
		assert.Len(t, views, 2)
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		renderSessionList(&buf, views, 0, true)
		out := buf.String()
		assert.Contains(t, out, "LABEL")
		assert.Contains(t, out, "auth")
		assert.Contains(t, out, "2 local, 1 remote")
		assert.Contains(t, out, "detached")
		assert.Contains(t, out, "/src/web")
	})

	t.Run("label column only when labelled", func(t *testing.T) {
		var buf bytes.Buffer
		renderSessionList(&buf, views[1:], 0, true)
		assert.NotContains(t, buf.String(), "LABEL")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		renderSessionList(&buf, nil, 0, true)
		assert.Contains(t, buf.String(), "No active Claude sessions.")
		assert.Contains(t, buf.String(), "pilot new [name] -d <dir>")
		assert.NotContains(t, buf.String(), "tmux server")
	})

	t.Run("empty without a server", func(t *testing.T) {
		var buf bytes.Buffer
		renderSessionList(&buf, nil, 0, false)
		assert.Contains(t, buf.String(), "No tmux server is running.")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, listEntries(views)))
		var decoded []map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "api", decoded[0]["name"])
		assert.Equal(t, "active", decoded[0]["status"])
		assert.Equal(t, float64(1), decoded[0]["remote_clients"])
		assert.NotEmpty(t, decoded[0]["created"])
	})
}

func TestClientsCell(t *testing.T) {
	tests := []struct {
		local, remote int
		want          string
	}{
		{0, 0, "detached"},
		{1, 0, "1 local"},
		{0, 3, "3 remote"},
		{1, 2, "1 local, 2 remote"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, clientsCell(tt.local, tt.remote))
		})
	}
}

func TestStatusReport(t *testing.T) {
	view := testViews()[0]
	report := newStatusReport(view, "node")
	assert.Equal(t, "claude-api", report.FullName)
	assert.Equal(t, []string{}, report.ClaudeArgs)

	var buf bytes.Buffer
	view.Meta.ClaudeArgs = []string{"--model", "opus"}
	renderStatus(&buf, newStatusReport(view, "node"), view)
	out := buf.String()
	assert.Contains(t, out, "Session: api")
	assert.Contains(t, out, "Pane cmd:")
	assert.Contains(t, out, "node")
	assert.Contains(t, out, "--model opus")
	assert.NotContains(t, out, "Preflight")

	view.Meta.Preflight = "source .envrc"
	buf.Reset()
	renderStatus(&buf, newStatusReport(view, "node"), view)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Contains(t, lines[len(lines)-1], "Preflight:")
	assert.Contains(t, lines[len(lines)-1], "source .envrc")
}

func TestSelectSessions(t *testing.T) {
	live := []tmux.Session{{Name: "claude-api"}, {Name: "claude-api-v2"}, {Name: "claude-web"}}
	assert.Equal(t, []tmux.Session{{Name: "claude-api"}}, selectSessions(live, "claude-api"))
	assert.Empty(t, selectSessions(live, "claude-missing"))
}

func TestLogsLinesValidation(t *testing.T) {
	assert.NoError(t, validateLines(1))
	assert.NoError(t, validateLines(200))
	for _, n := range []int{0, -5} {
		err := validateLines(n)
		require.Error(t, err)
		assert.True(t, pilerrors.Is(err, pilerrors.ErrCodeInvalidInput))
	}

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"logs", "api", "-n", "0"})
	err := root.Execute()
	require.Error(t, err)
	assert.True(t, pilerrors.Is(err, pilerrors.ErrCodeInvalidInput))
}

func TestFollowPane(t *testing.T) {
	t.Run("redraws on change until capture fails", func(t *testing.T) {
		frames := []string{"one", "one", "two"}
		calls := 0
		capture := func() (string, bool) {
			if calls >= len(frames) {
				return "", false
			}
			calls++
			return frames[calls-1], true
		}
		clears := 0
		var buf bytes.Buffer
		followPane(context.Background(), &buf, capture, func() { clears++ }, time.Millisecond)

		assert.Equal(t, 2, clears)
		assert.Equal(t, "one\ntwo\n", buf.String())
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		capture := func() (string, bool) {
			calls++
			if calls == 3 {
				cancel()
			}
			return "same", true
		}
		var buf bytes.Buffer
		followPane(ctx, &buf, capture, func() {}, time.Millisecond)
		assert.Equal(t, 3, calls)
		assert.Equal(t, "same\n\n", buf.String())
	})
}

func TestConfigSettings(t *testing.T) {
	st := newTestStore(t)
	var buf bytes.Buffer

	require.NoError(t, setSetting(&buf, st, "tmux.status_style", "bg=blue"))
	require.NoError(t, setSetting(&buf, st, "default_preflight", "nvm use 20"))
	require.NoError(t, setSetting(&buf, st, "logging.file.enabled", "true"))
	assert.Contains(t, buf.String(), "Set default_preflight = nvm use 20")

	settings, err := st.Settings()
	require.NoError(t, err)
	assert.Equal(t, "bg=blue", settings.Tmux.StatusStyle)
	assert.Equal(t, "nvm use 20", settings.DefaultPreflight)
	assert.True(t, settings.Logging.File.Enabled)

	buf.Reset()
	require.NoError(t, getSetting(&buf, st, "default_preflight"))
	assert.Equal(t, "nvm use 20\n", buf.String())

	err = getSetting(&buf, st, "shell")
	assert.True(t, pilerrors.Is(err, pilerrors.ErrCodeInvalidInput))

	assert.Error(t, setSetting(&buf, st, "", "x"))
}

func TestShowConfig(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SetSetting("tmux.status_style", "bg=blue"))
	require.NoError(t, st.SetSetting("shell", "bash"))
	require.NoError(t, st.SetSession("claude-api", store.SessionMeta{Dir: "/src/api"}))

	formats := []struct {
		format string
		want   []string
	}{
		{"text", []string{"Settings:", "tmux:", "status_style", "bg=blue", "Sessions: 1 stored", "pilot tmux-setup"}},
		{"yaml", []string{"shell: bash", "status_style: bg=blue"}},
		{"toml", []string{"shell = ", "[tmux]", "status_style = "}},
		{"json", []string{`"shell": "bash"`, `"status_style": "bg=blue"`}},
	}
	for _, f := range formats {
		t.Run(f.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, showConfig(&buf, st, f.format))
			for _, want := range f.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		err := showConfig(&bytes.Buffer{}, st, "ini")
		assert.True(t, pilerrors.Is(err, pilerrors.ErrCodeInvalidInput))
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, showConfig(&buf, newTestStore(t), "text"))
		assert.Contains(t, buf.String(), "No settings configured.")
		assert.Contains(t, buf.String(), "Sessions: 0 stored")
	})
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"missing", "", false},
		{"valid", `{"settings": {"shell": "bash"}, "sessions": {}, "projects": {}}`, false},
		{"invalid", `{"sessions": {"claude-api": {"claude_args": "--model opus"}}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			}
			var buf bytes.Buffer
			err := validateConfig(&buf, path)
			if tt.wantErr {
				assert.True(t, pilerrors.Is(err, pilerrors.ErrCodeConfigInvalid))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, buf.String())
		})
	}
}

func TestTmuxSetup(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		st := newTestStore(t)
		err := tmuxSetup(&bytes.Buffer{}, st, func(string) bool { return false })
		assert.True(t, pilerrors.Is(err, pilerrors.ErrCodeAborted))
		settings, err := st.Settings()
		require.NoError(t, err)
		assert.True(t, settings.Tmux.IsZero())
	})

	t.Run("applies defaults then shows them", func(t *testing.T) {
		st := newTestStore(t)
		var prompts []string
		var buf bytes.Buffer
		require.NoError(t, tmuxSetup(&buf, st, func(p string) bool {
			prompts = append(prompts, p)
			return true
		}))
		assert.Equal(t, []string{"Apply?"}, prompts)
		assert.Contains(t, buf.String(), "Tmux config saved")

		settings, err := st.Settings()
		require.NoError(t, err)
		assert.Equal(t, "[#S] ", settings.Tmux.StatusLeft)
		assert.Equal(t, "40", settings.Tmux.StatusLeftLength)
		assert.Equal(t, "bg=black,fg=white", settings.Tmux.StatusStyle)

		buf.Reset()
		require.NoError(t, tmuxSetup(&buf, st, func(string) bool {
			t.Fatal("no prompt expected")
			return false
		}))
		assert.Contains(t, buf.String(), "Current tmux config:")
		assert.Contains(t, buf.String(), "Available settings:")
	})
}

func TestPrune(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SetSession("claude-api", store.SessionMeta{Dir: "/src/api"}))
	require.NoError(t, st.SetSession("claude-web", store.SessionMeta{Dir: "/src/web"}))
	require.NoError(t, st.SetSession("claude-old", store.SessionMeta{Dir: "/src/old"}))

	err := prune(&bytes.Buffer{}, st, []string{"claude-api"}, func(string) bool { return false })
	assert.True(t, pilerrors.Is(err, pilerrors.ErrCodeAborted))

	var prompt string
	var buf bytes.Buffer
	require.NoError(t, prune(&buf, st, []string{"claude-api"}, func(p string) bool {
		prompt = p
		return true
	}))
	assert.Equal(t, "Forget 2 stored sessions (old, web)?", prompt)
	assert.Contains(t, buf.String(), "Pruned 2 sessions")

	metas, err := st.Sessions()
	require.NoError(t, err)
	assert.Len(t, metas, 1)
	assert.Contains(t, metas, "claude-api")

	buf.Reset()
	require.NoError(t, prune(&buf, st, []string{"claude-api"}, nil))
	assert.Contains(t, buf.String(), "Nothing to prune.")
}

func TestRenderProjects(t *testing.T) {
	activity := time.Now().Add(-time.Hour)
	list := []projects.Project{
		{
			Path: "/src/api", Name: "backend", ConversationCount: 3, TotalSizeBytes: 2_500_000,
			LastActivity: &activity, HasMemory: true, PathExists: true,
			Sessions: []projects.Session{{Name: "api", Status: "idle"}},
		},
		{Path: "/src/gone", Name: "gone", ConversationCount: 1, Sessions: []projects.Session{}},
	}

	var buf bytes.Buffer
	renderProjects(&buf, list, 0)
	out := buf.String()
	for _, want := range []string{"PROJECT", "CONVOS", "backend", "2.5 MB", "yes", "api", "/src/gone"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	renderProjects(&buf, nil, 0)
	assert.Contains(t, buf.String(), "No Claude projects found.")
}

func TestPathsCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PILOT_HOME", home)
	t.Setenv("PILOT_CONFIG", "")
	t.Setenv("CLAUDE_CONFIG_DIR", "/opt/claude")

	cmd := NewPathsCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	var out PathsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, filepath.Join(home, "pilot.json"), out.ConfigFile)
	assert.Equal(t, filepath.Join("/opt/claude", "projects"), out.TranscriptRoot)
	assert.True(t, strings.HasPrefix(out.LogDir, home))
}

func TestConfigCommandPositional(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pilot.json")
	t.Setenv("PILOT_CONFIG", path)

	run := func(args ...string) (string, error) {
		root := NewRootCmd()
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetArgs(args)
		err := root.Execute()
		return buf.String(), err
	}

	out, err := run("config", "default_preflight", "nvm", "use", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Set default_preflight = nvm use 20")

	out, err = run("config", "default_preflight")
	require.NoError(t, err)
	assert.Equal(t, "nvm use 20\n", out)

	out, err = run("config", "get", "default_preflight")
	require.NoError(t, err)
	assert.Equal(t, "nvm use 20\n", out)

	_, err = run("config", "unset", "default_preflight")
	require.NoError(t, err)
	_, err = run("config", "default_preflight")
	assert.Error(t, err)
}
