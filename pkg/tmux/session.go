package tmux

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var listFields = []string{
	"session_name",
	"session_windows",
	"session_created",
	"session_attached",
	"session_activity",
	"pane_pid",
}

func listFormat() string {
	parts := make([]string, len(listFields))
	for i, f := range listFields {
		parts[i] = "#{" + f + "}"
	}
	return strings.Join(parts, fieldDelimiter)
}

// exact targets a session by its full name, so "claude-a" never matches
// "claude-api" by prefix.
func exact(name string) string {
	return "=" + name
}

// exactPane targets the active pane of the session's current window.
func exactPane(name string) string {
	return "=" + name + ":"
}

// ListSessions returns every supervised session with client counts for the
// session and its mirror. Any tmux failure, including no server running,
// yields an empty list.
func (c *Client) ListSessions(ctx context.Context) []Session {
	output, err := c.run(ctx, "list-sessions", "-F", listFormat())
	if err != nil {
		return []Session{}
	}

	sessions := []Session{}
	for _, line := range strings.Split(output, "\n") {
		s, ok := parseSessionLine(line)
		if !ok || !IsSupervised(s.Name) {
			continue
		}

		s.AttachedClients = c.ClientCount(ctx, s.Name)
		if mirror := MirrorName(s.Name); c.Exists(ctx, mirror) {
			s.RemoteClients = c.ClientCount(ctx, mirror)
		}
		sessions = append(sessions, s)
	}
	return sessions
}

func parseSessionLine(line string) (Session, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Session{}, false
	}
	parts := strings.Split(line, fieldDelimiter)
	if len(parts) < len(listFields) {
		return Session{}, false
	}

	atoi := func(s string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(s))
		return n
	}
	unix := func(s string) time.Time {
		n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return time.Unix(n, 0)
	}

	name := parts[0]
	return Session{
		Name:      name,
		ShortName: ShortName(name),
		Windows:   atoi(parts[1]),
		Created:   unix(parts[2]),
		Attached:  atoi(parts[3]) > 0,
		Activity:  unix(parts[4]),
		PanePID:   atoi(parts[5]),
	}, true
}

// Exists reports whether a session with exactly this name is live.
func (c *Client) Exists(ctx context.Context, name string) bool {
	_, err := c.run(ctx, "has-session", "-t", exact(name))
	return err == nil
}

// Create starts a detached session running opts.Command in opts.Dir with a
// fixed 220x50 geometry, then applies the status-bar style. Style options
// are best effort. The returned string is tmux's output.
func (c *Client) Create(ctx context.Context, opts CreateOptions) (string, error) {
	if opts.Name == "" {
		return "", fmt.Errorf("session name is required")
	}
	if err := c.builder.Validate("sessionName", opts.Name); err != nil {
		return "", err
	}

	args := []string{"new-session", "-d", "-s", opts.Name, "-x", "220", "-y", "50"}
	if opts.Dir != "" {
		args = append(args, "-c", opts.Dir)
	}
	if opts.Command != "" {
		args = append(args, opts.Command)
	}

	output, err := c.run(ctx, args...)
	if err != nil {
		return output, fmt.Errorf("failed to create session %s: %w", opts.Name, err)
	}

	c.applyStyle(ctx, opts.Name, opts.Style)
	return output, nil
}

func (c *Client) applyStyle(ctx context.Context, name string, style StatusStyle) {
	for _, opt := range style.options() {
		_, _ = c.run(ctx, "set-option", "-t", exact(name), opt[0], opt[1])
	}
}

// Kill kills a single session.
func (c *Client) Kill(ctx context.Context, name string) error {
	_, err := c.run(ctx, "kill-session", "-t", exact(name))
	return err
}

// KillWithMirror kills name's mirror when it exists, then name itself.
func (c *Client) KillWithMirror(ctx context.Context, name string) error {
	if mirror := MirrorName(name); c.Exists(ctx, mirror) {
		_ = c.Kill(ctx, mirror)
	}
	return c.Kill(ctx, name)
}

// Rename renames a session.
func (c *Client) Rename(ctx context.Context, oldName, newName string) error {
	if err := c.builder.Validate("sessionName", newName); err != nil {
		return err
	}
	_, err := c.run(ctx, "rename-session", "-t", exact(oldName), newName)
	return err
}

// SendKeys sends keys to the session's active pane.
func (c *Client) SendKeys(ctx context.Context, name string, keys ...string) error {
	args := append([]string{"send-keys", "-t", exactPane(name)}, keys...)
	_, err := c.run(ctx, args...)
	return err
}

// Attach gives the terminal to the session and blocks until the client
// detaches. Inside tmux the current client is switched instead.
func (c *Client) Attach(ctx context.Context, name string) error {
	if InsideTmux() {
		_, err := c.run(ctx, "switch-client", "-t", exact(name))
		return err
	}
	return c.runInteractive(ctx, "attach-session", "-t", exact(name))
}

// CapturePane returns the last lines of the session's active pane. With
// escapes the text keeps its color sequences.
func (c *Client) CapturePane(ctx context.Context, name string, lines int, escapes bool) (string, bool) {
	args := []string{"capture-pane", "-t", exactPane(name), "-p", "-S", fmt.Sprintf("-%d", lines)}
	if escapes {
		args = append(args, "-e")
	}
	output, err := c.run(ctx, args...)
	if err != nil {
		return "", false
	}
	return strings.TrimRight(output, "\n"), true
}

// PaneForegroundCommand returns the command running in the foreground of
// the session's active pane.
func (c *Client) PaneForegroundCommand(ctx context.Context, name string) (string, bool) {
	output, err := c.run(ctx, "display-message", "-t", exactPane(name), "-p", "#{pane_current_command}")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(output), true
}

// PanePID returns the pid of the process tmux started in the active pane.
func (c *Client) PanePID(ctx context.Context, name string) (int, bool) {
	output, err := c.run(ctx, "display-message", "-t", exactPane(name), "-p", "#{pane_pid}")
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0, false
	}
	return pid, true
}

// ClientCount returns the number of clients attached to the session.
func (c *Client) ClientCount(ctx context.Context, name string) int {
	output, err := c.run(ctx, "list-clients", "-t", exact(name))
	if err != nil {
		return 0
	}
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
