// Package health classifies a live session as dead, active, waiting or idle.
package health

import (
	"context"
	"path/filepath"
	"regexp"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/grovetools/pilot/pkg/process"
	"github.com/grovetools/pilot/pkg/tmux"
)

// State is the health of a session.
type State string

const (
	StateDead    State = "dead"
	StateActive  State = "active"
	StateWaiting State = "waiting"
	StateIdle    State = "idle"
)

const (
	// DefaultActiveWindow is how recent the last output must be for a
	// session to count as active.
	DefaultActiveWindow = 10 * time.Second
	// PaneTailLines is how much of the pane is checked for approval prompts.
	PaneTailLines = 5
)

var (
	shellCommands = map[string]bool{"zsh": true, "bash": true, "sh": true, "fish": true}

	// AssistantProcesses are the names that mark the assistant as running
	// unless a classifier is given its own list.
	AssistantProcesses = []string{"claude", "node"}

	approvalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bDo you want to proceed\b`),
		regexp.MustCompile(`(?i)\bApprove\b`),
		regexp.MustCompile(`(?i)\bAllow\b`),
		regexp.MustCompile(`(?i)\bDeny\b`),
		regexp.MustCompile(`(?i)\by/n\b`),
		regexp.MustCompile(`(?i)\bYes/No\b`),
		regexp.MustCompile(`\(Y\)es`),
		regexp.MustCompile(`(?i)\bpermission\b`),
		regexp.MustCompile(`Tool Use:`),
	}
)

// Snapshot is everything classification looks at.
type Snapshot struct {
	// ForegroundCommand is the pane's foreground command. Empty when the
	// query failed.
	ForegroundCommand string
	// PanePID is the pid tmux started in the pane.
	PanePID int
	// AssistantRunning is true when the pane's process tree contains the
	// assistant.
	AssistantRunning bool
	// PaneTail is the last few lines of the pane, escapes included or not.
	PaneTail string
	// LastActivity is the session's last output time.
	LastActivity time.Time
}

// Evaluate applies the classification rules in order:
// a shell in the foreground is dead, a missing assistant is dead, an
// approval prompt is waiting, recent output is active, anything else idle.
func Evaluate(s Snapshot, now time.Time, activeWindow time.Duration) State {
	if shellCommands[s.ForegroundCommand] {
		return StateDead
	}
	if s.PanePID <= 0 || !s.AssistantRunning {
		return StateDead
	}
	if WaitingForApproval(s.PaneTail) {
		return StateWaiting
	}
	if now.Sub(s.LastActivity) < activeWindow {
		return StateActive
	}
	return StateIdle
}

// WaitingForApproval reports whether text shows an approval prompt.
func WaitingForApproval(text string) bool {
	if text == "" {
		return false
	}
	stripped := ansi.Strip(text)
	for _, p := range approvalPatterns {
		if p.MatchString(stripped) {
			return true
		}
	}
	return false
}

// PaneInspector is the slice of the tmux gateway the classifier needs.
type PaneInspector interface {
	PaneForegroundCommand(ctx context.Context, name string) (string, bool)
	CapturePane(ctx context.Context, name string, lines int, escapes bool) (string, bool)
}

// Classifier gathers a Snapshot for a session and evaluates it.
type Classifier struct {
	Panes     PaneInspector
	Processes process.Inspector
	// Assistants are the process names searched for in the pane's tree.
	Assistants []string
	// Alive reports whether a pid exists. The tree walk is skipped for
	// pane pids that are gone.
	Alive        func(pid int) bool
	Now          func() time.Time
	ActiveWindow time.Duration
}

// NewClassifier returns a classifier with the default recency window and
// assistant names.
func NewClassifier(panes PaneInspector, processes process.Inspector) *Classifier {
	return &Classifier{
		Panes:        panes,
		Processes:    processes,
		Assistants:   append([]string(nil), AssistantProcesses...),
		Alive:        process.IsProcessAlive,
		Now:          time.Now,
		ActiveWindow: DefaultActiveWindow,
	}
}

// WithAssistant adds the base name of bin to the assistant names.
func (c *Classifier) WithAssistant(bin string) *Classifier {
	if bin == "" {
		return c
	}
	name := filepath.Base(bin)
	for _, existing := range c.Assistants {
		if existing == name {
			return c
		}
	}
	c.Assistants = append(c.Assistants, name)
	return c
}

// Snapshot collects the inputs for s, skipping work a previous rule
// already decided.
func (c *Classifier) Snapshot(ctx context.Context, s tmux.Session) Snapshot {
	snap := Snapshot{PanePID: s.PanePID, LastActivity: s.Activity}

	if cmd, ok := c.Panes.PaneForegroundCommand(ctx, s.Name); ok {
		snap.ForegroundCommand = cmd
	}
	if shellCommands[snap.ForegroundCommand] || s.PanePID <= 0 {
		return snap
	}
	if c.Alive != nil && !c.Alive(s.PanePID) {
		return snap
	}

	assistants := c.Assistants
	if len(assistants) == 0 {
		assistants = AssistantProcesses
	}
	snap.AssistantRunning = process.TreeContains(ctx, c.Processes, s.PanePID, assistants...)
	if !snap.AssistantRunning {
		return snap
	}

	if tail, ok := c.Panes.CapturePane(ctx, s.Name, PaneTailLines, false); ok {
		snap.PaneTail = tail
	}
	return snap
}

// Classify returns the health of s.
func (c *Classifier) Classify(ctx context.Context, s tmux.Session) State {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	window := c.ActiveWindow
	if window == 0 {
		window = DefaultActiveWindow
	}
	return Evaluate(c.Snapshot(ctx, s), now(), window)
}
