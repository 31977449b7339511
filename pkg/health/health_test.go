package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/grovetools/pilot/pkg/tmux"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	live := Snapshot{
		ForegroundCommand: "node",
		PanePID:           100,
		AssistantRunning:  true,
		LastActivity:      now.Add(-time.Minute),
	}

	with := func(mut func(*Snapshot)) Snapshot {
		s := live
		mut(&s)
		return s
	}

	tests := []struct {
		name string
		snap Snapshot
		want State
	}{
		{"idle", live, StateIdle},
		{"recent output is active", with(func(s *Snapshot) { s.LastActivity = now.Add(-3 * time.Second) }), StateActive},
		{"shell in foreground is dead", with(func(s *Snapshot) { s.ForegroundCommand = "zsh" }), StateDead},
		{"fish in foreground is dead", with(func(s *Snapshot) { s.ForegroundCommand = "fish" }), StateDead},
		{"shell wins over a prompt", with(func(s *Snapshot) {
			s.ForegroundCommand = "bash"
			s.PaneTail = "Do you want to proceed?"
		}), StateDead},
		{"no pane pid is dead", with(func(s *Snapshot) { s.PanePID = 0 }), StateDead},
		{"assistant missing is dead", with(func(s *Snapshot) { s.AssistantRunning = false }), StateDead},
		{"prompt is waiting", with(func(s *Snapshot) { s.PaneTail = "Do you want to proceed?\n❯ 1. Yes" }), StateWaiting},
		{"prompt beats recency", with(func(s *Snapshot) {
			s.PaneTail = "Allow this command?"
			s.LastActivity = now
		}), StateWaiting},
		{"unknown foreground command is still checked", with(func(s *Snapshot) { s.ForegroundCommand = "" }), StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.snap, now, DefaultActiveWindow))
		})
	}
}

func TestWaitingForApproval(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Do you want to proceed?", true},
		{"do you want to PROCEED", true},
		{"\x1b[1mApprove\x1b[0m edits", true},
		{"\x1b[38;2;255;0;0mDeny\x1b[0m", true},
		{"Continue? (y/n)", true},
		{"[Yes/No]", true},
		{"(Y)es  (N)o", true},
		{"(y)es", false},
		{"needs permission to write", true},
		{"Tool Use: Bash", true},
		{"tool use: bash", false},
		{"Allowance exceeded", false},
		{"Compiling 42 files", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, WaitingForApproval(tt.text), tt.text)
	}
}

type fakePanes struct {
	command  string
	tail     string
	captured bool
}

func (f *fakePanes) PaneForegroundCommand(context.Context, string) (string, bool) {
	return f.command, f.command != ""
}

func (f *fakePanes) CapturePane(context.Context, string, int, bool) (string, bool) {
	f.captured = true
	return f.tail, true
}

type fakeProcs struct {
	children map[int][]int
	names    map[int]string
}

func (f *fakeProcs) Children(_ context.Context, pid int) ([]int, error) {
	return f.children[pid], nil
}

func (f *fakeProcs) Name(_ context.Context, pid int) (string, error) {
	return f.names[pid], nil
}

func TestClassifier(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := tmux.Session{Name: "claude-api", PanePID: 10, Activity: now.Add(-2 * time.Second)}
	procs := &fakeProcs{
		children: map[int][]int{10: {11}},
		names:    map[int]string{11: "claude"},
	}
	alive := func(int) bool { return true }

	t.Run("active", func(t *testing.T) {
		c := NewClassifier(&fakePanes{command: "claude"}, procs)
		c.Now = func() time.Time { return now }
		c.Alive = alive
		assert.Equal(t, StateActive, c.Classify(context.Background(), session))
	})

	t.Run("waiting", func(t *testing.T) {
		c := NewClassifier(&fakePanes{command: "claude", tail: "\x1b[33mDo you want to proceed?\x1b[0m"}, procs)
		c.Now = func() time.Time { return now }
		c.Alive = alive
		assert.Equal(t, StateWaiting, c.Classify(context.Background(), session))
	})

	t.Run("shell short-circuits", func(t *testing.T) {
		panes := &fakePanes{command: "zsh"}
		c := NewClassifier(panes, procs)
		assert.Equal(t, StateDead, c.Classify(context.Background(), session))
		assert.False(t, panes.captured)
	})

	t.Run("no assistant in tree", func(t *testing.T) {
		c := NewClassifier(&fakePanes{command: "vim"}, &fakeProcs{
			children: map[int][]int{10: {11}},
			names:    map[int]string{11: "vim"},
		})
		c.Alive = alive
		assert.Equal(t, StateDead, c.Classify(context.Background(), session))
	})

	t.Run("configured assistant binary", func(t *testing.T) {
		custom := &fakeProcs{
			children: map[int][]int{10: {11}},
			names:    map[int]string{11: "claude-dev"},
		}
		c := NewClassifier(&fakePanes{command: "claude-dev"}, custom)
		c.Now = func() time.Time { return now }
		c.Alive = alive
		assert.Equal(t, StateDead, c.Classify(context.Background(), session))

		c.WithAssistant("/opt/bin/claude-dev").WithAssistant("/opt/bin/claude-dev")
		assert.Equal(t, []string{"claude", "node", "claude-dev"}, c.Assistants)
		assert.Equal(t, StateActive, c.Classify(context.Background(), session))
		assert.Equal(t, []string{"claude", "node"}, AssistantProcesses)
	})

	t.Run("gone pane pid skips the tree walk", func(t *testing.T) {
		walked := &countingProcs{fakeProcs: procs}
		c := NewClassifier(&fakePanes{command: "claude"}, walked)
		c.Alive = func(int) bool { return false }
		assert.Equal(t, StateDead, c.Classify(context.Background(), session))
		assert.Zero(t, walked.calls)
	})
}

type countingProcs struct {
	*fakeProcs
	calls int
}

func (c *countingProcs) Children(ctx context.Context, pid int) ([]int, error) {
	c.calls++
	return c.fakeProcs.Children(ctx, pid)
}
