// Package process inspects the local process table.
package process

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/grovetools/pilot/command"
)

// IsProcessAlive checks if a process with the given PID is still running.
// It uses a signal-sending method that is cross-platform for Unix-like systems (macOS, Linux).
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 checks for existence. EPERM still means the process exists.
	err = process.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}

// Inspector answers the two questions a tree walk needs.
type Inspector interface {
	// Children returns the direct children of pid.
	Children(ctx context.Context, pid int) ([]int, error)
	// Name returns the executable base name of pid.
	Name(ctx context.Context, pid int) (string, error)
}

// PSInspector implements Inspector with pgrep and ps.
type PSInspector struct {
	builder *command.SafeBuilder
}

// NewPSInspector returns an inspector that runs pgrep and ps through builder.
// A nil builder uses the real executor.
func NewPSInspector(builder *command.SafeBuilder) *PSInspector {
	if builder == nil {
		builder = command.NewSafeBuilder()
	}
	return &PSInspector{builder: builder}
}

// Children runs `pgrep -P pid`. pgrep exits 1 when there are no matches,
// which is reported as an empty list.
func (p *PSInspector) Children(ctx context.Context, pid int) ([]int, error) {
	arg := strconv.Itoa(pid)
	if err := p.builder.Validate("pid", arg); err != nil {
		return nil, err
	}
	cmd, err := p.builder.Build(ctx, "pgrep", "-P", arg)
	if err != nil {
		return nil, err
	}
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, err
	}

	var children []int
	for _, line := range strings.Split(string(out), "\n") {
		child, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || child <= 0 {
			continue
		}
		children = append(children, child)
	}
	return children, nil
}

// Name runs `ps -o comm= -p pid` and returns the base name.
func (p *PSInspector) Name(ctx context.Context, pid int) (string, error) {
	arg := strconv.Itoa(pid)
	if err := p.builder.Validate("pid", arg); err != nil {
		return "", err
	}
	cmd, err := p.builder.Build(ctx, "ps", "-o", "comm=", "-p", arg)
	if err != nil {
		return "", err
	}
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return filepath.Base(strings.TrimSpace(string(out))), nil
}

// TreeContains reports whether any descendant of root runs one of names.
// The walk is breadth-first with a visited set, so a malformed table that
// reports a cycle still terminates. Lookup failures prune that branch.
func TreeContains(ctx context.Context, inspector Inspector, root int, names ...string) bool {
	if root <= 0 {
		return false
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	visited := map[int]bool{root: true}
	queue := []int{root}
	for len(queue) > 0 {
		if ctx.Err() != nil {
			return false
		}
		pid := queue[0]
		queue = queue[1:]

		children, err := inspector.Children(ctx, pid)
		if err != nil {
			continue
		}
		for _, child := range children {
			if visited[child] {
				continue
			}
			visited[child] = true

			if name, err := inspector.Name(ctx, child); err == nil && want[name] {
				return true
			}
			queue = append(queue, child)
		}
	}
	return false
}
