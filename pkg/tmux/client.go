package tmux

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/grovetools/pilot/command"
	pilerrors "github.com/grovetools/pilot/errors"
)

// Client talks to a tmux server through the tmux CLI.
type Client struct {
	builder *command.SafeBuilder
	socket  string // Socket name for dedicated tmux server (uses -L flag)

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewClient returns a client for the default tmux server. PILOT_TMUX_SOCKET
// selects a dedicated server, which keeps test runs away from the user's
// sessions.
func NewClient() (*Client, error) {
	if _, err := exec.LookPath("tmux"); err != nil {
		return nil, pilerrors.Wrap(err, pilerrors.ErrCodeTmuxUnavailable, "tmux command not found in PATH")
	}
	return NewClientWithExecutor(&command.RealExecutor{}, os.Getenv("PILOT_TMUX_SOCKET")), nil
}

// NewClientWithExecutor returns a client that runs tmux through exec. It
// does not check that tmux is installed.
func NewClientWithExecutor(exec command.Executor, socket string) *Client {
	return &Client{
		builder: command.NewSafeBuilderWithExecutor(exec),
		socket:  socket,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// Socket returns the socket name this client uses, or empty string for default.
func (c *Client) Socket() string {
	return c.socket
}

func (c *Client) args(args []string) []string {
	if c.socket != "" {
		return append([]string{"-L", c.socket}, args...)
	}
	return args
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	args = c.args(args)

	cmd, err := c.builder.Build(ctx, "tmux", args...)
	if err != nil {
		return "", fmt.Errorf("failed to build command: %w", err)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		cmdStr := "tmux " + strings.Join(args, " ")
		return string(output), fmt.Errorf("tmux command failed: `%s`: %w, output: %s", cmdStr, err, strings.TrimSpace(string(output)))
	}

	return string(output), nil
}

// runInteractive hands the terminal to tmux until it exits.
func (c *Client) runInteractive(ctx context.Context, args ...string) error {
	args = c.args(args)

	cmd, err := c.builder.BuildInteractive(ctx, "tmux", args...)
	if err != nil {
		return fmt.Errorf("failed to build command: %w", err)
	}
	defer cmd.Release()

	execCmd := cmd.Exec()
	execCmd.Stdin = c.stdin
	execCmd.Stdout = c.stdout
	execCmd.Stderr = c.stderr
	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("tmux command failed: `tmux %s`: %w", strings.Join(args, " "), err)
	}
	return nil
}

// IsRunning reports whether a tmux server answers on this client's socket.
func (c *Client) IsRunning(ctx context.Context) bool {
	_, err := c.run(ctx, "list-sessions")
	return err == nil
}

// InsideTmux reports whether the current process runs inside a tmux client.
func InsideTmux() bool {
	return os.Getenv("TMUX") != ""
}
