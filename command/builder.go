package command

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 30 * time.Second

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

// SafeBuilder provides secure command execution with validation
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"sessionName": validateSessionName,
		"pid":         validatePID,
		"fileName":    validateFileName,
	}
}

var validSessionName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// validateSessionName rejects names tmux would reinterpret as a target
// (":" selects a window, "." a pane).
func validateSessionName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if !validSessionName.MatchString(name) {
		return fmt.Errorf("invalid session name: %s (use letters, digits, underscores, and hyphens)", name)
	}
	if len(name) > 100 {
		return fmt.Errorf("session name too long: %s (max 100 characters)", name)
	}
	return nil
}

func validatePID(value string) error {
	pid, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid pid: %s", value)
	}
	if pid <= 0 {
		return fmt.Errorf("pid must be positive: %d", pid)
	}
	return nil
}

// validateFileName ensures file paths are safe
func validateFileName(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	// Prevent command injection via shell metacharacters
	if strings.ContainsAny(path, ";|&$`\n") {
		return fmt.Errorf("file path contains invalid characters")
	}

	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	cancel   context.CancelFunc
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command bounded by the builder's default timeout.
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, sb.defaultTimeout)

	return &Command{
		ctx:      timeoutCtx,
		cancel:   cancel,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// BuildInteractive creates a command without a timeout. It is meant for
// programs that take over the terminal, such as a tmux attach client.
func (sb *SafeBuilder) BuildInteractive(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Command{
		ctx:      ctx,
		cancel:   cancel,
		name:     name,
		args:     args,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for the command
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = context.WithTimeout(context.Background(), timeout)
	c.timeout = timeout
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// Exec creates and returns an exec.Cmd. Callers that use Exec directly
// must call Release once the process has finished.
func (c *Command) Exec() *exec.Cmd {
	return c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
}

// Release frees the context held by the command.
func (c *Command) Release() {
	if c.cancel != nil {
		c.cancel()
	}
}

// CombinedOutput runs the command and returns stdout and stderr together.
func (c *Command) CombinedOutput() ([]byte, error) {
	defer c.Release()
	return c.Exec().CombinedOutput()
}

// Output runs the command and returns its stdout.
func (c *Command) Output() ([]byte, error) {
	defer c.Release()
	return c.Exec().Output()
}

// String renders the command line for error messages.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}
