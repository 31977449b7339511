package errors

import (
	"fmt"
	"os/exec"
	"strings"
)

// SessionNotFound creates a session not found error
func SessionNotFound(name string) *PilotError {
	return New(ErrCodeSessionNotFound, fmt.Sprintf("no session matching '%s'", name)).
		WithDetail("name", name)
}

// SessionAmbiguous reports a short name matching several live sessions.
func SessionAmbiguous(name string, candidates []string) *PilotError {
	return New(ErrCodeSessionAmbiguous,
		fmt.Sprintf("multiple sessions match '%s': %s", name, strings.Join(candidates, ", "))).
		WithDetail("name", name).
		WithDetail("candidates", candidates)
}

// SessionExists reports a rename or create target that is already live.
func SessionExists(name string) *PilotError {
	return New(ErrCodeSessionExists, fmt.Sprintf("session '%s' already exists", name)).
		WithDetail("name", name)
}

// LaunchFailed wraps a failed tmux new-session.
func LaunchFailed(name string, err error) *PilotError {
	return Wrap(err, ErrCodeLaunchFailed, fmt.Sprintf("failed to create session '%s'", name)).
		WithDetail("name", name)
}

// SessionExited reports a recreated session that died during the settle delay.
func SessionExited(name, conversationID string) *PilotError {
	return New(ErrCodeSessionExited,
		fmt.Sprintf("session '%s' exited immediately; check that conversation %s is valid", name, shortID(conversationID))).
		WithDetail("name", name).
		WithDetail("conversation_id", conversationID)
}

// DirectoryNotFound creates a missing working directory error
func DirectoryNotFound(dir string) *PilotError {
	return New(ErrCodeDirectoryNotFound, fmt.Sprintf("directory does not exist: %s", dir)).
		WithDetail("path", dir)
}

// ProjectNotFound creates a project identifier lookup error
func ProjectNotFound(identifier string) *PilotError {
	return New(ErrCodeProjectNotFound, fmt.Sprintf("no project matching '%s'", identifier)).
		WithDetail("identifier", identifier)
}

// Aborted marks a declined confirmation.
func Aborted() *PilotError {
	return New(ErrCodeAborted, "aborted")
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *PilotError {
	pilotErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		pilotErr = pilotErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return pilotErr
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
