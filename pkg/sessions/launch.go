package sessions

import (
	"os"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/util/pathutil"
)

// LaunchSpec is what a session's process should run.
type LaunchSpec struct {
	Preflight      string
	ConversationID string
	Args           []string
}

// LaunchCommand composes the shell command tmux runs in a new session:
//
//	<shell> -c '<setup> && <assistant> [--resume ID] [args...]'
//
// Without a preflight the setup sources the environment script when it
// exists. With one it sources the shell startup file and runs the
// preflight.
func LaunchCommand(settings store.Settings, spec LaunchSpec) string {
	var parts []string
	if spec.Preflight == "" {
		if script := settings.EnvScript; script != "" && fileExists(script) {
			parts = append(parts, "source "+settings.EnvScript, "&&")
		}
	} else {
		if settings.ShellRC != "" {
			parts = append(parts, "source "+settings.ShellRC, "&&")
		}
		parts = append(parts, spec.Preflight, "&&")
	}

	assistant := []string{settings.AssistantBin}
	if spec.ConversationID != "" {
		assistant = append(assistant, "--resume", spec.ConversationID)
	}
	assistant = append(assistant, spec.Args...)
	parts = append(parts, shellquote.Join(assistant...))

	inner := strings.Join(parts, " ")
	return settings.Shell + " -c " + shellquote.Join(inner)
}

// SplitArgs splits a user-supplied argument string with shell rules.
func SplitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}
	return shellquote.Split(s)
}

func fileExists(path string) bool {
	expanded, err := pathutil.Expand(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(expanded)
	return err == nil
}
