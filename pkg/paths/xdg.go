// Package paths provides path resolution for pilot.
//
// Resolution order:
// 1. PILOT_HOME (portable root) → $PILOT_HOME/{pilot.json,state,...}
// 2. XDG env vars → $XDG_*_HOME/pilot
// 3. Platform defaults → ~/.pilot.json, ~/.local/state/pilot, etc.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "pilot"

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if pilotHome := os.Getenv("PILOT_HOME"); pilotHome != "" {
		return filepath.Join(pilotHome, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".local", "state")
	}
	return ""
}

// ConfigFile returns the metadata document holding settings, sessions and
// projects. PILOT_CONFIG names the file explicitly.
func ConfigFile() string {
	if explicit := os.Getenv("PILOT_CONFIG"); explicit != "" {
		return explicit
	}
	if pilotHome := os.Getenv("PILOT_HOME"); pilotHome != "" {
		return filepath.Join(pilotHome, appName+".json")
	}
	if home := homeDir(); home != "" {
		return filepath.Join(home, "."+appName+".json")
	}
	return ""
}

// StateDir returns the pilot state directory.
// Used for logs.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// LogDir returns the directory holding per-component log files.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// AssistantHome returns the assistant's own configuration directory.
func AssistantHome() string {
	if dir := os.Getenv("CLAUDE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".claude")
	}
	return ""
}

// TranscriptRoot returns the directory with one transcript folder per
// working directory.
func TranscriptRoot() string {
	base := AssistantHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "projects")
}
