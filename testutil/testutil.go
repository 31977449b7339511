// Package testutil holds helpers shared by pilot's tests.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RequireTmux skips the test if tmux is not installed.
func RequireTmux(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not available")
	}
}

// TmuxSocket points PILOT_TMUX_SOCKET at a private tmux server for the
// duration of the test and kills that server afterwards.
func TmuxSocket(t *testing.T) string {
	t.Helper()
	RequireTmux(t)

	socket := "pilot-test-" + RandomString(8)
	t.Setenv("PILOT_TMUX_SOCKET", socket)
	t.Cleanup(func() {
		_ = exec.Command("tmux", "-L", socket, "kill-server").Run()
	})
	return socket
}

// RandomString generates a random hex string of the given length.
func RandomString(length int) string {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}

// WriteFile writes size zero bytes to path, creating parent directories,
// and sets its modification time.
func WriteFile(t *testing.T, path string, size int, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// WriteTranscript creates the transcript file name in dir with the given
// modification time. A name without an extension gets ".jsonl".
func WriteTranscript(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	if filepath.Ext(name) == "" {
		name += ".jsonl"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}
