package tmux

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/pilot/testutil"
)

func TestClientAgainstTmux(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping tmux integration test in short mode")
	}
	socket := testutil.TmuxSocket(t)

	client, err := NewClient()
	require.NoError(t, err)
	assert.Equal(t, socket, client.Socket())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := Qualify("it-" + testutil.RandomString(4))
	_, err = client.Create(ctx, CreateOptions{
		Name:    name,
		Dir:     t.TempDir(),
		Command: "sh -c 'echo pilot-ready; sleep 60'",
		Style:   StatusStyle{Left: "[#S] ", LeftLength: "40"},
	})
	require.NoError(t, err)
	assert.True(t, client.Exists(ctx, name))

	sessions := client.ListSessions(ctx)
	require.Len(t, sessions, 1)
	assert.Equal(t, ShortName(name), sessions[0].ShortName)
	assert.Greater(t, sessions[0].PanePID, 0)

	require.Eventually(t, func() bool {
		text, ok := client.CapturePane(ctx, name, 10, false)
		return ok && strings.Contains(text, "pilot-ready")
	}, 5*time.Second, 100*time.Millisecond)

	renamed := Qualify("it-renamed-" + testutil.RandomString(4))
	require.NoError(t, client.Rename(ctx, name, renamed))
	assert.False(t, client.Exists(ctx, name))
	assert.True(t, client.Exists(ctx, renamed))

	require.NoError(t, client.KillWithMirror(ctx, renamed))
	assert.False(t, client.Exists(ctx, renamed))
	assert.Empty(t, client.ListSessions(ctx))
}
