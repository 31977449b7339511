package transcripts

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/pilot/testutil"
	"github.com/grovetools/pilot/util/pathutil"
)

const (
	idOld = "0b7c2a8e-1f44-4c1a-9a57-0d5f2f6b8a01"
	idNew = "5d1e9c30-7b2f-4e8d-a0c4-6b9f1e2d3c4b"
)

func TestLocatorLatestAndSince(t *testing.T) {
	root := t.TempDir()
	l := &Locator{Root: root}
	workdir := "/src/my_app"
	dir := filepath.Join(root, pathutil.EncodeProjectDir(workdir))
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	_, ok := l.LatestID(workdir)
	assert.False(t, ok, "missing folder")

	testutil.WriteTranscript(t, dir, idOld+".jsonl", base)
	testutil.WriteTranscript(t, dir, idNew+".jsonl", base.Add(time.Minute))
	testutil.WriteTranscript(t, dir, "agent-1234.jsonl", base.Add(time.Hour))
	testutil.WriteTranscript(t, dir, "notes.txt", base.Add(time.Hour))

	id, ok := l.LatestID(workdir)
	require.True(t, ok)
	assert.Equal(t, idNew, id)

	id, ok = l.NewIDSince(workdir, base.Add(30*time.Second))
	require.True(t, ok)
	assert.Equal(t, idNew, id)

	_, ok = l.NewIDSince(workdir, base.Add(time.Minute))
	assert.False(t, ok, "strictly after")

	list, err := l.List(workdir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, idNew, list[0].ID)
	assert.Equal(t, int64(3), list[0].Size)
}

func TestLocatorLegacyFolder(t *testing.T) {
	root := t.TempDir()
	l := &Locator{Root: root}
	legacy := filepath.Join(root, "-src-my_app")
	testutil.WriteTranscript(t, legacy, idOld+".jsonl", time.Now())

	assert.Equal(t, legacy, l.ProjectDir("/src/my_app"))
	id, ok := l.LatestID("/src/my_app")
	assert.True(t, ok)
	assert.Equal(t, idOld, id)
}

func TestIsConversationID(t *testing.T) {
	assert.True(t, IsConversationID(idNew))
	assert.False(t, IsConversationID("agent-1234"))
	assert.False(t, IsConversationID("5d1e9c307b2f4e8da0c46b9f1e2d3c4b"))
	assert.False(t, IsConversationID(""))
}

func fastOptions(workdir string, since time.Time) DetectOptions {
	return DetectOptions{
		Workdir:      workdir,
		Since:        since,
		InitialDelay: 10 * time.Millisecond,
		Interval:     20 * time.Millisecond,
		Attempts:     3,
	}
}

func TestDetectionFindsExisting(t *testing.T) {
	root := t.TempDir()
	l := &Locator{Root: root}
	since := time.Now().Add(-time.Second)
	testutil.WriteTranscript(t, filepath.Join(root, pathutil.EncodeProjectDir("/w")), idNew+".jsonl", time.Now())

	var calls atomic.Int32
	var got atomic.Value
	d := l.StartDetection(context.Background(), fastOptions("/w", since), func(id string) error {
		calls.Add(1)
		got.Store(id)
		return nil
	})

	id, ok := d.Wait(context.Background())
	require.True(t, ok)
	assert.Equal(t, idNew, id)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, idNew, got.Load())
}

func TestDetectionGivesUp(t *testing.T) {
	root := t.TempDir()
	l := &Locator{Root: root}
	testutil.WriteTranscript(t, filepath.Join(root, pathutil.EncodeProjectDir("/w")), idOld+".jsonl", time.Now().Add(-time.Hour))

	called := false
	d := l.StartDetection(context.Background(), fastOptions("/w", time.Now().Add(-time.Minute)), func(string) error {
		called = true
		return nil
	})

	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("detection did not finish within its budget")
	}
	_, ok := d.Result()
	assert.False(t, ok)
	assert.False(t, called)
}

func TestDetectionSeesLateTranscript(t *testing.T) {
	root := t.TempDir()
	l := &Locator{Root: root}
	since := time.Now().Add(-time.Second)
	opts := fastOptions("/w", since)
	opts.Attempts = 100

	d := l.StartDetection(context.Background(), opts, nil)
	time.Sleep(50 * time.Millisecond)
	testutil.WriteTranscript(t, filepath.Join(root, pathutil.EncodeProjectDir("/w")), idNew+".jsonl", time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, ok := d.Wait(ctx)
	require.True(t, ok)
	assert.Equal(t, idNew, id)
}

func TestDetectionCancel(t *testing.T) {
	l := &Locator{Root: t.TempDir()}
	opts := fastOptions("/w", time.Now())
	opts.InitialDelay = time.Hour

	d := l.StartDetection(context.Background(), opts, nil)
	d.Cancel()

	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled detection did not stop")
	}
}

func TestBudget(t *testing.T) {
	assert.Equal(t, 11*time.Second, DetectOptions{}.Budget())
	assert.Equal(t, 50*time.Millisecond, fastOptions("/w", time.Time{}).Budget())
}
