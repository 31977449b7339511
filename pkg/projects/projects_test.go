package projects

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/testutil"
	"github.com/grovetools/pilot/util/pathutil"
)

type fixture struct {
	catalog *Catalog
	store   *store.Store
	root    string
	work    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	st := store.New(filepath.Join(t.TempDir(), "pilot.json"), nil)
	c := NewCatalog(root, st)
	decoded := map[string]string{}
	c.Decode = func(encoded string) string {
		if p, ok := decoded[encoded]; ok {
			return p
		}
		return "/decoded/" + encoded
	}
	return &fixture{catalog: c, store: st, root: root, work: t.TempDir()}
}

func TestList(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	known := filepath.Join(f.work, "api")
	require.NoError(t, os.Mkdir(known, 0755))
	require.NoError(t, f.store.SetSession("claude-api", store.SessionMeta{Dir: known}))
	require.NoError(t, f.store.UpdateProject(known, store.ProjectPatch{Name: store.Ptr("backend")}))

	knownFolder := filepath.Join(f.root, pathutil.EncodeProjectDir(known))
	testutil.WriteFile(t, filepath.Join(knownFolder, "a.jsonl"), 1000, base)
	testutil.WriteFile(t, filepath.Join(knownFolder, "b.jsonl"), 500, base.Add(time.Hour))
	testutil.WriteFile(t, filepath.Join(knownFolder, "memory", "notes.md"), 10, base)

	testutil.WriteFile(t, filepath.Join(f.root, "-gone-project", "c.jsonl"), 1, base.Add(-time.Hour))
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "-empty"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "-mem-only", "memory"), 0755))

	live := []Session{
		{Name: "api", Status: "active", Dir: known},
		{Name: "other", Status: "idle", Dir: "/elsewhere"},
	}
	list, err := f.catalog.List(live)
	require.NoError(t, err)
	require.Len(t, list, 3, "empty folder skipped")

	first := list[0]
	assert.Equal(t, known, first.Path)
	assert.Equal(t, "backend", first.Name)
	assert.Equal(t, 2, first.ConversationCount)
	assert.Equal(t, int64(1500), first.TotalSizeBytes)
	assert.True(t, first.HasMemory)
	assert.True(t, first.PathExists)
	require.NotNil(t, first.LastActivity)
	assert.True(t, first.LastActivity.Equal(base.Add(time.Hour)))
	require.Len(t, first.Sessions, 1)
	assert.Equal(t, "api", first.Sessions[0].Name)

	second := list[1]
	assert.Equal(t, "/decoded/-gone-project", second.Path)
	assert.Equal(t, "-gone-project", second.Name)
	assert.False(t, second.PathExists)

	memOnly := list[2]
	assert.Nil(t, memOnly.LastActivity, "no activity sorts last")
	assert.False(t, memOnly.HasMemory, "empty memory folder")
	assert.Equal(t, 0, memOnly.ConversationCount)
}

func TestListMissingRoot(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "nope"), nil)
	assert.False(t, c.Exists())
	list, err := c.List(nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResolveIdentifier(t *testing.T) {
	f := newFixture(t)

	sessionDir := "/src/sessiondir"
	require.NoError(t, f.store.SetSession("claude-s", store.SessionMeta{Dir: sessionDir}))
	require.NoError(t, f.store.UpdateProject("/src/named", store.ProjectPatch{Name: store.Ptr("fancy")}))
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "-decoded-thing"), 0755))

	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{"existing directory", f.work, f.work},
		{"custom name", "fancy", "/src/named"},
		{"session dir base name", "sessiondir", sessionDir},
		{"decoded folder base name", "-decoded-thing", "/decoded/-decoded-thing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.catalog.ResolveIdentifier(tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := f.catalog.ResolveIdentifier("missing")
	assert.True(t, pilerrors.Is(err, pilerrors.ErrCodeProjectNotFound))
}

func TestNaming(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.catalog.SetName("/b", "bee"))
	require.NoError(t, f.catalog.SetName("/a", "ay"))
	assert.Error(t, f.catalog.SetName("/c", " "))

	named, err := f.catalog.NamedProjects()
	require.NoError(t, err)
	assert.Equal(t, []Named{{Path: "/a", Name: "ay"}, {Path: "/b", Name: "bee"}}, named)

	require.NoError(t, f.catalog.ClearName("/a"))
	require.NoError(t, f.catalog.ClearName("/missing"))
	named, err = f.catalog.NamedProjects()
	require.NoError(t, err)
	assert.Equal(t, []Named{{Path: "/b", Name: "bee"}}, named)
}
