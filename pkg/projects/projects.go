// Package projects lists the assistant's transcript project folders and maps
// them back to working directories.
package projects

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/util/pathutil"
)

const memoryDir = "memory"

// Session is a live session as shown next to its project.
type Session struct {
	Name   string `json:"name"`
	Label  string `json:"label,omitempty"`
	Status string `json:"status"`
	Dir    string `json:"-"`
}

// Project is one transcript folder.
type Project struct {
	Path              string     `json:"path"`
	Name              string     `json:"name"`
	Folder            string     `json:"-"`
	ConversationCount int        `json:"conversation_count"`
	LastActivity      *time.Time `json:"last_activity"`
	TotalSizeBytes    int64      `json:"total_size_bytes"`
	HasMemory         bool       `json:"has_memory"`
	PathExists        bool       `json:"path_exists"`
	Sessions          []Session  `json:"sessions"`
}

// Catalog reads project folders under Root and the naming overlays in Store.
type Catalog struct {
	Root  string
	Store *store.Store
	// Decode maps a folder name to a directory. Defaults to
	// pathutil.DecodeProjectDir.
	Decode func(encoded string) string
}

// NewCatalog returns a catalog over root.
func NewCatalog(root string, st *store.Store) *Catalog {
	return &Catalog{Root: root, Store: st, Decode: pathutil.DecodeProjectDir}
}

func (c *Catalog) decode(encoded string) string {
	if c.Decode != nil {
		return c.Decode(encoded)
	}
	return pathutil.DecodeProjectDir(encoded)
}

// Exists reports whether the transcript root is present.
func (c *Catalog) Exists() bool {
	info, err := os.Stat(c.Root)
	return err == nil && info.IsDir()
}

// List returns every project folder that holds a transcript or a memory
// directory, most recently active first. live sessions are attached to the
// project whose path equals their directory.
func (c *Catalog) List(live []Session) ([]Project, error) {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []Project{}, nil
		}
		return nil, err
	}

	known, err := c.knownPaths()
	if err != nil {
		return nil, err
	}

	projects := []Project{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, ok := c.build(entry.Name(), known, live)
		if ok {
			projects = append(projects, p)
		}
	}

	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i].LastActivity, projects[j].LastActivity
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return projects, nil
}

func (c *Catalog) build(folder string, known map[string]store.KnownPath, live []Session) (Project, bool) {
	dir := filepath.Join(c.Root, folder)
	files, err := os.ReadDir(dir)
	if err != nil {
		return Project{}, false
	}

	p := Project{Folder: folder, Sessions: []Session{}}
	hasMemoryDir := false
	for _, f := range files {
		if f.IsDir() {
			if f.Name() == memoryDir {
				hasMemoryDir = true
			}
			continue
		}
		if !strings.HasSuffix(f.Name(), ".jsonl") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		p.ConversationCount++
		p.TotalSizeBytes += info.Size()
		if mt := info.ModTime(); p.LastActivity == nil || mt.After(*p.LastActivity) {
			p.LastActivity = &mt
		}
	}
	if p.ConversationCount == 0 && !hasMemoryDir {
		return Project{}, false
	}
	if hasMemoryDir {
		children, err := os.ReadDir(filepath.Join(dir, memoryDir))
		p.HasMemory = err == nil && len(children) > 0
	}

	if k, ok := known[folder]; ok {
		p.Path = k.Path
		p.Name = k.CustomName
	} else {
		p.Path = c.decode(folder)
	}
	if p.Name == "" {
		p.Name = filepath.Base(p.Path)
	}
	if info, err := os.Stat(p.Path); err == nil && info.IsDir() {
		p.PathExists = true
	}

	for _, s := range live {
		if pathutil.SamePath(s.Dir, p.Path) {
			p.Sessions = append(p.Sessions, s)
		}
	}
	return p, true
}

// knownPaths indexes the store's known paths by both folder encodings.
func (c *Catalog) knownPaths() (map[string]store.KnownPath, error) {
	if c.Store == nil {
		return map[string]store.KnownPath{}, nil
	}
	known, err := c.Store.KnownPaths()
	if err != nil {
		return nil, err
	}
	for _, k := range known {
		legacy := strings.ReplaceAll(k.Path, "/", "-")
		if _, ok := known[legacy]; !ok {
			known[legacy] = k
		}
	}
	return known, nil
}

// ResolveIdentifier maps a user-supplied project identifier to a directory.
// It tries, in order: an existing directory path, a custom project name, the
// base name of a session directory, and the base name of a decoded
// transcript folder.
func (c *Catalog) ResolveIdentifier(identifier string) (string, error) {
	if expanded, err := pathutil.Expand(identifier); err == nil {
		if info, err := os.Stat(expanded); err == nil && info.IsDir() {
			return expanded, nil
		}
	}

	if c.Store != nil {
		if path, ok, err := c.Store.FindProjectByName(identifier); err != nil {
			return "", err
		} else if ok {
			return path, nil
		}

		sessions, err := c.Store.Sessions()
		if err != nil {
			return "", err
		}
		names := make([]string, 0, len(sessions))
		for name := range sessions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if dir := sessions[name].Dir; dir != "" && filepath.Base(dir) == identifier {
				return dir, nil
			}
		}
	}

	entries, err := os.ReadDir(c.Root)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if path := c.decode(entry.Name()); filepath.Base(path) == identifier {
				return path, nil
			}
		}
	}

	return "", pilerrors.ProjectNotFound(identifier)
}

// Named is a project with a custom name.
type Named struct {
	Path string
	Name string
}

// NamedProjects returns the projects that carry a custom name, by path.
func (c *Catalog) NamedProjects() ([]Named, error) {
	projects, err := c.Store.Projects()
	if err != nil {
		return nil, err
	}
	var out []Named
	for path, meta := range projects {
		if meta.Name != "" {
			out = append(out, Named{Path: path, Name: meta.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// SetName names the project at path.
func (c *Catalog) SetName(path, name string) error {
	if strings.TrimSpace(name) == "" {
		return pilerrors.New(pilerrors.ErrCodeInvalidInput, "project name must not be empty")
	}
	return c.Store.UpdateProject(path, store.ProjectPatch{Name: store.Ptr(name)})
}

// ClearName drops the custom name for the project at path.
func (c *Catalog) ClearName(path string) error {
	return c.Store.DeleteProject(path)
}
