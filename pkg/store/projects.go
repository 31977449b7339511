package store

import (
	"path/filepath"

	"github.com/grovetools/pilot/util/pathutil"
)

// GetProject returns the naming overlay for path.
func (s *Store) GetProject(path string) (ProjectMeta, bool, error) {
	doc, err := s.Load()
	if err != nil {
		return ProjectMeta{}, false, err
	}
	meta, ok := doc.Projects[path]
	return meta, ok, nil
}

// UpdateProject shallow-merges patch into the overlay for path.
func (s *Store) UpdateProject(path string, patch ProjectPatch) error {
	return s.modify(func(doc *Document) (bool, error) {
		meta := doc.Projects[path]
		if patch.Name != nil {
			meta.Name = *patch.Name
		}
		doc.Projects[path] = meta
		return true, nil
	})
}

// DeleteProject removes the overlay for path.
func (s *Store) DeleteProject(path string) error {
	return s.modify(func(doc *Document) (bool, error) {
		if _, ok := doc.Projects[path]; !ok {
			return false, nil
		}
		delete(doc.Projects, path)
		return true, nil
	})
}

// FindProjectByName returns the first project path whose overlay name
// matches name.
func (s *Store) FindProjectByName(name string) (string, bool, error) {
	doc, err := s.Load()
	if err != nil {
		return "", false, err
	}
	for path, meta := range doc.Projects {
		if meta.Name == name {
			return path, true, nil
		}
	}
	return "", false, nil
}

// KnownPath is a directory pilot has seen, keyed by its encoded transcript
// folder name.
type KnownPath struct {
	Path        string
	SessionName string
	CustomName  string
}

// KnownPaths collects every directory referenced by a session or project
// record. Session directories win over bare project entries.
func (s *Store) KnownPaths() (map[string]KnownPath, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	out := make(map[string]KnownPath)
	for name, meta := range doc.Sessions {
		if meta.Dir == "" {
			continue
		}
		dir := filepath.Clean(meta.Dir)
		out[pathutil.EncodeProjectDir(dir)] = KnownPath{
			Path:        dir,
			SessionName: name,
			CustomName:  doc.Projects[dir].Name,
		}
	}
	for path, meta := range doc.Projects {
		key := pathutil.EncodeProjectDir(filepath.Clean(path))
		if _, ok := out[key]; ok {
			continue
		}
		out[key] = KnownPath{Path: path, CustomName: meta.Name}
	}
	return out, nil
}

// SetProject replaces the overlay for path.
func (s *Store) SetProject(path string, meta ProjectMeta) error {
	return s.modify(func(doc *Document) (bool, error) {
		doc.Projects[path] = meta
		return true, nil
	})
}

// Projects returns every project overlay.
func (s *Store) Projects() (map[string]ProjectMeta, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Projects, nil
}
