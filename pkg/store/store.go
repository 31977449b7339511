// Package store persists pilot's metadata document: settings, per-session
// records and the project naming overlay. Every mutation is a whole-document
// load, modify, save cycle against a single JSON file.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/pilot/pkg/paths"
)

// Store reads and writes the metadata document at a fixed path.
type Store struct {
	path string
	log  *logrus.Entry
}

// New returns a store backed by the file at path. A nil logger discards
// diagnostics.
func New(path string, log *logrus.Entry) *Store {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Store{path: path, log: log}
}

// Default returns the store at the configured document location.
func Default(log *logrus.Entry) *Store {
	return New(paths.ConfigFile(), log)
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing file yields the default document; a
// malformed one is logged and also replaced by the default, so callers never
// see a parse error.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("Metadata document is malformed, starting from defaults")
		return NewDocument(), nil
	}
	doc.normalize()
	return doc, nil
}

// Save writes the document atomically: the new content goes to a temporary
// file in the same directory which is then renamed over the target.
func (s *Store) Save(doc *Document) error {
	doc.normalize()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".pilot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// modify runs fn against a freshly loaded document and saves the result when
// fn reports a change.
func (s *Store) modify(fn func(doc *Document) (bool, error)) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	return s.Save(doc)
}

// Decode decodes a free-form value from the settings section into target
// using json tag names, converting loosely typed values (e.g. numbers given
// as strings).
func Decode(input interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode settings: %w", err)
	}
	return nil
}
