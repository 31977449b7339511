// Package transcripts finds the assistant's conversation transcripts on disk.
// Only file names and modification times are read, never contents.
package transcripts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grovetools/pilot/pkg/paths"
	"github.com/grovetools/pilot/util/pathutil"
)

const transcriptExt = ".jsonl"

// Transcript is one conversation file.
type Transcript struct {
	ID      string
	Path    string
	ModTime time.Time
	Size    int64
}

// Locator resolves transcript folders under Root.
type Locator struct {
	Root string
}

// NewLocator returns a locator for the assistant's default transcript root.
func NewLocator() *Locator {
	return &Locator{Root: paths.TranscriptRoot()}
}

// ProjectDir returns the transcript folder for workdir. When the folder for
// the current encoding does not exist but one produced by the older
// slash-only encoding does, that one is returned.
func (l *Locator) ProjectDir(workdir string) string {
	dir := filepath.Join(l.Root, pathutil.EncodeProjectDir(workdir))
	if _, err := os.Stat(dir); err == nil {
		return dir
	}
	legacy := filepath.Join(l.Root, strings.ReplaceAll(workdir, "/", "-"))
	if legacy != dir {
		if _, err := os.Stat(legacy); err == nil {
			return legacy
		}
	}
	return dir
}

// List returns the conversations in workdir's folder, newest first. A
// missing folder is not an error.
func (l *Locator) List(workdir string) ([]Transcript, error) {
	return ListDir(l.ProjectDir(workdir))
}

// ListDir returns the conversations stored directly in dir, newest first.
// Files whose base name is not a conversation id are skipped.
func ListDir(dir string) ([]Transcript, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Transcript
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, transcriptExt) {
			continue
		}
		id := strings.TrimSuffix(name, transcriptExt)
		if !IsConversationID(id) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Transcript{
			ID:      id,
			Path:    filepath.Join(dir, name),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}

// LatestID returns the most recently modified conversation for workdir.
func (l *Locator) LatestID(workdir string) (string, bool) {
	list, err := l.List(workdir)
	if err != nil || len(list) == 0 {
		return "", false
	}
	return list[0].ID, true
}

// NewIDSince returns the newest conversation for workdir modified strictly
// after the given time.
func (l *Locator) NewIDSince(workdir string, after time.Time) (string, bool) {
	list, err := l.List(workdir)
	if err != nil || len(list) == 0 || !list[0].ModTime.After(after) {
		return "", false
	}
	return list[0].ID, true
}

// IsConversationID reports whether s has the shape of a conversation id.
func IsConversationID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
