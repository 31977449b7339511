package sessions

import (
	"context"
	"fmt"
	"strings"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/pkg/tmux"
	"github.com/grovetools/pilot/tui/theme"
)

// resolveOne maps name to exactly one live session or fails.
func (m *Manager) resolveOne(ctx context.Context, name string) (string, error) {
	res := Resolve(ctx, m.Mux, name)
	switch res.Kind {
	case ResolvedOne:
		return res.Name, nil
	case ResolvedMany:
		return "", pilerrors.SessionAmbiguous(name, res.Candidates)
	default:
		return "", pilerrors.SessionNotFound(name)
	}
}

// Kill terminates a session and its mirror and forgets its metadata.
func (m *Manager) Kill(ctx context.Context, name string, force bool) error {
	full, err := m.resolveOne(ctx, name)
	if err != nil {
		return err
	}
	shortName := tmux.ShortName(full)

	if !force && !m.confirm(fmt.Sprintf("Kill session '%s'?", shortName)) {
		return pilerrors.Aborted()
	}

	if err := m.Mux.KillWithMirror(ctx, full); err != nil {
		return pilerrors.Wrap(err, pilerrors.ErrCodeCommandFailed, "failed to kill "+shortName)
	}
	if err := m.Store.DeleteSession(full); err != nil {
		return err
	}

	m.Log.WithField("session", full).Info("Killed session")
	m.printf("%s Killed %s\n", theme.DefaultTheme.Error.Render(theme.IconError), shortName)
	return nil
}

// KillAll terminates every supervised session and forgets the metadata of
// each one it killed.
func (m *Manager) KillAll(ctx context.Context, force bool) error {
	live := m.Mux.ListSessions(ctx)
	if len(live) == 0 {
		m.printf("No sessions to kill.\n")
		return nil
	}

	names := make([]string, len(live))
	for i, s := range live {
		names[i] = s.ShortName
	}
	if !force && !m.confirm(fmt.Sprintf("Kill all sessions (%s)?", strings.Join(names, ", "))) {
		return pilerrors.Aborted()
	}

	var failed []string
	for _, s := range live {
		if err := m.Mux.KillWithMirror(ctx, s.Name); err != nil {
			m.Log.WithError(err).WithField("session", s.Name).Warn("Failed to kill session")
			failed = append(failed, s.ShortName)
			continue
		}
		if err := m.Store.DeleteSession(s.Name); err != nil {
			return err
		}
		m.printf("%s Killed %s\n", theme.DefaultTheme.Error.Render(theme.IconError), s.ShortName)
	}
	if len(failed) > 0 {
		return pilerrors.New(pilerrors.ErrCodeCommandFailed, "failed to kill: "+strings.Join(failed, ", "))
	}
	return nil
}

// Rename renames a live session and moves its metadata. The mirror keeps
// its old name.
func (m *Manager) Rename(ctx context.Context, oldName, newName string) error {
	if newName == "" {
		return pilerrors.New(pilerrors.ErrCodeInvalidInput, "new name must not be empty")
	}
	oldFull, err := m.resolveOne(ctx, oldName)
	if err != nil {
		return err
	}
	newFull := tmux.Qualify(newName)
	if m.Mux.Exists(ctx, newFull) {
		return pilerrors.SessionExists(newName)
	}

	if err := m.Mux.Rename(ctx, oldFull, newFull); err != nil {
		return pilerrors.Wrap(err, pilerrors.ErrCodeCommandFailed, "failed to rename "+tmux.ShortName(oldFull))
	}
	if _, err := m.Store.RenameSession(oldFull, newFull); err != nil {
		return err
	}

	m.printf("%s Renamed %s %s %s\n",
		theme.DefaultTheme.Success.Render(theme.IconSuccess),
		tmux.ShortName(oldFull), theme.IconArrow, newName)
	return nil
}

// Label sets the free-form label shown next to a session.
func (m *Manager) Label(ctx context.Context, name, label string) error {
	full, err := m.resolveOne(ctx, name)
	if err != nil {
		return err
	}
	if err := m.Store.UpdateSession(full, store.SessionPatch{Label: store.Ptr(label)}); err != nil {
		return err
	}
	m.printf("%s Labeled %s: %s\n",
		theme.DefaultTheme.Success.Render(theme.IconSuccess),
		tmux.ShortName(full), theme.DefaultTheme.Accent.Render(label))
	return nil
}
