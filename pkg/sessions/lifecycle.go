package sessions

import (
	"context"
	"fmt"
	"os"
	"time"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/pkg/tmux"
	"github.com/grovetools/pilot/pkg/transcripts"
	"github.com/grovetools/pilot/tui/theme"
	"github.com/grovetools/pilot/util/pathutil"
)

// NewRequest describes `pilot new`.
type NewRequest struct {
	// Name is the short session name. Empty derives one from Dir.
	Name string
	// Dir is the absolute working directory.
	Dir string
	// Resume attaches to a live session, recreates from a stored binding,
	// or picks up the latest conversation in Dir.
	Resume bool
	// ConversationID binds the session to an explicit conversation.
	ConversationID string
	Label          string
	// Force skips confirmations.
	Force bool
	// Detach creates the session without attaching.
	Detach bool
	// Preflight overrides the default preflight command.
	Preflight string
	Args      []string
}

// Action is what a lifecycle call ended up doing.
type Action string

const (
	ActionAttached  Action = "attached"
	ActionRecreated Action = "recreated"
	ActionCreated   Action = "created"
)

// Outcome reports a completed lifecycle call.
type Outcome struct {
	Action         Action
	Name           string
	FullName       string
	Dir            string
	ConversationID string
	// Detection is the background conversation search started for a fresh
	// session without a known conversation. The caller owns it.
	Detection *transcripts.Detection
}

// New creates, resumes or recreates a session. The decision order is:
// rebind check, attach to a live session (resume only), overwrite a live
// session, recreate from a stored binding (resume only), fresh create.
func (m *Manager) New(ctx context.Context, req NewRequest) (*Outcome, error) {
	if info, err := os.Stat(req.Dir); err != nil || !info.IsDir() {
		return nil, pilerrors.DirectoryNotFound(req.Dir)
	}
	if req.ConversationID != "" && !transcripts.IsConversationID(req.ConversationID) {
		return nil, pilerrors.New(pilerrors.ErrCodeInvalidInput, "not a conversation id: "+req.ConversationID)
	}

	name := req.Name
	if name == "" {
		name = AutoName(ctx, m.Mux, req.Dir)
	}
	full := tmux.Qualify(name)

	existing, _, err := m.Store.GetSession(full)
	if err != nil {
		return nil, err
	}
	storedID := existing.ClaudeSessionID
	alive := m.Mux.Exists(ctx, full)

	log := m.Log.WithField("session", full)

	// Rebinding to a different conversation always replaces the live session.
	if req.ConversationID != "" && storedID != "" && req.ConversationID != storedID {
		prompt := fmt.Sprintf("'%s' is bound to %s... Rebind to %s...?", name, short(storedID), short(req.ConversationID))
		if !req.Force && !m.confirm(prompt) {
			return nil, pilerrors.Aborted()
		}
		if alive {
			log.Debug("Killing live session before rebind")
			_ = m.Mux.KillWithMirror(ctx, full)
			alive = false
		}
	}

	if req.Resume && alive {
		m.printf("Attaching to %s...\n", theme.DefaultTheme.Bold.Render(name))
		if err := m.attach(ctx, full); err != nil {
			return nil, err
		}
		return &Outcome{Action: ActionAttached, Name: name, FullName: full, Dir: existing.Dir, ConversationID: storedID}, nil
	}

	if alive {
		if !req.Force && !m.confirm(fmt.Sprintf("Session '%s' already exists. Overwrite?", name)) {
			return nil, pilerrors.Aborted()
		}
		log.Debug("Overwriting live session")
		_ = m.Mux.KillWithMirror(ctx, full)
	}

	if req.Resume && req.ConversationID == "" && storedID != "" {
		return m.Recreate(ctx, name, existing)
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = storedID
	}
	if req.Resume && conversationID == "" {
		if id, ok := m.Transcripts.LatestID(req.Dir); ok {
			conversationID = id
		} else {
			m.noticef("No previous conversation in %s. Starting fresh.", pathutil.Abbreviate(req.Dir))
		}
	}

	return m.create(ctx, name, req, conversationID)
}

func (m *Manager) create(ctx context.Context, name string, req NewRequest, conversationID string) (*Outcome, error) {
	full := tmux.Qualify(name)
	settings := m.settings()

	preflight := req.Preflight
	if preflight == "" {
		preflight = settings.DefaultPreflight
	}
	args := req.Args
	if args == nil {
		args = []string{}
	}

	beforeCreate := m.Now()
	command := LaunchCommand(settings, LaunchSpec{
		Preflight:      preflight,
		ConversationID: conversationID,
		Args:           args,
	})
	m.Log.WithField("session", full).WithField("command", command).Debug("Creating session")

	if _, err := m.Mux.Create(ctx, tmux.CreateOptions{
		Name:    full,
		Dir:     req.Dir,
		Command: command,
		Style:   statusStyle(settings.Tmux),
	}); err != nil {
		return nil, pilerrors.LaunchFailed(name, err)
	}

	meta := store.SessionMeta{
		Dir:             req.Dir,
		ClaudeArgs:      args,
		CreatedAt:       m.Now(),
		Label:           req.Label,
		ClaudeSessionID: conversationID,
		Preflight:       preflight,
	}
	if err := m.Store.SetSession(full, meta); err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Action:         ActionCreated,
		Name:           name,
		FullName:       full,
		Dir:            req.Dir,
		ConversationID: conversationID,
	}
	if conversationID == "" && m.Transcripts != nil {
		outcome.Detection = m.startDetection(ctx, full, req.Dir, beforeCreate)
	}

	t := theme.DefaultTheme
	m.printf("%s Session %s created in %s\n", t.Success.Render(theme.IconSuccess), t.Bold.Render(name), t.Accent.Render(req.Dir))
	if conversationID != "" {
		m.printf("  Conversation: %s\n", t.Muted.Render(conversationID))
	}
	if req.Label != "" {
		m.printf("  Label: %s\n", t.Accent.Render(req.Label))
	}

	if req.Detach {
		m.printf("  Attach with: %s\n", t.Muted.Render("pilot resume "+name))
		return outcome, nil
	}

	if err := m.Sleep(ctx, m.Delays.BeforeAttach); err != nil {
		return outcome, err
	}
	if err := m.attach(ctx, full); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (m *Manager) startDetection(ctx context.Context, full, dir string, since time.Time) *transcripts.Detection {
	opts := m.Detect
	opts.Workdir = dir
	opts.Since = since
	if opts.Log == nil {
		opts.Log = m.Log.WithField("session", full)
	}
	return m.Transcripts.StartDetection(ctx, opts, func(id string) error {
		return m.Store.UpdateSession(full, store.SessionPatch{ClaudeSessionID: store.Ptr(id)})
	})
}

// Resume attaches to the session name resolves to. When nothing live
// matches it recreates the session from its stored binding.
func (m *Manager) Resume(ctx context.Context, name string) (*Outcome, error) {
	res := Resolve(ctx, m.Mux, name)
	if res.Kind == ResolvedOne {
		shortName := tmux.ShortName(res.Name)
		m.printf("Attaching to %s...\n", theme.DefaultTheme.Bold.Render(shortName))
		if err := m.attach(ctx, res.Name); err != nil {
			return nil, err
		}
		meta, _, _ := m.Store.GetSession(res.Name)
		return &Outcome{Action: ActionAttached, Name: shortName, FullName: res.Name, Dir: meta.Dir, ConversationID: meta.ClaudeSessionID}, nil
	}

	full := tmux.Qualify(name)
	meta, ok, err := m.Store.GetSession(full)
	if err != nil {
		return nil, err
	}
	if ok && meta.ClaudeSessionID != "" {
		return m.Recreate(ctx, name, meta)
	}

	if res.Kind == ResolvedMany {
		return nil, pilerrors.SessionAmbiguous(name, res.Candidates)
	}
	return nil, pilerrors.SessionNotFound(name)
}

// Recreate relaunches a dead session on its bound conversation, waits for
// it to settle, clears the screen and attaches. A session that exits during
// the settle delay is an error naming the conversation.
func (m *Manager) Recreate(ctx context.Context, name string, meta store.SessionMeta) (*Outcome, error) {
	full := tmux.Qualify(name)
	settings := m.settings()

	dir := meta.Dir
	if dir == "" {
		dir = "."
	}
	conversationID := meta.ClaudeSessionID
	preflight := meta.Preflight
	if preflight == "" {
		preflight = settings.DefaultPreflight
	}

	m.printf("Recreating %s with bound conversation...\n", theme.DefaultTheme.Bold.Render(name))

	command := LaunchCommand(settings, LaunchSpec{
		Preflight:      preflight,
		ConversationID: conversationID,
		Args:           meta.ClaudeArgs,
	})
	if _, err := m.Mux.Create(ctx, tmux.CreateOptions{
		Name:    full,
		Dir:     dir,
		Command: command,
		Style:   statusStyle(settings.Tmux),
	}); err != nil {
		return nil, pilerrors.LaunchFailed(name, err)
	}

	meta.CreatedAt = m.Now()
	if err := m.Store.SetSession(full, meta); err != nil {
		return nil, err
	}

	if err := m.Sleep(ctx, m.Delays.Settle); err != nil {
		return nil, err
	}
	if !m.Mux.Exists(ctx, full) {
		return nil, pilerrors.SessionExited(name, conversationID)
	}

	if err := m.Mux.SendKeys(ctx, full, "C-l"); err != nil {
		m.Log.WithError(err).Debug("Failed to clear recreated session")
	}
	if err := m.Sleep(ctx, m.Delays.Redraw); err != nil {
		return nil, err
	}

	if err := m.attach(ctx, full); err != nil {
		return nil, err
	}
	return &Outcome{Action: ActionRecreated, Name: name, FullName: full, Dir: dir, ConversationID: conversationID}, nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
