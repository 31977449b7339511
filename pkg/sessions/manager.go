package sessions

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/pkg/tmux"
	"github.com/grovetools/pilot/pkg/transcripts"
	"github.com/grovetools/pilot/tui/theme"
)

// Pauses in the lifecycle. Tests shrink them through Manager.Delays.
type Delays struct {
	// BeforeAttach gives a fresh session time to draw before attaching.
	BeforeAttach time.Duration
	// Settle is how long a recreated session must survive to count as
	// started.
	Settle time.Duration
	// Redraw follows the screen clear sent to a recreated session.
	Redraw time.Duration
}

// DefaultDelays are the production pauses.
var DefaultDelays = Delays{
	BeforeAttach: 500 * time.Millisecond,
	Settle:       1500 * time.Millisecond,
	Redraw:       200 * time.Millisecond,
}

// Manager runs the lifecycle operations against a multiplexer and the
// metadata store.
type Manager struct {
	Mux         Multiplexer
	Store       *store.Store
	Transcripts *transcripts.Locator
	Log         *logrus.Entry

	// Out receives progress messages; Err receives notices.
	Out io.Writer
	Err io.Writer

	// Confirm asks a yes/no question. A nil Confirm refuses.
	Confirm func(prompt string) bool

	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
	Delays Delays

	// Detect is the template for background conversation detection;
	// Workdir and Since are filled in per session.
	Detect transcripts.DetectOptions
}

// NewManager returns a manager with production defaults.
func NewManager(mux Multiplexer, st *store.Store, locator *transcripts.Locator, log *logrus.Entry) *Manager {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Manager{
		Mux:         mux,
		Store:       st,
		Transcripts: locator,
		Log:         log,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Now:         time.Now,
		Sleep:       sleepContext,
		Delays:      DefaultDelays,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) confirm(prompt string) bool {
	if m.Confirm == nil {
		return false
	}
	return m.Confirm(prompt)
}

func (m *Manager) printf(format string, args ...interface{}) {
	if m.Out != nil {
		fmt.Fprintf(m.Out, format, args...)
	}
}

func (m *Manager) noticef(format string, args ...interface{}) {
	w := m.Err
	if w == nil {
		w = m.Out
	}
	if w != nil {
		fmt.Fprintln(w, theme.DefaultTheme.Muted.Render(fmt.Sprintf(format, args...)))
	}
}

func (m *Manager) settings() store.Settings {
	settings, err := m.Store.Settings()
	if err != nil {
		m.Log.WithError(err).Warn("Failed to read settings, using defaults")
		settings, _ = store.NewDocument().TypedSettings()
	}
	return settings
}

func statusStyle(t store.TmuxSettings) tmux.StatusStyle {
	return tmux.StatusStyle{
		Left:        t.StatusLeft,
		Right:       t.StatusRight,
		LeftLength:  t.StatusLeftLength,
		RightLength: t.StatusRightLength,
		Style:       t.StatusStyle,
	}
}

func (m *Manager) attach(ctx context.Context, full string) error {
	if err := m.Mux.Attach(ctx, full); err != nil {
		return pilerrors.Wrap(err, pilerrors.ErrCodeCommandFailed, "failed to attach to "+tmux.ShortName(full))
	}
	return nil
}
