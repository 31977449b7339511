package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/cli"
	"github.com/grovetools/pilot/command"
	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/health"
	"github.com/grovetools/pilot/pkg/process"
	"github.com/grovetools/pilot/pkg/sessions"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/pkg/tmux"
	"github.com/grovetools/pilot/pkg/transcripts"
)

// app is the per-invocation wiring shared by the session commands.
type app struct {
	cmd     *cobra.Command
	log     *logrus.Entry
	store   *store.Store
	locator *transcripts.Locator
	tmux    *tmux.Client
}

func newApp(cmd *cobra.Command, component string) (*app, error) {
	log := cli.GetLogger(cmd, component)
	client, err := tmux.NewClient()
	if err != nil {
		return nil, err
	}
	return &app{
		cmd:     cmd,
		log:     log,
		store:   store.Default(log),
		locator: transcripts.NewLocator(),
		tmux:    client,
	}, nil
}

func (a *app) manager() *sessions.Manager {
	m := sessions.NewManager(a.tmux, a.store, a.locator, a.log)
	m.Out = a.cmd.OutOrStdout()
	m.Err = a.cmd.ErrOrStderr()
	m.Confirm = cli.NewPrompter().Confirm
	return m
}

func (a *app) classifier() *health.Classifier {
	c := health.NewClassifier(a.tmux, process.NewPSInspector(command.NewSafeBuilder()))
	settings, err := a.store.Settings()
	if err != nil {
		a.log.WithError(err).Debug("Classifying with the default assistant names")
		return c
	}
	return c.WithAssistant(settings.AssistantBin)
}

// sessionView is a live session joined with its health and metadata.
type sessionView struct {
	tmux.Session
	Status health.State
	Meta   store.SessionMeta
}

func (a *app) sessionViews(ctx context.Context) ([]sessionView, error) {
	return a.buildViews(ctx, a.tmux.ListSessions(ctx))
}

// buildViews classifies each of live and joins it with its metadata.
func (a *app) buildViews(ctx context.Context, live []tmux.Session) ([]sessionView, error) {
	metas, err := a.store.Sessions()
	if err != nil {
		return nil, err
	}
	classifier := a.classifier()

	views := make([]sessionView, 0, len(live))
	for _, s := range live {
		views = append(views, sessionView{
			Session: s,
			Status:  classifier.Classify(ctx, s),
			Meta:    metas[s.Name],
		})
	}
	return views, nil
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	if time.Since(t) < time.Minute {
		return "just now"
	}
	return humanize.Time(t)
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// errUsage marks a flag error that has already been printed.
var errUsage = pilerrors.New(pilerrors.ErrCodeInvalidInput, "invalid usage")

// signalContext is cancelled on interrupt or terminate.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
