package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/cli"
	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/sessions"
	"github.com/grovetools/pilot/pkg/tmux"
	"github.com/grovetools/pilot/tui/components/table"
	"github.com/grovetools/pilot/tui/theme"
)

// statusReport is the JSON form of `pilot status`.
type statusReport struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Label           string   `json:"label,omitempty"`
	Status          string   `json:"status"`
	Dir             string   `json:"dir,omitempty"`
	ClaudeSessionID string   `json:"claude_session_id,omitempty"`
	Windows         int      `json:"windows"`
	Attached        bool     `json:"attached"`
	PanePID         int      `json:"pane_pid"`
	PaneCommand     string   `json:"pane_command"`
	Created         string   `json:"created"`
	Activity        string   `json:"activity"`
	ClaudeArgs      []string `json:"claude_args"`
	Preflight       string   `json:"preflight,omitempty"`
}

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <name>",
		Short: "Show a session's health details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "status")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			view, err := a.resolveView(ctx, args[0])
			if err != nil {
				return err
			}
			paneCommand, _ := a.tmux.PaneForegroundCommand(ctx, view.Name)
			report := newStatusReport(view, paneCommand)

			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			renderStatus(cmd.OutOrStdout(), report, view)
			return nil
		},
	}
}

// resolveView finds the live session name refers to and classifies it.
func (a *app) resolveView(ctx context.Context, name string) (sessionView, error) {
	res := sessions.Resolve(ctx, a.tmux, name)
	switch res.Kind {
	case sessions.ResolvedMany:
		return sessionView{}, pilerrors.SessionAmbiguous(name, res.Candidates)
	case sessions.ResolvedNone:
		return sessionView{}, pilerrors.SessionNotFound(name)
	}

	target := selectSessions(a.tmux.ListSessions(ctx), res.Name)
	if len(target) == 0 {
		return sessionView{}, pilerrors.SessionNotFound(name)
	}
	views, err := a.buildViews(ctx, target)
	if err != nil {
		return sessionView{}, err
	}
	return views[0], nil
}

// selectSessions returns the sessions in live named full.
func selectSessions(live []tmux.Session, full string) []tmux.Session {
	for _, s := range live {
		if s.Name == full {
			return []tmux.Session{s}
		}
	}
	return nil
}

func newStatusReport(v sessionView, paneCommand string) statusReport {
	args := v.Meta.ClaudeArgs
	if args == nil {
		args = []string{}
	}
	return statusReport{
		Name:            v.ShortName,
		FullName:        v.Name,
		Label:           v.Meta.Label,
		Status:          string(v.Status),
		Dir:             v.Meta.Dir,
		ClaudeSessionID: v.Meta.ClaudeSessionID,
		Windows:         v.Windows,
		Attached:        v.Attached,
		PanePID:         v.PanePID,
		PaneCommand:     paneCommand,
		Created:         isoTime(v.Created),
		Activity:        isoTime(v.Activity),
		ClaudeArgs:      args,
		Preflight:       v.Meta.Preflight,
	}
}

func renderStatus(w io.Writer, r statusReport, v sessionView) {
	t := theme.DefaultTheme

	var items [][2]string
	if r.Label != "" {
		items = append(items, [2]string{"Label", t.Accent.Render(r.Label)})
	}
	items = append(items,
		[2]string{"Status", theme.StatusBadge(r.Status)},
		[2]string{"Directory", orDash(r.Dir, t.Accent.Render)},
	)
	if r.ClaudeSessionID != "" {
		items = append(items, [2]string{"Claude ID", t.Muted.Render(r.ClaudeSessionID)})
	}
	attached := "no"
	if r.Attached {
		attached = t.Success.Render("yes")
	}
	created := emptyCell
	if !v.Created.IsZero() {
		created = v.Created.Local().Format("2006-01-02 15:04:05")
	}
	items = append(items,
		[2]string{"Windows", strconv.Itoa(r.Windows)},
		[2]string{"Attached", attached},
		[2]string{"Pane PID", strconv.Itoa(r.PanePID)},
		[2]string{"Pane cmd", orDash(r.PaneCommand, t.Normal.Render)},
		[2]string{"Created", created},
		[2]string{"Activity", timeAgo(v.Activity)},
	)
	if len(r.ClaudeArgs) > 0 {
		items = append(items, [2]string{"Claude args", strings.Join(r.ClaudeArgs, " ")})
	}
	if r.Preflight != "" {
		items = append(items, [2]string{"Preflight", t.Muted.Render(r.Preflight)})
	}

	fmt.Fprintln(w, t.Bold.Render("Session: "+r.Name))
	for _, line := range strings.Split(table.KeyValue(items), "\n") {
		fmt.Fprintln(w, "  "+line)
	}
}
