package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/cli"
	"github.com/grovetools/pilot/pkg/health"
	"github.com/grovetools/pilot/tui/components/table"
	"github.com/grovetools/pilot/tui/theme"
	"github.com/grovetools/pilot/util/pathutil"
)

const emptyCell = "—"

// listEntry is the JSON form of one listed session.
type listEntry struct {
	Name            string `json:"name"`
	Label           string `json:"label,omitempty"`
	Status          string `json:"status"`
	Dir             string `json:"dir,omitempty"`
	ClaudeSessionID string `json:"claude_session_id,omitempty"`
	Windows         int    `json:"windows"`
	Attached        bool   `json:"attached"`
	AttachedClients int    `json:"attached_clients"`
	RemoteClients   int    `json:"remote_clients"`
	Created         string `json:"created"`
	Activity        string `json:"activity"`
}

func NewListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions",
		Long: `List supervised sessions with their health, directory and clients.
Sessions whose assistant has exited are hidden unless --all is given.

Examples:
  pilot list
  pilot list -a --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "list")
			if err != nil {
				return err
			}
			views, err := a.sessionViews(cmd.Context())
			if err != nil {
				return err
			}
			if !all {
				views = liveOnly(views)
			}
			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(out, listEntries(views))
			}
			serverUp := len(views) > 0 || a.tmux.IsRunning(cmd.Context())
			renderSessionList(out, views, cli.TerminalWidth(0), serverUp)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include sessions whose assistant has exited")
	return cmd
}

func liveOnly(views []sessionView) []sessionView {
	kept := views[:0:0]
	for _, v := range views {
		if v.Status != health.StateDead {
			kept = append(kept, v)
		}
	}
	return kept
}

func listEntries(views []sessionView) []listEntry {
	entries := make([]listEntry, 0, len(views))
	for _, v := range views {
		entries = append(entries, listEntry{
			Name:            v.ShortName,
			Label:           v.Meta.Label,
			Status:          string(v.Status),
			Dir:             v.Meta.Dir,
			ClaudeSessionID: v.Meta.ClaudeSessionID,
			Windows:         v.Windows,
			Attached:        v.Attached,
			AttachedClients: v.AttachedClients,
			RemoteClients:   v.RemoteClients,
			Created:         isoTime(v.Created),
			Activity:        isoTime(v.Activity),
		})
	}
	return entries
}

func renderSessionList(w io.Writer, views []sessionView, width int, serverUp bool) {
	t := theme.DefaultTheme
	if len(views) == 0 {
		fmt.Fprintln(w, t.Muted.Render("No active Claude sessions."))
		if !serverUp {
			fmt.Fprintln(w, t.Muted.Render("No tmux server is running."))
		}
		fmt.Fprintln(w, t.Muted.Render("Start one with: pilot new [name] -d <dir>"))
		return
	}

	hasLabels := false
	for _, v := range views {
		if v.Meta.Label != "" {
			hasLabels = true
			break
		}
	}

	headers := []string{"NAME"}
	if hasLabels {
		headers = append(headers, "LABEL")
	}
	headers = append(headers, "STATUS", "DIRECTORY", "CLIENTS", "ACTIVITY")

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		row := []string{t.Bold.Render(v.ShortName)}
		if hasLabels {
			row = append(row, orDash(v.Meta.Label, t.Accent.Render))
		}
		dir := emptyCell
		if v.Meta.Dir != "" {
			dir = pathutil.Abbreviate(v.Meta.Dir)
		}
		row = append(row,
			theme.StatusBadge(string(v.Status)),
			t.Muted.Render(dir),
			clientsCell(v.AttachedClients, v.RemoteClients),
			timeAgo(v.Activity),
		)
		rows = append(rows, row)
	}

	fmt.Fprintln(w, table.NewBuilder().
		WithHeaders(headers...).
		WithRows(rows...).
		WithWidth(width).
		Build().
		String())
}

func clientsCell(local, remote int) string {
	t := theme.DefaultTheme
	var parts []string
	if local > 0 {
		parts = append(parts, t.Success.Render(fmt.Sprintf("%d local", local)))
	}
	if remote > 0 {
		parts = append(parts, t.Info.Render(fmt.Sprintf("%d remote", remote)))
	}
	if len(parts) == 0 {
		return t.Muted.Render("detached")
	}
	return strings.Join(parts, ", ")
}

func orDash(s string, render func(...string) string) string {
	if s == "" {
		return theme.DefaultTheme.Muted.Render(emptyCell)
	}
	return render(s)
}
