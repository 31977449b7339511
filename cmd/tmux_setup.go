package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/cli"
	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/tui/theme"
	"github.com/grovetools/pilot/util/pathutil"
)

// defaultTmuxSettings are offered when no status-bar options are stored.
var defaultTmuxSettings = [][2]string{
	{"status_left", "[#S] "},
	{"status_left_length", "40"},
	{"status_right", "%H:%M %d-%b-%y"},
	{"status_style", "bg=black,fg=white"},
}

var tmuxSettingHelp = [][2]string{
	{"status_left", "Left side of status bar (use #S for session name)"},
	{"status_left_length", "Max length of left side"},
	{"status_right", "Right side of status bar"},
	{"status_right_length", "Max length of right side"},
	{"status_style", "Status bar colors (e.g., 'bg=black,fg=white')"},
}

func NewTmuxSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tmux-setup",
		Short: "Configure the status bar of new sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := store.Default(cli.GetLogger(cmd, "config"))
			return tmuxSetup(cmd.OutOrStdout(), st, cli.NewPrompter().Confirm)
		},
	}
}

func tmuxSetup(w io.Writer, st *store.Store, confirm func(string) bool) error {
	t := theme.DefaultTheme
	fmt.Fprintln(w, t.Bold.Render("Configure tmux status bar for pilot sessions"))
	fmt.Fprintln(w)

	doc, err := st.Load()
	if err != nil {
		return err
	}
	configFile := pathutil.Abbreviate(st.Path())

	current, _ := doc.Settings["tmux"].(map[string]interface{})
	if len(current) > 0 {
		fmt.Fprintln(w, t.Bold.Render("Current tmux config:"))
		keys := make([]string, 0, len(current))
		for k := range current {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s %v\n", t.Accent.Render(fmt.Sprintf("%-20s", k)), current[k])
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Muted.Render(fmt.Sprintf("Edit %s to customize", configFile)))
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Bold.Render("Available settings:"))
		for _, h := range tmuxSettingHelp {
			fmt.Fprintf(w, "  %-21s %s\n", h[0], h[1])
		}
		return nil
	}

	fmt.Fprintln(w, "No tmux config found. Apply defaults?")
	for _, d := range defaultTmuxSettings {
		fmt.Fprintln(w, t.Muted.Render(fmt.Sprintf("  %s: %s", d[0], d[1])))
	}
	fmt.Fprintln(w)

	if !confirm("Apply?") {
		return pilerrors.Aborted()
	}

	values := make(map[string]interface{}, len(defaultTmuxSettings))
	for _, d := range defaultTmuxSettings {
		values[d[0]] = d[1]
	}
	if err := st.UpdateSettings(map[string]interface{}{"tmux": values}); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Tmux config saved\n", t.Success.Render(theme.IconSuccess))
	fmt.Fprintln(w, t.Muted.Render("New sessions will use these settings"))
	fmt.Fprintln(w, t.Muted.Render(fmt.Sprintf("Edit %s to customize", configFile)))
	return nil
}
