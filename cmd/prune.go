package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/pkg/tmux"
	"github.com/grovetools/pilot/tui/theme"
)

func NewPruneCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Forget sessions that no longer exist in tmux",
		Long: `Drop the stored metadata of every session that is not running in tmux.
Pruned sessions can no longer be recreated with 'pilot resume'.

Examples:
  pilot prune
  pilot prune -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "prune")
			if err != nil {
				return err
			}
			var active []string
			for _, s := range a.tmux.ListSessions(cmd.Context()) {
				active = append(active, s.Name)
			}
			confirm := a.manager().Confirm
			if force {
				confirm = func(string) bool { return true }
			}
			return prune(cmd.OutOrStdout(), a.store, active, confirm)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

func prune(w io.Writer, st *store.Store, active []string, confirm func(string) bool) error {
	t := theme.DefaultTheme
	metas, err := st.Sessions()
	if err != nil {
		return err
	}

	live := make(map[string]bool, len(active))
	for _, name := range active {
		live[name] = true
	}
	var stale []string
	for name := range metas {
		if !live[name] {
			stale = append(stale, tmux.ShortName(name))
		}
	}
	if len(stale) == 0 {
		fmt.Fprintln(w, t.Muted.Render("Nothing to prune."))
		return nil
	}
	sort.Strings(stale)

	if !confirm(fmt.Sprintf("Forget %d stored sessions (%s)?", len(stale), strings.Join(stale, ", "))) {
		return pilerrors.Aborted()
	}
	removed, err := st.Cleanup(active)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Pruned %d sessions\n", t.Success.Render(theme.IconSuccess), len(removed))
	return nil
}
