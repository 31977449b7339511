package cmd

import (
	"github.com/spf13/cobra"

	pilerrors "github.com/grovetools/pilot/errors"
)

func NewKillCmd() *cobra.Command {
	var (
		force bool
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "kill [name]",
		Short: "Kill a session and forget it",
		Long: `Kill a session together with its mirror and drop its stored metadata.
With --all every supervised session is killed; stored bindings are kept so
the sessions can be resumed later.

Examples:
  pilot kill api
  pilot kill -a -f`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return pilerrors.New(pilerrors.ErrCodeInvalidInput, "give a session name or --all")
			}
			a, err := newApp(cmd, "kill")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if all {
				return a.manager().KillAll(ctx, force)
			}
			return a.manager().Kill(ctx, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Kill every session")
	return cmd
}
