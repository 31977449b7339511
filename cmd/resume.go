package cmd

import (
	"github.com/spf13/cobra"
)

func NewResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "resume <name>",
		Aliases: []string{"attach", "a"},
		Short:   "Attach to a session, recreating it if it has exited",
		Long: `Attach to the session matching name. An exact name wins, otherwise any
session whose name contains the input matches. A session that is no longer
running is recreated on its bound conversation.

Examples:
  pilot resume api
  pilot resume ap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "resume")
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			_, err = a.manager().Resume(ctx, args[0])
			return err
		},
	}
}
