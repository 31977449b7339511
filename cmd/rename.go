package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

func NewRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "rename")
			if err != nil {
				return err
			}
			return a.manager().Rename(cmd.Context(), args[0], args[1])
		},
	}
}

func NewLabelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label <name> <label...>",
		Short: "Set a session's label",
		Long: `Set a session's label. Extra words are joined with spaces.

Examples:
  pilot label api refactoring auth`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "label")
			if err != nil {
				return err
			}
			return a.manager().Label(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}
}
