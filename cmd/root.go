package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/cli"
	"github.com/grovetools/pilot/version"
)

// NewRootCmd assembles the pilot command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand("pilot", "Supervise assistant sessions running in tmux")
	root.Long = `Supervise assistant sessions running in tmux.

Every session pilot manages is a tmux session named claude-<name>. pilot
remembers each session's directory, bound conversation, label and launch
arguments so a session can be recreated after tmux exits.

Examples:
  pilot new api -d ~/src/api
  pilot list
  pilot resume api
  pilot logs api -f`
	cli.SetVersionTemplate(root, version.GetInfo())

	root.AddCommand(
		NewNewCmd(),
		NewResumeCmd(),
		NewListCmd(),
		NewStatusCmd(),
		NewKillCmd(),
		NewRenameCmd(),
		NewLabelCmd(),
		NewLogsCmd(),
		NewProjectsCmd(),
		NewProjectNameCmd(),
		NewConfigCmd(),
		NewTmuxSetupCmd(),
		NewPruneCmd(),
		NewPathsCmd(),
		cli.NewVersionCommand("pilot"),
	)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cli.PrintUsageError(cmd, err)
		return errUsage
	})

	cli.ApplyStyledHelpRecursive(root)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return 0
	}
	if err == errUsage {
		return 2
	}
	verbose, _ := root.PersistentFlags().GetBool("verbose")
	return cli.NewErrorHandler(verbose).Handle(err)
}
