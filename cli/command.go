package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/logging"
)

// CommandOptions holds the persistent flags every pilot command shares.
type CommandOptions struct {
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard persistent
// flags and styled help.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if GetOptions(cmd).Verbose {
			logging.SetVerbose(true)
		}
	}

	SetStyledHelp(cmd)
	return cmd
}

// GetLogger returns the component logger, raised to debug by --verbose.
func GetLogger(cmd *cobra.Command, component string) *logrus.Entry {
	entry := logging.NewLogger(component)
	if GetOptions(cmd).Verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}
	return entry
}

// GetOptions extracts the shared options from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return CommandOptions{
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}
