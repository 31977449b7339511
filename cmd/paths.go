package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/pkg/paths"
)

// PathsOutput lists the files and directories pilot reads and writes.
type PathsOutput struct {
	ConfigFile     string `json:"config_file"`
	StateDir       string `json:"state_dir"`
	LogDir         string `json:"log_dir"`
	TranscriptRoot string `json:"transcript_root"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by pilot",
		Long: `Print the paths used by pilot as JSON.

- config_file: Metadata file holding settings, sessions and project names
- state_dir: Runtime state
- log_dir: Per-component log files, when file logging is enabled
- transcript_root: The assistant's transcript folders, one per directory

PILOT_HOME relocates pilot's own paths; PILOT_CONFIG names the metadata
file; CLAUDE_CONFIG_DIR relocates the assistant's home.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), PathsOutput{
				ConfigFile:     paths.ConfigFile(),
				StateDir:       paths.StateDir(),
				LogDir:         paths.LogDir(),
				TranscriptRoot: paths.TranscriptRoot(),
			})
		},
	}

	return cmd
}
