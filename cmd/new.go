package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/cli"
	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/sessions"
	"github.com/grovetools/pilot/pkg/transcripts"
	"github.com/grovetools/pilot/tui/theme"
	"github.com/grovetools/pilot/util/pathutil"
)

// detachedGrace bounds the wait for a conversation id once the user has
// detached from a freshly created session.
const detachedGrace = 5 * time.Second

func NewNewCmd() *cobra.Command {
	var (
		dir            string
		resume         bool
		conversationID string
		label          string
		force          bool
		detach         bool
		preflight      string
		claudeArgs     string
	)

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a session",
		Long: `Create a supervised session running the assistant in a directory.

Without a name one is derived from the directory. With --resume a live
session is attached to, a dead one is recreated from its bound
conversation, and otherwise the latest conversation in the directory is
picked up.

Examples:
  pilot new api -d ~/src/api
  pilot new -d ~/src/web --detach
  pilot new api -r
  pilot new api --session-id 0f8c... -f
  pilot new api --claude-args "--model opus"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := pathutil.Expand(dir)
			if err != nil {
				return pilerrors.Wrap(err, pilerrors.ErrCodeInvalidInput, "invalid directory")
			}
			if canonical, err := pathutil.CanonicalPath(absDir); err == nil {
				absDir = canonical
			}
			parsedArgs, err := sessions.SplitArgs(claudeArgs)
			if err != nil {
				return pilerrors.Wrap(err, pilerrors.ErrCodeInvalidInput, "invalid --claude-args")
			}

			a, err := newApp(cmd, "new")
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			req := sessions.NewRequest{
				Dir:            absDir,
				Resume:         resume,
				ConversationID: conversationID,
				Label:          label,
				Force:          force,
				Detach:         detach,
				Preflight:      preflight,
				Args:           parsedArgs,
			}
			if len(args) > 0 {
				req.Name = args[0]
			}

			outcome, err := a.manager().New(ctx, req)
			if outcome != nil && outcome.Detection != nil {
				awaitDetection(ctx, cmd, outcome.Detection, detach)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Working directory")
	cmd.Flags().BoolVarP(&resume, "resume", "r", false, "Resume the session or the latest conversation")
	cmd.Flags().StringVar(&conversationID, "session-id", "", "Bind to a specific conversation id")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Label for the session")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmations")
	cmd.Flags().BoolVar(&detach, "detach", false, "Create without attaching")
	cmd.Flags().StringVar(&preflight, "preflight", "", "Command to run before the assistant starts")
	cmd.Flags().StringVar(&claudeArgs, "claude-args", "", "Extra arguments for the assistant, shell-quoted")
	return cmd
}

// awaitDetection lets a running conversation search finish before the
// process exits. A detached create waits the full search budget; after an
// attach the search has usually finished, so only a short grace is given.
func awaitDetection(ctx context.Context, cmd *cobra.Command, d *transcripts.Detection, detached bool) {
	wait := detachedGrace
	if detached {
		wait = transcripts.DetectOptions{}.Budget() + time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	defer d.Cancel()

	id, ok := d.Wait(waitCtx)
	log := cli.GetLogger(cmd, "new")
	if !ok {
		log.Debug("Conversation id not detected before exit")
		return
	}
	if detached {
		fmt.Fprintf(cmd.OutOrStdout(), "  Conversation: %s\n", theme.DefaultTheme.Muted.Render(id))
	}
}
