package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/sessions"
)

const followInterval = time.Second

func NewLogsCmd() *cobra.Command {
	var (
		lines  int
		follow bool
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "logs <name>",
		Short: "Show a session's recent output",
		Long: `Print the last lines of a session's pane. With --follow the pane is
polled every second and redrawn when it changes, until interrupted.

Examples:
  pilot logs api
  pilot logs api -n 200 --raw
  pilot logs api -f`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateLines(lines); err != nil {
				return err
			}
			a, err := newApp(cmd, "logs")
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			res := sessions.Resolve(ctx, a.tmux, args[0])
			switch res.Kind {
			case sessions.ResolvedMany:
				return pilerrors.SessionAmbiguous(args[0], res.Candidates)
			case sessions.ResolvedNone:
				return pilerrors.SessionNotFound(args[0])
			}

			capture := func() (string, bool) {
				text, ok := a.tmux.CapturePane(ctx, res.Name, lines, !raw)
				if ok && raw {
					text = ansi.Strip(text)
				}
				return text, ok
			}

			out := cmd.OutOrStdout()
			if follow {
				term := termenv.NewOutput(out)
				followPane(ctx, out, capture, term.ClearScreen, followInterval)
				return nil
			}

			text, ok := capture()
			if !ok {
				return pilerrors.New(pilerrors.ErrCodeCommandFailed, "failed to capture pane output")
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow output")
	cmd.Flags().BoolVar(&raw, "raw", false, "Strip ANSI escapes")
	return cmd
}

func validateLines(n int) error {
	if n < 1 {
		return pilerrors.New(pilerrors.ErrCodeInvalidInput, fmt.Sprintf("--lines must be at least 1, got %d", n))
	}
	return nil
}

// followPane redraws the capture whenever it changes. It returns when ctx
// ends or a capture fails, which happens once the session is gone.
func followPane(ctx context.Context, w io.Writer, capture func() (string, bool), clear func(), interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	first := true
	for {
		text, ok := capture()
		if !ok {
			return
		}
		if first || text != last {
			clear()
			fmt.Fprintln(w, text)
			last = text
			first = false
		}

		if ctx.Err() != nil {
			fmt.Fprintln(w)
			return
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return
		case <-ticker.C:
		}
	}
}
