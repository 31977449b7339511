package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/tui/theme"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints err for a user and returns the process exit code. A
// declined confirmation is not a failure.
func (h *ErrorHandler) Handle(err error) int {
	if err == nil {
		return 0
	}
	t := theme.DefaultTheme
	fail := func(format string, args ...interface{}) {
		fmt.Fprintf(h.Out, "%s %s\n", t.Error.Render(theme.IconError), fmt.Sprintf(format, args...))
	}
	hint := func(format string, args ...interface{}) {
		fmt.Fprintln(h.Out, t.Muted.Render(fmt.Sprintf(format, args...)))
	}

	pe, _ := errors.As(err)
	detail := func(key string) interface{} {
		if pe == nil {
			return nil
		}
		return pe.Details[key]
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeAborted:
		fmt.Fprintln(h.Out, t.Muted.Render("Aborted."))
		return 0

	case errors.ErrCodeSessionNotFound:
		fail("No session matching '%v'.", detail("name"))
		hint("Run 'pilot list' to see live sessions.")

	case errors.ErrCodeSessionAmbiguous:
		fail("Multiple sessions match '%v':", detail("name"))
		if candidates, ok := detail("candidates").([]string); ok {
			for _, c := range candidates {
				fmt.Fprintf(h.Out, "  %s\n", c)
			}
		}

	case errors.ErrCodeSessionExited:
		fail("Session '%v' exited immediately.", detail("name"))
		hint("Conversation %v may be invalid. Start fresh with 'pilot new %v -f'.", detail("conversation_id"), detail("name"))

	case errors.ErrCodeTmuxUnavailable:
		fail("tmux is not installed or not on PATH.")

	case errors.ErrCodeDirectoryNotFound:
		fail("Directory does not exist: %v", detail("path"))

	case errors.ErrCodeProjectNotFound:
		fail("No project matching '%v'.", detail("identifier"))
		hint("Run 'pilot projects' to see known projects.")

	default:
		msg := err.Error()
		if pe != nil {
			msg = pe.Message
			if pe.Cause != nil {
				msg += ": " + strings.TrimSpace(pe.Cause.Error())
			}
		}
		fail("%s", msg)
	}

	if h.Verbose && pe != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", pe.ToJSON())
	}
	return 1
}
