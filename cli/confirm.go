package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/grovetools/pilot/tui/theme"
)

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
}

// NewPrompter returns a prompter on the process's stdin and stderr.
func NewPrompter() *Prompter {
	return &Prompter{
		In:          os.Stdin,
		Out:         os.Stderr,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// Confirm prints prompt and reads one answer. Only "y" and "yes" accept.
// Without a terminal on stdin every question is refused.
func (p *Prompter) Confirm(prompt string) bool {
	if !p.Interactive {
		fmt.Fprintf(p.Out, "%s %s (not a terminal, use -f)\n", theme.DefaultTheme.Warning.Render(theme.IconWarning), prompt)
		return false
	}
	fmt.Fprintf(p.Out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
