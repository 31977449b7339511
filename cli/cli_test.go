package cli

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/grovetools/pilot/errors"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want []string
	}{
		{"nil", nil, 0, nil},
		{"aborted exits zero", errors.Aborted(), 0, []string{"Aborted."}},
		{"not found", errors.SessionNotFound("api"), 1, []string{"No session matching 'api'", "pilot list"}},
		{"ambiguous lists candidates", errors.SessionAmbiguous("a", []string{"api", "app"}), 1, []string{"match 'a'", "  api\n", "  app\n"}},
		{"exited names conversation", errors.SessionExited("api", "0b7c2a8e-1f44-4c1a-9a57-0d5f2f6b8a01"), 1, []string{"exited immediately", "0b7c2a8e-1f44"}},
		{"wrapped cause", errors.LaunchFailed("api", stderrors.New("duplicate session")), 1, []string{"failed to create session 'api': duplicate session"}},
		{"plain error", stderrors.New("boom"), 1, []string{"boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := &ErrorHandler{Out: &out}
			assert.Equal(t, tt.code, h.Handle(tt.err))
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestErrorHandlerVerbose(t *testing.T) {
	var out bytes.Buffer
	h := &ErrorHandler{Out: &out, Verbose: true}
	h.Handle(errors.DirectoryNotFound("/nope"))
	assert.Contains(t, out.String(), `"code": "DIRECTORY_NOT_FOUND"`)
}

func TestPrompter(t *testing.T) {
	tests := []struct {
		input       string
		interactive bool
		want        bool
	}{
		{"y\n", true, true},
		{"YES\n", true, true},
		{"n\n", true, false},
		{"\n", true, false},
		{"", true, false},
		{"y\n", false, false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := &Prompter{In: strings.NewReader(tt.input), Out: &out, Interactive: tt.interactive}
		assert.Equal(t, tt.want, p.Confirm("Kill session 'api'?"), "input %q interactive %v", tt.input, tt.interactive)
		assert.Contains(t, out.String(), "Kill session 'api'?")
	}
}

func TestStandardCommand(t *testing.T) {
	cmd := NewStandardCommand("pilot", "Supervise sessions")
	var ran bool
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ran = true
		opts := GetOptions(cmd)
		assert.True(t, opts.JSONOutput)
		assert.False(t, opts.Verbose)
		return nil
	}
	cmd.SetArgs([]string{"--json"})
	assert.NoError(t, cmd.Execute())
	assert.True(t, ran)
}

func TestStyledHelp(t *testing.T) {
	root := NewStandardCommand("pilot", "Supervise sessions")
	sub := &cobra.Command{
		Use:   "kill NAME",
		Short: "Kill a session",
		Long:  "Kill a session and its mirror.\n\nExamples:\n# kill one\npilot kill api -f",
		RunE:  func(*cobra.Command, []string) error { return nil },
	}
	sub.Flags().BoolP("force", "f", false, "Skip confirmation")
	root.AddCommand(sub)
	ApplyStyledHelpRecursive(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"kill", "--help"})
	assert.NoError(t, root.Execute())

	help := out.String()
	assert.Contains(t, help, "PILOT KILL")
	assert.Contains(t, help, "-f, --force")
	assert.Contains(t, help, "# kill one")
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "aaa bbb\nccc", wrapText("aaa bbb ccc", 7))
	assert.Equal(t, "short\n\nkept", wrapText("short\n\nkept", 7))
}
