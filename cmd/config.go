package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/pilot/cli"
	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/schema"
	"github.com/grovetools/pilot/tui/theme"
	"github.com/grovetools/pilot/util/pathutil"
)

func NewConfigCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config [key] [value...]",
		Short: "View or change settings",
		Long: `View or change pilot's settings. Without arguments all settings are
shown. With a key its value is printed; with a key and a value the setting
is changed. Nested settings use dotted keys.

Examples:
  pilot config
  pilot config --format yaml
  pilot config default_preflight
  pilot config default_preflight nvm use 20
  pilot config tmux.status_style bg=blue,fg=white
  pilot config unset default_preflight`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := store.Default(cli.GetLogger(cmd, "config"))
			out := cmd.OutOrStdout()
			switch len(args) {
			case 0:
				if cli.GetOptions(cmd).JSONOutput {
					format = "json"
				}
				return showConfig(out, st, format)
			case 1:
				return getSetting(out, st, args[0])
			default:
				return setSetting(out, st, args[0], strings.Join(args[1:], " "))
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, yaml, toml or json")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return getSetting(cmd.OutOrStdout(), store.Default(cli.GetLogger(cmd, "config")), args[0])
			},
		},
		&cobra.Command{
			Use:   "set <key> <value...>",
			Short: "Change one setting",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return setSetting(cmd.OutOrStdout(), store.Default(cli.GetLogger(cmd, "config")), args[0], strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{
			Use:   "unset <key>",
			Short: "Remove one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st := store.Default(cli.GetLogger(cmd, "config"))
				if err := st.UnsetSetting(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Unset %s\n",
					theme.DefaultTheme.Success.Render(theme.IconSuccess), theme.DefaultTheme.Accent.Render(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON Schema of the metadata file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := schema.Generate()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the metadata file against its schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st := store.Default(cli.GetLogger(cmd, "config"))
				return validateConfig(cmd.OutOrStdout(), st.Path())
			},
		},
	)
	return cmd
}

func showConfig(w io.Writer, st *store.Store, format string) error {
	doc, err := st.Load()
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return writeJSON(w, doc.Settings)
	case "yaml", "yml":
		data, err := yaml.Marshal(doc.Settings)
		if err != nil {
			return fmt.Errorf("failed to marshal settings to YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "toml":
		data, err := toml.Marshal(doc.Settings)
		if err != nil {
			return fmt.Errorf("failed to marshal settings to TOML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "text", "":
	default:
		return pilerrors.New(pilerrors.ErrCodeInvalidInput, "unknown format: "+format).
			WithDetail("format", format)
	}

	t := theme.DefaultTheme
	fmt.Fprintln(w, t.Bold.Render(fmt.Sprintf("Configuration (%s)", pathutil.Abbreviate(st.Path()))))
	fmt.Fprintln(w)
	if len(doc.Settings) == 0 {
		fmt.Fprintln(w, t.Muted.Render("No settings configured."))
	} else {
		fmt.Fprintln(w, t.Bold.Render("Settings:"))
		writeSettings(w, doc.Settings, 1)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d stored\n", t.Muted.Render("Sessions:"), len(doc.Sessions))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s pilot config <key> <value>\n", t.Muted.Render("Edit:"))
	fmt.Fprintf(w, "%s pilot tmux-setup\n", t.Muted.Render("Tmux:"))
	return nil
}

func writeSettings(w io.Writer, settings map[string]interface{}, depth int) {
	t := theme.DefaultTheme
	indent := strings.Repeat("  ", depth)
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if nested, ok := settings[k].(map[string]interface{}); ok {
			fmt.Fprintf(w, "%s%s:\n", indent, t.Accent.Render(k))
			writeSettings(w, nested, depth+1)
			continue
		}
		fmt.Fprintf(w, "%s%s %v\n", indent, t.Accent.Render(fmt.Sprintf("%-20s", k)), settings[k])
	}
}

func getSetting(w io.Writer, st *store.Store, key string) error {
	doc, err := st.Load()
	if err != nil {
		return err
	}
	value, ok := doc.GetSetting(key)
	if !ok || value == nil {
		return pilerrors.New(pilerrors.ErrCodeInvalidInput, "setting not set: "+key).
			WithDetail("key", key)
	}
	if nested, ok := value.(map[string]interface{}); ok {
		writeSettings(w, nested, 0)
		return nil
	}
	fmt.Fprintln(w, value)
	return nil
}

func setSetting(w io.Writer, st *store.Store, key, value string) error {
	if key == "" {
		return pilerrors.New(pilerrors.ErrCodeInvalidInput, "setting key is empty")
	}
	if err := st.SetSetting(key, settingValue(value)); err != nil {
		return err
	}
	t := theme.DefaultTheme
	fmt.Fprintf(w, "%s Set %s = %s\n", t.Success.Render(theme.IconSuccess), t.Accent.Render(key), value)
	return nil
}

// settingValue keeps values as strings except booleans, which the schema
// types as such.
func settingValue(value string) interface{} {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}

func validateConfig(w io.Writer, path string) error {
	t := theme.DefaultTheme
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "%s %s does not exist yet\n", t.Success.Render(theme.IconSuccess), pathutil.Abbreviate(path))
		return nil
	}
	if err != nil {
		return pilerrors.Wrap(err, pilerrors.ErrCodeConfigInvalid, "failed to read "+path)
	}

	v, err := schema.NewValidator()
	if err != nil {
		return err
	}
	if err := v.ValidateJSON(data); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s is valid\n", t.Success.Render(theme.IconSuccess), pathutil.Abbreviate(path))
	return nil
}
