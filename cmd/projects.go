package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/grovetools/pilot/cli"
	"github.com/grovetools/pilot/pkg/paths"
	"github.com/grovetools/pilot/pkg/projects"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/tui/components/table"
	"github.com/grovetools/pilot/tui/theme"
	"github.com/grovetools/pilot/util/pathutil"
)

func NewProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the assistant's projects",
		Long: `List the directories the assistant has conversations for, with the
conversation count, transcript size, memory folder, last activity and any
live sessions running there.

Examples:
  pilot projects
  pilot projects --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			jsonOutput := cli.GetOptions(cmd).JSONOutput
			log := cli.GetLogger(cmd, "projects")

			catalog := projects.NewCatalog(paths.TranscriptRoot(), store.Default(log))
			if !catalog.Exists() {
				if jsonOutput {
					fmt.Fprintln(out, "[]")
					return nil
				}
				fmt.Fprintln(out, theme.DefaultTheme.Muted.Render(
					fmt.Sprintf("No Claude projects found (%s does not exist).", pathutil.Abbreviate(catalog.Root))))
				return nil
			}

			var live []projects.Session
			if a, err := newApp(cmd, "projects"); err == nil {
				views, err := a.sessionViews(cmd.Context())
				if err != nil {
					return err
				}
				live = projectSessions(views)
			} else {
				log.WithError(err).Debug("Listing projects without live sessions")
			}

			list, err := catalog.List(live)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(out, list)
			}
			renderProjects(out, list, cli.TerminalWidth(0))
			return nil
		},
	}
}

func projectSessions(views []sessionView) []projects.Session {
	live := make([]projects.Session, 0, len(views))
	for _, v := range views {
		live = append(live, projects.Session{
			Name:   v.ShortName,
			Label:  v.Meta.Label,
			Status: string(v.Status),
			Dir:    v.Meta.Dir,
		})
	}
	return live
}

func renderProjects(w io.Writer, list []projects.Project, width int) {
	t := theme.DefaultTheme
	if len(list) == 0 {
		fmt.Fprintln(w, t.Muted.Render("No Claude projects found."))
		return
	}

	rows := make([][]string, 0, len(list))
	for _, p := range list {
		sessionsCell := t.Muted.Render(emptyCell)
		if len(p.Sessions) > 0 {
			names := make([]string, len(p.Sessions))
			for i, s := range p.Sessions {
				names[i] = colorByStatus(s.Status, s.Name)
			}
			sessionsCell = strings.Join(names, ", ")
		}
		memory := t.Muted.Render("no")
		if p.HasMemory {
			memory = t.Accent.Render("yes")
		}
		activity := t.Muted.Render(emptyCell)
		if p.LastActivity != nil {
			activity = timeAgo(*p.LastActivity)
		}
		rows = append(rows, []string{
			t.Bold.Render(p.Name),
			strconv.Itoa(p.ConversationCount),
			humanize.Bytes(uint64(p.TotalSizeBytes)),
			memory,
			activity,
			sessionsCell,
			t.Muted.Render(pathutil.Abbreviate(p.Path)),
		})
	}

	fmt.Fprintln(w, table.NewBuilder().
		WithHeaders("PROJECT", "CONVOS", "SIZE", "MEMORY", "ACTIVITY", "SESSIONS", "PATH").
		WithRows(rows...).
		WithWidth(width).
		Build().
		String())
}

func colorByStatus(state, text string) string {
	t := theme.DefaultTheme
	switch state {
	case "active":
		return t.Success.Render(text)
	case "waiting":
		return t.Warning.Render(text)
	case "idle":
		return t.Info.Render(text)
	case "dead":
		return t.Error.Render(text)
	default:
		return text
	}
}

func NewProjectNameCmd() *cobra.Command {
	var clearName bool

	cmd := &cobra.Command{
		Use:   "project-name [project] [name]",
		Short: "Name a project",
		Long: `Give a project a custom name. The project can be a path, a current
custom name, or the base name of a session's or transcript folder's
directory. Without arguments the named projects are listed.

Examples:
  pilot project-name
  pilot project-name ~/src/api backend
  pilot project-name api backend
  pilot project-name --clear backend`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			t := theme.DefaultTheme
			log := cli.GetLogger(cmd, "projects")
			catalog := projects.NewCatalog(paths.TranscriptRoot(), store.Default(log))

			if clearName {
				if len(args) != 1 {
					cli.PrintUsageError(cmd, fmt.Errorf("--clear takes exactly one project"))
					return errUsage
				}
				path, err := catalog.ResolveIdentifier(args[0])
				if err != nil {
					return err
				}
				if err := catalog.ClearName(path); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s Cleared name for %s\n",
					t.Success.Render(theme.IconSuccess), t.Muted.Render(pathutil.Abbreviate(path)))
				return nil
			}

			switch len(args) {
			case 0:
				named, err := catalog.NamedProjects()
				if err != nil {
					return err
				}
				if len(named) == 0 {
					fmt.Fprintln(out, t.Muted.Render("No named projects. Usage: pilot project-name <path-or-current-name> <name>"))
					return nil
				}
				fmt.Fprintln(out, t.Bold.Render("Named projects:"))
				for _, n := range named {
					fmt.Fprintf(out, "  %s  %s\n", t.Accent.Render(n.Name), t.Muted.Render(pathutil.Abbreviate(n.Path)))
				}
				return nil
			case 1:
				cli.PrintUsageError(cmd, fmt.Errorf("missing name for project '%s'", args[0]))
				return errUsage
			}

			path, err := catalog.ResolveIdentifier(args[0])
			if err != nil {
				return err
			}
			if err := catalog.SetName(path, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Project %s named %s\n",
				t.Success.Render(theme.IconSuccess), t.Muted.Render(pathutil.Abbreviate(path)), t.Bold.Render(args[1]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearName, "clear", false, "Remove the project's custom name")
	return cmd
}
