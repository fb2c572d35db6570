package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-epic/internal/app"
	"github.com/runoshun/git-epic/internal/domain"
	"github.com/runoshun/git-epic/internal/usecase"
)

// newEpicCommand creates the epic command group.
func newEpicCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Manage epics in the local cache",
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newEpicAddCommand(c))
	cmd.AddCommand(newEpicListCommand(c))
	cmd.AddCommand(newEpicShowCommand(c))
	cmd.AddCommand(newEpicCloseCommand(c))

	return cmd
}

// newEpicAddCommand creates the epic add subcommand.
func newEpicAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Agent       string
		Labels      []string
		Number      int
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an epic",
		Long: `Add an epic to the local cache. The epic is marked dirty and is
created on GitHub by the next sync. Use --number to track an issue that
already exists.

Examples:
  git-epic epic add --title "Parser rewrite" --label backend
  git-epic epic add --title "Docs" --number 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := repository(c)
			if err != nil {
				return err
			}
			out, err := c.AddEpicUseCase(repo).Execute(cmd.Context(), usecase.AddEpicInput{
				Title:       opts.Title,
				Description: opts.Description,
				Agent:       opts.Agent,
				Labels:      opts.Labels,
				Number:      opts.Number,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added epic %s: %s\n", out.Epic.Ref(), out.Epic.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Epic title (required)")
	cmd.Flags().StringVar(&opts.Description, "body", "", "Epic description")
	cmd.Flags().StringVar(&opts.Agent, "agent", "", "Agent recorded on the epic_created entry")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "Labels (can specify multiple)")
	cmd.Flags().IntVar(&opts.Number, "number", 0, "Existing GitHub issue number to track")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// newEpicListCommand creates the epic list subcommand.
func newEpicListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		State string
		Dirty bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List epics",
		Long: `Display the cached epics in cache order.

Output columns: REF, STATE, DIRTY, TASKS (closed/total), TITLE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := repository(c)
			if err != nil {
				return err
			}
			out, err := c.ListEpicsUseCase(repo).Execute(cmd.Context(), usecase.ListEpicsInput{
				State:     domain.IssueState(opts.State),
				DirtyOnly: opts.Dirty,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Epics) == 0 {
				_, _ = fmt.Fprintln(w, "No epics found")
				return nil
			}
			printEpicList(w, out.Epics)
			if !out.LastSync.IsZero() {
				_, _ = fmt.Fprintln(w, Styles.Muted.Render("Last sync: "+out.LastSync.Local().Format("2006-01-02 15:04:05")))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "Only epics in this state (open, closed)")
	cmd.Flags().BoolVar(&opts.Dirty, "dirty", false, "Only epics with unsynced changes")

	return cmd
}

// printEpicList prints epics in a tabular format.
func printEpicList(w io.Writer, epics []domain.Epic) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "REF\tSTATE\tDIRTY\tTASKS\tTITLE")
	for i := range epics {
		e := &epics[i]
		dirty := "-"
		if e.Dirty {
			dirty = "yes"
		}
		closed := 0
		for _, s := range e.SubIssues {
			if s.State == domain.StateClosed {
				closed++
			}
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n",
			e.Ref(),
			e.State,
			dirty,
			closed,
			len(e.SubIssues),
			e.Title,
		)
	}
}

// newEpicShowCommand creates the epic show subcommand.
func newEpicShowCommand(c *app.Container) *cobra.Command {
	var opts struct {
		JSON bool
		Body bool
	}

	cmd := &cobra.Command{
		Use:   "show <epic>",
		Short: "Show an epic",
		Long: `Show an epic with its sub-issues and journey.

<epic> is an issue number ("42" or "#42") or a local ID prefix of at
least four characters.

Examples:
  git-epic epic show 42
  git-epic epic show 42 --body   # issue body pushed by sync
  git-epic epic show 3f2a --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository(c)
			if err != nil {
				return err
			}
			out, err := c.ShowEpicUseCase(repo).Execute(cmd.Context(), usecase.ShowEpicInput{Ref: args[0]})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case opts.JSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out.Epic)
			case opts.Body:
				_, _ = fmt.Fprint(w, out.Body)
				return nil
			}
			printEpicDetails(w, &out.Epic)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the cached record as JSON")
	cmd.Flags().BoolVar(&opts.Body, "body", false, "Output the rendered issue body")

	return cmd
}

// printEpicDetails prints an epic in a human-readable format.
func printEpicDetails(w io.Writer, e *domain.Epic) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Styles.Header.Render(e.Ref()), e.Title)
	state := stateStyle(e.State).Render(string(e.State))
	if e.Dirty {
		state += " " + Styles.Dirty.Render("(dirty)")
	}
	_, _ = fmt.Fprintf(w, "State: %s\n", state)
	_, _ = fmt.Fprintf(w, "Local ID: %s\n", e.LocalID)
	if len(e.Labels) > 0 {
		_, _ = fmt.Fprintf(w, "Labels: [%s]\n", strings.Join(e.Labels, ", "))
	}
	if d := strings.TrimSpace(e.Description); d != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", d)
	}

	if len(e.SubIssues) > 0 {
		_, _ = fmt.Fprintf(w, "\nSub-issues:\n")
		for _, s := range e.SubIssues {
			ref := "-"
			if s.Number > 0 {
				ref = fmt.Sprintf("#%d", s.Number)
			}
			_, _ = fmt.Fprintf(w, "  %s %s %s\n", stateStyle(s.State).Render(fmt.Sprintf("[%s]", s.State)), ref, s.Title)
		}
	}

	if len(e.Journey) > 0 {
		_, _ = fmt.Fprintf(w, "\nJourney:\n")
		for _, j := range e.Journey {
			line := fmt.Sprintf("  %s %s %s",
				Styles.Muted.Render(j.Timestamp.Local().Format("2006-01-02 15:04")),
				j.Event,
				j.Message,
			)
			if j.Agent != "" {
				line += Styles.Muted.Render(" (" + j.Agent + ")")
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}
}

// newEpicCloseCommand creates the epic close subcommand.
func newEpicCloseCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Agent  string
		Reason string
	}

	cmd := &cobra.Command{
		Use:   "close <epic>",
		Short: "Close an epic",
		Long: `Mark an epic closed and record an epic_closed journey entry.
The issue is closed on GitHub by the next sync.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository(c)
			if err != nil {
				return err
			}
			out, err := c.CloseEpicUseCase(repo).Execute(cmd.Context(), usecase.CloseEpicInput{
				Ref:    args[0],
				Agent:  opts.Agent,
				Reason: opts.Reason,
			})
			if err != nil {
				return err
			}
			if out.AlreadyClosed {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Epic %s is already closed\n", out.Epic.Ref())
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Closed epic %s\n", out.Epic.Ref())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Agent, "agent", "", "Agent recorded on the journey entry")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "Reason appended to the journey message")

	return cmd
}

// newSubCommand creates the sub command group.
func newSubCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage sub-issues of an epic",
	}
	cmd.AddCommand(newSubAddCommand(c))
	return cmd
}

// newSubAddCommand creates the sub add subcommand.
func newSubAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title  string
		Number int
	}

	cmd := &cobra.Command{
		Use:   "add <epic>",
		Short: "Attach a sub-issue to an epic",
		Long: `Attach a sub-issue to an epic. The epic's task checklist is updated
on GitHub by the next sync. Without --number the sub-issue is a plain
checklist item.

Examples:
  git-epic sub add 42 --title "Tokenizer" --number 43`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository(c)
			if err != nil {
				return err
			}
			out, err := c.AddSubIssueUseCase(repo).Execute(cmd.Context(), usecase.AddSubIssueInput{
				EpicRef: args[0],
				Title:   opts.Title,
				Number:  opts.Number,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added sub-issue %q to epic %s\n", out.SubIssue.Title, out.Epic.Ref())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Sub-issue title (required)")
	cmd.Flags().IntVar(&opts.Number, "number", 0, "GitHub issue number of the sub-issue")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}
