package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-epic/internal/app"
	"github.com/runoshun/git-epic/internal/domain"
	"github.com/runoshun/git-epic/internal/usecase"
)

// newJourneyCommand creates the journey command group.
func newJourneyCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journey",
		Short: "Record journey entries",
	}
	cmd.AddCommand(newJourneyAddCommand(c))
	return cmd
}

// newJourneyAddCommand creates the journey add subcommand.
func newJourneyAddCommand(c *app.Container) *cobra.Command {
	var agent agentFlags
	var opts struct {
		Meta    map[string]string
		Event   string
		Message string
	}

	cmd := &cobra.Command{
		Use:   "add <epic-number>",
		Short: "Append a journey entry to an epic",
		Long: `Append an event to an epic's journey and mark the epic dirty.

Examples:
  git-epic journey add 42 --event task_started --message "Starting tokenizer" --agent worker-1
  git-epic journey add 42 --event note --message "Blocked on review" --meta pr=17`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := domain.ParseEpicNumber(args[0])
			if err != nil {
				return err
			}
			repo, err := repository(c)
			if err != nil {
				return err
			}

			entry := &domain.JourneyEntry{
				Event:   opts.Event,
				Message: opts.Message,
				Agent:   agent.Name,
			}
			if len(opts.Meta) > 0 || agent.Type != "" {
				entry.Metadata = make(map[string]any, len(opts.Meta)+1)
				for k, v := range opts.Meta {
					entry.Metadata[k] = v
				}
				if agent.Type != "" {
					entry.Metadata["agentType"] = agent.Type
				}
			}

			out, err := c.AddJourneyEntryUseCase(repo).Execute(cmd.Context(), usecase.AddJourneyEntryInput{
				EpicNumber: n,
				Entry:      entry,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s on epic #%d (%s)\n", out.Entry.Event, n, out.Entry.ID)
			return nil
		},
	}

	agent.register(cmd)
	cmd.Flags().StringVar(&opts.Event, "event", "", "Event tag (e.g. task_started)")
	cmd.Flags().StringVar(&opts.Message, "message", "", "Entry message")
	cmd.Flags().StringToStringVar(&opts.Meta, "meta", nil, "Metadata key=value pairs")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

// newTaskCommand creates the task command group.
func newTaskCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Record task progress on an epic",
	}
	cmd.AddCommand(newTaskCompleteCommand(c))
	return cmd
}

// newTaskCompleteCommand creates the task complete subcommand.
func newTaskCompleteCommand(c *app.Container) *cobra.Command {
	var agent agentFlags
	var opts struct {
		Title string
		Task  int
	}

	cmd := &cobra.Command{
		Use:   "complete <epic-number>",
		Short: "Record a task completion",
		Long: `Record a task_complete entry on an epic.

Examples:
  git-epic task complete 42 --task 3 --title "Tokenizer" --agent worker-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := domain.ParseEpicNumber(args[0])
			if err != nil {
				return err
			}
			repo, err := repository(c)
			if err != nil {
				return err
			}
			out, err := c.RecordTaskCompletionUseCase(repo).Execute(cmd.Context(), usecase.RecordTaskCompletionInput{
				EpicNumber: n,
				TaskNumber: opts.Task,
				TaskTitle:  opts.Title,
				Agent:      agent.info(),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out.Entry.Message)
			return nil
		},
	}

	agent.register(cmd)
	cmd.Flags().IntVar(&opts.Task, "task", 0, "Task number")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

// newSkillCommand creates the skill command group.
func newSkillCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Detect skills in agent narration",
	}
	cmd.AddCommand(newSkillDetectCommand(c))
	cmd.AddCommand(newSkillNarrateCommand(c))
	cmd.AddCommand(newSkillListCommand(c))
	return cmd
}

// newSkillDetectCommand creates the skill detect subcommand.
func newSkillDetectCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <text>...",
		Short: "Print the skill revealed by the narration",
		Long: `Print the first skill whose pattern occurs in the narration.
Exits successfully with no output when no skill matches.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if skill, ok := c.Skills.Detect(strings.Join(args, " ")); ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), skill)
			}
			return nil
		},
	}
}

// newSkillNarrateCommand creates the skill narrate subcommand.
func newSkillNarrateCommand(c *app.Container) *cobra.Command {
	var agent agentFlags

	cmd := &cobra.Command{
		Use:   "narrate <epic-number> <text>...",
		Short: "Record a skill_invoked entry when narration reveals a skill",
		Long: `Detect a skill in the narration and, when one matches, record a
skill_invoked entry on the epic. Nothing is recorded otherwise.

Examples:
  git-epic skill narrate 42 "Debugging the flaky parser test" --agent worker-1 --agent-type claude`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := domain.ParseEpicNumber(args[0])
			if err != nil {
				return err
			}
			repo, err := repository(c)
			if err != nil {
				return err
			}
			out, err := c.RecordNarrationUseCase(repo).Execute(cmd.Context(), usecase.RecordNarrationInput{
				EpicNumber: n,
				Text:       strings.Join(args[1:], " "),
				Agent:      agent.info(),
			})
			if err != nil {
				return err
			}
			if !out.Detected {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), Styles.Muted.Render("No skill detected"))
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded skill %s on epic #%d\n", out.Skill, n)
			return nil
		},
	}

	agent.register(cmd)
	return cmd
}

// newSkillListCommand creates the skill list subcommand.
func newSkillListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known skills and their patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, s := range c.Skills.Skills() {
				_, _ = fmt.Fprintln(w, Styles.Header.Render(s.ID))
				for _, p := range s.Patterns {
					_, _ = fmt.Fprintf(w, "  %s\n", p)
				}
			}
			return nil
		},
	}
}

// newDetectCommand creates the detect command.
func newDetectCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Since time.Duration
	}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "List completion keywords in recent commits",
		Long: `Scan commits of the current repository for "closes #N", "fixes #N",
"resolves #N" and "completes #N". Nothing is changed; use reconcile to
apply the results to the cache.

Examples:
  git-epic detect --since 24h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c == nil {
				return domain.ErrNotGitRepository
			}
			var since time.Time
			if opts.Since > 0 {
				since = c.Clock.Now().Add(-opts.Since)
			}
			out, err := c.FindCompletedUseCase().Execute(cmd.Context(), usecase.FindCompletedInput{
				Since:    since,
				RepoPath: c.Config.RepoRoot,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, ev := range out.Events {
				_, _ = fmt.Fprintf(w, "%s\t%s\t#%d\n", domain.ShortHash(ev.CommitHash), ev.Keyword, ev.IssueNumber)
			}
			_, _ = fmt.Fprintln(w, Styles.Muted.Render(fmt.Sprintf("%d completion(s) in %d commit(s)", len(out.Events), out.Scanned)))
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.Since, "since", 0, "Only commits newer than this duration (default: all)")

	return cmd
}

// newReconcileCommand creates the reconcile command.
func newReconcileCommand(c *app.Container) *cobra.Command {
	var agent agentFlags

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Close sub-issues referenced by completion keywords in commits",
		Long: `Scan commits made since the last reconcile for completion keywords,
close the referenced sub-issues (or epics) in the cache and record
task_complete entries. Issues that are already closed are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := repository(c)
			if err != nil {
				return err
			}
			out, err := c.ReconcileCompletionsUseCase(repo).Execute(cmd.Context(), usecase.ReconcileCompletionsInput{
				Agent:    agent.info(),
				RepoPath: c.Config.RepoRoot,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, r := range out.Closed {
				_, _ = fmt.Fprintf(w, "%s #%d (epic #%d) %s by %s\n",
					Styles.Success.Render("closed"), r.IssueNumber, r.EpicNumber, r.Keyword, domain.ShortHash(r.CommitHash))
			}
			if len(out.Unmatched) > 0 {
				refs := make([]string, len(out.Unmatched))
				for i, n := range out.Unmatched {
					refs[i] = fmt.Sprintf("#%d", n)
				}
				_, _ = fmt.Fprintf(w, "%s %s\n", Styles.Muted.Render("not tracked:"), strings.Join(refs, ", "))
			}
			_, _ = fmt.Fprintf(w, "Closed %d issue(s), %d already closed, %d commit(s) scanned\n",
				len(out.Closed), out.AlreadyClosed, out.CommitsScanned)
			return nil
		},
	}

	agent.register(cmd)
	return cmd
}
