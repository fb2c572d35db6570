package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-epic/internal/app"
	"github.com/runoshun/git-epic/internal/usecase"
)

// newImportCommand creates the import command.
func newImportCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Agent  string
		DryRun bool
	}

	cmd := &cobra.Command{
		Use:   "import <plan.yaml|->",
		Short: "Import epics from a YAML plan",
		Long: `Import epics and their tasks from a YAML plan. The whole plan is
validated before anything is written. Epics whose number is already
tracked are skipped.

File format:
  epics:
    - title: Parser rewrite
      description: Replace the hand-written parser
      labels: [backend]
      tasks:
        - title: Tokenizer
          number: 43
        - title: Grammar
    - title: Docs
      number: 50   # existing issue

Examples:
  git-epic import plan.yaml
  git-epic import plan.yaml --dry-run
  cat plan.yaml | git-epic import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository(c)
			if err != nil {
				return err
			}

			var content []byte
			if args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read plan: %w", err)
			}

			out, err := c.ImportPlanUseCase(repo).Execute(cmd.Context(), usecase.ImportPlanInput{
				Agent:   opts.Agent,
				Content: content,
				DryRun:  opts.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.DryRun {
				_, _ = fmt.Fprintln(w, "Dry run - epics that would be imported:")
			}
			for _, e := range out.Epics {
				_, _ = fmt.Fprintf(w, "  %s %s (%d task(s))\n", e.Ref(), e.Title, len(e.SubIssues))
			}
			for _, n := range out.Skipped {
				_, _ = fmt.Fprintf(w, "  %s #%d already tracked\n", Styles.Muted.Render("skipped"), n)
			}
			if !opts.DryRun {
				_, _ = fmt.Fprintf(w, "Imported %d epic(s)\n", len(out.Epics))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Agent, "agent", "", "Agent recorded on the epic_created entries")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate and preview without writing")

	return cmd
}
