package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-epic/internal/app"
	"github.com/runoshun/git-epic/internal/domain"
	"github.com/runoshun/git-epic/internal/usecase"
)

// newSyncCommand creates the sync command.
func newSyncCommand(c *app.Container) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push dirty epics to GitHub",
		Long: `Push every epic with local changes to its GitHub issue.

Epics without an issue number are created first. Each dirty epic is
attempted once, with a single retry on transient failures. A rate-limit
response stops the run and leaves the remaining epics dirty.

Exit status is non-zero when any epic failed, was skipped, or the cache
could not be saved afterwards.

Examples:
  # Push all dirty epics
  git-epic sync

  # Show which epics would be pushed
  git-epic sync --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := repository(c)
			if err != nil {
				return err
			}

			out, err := c.SyncEpicsUseCase(repo).Execute(cmd.Context(), usecase.SyncEpicsInput{DryRun: dryRun})
			if out == nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case out.NothingToSync:
				_, _ = fmt.Fprintln(w, Styles.Muted.Render("Nothing to sync"))
				return nil
			case dryRun:
				_, _ = fmt.Fprintf(w, "%s\n", Styles.Header.Render(fmt.Sprintf("Would sync %d epic(s) to %s", len(out.Planned), repo)))
				for _, ref := range out.Planned {
					_, _ = fmt.Fprintf(w, "  %s\n", ref)
				}
				return nil
			}

			printSyncSummary(w, repo, out)
			if out.SaveErr != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), Styles.Warning.Render(
					"Warning: the cache could not be saved; pushed epics are still marked dirty and will be pushed again on the next sync"))
			}
			if err != nil {
				return err
			}
			if !out.Complete() {
				return domain.ErrSyncIncomplete
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List dirty epics without contacting GitHub")

	return cmd
}

// printSyncSummary writes the per-run counters and failure details.
func printSyncSummary(w io.Writer, repo domain.RepoRef, out *usecase.SyncEpicsOutput) {
	_, _ = fmt.Fprintln(w, Styles.Header.Render("Sync "+repo.String()))
	_, _ = fmt.Fprintf(w, "  %s %d\n", Styles.Success.Render("synced: "), out.Synced)
	failed := Styles.Muted
	if out.Failed > 0 {
		failed = Styles.Error
	}
	_, _ = fmt.Fprintf(w, "  %s %d\n", failed.Render("failed: "), out.Failed)
	skipped := Styles.Muted
	if out.Skipped > 0 {
		skipped = Styles.Warning
	}
	_, _ = fmt.Fprintf(w, "  %s %d\n", skipped.Render("skipped:"), out.Skipped)

	if len(out.Created) > 0 {
		refs := make([]string, len(out.Created))
		for i, n := range out.Created {
			refs[i] = "#" + strconv.Itoa(n)
		}
		_, _ = fmt.Fprintf(w, "Created: %s\n", strings.Join(refs, ", "))
	}
	for _, f := range out.Failures {
		label := "failed"
		if errors.Is(f.Err, domain.ErrRemoteRateLimited) {
			label = "rate limited"
		}
		_, _ = fmt.Fprintf(w, "  %s %s: %v\n", Styles.Error.Render(label), f.Epic, f.Err)
	}
	if len(out.StillDirty) > 0 {
		_, _ = fmt.Fprintf(w, "Still dirty: %s\n", strings.Join(out.StillDirty, ", "))
	}
}
