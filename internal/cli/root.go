// Package cli provides the command-line interface for git-epic.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-epic/internal/app"
	"github.com/runoshun/git-epic/internal/domain"
)

// Command group IDs.
const (
	groupSetup   = "setup"
	groupEpic    = "epic"
	groupJourney = "journey"
	groupSync    = "sync"
)

// NewRootCommand creates the root command for git-epic.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "git-epic",
		Short: "Local epic cache synchronized with GitHub issues",
		Long: `git-epic keeps a local cache of epics, their sub-issues and a journey
of events recorded by agents, and pushes changed epics to GitHub issues.

The cache lives in the state directory and has a single writer: do not
run two git-epic commands against the same repository at the same time.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupEpic, Title: "Epic Management:"},
		&cobra.Group{ID: groupJourney, Title: "Journey & Completion:"},
		&cobra.Group{ID: groupSync, Title: "Synchronization:"},
	)

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	epicCmd := newEpicCommand(c)
	epicCmd.GroupID = groupEpic

	subCmd := newSubCommand(c)
	subCmd.GroupID = groupEpic

	importCmd := newImportCommand(c)
	importCmd.GroupID = groupEpic

	journeyCmd := newJourneyCommand(c)
	journeyCmd.GroupID = groupJourney

	taskCmd := newTaskCommand(c)
	taskCmd.GroupID = groupJourney

	skillCmd := newSkillCommand(c)
	skillCmd.GroupID = groupJourney

	detectCmd := newDetectCommand(c)
	detectCmd.GroupID = groupJourney

	reconcileCmd := newReconcileCommand(c)
	reconcileCmd.GroupID = groupJourney

	syncCmd := newSyncCommand(c)
	syncCmd.GroupID = groupSync

	root.AddCommand(
		configCmd,
		epicCmd,
		subCmd,
		importCmd,
		journeyCmd,
		taskCmd,
		skillCmd,
		detectCmd,
		reconcileCmd,
		syncCmd,
	)

	return root
}

// repository returns the repository commands operate on.
func repository(c *app.Container) (domain.RepoRef, error) {
	if c == nil {
		return domain.RepoRef{}, domain.ErrNotGitRepository
	}
	return c.Repository()
}

// agentFlags holds the --agent and --agent-type values shared by journaling commands.
type agentFlags struct {
	Name string
	Type string
}

func (f *agentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Name, "agent", "", "Agent recorded on the journey entry")
	cmd.Flags().StringVar(&f.Type, "agent-type", "", "Kind of agent (e.g. claude, codex)")
}

func (f *agentFlags) info() domain.AgentInfo {
	return domain.AgentInfo{Name: f.Name, Type: f.Type}
}
