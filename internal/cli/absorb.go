package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stackit.dev/stackit/internal/actions/absorb"
	"stackit.dev/stackit/internal/config"
	"stackit.dev/stackit/internal/engine"
	"stackit.dev/stackit/internal/git"
	"stackit.dev/stackit/internal/runtime"
)

// newAbsorbCmd creates the absorb command
func newAbsorbCmd() *cobra.Command {
	var (
		all    bool
		dryRun bool
		force  bool
		patch  bool
	)

	cmd := &cobra.Command{
		Use:   "absorb",
		Short: "Amend staged changes to the relevant commits in the current stack",
		Long: `Amend staged changes to the relevant commits in the current stack.

Relevance is calculated by blaming each line of the current branch's downstack
against the commit that last touched it, and absorbing each staged hunk into
the commit that owns the lines it edits. Deletions and same-size replacements
that straddle lines from different commits are split per commit. Other hunks
that span several commits, and hunks that only touch lines no downstack
commit introduced, are left staged rather than absorbed.

Prompts for confirmation before amending the commits, and restacks the branches upstack of the current branch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := git.InitDefaultRepo(); err != nil {
				return fmt.Errorf("not a git repository: %w", err)
			}

			repoRoot, err := git.GetRepoRoot()
			if err != nil {
				return fmt.Errorf("failed to get repo root: %w", err)
			}

			if !config.IsInitialized(repoRoot) {
				return fmt.Errorf("stackit not initialized. Run 'stackit init' first")
			}

			eng, err := engine.NewEngine(repoRoot)
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}

			ctx := runtime.NewContext(eng)
			ctx.RepoRoot = repoRoot

			return absorb.Action(ctx, absorb.Options{
				All:    all,
				DryRun: dryRun,
				Force:  force,
				Patch:  patch,
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Stage all unstaged changes to tracked files before absorbing. Untracked files are not included, as file creations would never be absorbed.")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Print which commits the hunks would be absorbed into, but do not actually absorb them.")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not prompt for confirmation; apply the hunks to the commits immediately.")
	cmd.Flags().BoolVarP(&patch, "patch", "p", false, "Pick hunks to stage before absorbing.")

	return cmd
}
