package cli

import (
	"fmt"
	"os"
	"slices"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"stackit.dev/stackit/internal/config"
	"stackit.dev/stackit/internal/engine"
	"stackit.dev/stackit/internal/git"
	"stackit.dev/stackit/internal/tui"
	"stackit.dev/stackit/internal/tui/style"
)

// isInteractive checks if we're in an interactive terminal
func isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// inferTrunk guesses the trunk branch name from the usual candidates.
func inferTrunk(branchNames []string) string {
	for _, candidate := range []string{"main", "master", "trunk"} {
		if slices.Contains(branchNames, candidate) {
			return candidate
		}
	}
	return ""
}

// selectTrunkBranch prompts the user to pick their trunk branch from the
// repo's existing branches, defaulting the selection to the inferred trunk.
func selectTrunkBranch(branchNames []string, inferredTrunk string, interactive bool) (string, error) {
	if !interactive {
		if inferredTrunk != "" {
			return inferredTrunk, nil
		}
		return "", fmt.Errorf("could not infer trunk branch, pass in an existing branch name with --trunk or run in interactive mode")
	}

	if len(branchNames) == 0 {
		return "", fmt.Errorf("no branches available")
	}

	prompt := &survey.Select{
		Message: "Which branch should stackit treat as your trunk?",
		Options: branchNames,
		Default: inferredTrunk,
	}

	var trunkName string
	if err := survey.AskOne(prompt, &trunkName); err != nil {
		return "", fmt.Errorf("trunk selection canceled: %w", err)
	}
	return trunkName, nil
}

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var (
		trunk         string
		reset         bool
		noInteractive bool
	)

	cmd := &cobra.Command{
		Use:          "init",
		Aliases:      []string{"i"},
		Short:        "Initialize Stackit in the current repository",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := git.InitDefaultRepo(); err != nil {
				return fmt.Errorf("not a git repository: %w", err)
			}

			repoRoot, err := git.GetRepoRoot()
			if err != nil {
				return fmt.Errorf("failed to get repo root: %w", err)
			}

			branchNames, err := git.GetAllBranchNames()
			if err != nil {
				return fmt.Errorf("failed to get branches: %w", err)
			}

			if len(branchNames) == 0 {
				return fmt.Errorf("no branches found in current repo; cannot initialize Stackit.\nPlease create your first commit and then re-run stackit init")
			}

			splog := tui.NewSplog()

			trunkName := trunk
			if trunkName == "" {
				inferredTrunk := inferTrunk(branchNames)

				interactive := !noInteractive && isInteractive()
				selected, err := selectTrunkBranch(branchNames, inferredTrunk, interactive)
				if err != nil {
					return err
				}
				trunkName = selected
			} else if !slices.Contains(branchNames, trunkName) {
				return fmt.Errorf("branch '%s' not found", trunkName)
			}

			wasInitialized := config.IsInitialized(repoRoot)

			if err := config.SetTrunk(repoRoot, trunkName); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			if wasInitialized {
				splog.Info("Reinitializing Stackit...")
			} else {
				splog.Info("Welcome to Stackit!")
			}
			splog.Newline()

			coloredTrunk := style.ColorBranchName(trunkName, false)
			splog.Info("Trunk set to %s", coloredTrunk)

			eng, err := engine.NewEngine(repoRoot)
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}

			if reset {
				if err := eng.Reset(trunkName); err != nil {
					return fmt.Errorf("failed to reset branches: %w", err)
				}
				splog.Info("All branches have been untracked")
			} else {
				if err := eng.Rebuild(trunkName); err != nil {
					return fmt.Errorf("failed to rebuild engine: %w", err)
				}
				splog.Info("Stackit initialized successfully!")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&trunk, "trunk", "", "The name of your trunk branch")
	cmd.Flags().BoolVar(&reset, "reset", false, "Untrack all branches")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Disable interactive prompts")

	return cmd
}
