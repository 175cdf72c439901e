package absorb

import (
	"stackit.dev/stackit/internal/engine"
	"stackit.dev/stackit/internal/tui"
)

// printDryRunOutput prints what would be absorbed in dry-run mode
func printDryRunOutput(plan *absorbPlan, eng engine.CommitAccessor, splog *tui.Splog) {
	splog.Info("Would absorb the following changes:")
	splog.Newline()

	for _, bf := range plan.branchFiles {
		splog.Info("  %s:", tui.ColorBranchName(bf.BranchName, false))
		for _, path := range bf.Files {
			splog.Info("    - %s", path)
		}
	}

	printLeftover(plan, eng, splog)
}

// printAbsorbPlan prints the plan for absorbing changes
func printAbsorbPlan(plan *absorbPlan, splog *tui.Splog) {
	splog.Info("Will absorb the following changes:")
	splog.Newline()

	for _, bf := range plan.branchFiles {
		splog.Info("  %s:", tui.ColorBranchName(bf.BranchName, false))
		for _, path := range bf.Files {
			splog.Info("    - %s", path)
		}
	}
}

// printLeftover warns about staged changes that couldn't be attributed to
// any downstack commit and therefore remain uncommitted. Where possible it
// names the branch that last touched the lines, resolved by looking up each
// hunk's owning commit against every tracked branch, not just the current
// downstack - the owning commit may belong to a sibling branch entirely.
func printLeftover(plan *absorbPlan, eng engine.CommitAccessor, splog *tui.Splog) {
	if len(plan.leftover) == 0 {
		return
	}
	splog.Newline()
	splog.Warn("The following staged changes could not be absorbed and remain uncommitted:")
	for path, hunks := range plan.leftover {
		for _, h := range hunks {
			branchName, err := eng.FindBranchForCommit(h.OwnerCommit)
			switch {
			case err != nil:
				splog.Info("  %s (%s, predates the tracked stack)", path, h.Range)
			case branchName == "":
				splog.Info("  %s (%s)", path, h.Range)
			default:
				splog.Info("  %s (%s, last touched on %s)", path, h.Range, tui.ColorBranchName(branchName, false))
			}
		}
	}
}
