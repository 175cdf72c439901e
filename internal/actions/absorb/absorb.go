// Package absorb provides functionality for absorbing staged changes into commits downstack.
package absorb

import (
	"fmt"
	"sort"

	absorbengine "stackit.dev/stackit/internal/absorb"
	"stackit.dev/stackit/internal/actions"
	"stackit.dev/stackit/internal/engine"
	"stackit.dev/stackit/internal/git"
	"stackit.dev/stackit/internal/runtime"
	"stackit.dev/stackit/internal/tui"
	"stackit.dev/stackit/internal/utils"
)

// Options contains options for the absorb command
type Options struct {
	All    bool
	DryRun bool
	Force  bool
	Patch  bool
}

// absorbPlan is the computed result of analysing every changed file against
// the current branch's downstack: which branch's commit each file's changes
// should land in, and what is left over because it couldn't be attributed.
type absorbPlan struct {
	// branchFiles lists, oldest branch first, only the downstack branches
	// that received at least one file override.
	branchFiles []branchFiles
	// overrides maps branch name -> file path -> the commit's new content
	// for that file, for every branch touched by the absorb.
	overrides map[string]map[string]string
	// leftover maps file path -> the hunks of the new text that could not be
	// attributed to any downstack commit and stay uncommitted.
	leftover map[string][]leftoverHunk
}

// leftoverHunk describes a staged hunk absorb could not commit anywhere.
type leftoverHunk struct {
	// Range is a human-readable new-side line range, e.g. "lines 4-6".
	Range string
	// OwnerCommit is the commit that last touched these lines - either a
	// downstack branch's own commit, or baseRevision if the lines predate
	// the whole tracked downstack. Used to report which branch (if any)
	// owns the commit the lines were last seen in.
	OwnerCommit string
}

type branchFiles struct {
	BranchName string
	Files      []string
}

// Action performs the absorb operation
func Action(ctx *runtime.Context, opts Options) error {
	eng := ctx.Engine
	splog := ctx.Splog

	currentBranch := eng.CurrentBranch()
	if currentBranch == "" {
		return fmt.Errorf("not on a branch")
	}

	snapshotOpts := actions.NewSnapshot("absorb",
		actions.WithFlag(opts.All, "--all"),
		actions.WithFlag(opts.DryRun, "--dry-run"),
		actions.WithFlag(opts.Force, "--force"),
		actions.WithFlag(opts.Patch, "--patch"),
	)
	if err := eng.TakeSnapshot(snapshotOpts); err != nil {
		// Log but don't fail - snapshot is best effort
		splog.Debug("Failed to take snapshot: %v", err)
	}

	if err := utils.CheckRebaseInProgress(ctx.Context); err != nil {
		return err
	}

	if opts.All {
		if err := git.StageTracked(); err != nil {
			return fmt.Errorf("failed to stage changes: %w", err)
		}
	} else if opts.Patch {
		if err := git.StagePatch(); err != nil {
			return fmt.Errorf("failed to stage patch: %w", err)
		}
	}

	hasStaged, err := git.HasStagedChanges()
	if err != nil {
		return fmt.Errorf("failed to check staged changes: %w", err)
	}
	if !hasStaged {
		splog.Info("Nothing to absorb.")
		return nil
	}

	hunks, err := git.ParseStagedHunks()
	if err != nil {
		return fmt.Errorf("failed to parse staged hunks: %w", err)
	}
	if len(hunks) == 0 {
		splog.Info("Nothing to absorb.")
		return nil
	}
	files := distinctFiles(hunks)

	// downstackBranches runs oldest (closest to trunk) to newest, ending at
	// currentBranch - the same order a FileStack expects its revisions in.
	downstackBranches := eng.GetRelativeStack(currentBranch, engine.Scope{RecursiveParents: true, IncludeCurrent: true})
	if len(downstackBranches) == 0 {
		splog.Info("Nothing to absorb.")
		return nil
	}

	branchRevisions := make([]string, len(downstackBranches))
	for i, branchName := range downstackBranches {
		rev, err := eng.GetRevision(branchName)
		if err != nil {
			return fmt.Errorf("failed to get revision for %s: %w", branchName, err)
		}
		branchRevisions[i] = rev
	}

	plan, err := buildAbsorbPlan(downstackBranches, branchRevisions, files)
	if err != nil {
		return err
	}

	if len(plan.branchFiles) == 0 {
		printLeftover(plan, eng, splog)
		splog.Info("Nothing could be absorbed; the staged changes don't match any downstack line.")
		return nil
	}

	if opts.DryRun {
		printDryRunOutput(plan, eng, splog)
		return nil
	}

	printAbsorbPlan(plan, splog)

	if !opts.Force {
		confirmed, err := tui.PromptConfirm("Apply these changes to the commits?", false)
		if err != nil {
			return fmt.Errorf("confirmation canceled: %w", err)
		}
		if !confirmed {
			splog.Info("Absorb canceled")
			return nil
		}
	}

	rewroteAny := false
	for _, branchName := range downstackBranches {
		if rewroteAny {
			// An earlier downstack commit changed shape; rebase this branch
			// onto it before touching its own commit. A no-op if unneeded.
			if _, err := eng.RestackBranch(branchName); err != nil {
				return fmt.Errorf("failed to restack %s while absorbing: %w", branchName, err)
			}
		}

		overrides := plan.overrides[branchName]
		if len(overrides) == 0 {
			continue
		}

		commitSHA, err := eng.GetRevision(branchName)
		if err != nil {
			return fmt.Errorf("failed to get revision for %s: %w", branchName, err)
		}
		if err := git.ApplyFileOverridesToCommit(ctx.Context, overrides, commitSHA, branchName); err != nil {
			return fmt.Errorf("failed to absorb changes into %s: %w", branchName, err)
		}
		rewroteAny = true
		splog.Info("Absorbed changes into %s", tui.ColorBranchName(branchName, branchName == currentBranch))
	}

	// Refresh engine state after modifying branch references directly via git
	if err := eng.Rebuild(""); err != nil {
		return fmt.Errorf("failed to refresh engine after absorb: %w", err)
	}

	upstackBranches := eng.GetRelativeStackUpstack(currentBranch)
	if len(upstackBranches) > 0 {
		if err := actions.RestackBranches(ctx.Context, upstackBranches, eng, splog, ctx.RepoRoot); err != nil {
			return fmt.Errorf("failed to restack upstack branches: %w", err)
		}
	}

	printLeftover(plan, eng, splog)

	return nil
}

// distinctFiles returns the sorted set of file paths touched by hunks.
func distinctFiles(hunks []git.Hunk) []string {
	seen := make(map[string]bool)
	var files []string
	for _, h := range hunks {
		if !seen[h.File] {
			seen[h.File] = true
			files = append(files, h.File)
		}
	}
	sort.Strings(files)
	return files
}

// buildAbsorbPlan analyses each changed file's downstack blame against its
// staged content and assembles the per-branch file overrides to apply.
//
// revisions[i] is branches[i]'s own commit. The FileStack the absorb engine
// analyses additionally needs an immutable revision 0 standing for the file
// as it existed just before the downstack began - otherwise the oldest
// branch in the stack would itself be mistaken for revision 0 and could
// never receive an absorbed chunk, since chunks only ever select revisions
// >= 1. That base revision is the oldest branch's own git parent commit.
func buildAbsorbPlan(branches, revisions, files []string) (*absorbPlan, error) {
	overrides := make(map[string]map[string]string)
	leftover := make(map[string][]leftoverHunk)

	baseRevision, err := git.GetParentCommitSHA(revisions[0])
	if err != nil {
		return nil, fmt.Errorf("failed to find base revision for %s: %w", branches[0], err)
	}

	for _, path := range files {
		texts := make([]string, len(revisions)+1)
		baseContent, err := git.GetFileContentAtRevision(baseRevision, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s at base revision: %w", path, err)
		}
		texts[0] = baseContent
		for i, rev := range revisions {
			content, err := git.GetFileContentAtRevision(rev, path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s at %s: %w", path, branches[i], err)
			}
			texts[i+1] = content
		}

		newText, err := git.GetStagedFileContent(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read staged content of %s: %w", path, err)
		}

		stack := absorbengine.NewFileStack(texts)
		chunks, err := absorbengine.AnalyseFileStack(stack, newText)
		if err != nil {
			return nil, fmt.Errorf("failed to analyse %s: %w", path, err)
		}

		out, err := absorbengine.ApplyFileStackEdits(stack, chunks)
		if err != nil {
			return nil, fmt.Errorf("failed to compute absorb edits for %s: %w", path, err)
		}

		for i, branchName := range branches {
			rev := i + 1
			if out.Text(rev) == stack.Text(rev) {
				continue
			}
			if overrides[branchName] == nil {
				overrides[branchName] = make(map[string]string)
			}
			overrides[branchName][path] = out.Text(rev)
		}

		for _, c := range chunks {
			if !c.Selected {
				ownerCommit := baseRevision
				if c.IntroductionRev >= 1 {
					ownerCommit = revisions[c.IntroductionRev-1]
				}
				leftover[path] = append(leftover[path], leftoverHunk{
					Range:       fmt.Sprintf("lines %d-%d", c.NewStart+1, c.NewEnd),
					OwnerCommit: ownerCommit,
				})
			}
		}
	}

	var branchFilesList []branchFiles
	for _, branchName := range branches {
		paths, ok := overrides[branchName]
		if !ok {
			continue
		}
		fileList := make([]string, 0, len(paths))
		for p := range paths {
			fileList = append(fileList, p)
		}
		sort.Strings(fileList)
		branchFilesList = append(branchFilesList, branchFiles{BranchName: branchName, Files: fileList})
	}

	return &absorbPlan{branchFiles: branchFilesList, overrides: overrides, leftover: leftover}, nil
}
