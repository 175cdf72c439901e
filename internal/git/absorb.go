package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// GetFileContentAtRevision returns the content of path as of revision, the
// moral equivalent of `git show revision:path`. A file that does not exist
// at that revision yields an empty string, matching the absorb engine's
// file-stack model where a file's pre-introduction revisions simply read
// as empty.
func GetFileContentAtRevision(revision, path string) (string, error) {
	output, err := RunGitCommandRaw("show", revision+":"+path)
	if err != nil {
		if strings.Contains(err.Error(), "exists on disk, but not in") ||
			strings.Contains(err.Error(), "does not exist in") {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s at %s: %w", path, revision, err)
	}
	return output, nil
}

// GetStagedFileContent returns the content of path as staged in the index,
// the moral equivalent of `git show :path`. A file that isn't staged yields
// an empty string.
func GetStagedFileContent(path string) (string, error) {
	output, err := RunGitCommandRaw("show", ":"+path)
	if err != nil {
		if strings.Contains(err.Error(), "exists on disk, but not in") ||
			strings.Contains(err.Error(), "does not exist in") ||
			strings.Contains(err.Error(), "bad revision") {
			return "", nil
		}
		return "", fmt.Errorf("failed to read staged content of %s: %w", path, err)
	}
	return output, nil
}

// GetParentCommitSHA returns the parent commit SHA of a commit.
func GetParentCommitSHA(commitSHA string) (string, error) {
	output, err := RunGitCommand("rev-parse", commitSHA+"^")
	if err != nil {
		return "", fmt.Errorf("failed to get parent of %s: %w", commitSHA, err)
	}
	return strings.TrimSpace(output), nil
}

// GetCommitMessage returns the full commit message for a commit.
func GetCommitMessage(commitSHA string) (string, error) {
	output, err := RunGitCommand("log", "-1", "--format=%B", commitSHA)
	if err != nil {
		return "", fmt.Errorf("failed to get commit message for %s: %w", commitSHA, err)
	}
	return strings.TrimSpace(output), nil
}

// CommitAuthor represents a commit author.
type CommitAuthor struct {
	Name  string
	Email string
}

// GetCommitAuthorFromSHA returns the author of a commit.
func GetCommitAuthorFromSHA(commitSHA string) (*CommitAuthor, error) {
	output, err := RunGitCommand("log", "-1", "--format=%an%n%ae", commitSHA)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit author for %s: %w", commitSHA, err)
	}
	lines := strings.SplitN(strings.TrimSpace(output), "\n", 2)
	if len(lines) < 2 {
		return nil, fmt.Errorf("unexpected author output for %s: %q", commitSHA, output)
	}
	return &CommitAuthor{Name: lines[0], Email: lines[1]}, nil
}

// GetCommitDateFromSHA returns a commit's author date.
func GetCommitDateFromSHA(commitSHA string) (time.Time, error) {
	output, err := RunGitCommand("log", "-1", "--format=%aI", commitSHA)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get commit date for %s: %w", commitSHA, err)
	}
	return time.Parse(time.RFC3339, strings.TrimSpace(output))
}

// ApplyFileOverridesToCommit rewrites commitSHA as a new commit: its parent is
// checked out detached, the commit's own tree is restored, then every path
// in overrides is rewritten to the given content before committing on top of
// the parent with the original message, author, and date. branchName's ref is
// then set to the new commit. The caller is responsible for
// restacking every branch upstack of branchName afterward, since rewriting
// a commit changes the hash its children rebase onto.
func ApplyFileOverridesToCommit(ctx context.Context, overrides map[string]string, commitSHA, branchName string) error {
	if len(overrides) == 0 {
		return nil
	}

	currentBranch, err := GetCurrentBranch()
	if err != nil {
		currentBranch = ""
	}

	repoRoot, err := GetRepoRoot()
	if err != nil {
		return fmt.Errorf("failed to get repo root: %w", err)
	}

	parentSHA, err := GetParentCommitSHA(commitSHA)
	if err != nil {
		return fmt.Errorf("failed to get parent commit: %w", err)
	}
	message, err := GetCommitMessage(commitSHA)
	if err != nil {
		return fmt.Errorf("failed to get commit message: %w", err)
	}
	author, err := GetCommitAuthorFromSHA(commitSHA)
	if err != nil {
		return fmt.Errorf("failed to get commit author: %w", err)
	}
	date, err := GetCommitDateFromSHA(commitSHA)
	if err != nil {
		return fmt.Errorf("failed to get commit date: %w", err)
	}

	if err := CheckoutDetached(ctx, parentSHA); err != nil {
		if currentBranch != "" {
			_ = CheckoutBranch(ctx, currentBranch)
		}
		return fmt.Errorf("failed to checkout parent: %w", err)
	}
	defer func() {
		nowBranch, _ := RunGitCommandWithContext(ctx, "branch", "--show-current")
		if strings.TrimSpace(nowBranch) != currentBranch && currentBranch != "" {
			_, _ = RunGitCommandWithContext(ctx, "reset", "--hard", "HEAD")
			_ = CheckoutBranch(ctx, currentBranch)
		}
	}()

	if _, err := RunGitCommandWithContext(ctx, "checkout", commitSHA, "--", "."); err != nil {
		return fmt.Errorf("failed to restore commit tree: %w", err)
	}

	for path, content := range overrides {
		fullPath := filepath.Join(repoRoot, path)
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if _, err := RunGitCommandWithContext(ctx, "add", path); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
	}

	env := os.Environ()
	env = append(env,
		fmt.Sprintf("GIT_AUTHOR_NAME=%s", author.Name),
		fmt.Sprintf("GIT_AUTHOR_EMAIL=%s", author.Email),
		fmt.Sprintf("GIT_AUTHOR_DATE=%s", date.Format(time.RFC3339)),
		fmt.Sprintf("GIT_COMMITTER_NAME=%s", author.Name),
		fmt.Sprintf("GIT_COMMITTER_EMAIL=%s", author.Email),
		fmt.Sprintf("GIT_COMMITTER_DATE=%s", date.Format(time.RFC3339)),
	)

	cmd := exec.Command("git", "commit", "-m", message)
	cmd.Dir = repoRoot
	cmd.Env = env
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to create commit: %w (stderr: %s)", err, stderr.String())
	}

	newCommitSHA, err := RunGitCommandWithContext(ctx, "rev-parse", "HEAD")
	if err != nil {
		return fmt.Errorf("failed to get new commit SHA: %w", err)
	}

	if err := UpdateBranchRef(branchName, strings.TrimSpace(newCommitSHA)); err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}

	return nil
}
