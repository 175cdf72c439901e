package actions

// BranchName is a type alias for a git branch name
type BranchName string

// CommitSHA is a type alias for a git commit hash
type CommitSHA string

// PRNumber is a type alias for a GitHub pull request number
type PRNumber int
