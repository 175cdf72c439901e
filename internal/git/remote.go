package git

// PruneRemote prunes stale remote-tracking branches
func PruneRemote(remote string) error {
	_, err := RunGitCommand("remote", "prune", remote)
	if err != nil {
		// Prune is not critical; the error is ignored
		return nil
	}
	return nil
}

// GetRemote returns the default remote name (usually "origin")
func GetRemote() string {
	// Try to get the current branch's remote from config
	branch, err := RunGitCommand("symbolic-ref", "--short", "HEAD")
	if err == nil && branch != "" {
		remote, err := RunGitCommand("config", "--get", "branch."+branch+".remote")
		if err == nil && remote != "" {
			return remote
		}
	}

	// Fallback to origin
	return "origin"
}
