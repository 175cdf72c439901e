// Package runtime provides a context type that holds the engine and logger
// for use throughout the application. This avoids passing multiple parameters.
package runtime

import (
	"context"
	"fmt"

	"stackit.dev/stackit/internal/config"
	"stackit.dev/stackit/internal/engine"
	"stackit.dev/stackit/internal/git"
	"stackit.dev/stackit/internal/tui"
)

// Context provides access to the engine, logger, and cancellation signal
// for use throughout a command invocation.
type Context struct {
	Context  context.Context
	Engine   engine.Engine
	Splog    *tui.Splog
	RepoRoot string
}

// NewContext creates a new context with the given engine.
func NewContext(eng engine.Engine) *Context {
	return &Context{
		Context: context.Background(),
		Engine:  eng,
		Splog:   tui.NewSplog(),
	}
}

// NewContextWithRepoRoot creates a new context with the given engine and repo root.
func NewContextWithRepoRoot(eng engine.Engine, repoRoot string) *Context {
	return &Context{
		Context:  context.Background(),
		Engine:   eng,
		Splog:    tui.NewSplog(),
		RepoRoot: repoRoot,
	}
}

// NewContextAuto creates a context using a real engine rooted at repoRoot.
func NewContextAuto(repoRoot string) (*Context, error) {
	eng, err := engine.NewEngine(repoRoot)
	if err != nil {
		return nil, err
	}

	return NewContextWithRepoRoot(eng, repoRoot), nil
}

// GetContext returns the context for the current repository. It handles
// git initialization and config checks.
func GetContext() (*Context, error) {
	if err := git.InitDefaultRepo(); err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	repoRoot, err := git.GetRepoRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to get repo root: %w", err)
	}

	if !config.IsInitialized(repoRoot) {
		return nil, fmt.Errorf("stackit not initialized. Run 'stackit init' first")
	}

	return NewContextAuto(repoRoot)
}
