// Package utils provides shared utility functions.
//
// These utilities include:
//   - Branch naming and sanitization
//   - Slice helpers
//   - Reading piped standard input
//   - Precondition checks (interactive terminal, current branch, rebase in progress, uncommitted changes)
package utils
