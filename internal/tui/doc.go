// Package tui provides the terminal user interface for stackit.
//
// It handles:
//   - Interactive prompts and selections (using bubbletea)
//   - Structured logging and status reporting (Splog)
//   - Terminal styling and colors (using lipgloss)
package tui
