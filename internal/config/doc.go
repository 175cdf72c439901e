// Package config manages stackit configuration and state persistence.
//
// It handles:
//   - Repository-specific configuration
//   - Continuation state for interrupted operations (like merge conflicts)
package config
