// Package logging provides logging utilities for meshbox.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("probing bind address", "addr", addr, "port", port)
//	logging.Warn("state file not written", "error", err)
//
// Components take a *slog.Logger in their constructors; Setup configures
// the logger handed out by Default.
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Extracting mesh core to %s...", dir)
//	logging.UserSuccess("Mesh sandbox started")
//	logging.UserWarning("Sandbox state file missing")
//	logging.UserError("Failed to start sandbox: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
package logging
