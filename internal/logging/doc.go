// Package logging provides structured logging utilities for the calagent application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "calendar.list_events")
//	logger.Info("listing events", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("loaded credential",
//	    "access_token", logging.SanitizeToken(cred.AccessToken))
//
// OAuth tokens are never logged directly.
package logging
