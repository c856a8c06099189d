// Package logger provides structured logging for confhelper.
//
// This package wraps log/slog behind a small Logger interface:
//
//   - logger.go: handler configuration, levels, the no-op and debug sinks
//   - context.go: carrying a Logger through a context.Context
//   - redact.go: masking sensitive values in log attributes and config trees
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - Automatic sensitive data masking (password, secret, token, ...)
package logger
