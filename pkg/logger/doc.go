// Package logger builds configured slog.Logger instances for the module:
// JSON or text output, static service attributes, and per-call context
// attribute extraction. The engine and the bus adapters accept any
// *slog.Logger; this package is how deployments are expected to build one.
package logger
