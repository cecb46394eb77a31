// Package logging assembles the slog loggers used by the CLI and the
// workflow.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag lines with the work item, stage, lane, and
// correlation ID carried by a context. A no-op logger is provided for tests.
package logging
