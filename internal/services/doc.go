// Package services defines shared utilities consumed by the workflow stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp work item positions, stage names, lanes, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap and Classify helpers that split
//     failures into retryable (busy) and fatal kinds.
//
// Stage code returns errors tagged with these markers; the workflow manager
// decides item state purely from Classify, so no other error taxonomy needs to
// leak across the fetch and transcode boundaries.
package services
