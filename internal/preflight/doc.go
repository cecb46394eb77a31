// Package preflight checks the environment a run depends on: the recorder,
// the work, destination, and edited directories, and the decoder and
// transcoder binaries. Results are plain records so the CLI can render them
// as a table and the runner can refuse to start on failures.
package preflight
