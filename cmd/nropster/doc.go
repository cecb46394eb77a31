// Package main hosts the nropster CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies flag
// overrides, and hands off to the internal packages: runner for a full
// fetch and transcode run, catalog and selection for the read-only list and
// plan views, preflight for environment checks, and notifications for the
// test ping. Keep commands thin; behavior belongs in internal packages.
package main
