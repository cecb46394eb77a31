// Package notifications pushes run milestones to ntfy.
//
// The topic URL comes from config.toml; without one the service degrades to a
// no-op. The workflow reports run start, run completion, and items that end
// in error.
package notifications
