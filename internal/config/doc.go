// Package config loads, normalizes, and validates nropster configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NROPSTER_MAK. The Config type centralizes every knob the CLI and the
// workflow need, so work/destination/edited directories, recorder
// credentials, and external command templates are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
