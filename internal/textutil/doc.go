// Package textutil holds the small text helpers shared by the catalog,
// queue, and report packages: file name sanitization and the clock, byte,
// and rate formats used in listings and statistics.
package textutil
