// Package catalog is the recorder-facing side of nropster.
//
// It queries the recorder's NowPlaying container over HTTPS with digest
// authentication, parses the listing into Recording values, caches the raw
// listing in the work directory, and opens authenticated content streams for
// the fetch stage.
package catalog
