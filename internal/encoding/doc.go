// Package encoding implements the transcode stage. It runs the configured
// transcoder (ffmpeg by default) from the fetched file to a partial sibling
// of the destination, promotes the result when the output exists, and
// removes the fetched input afterwards. A failed run leaves the input in the
// work directory for inspection.
package encoding
