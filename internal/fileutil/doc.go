// Package fileutil implements the write-then-rename staging used for every
// file the pipeline produces. Output is written to a hidden partial sibling
// and renamed onto its final path only once complete, so a final path is
// either absent or whole.
package fileutil
