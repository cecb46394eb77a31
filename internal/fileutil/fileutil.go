package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const partialPrefix = ".partial-"

// PartialPath returns the hidden sibling that receives bytes for final until
// they are complete. It lives in the same directory so Promote is a rename.
func PartialPath(final string) string {
	return filepath.Join(filepath.Dir(final), partialPrefix+filepath.Base(final))
}

// IsPartial reports whether path names a partial sibling.
func IsPartial(path string) bool {
	base := filepath.Base(path)
	return len(base) > len(partialPrefix) && base[:len(partialPrefix)] == partialPrefix
}

// FinalPath is the inverse of PartialPath. It returns path unchanged when it
// is not a partial sibling.
func FinalPath(path string) string {
	if !IsPartial(path) {
		return path
	}
	return filepath.Join(filepath.Dir(path), filepath.Base(path)[len(partialPrefix):])
}

// ClearStale removes any partial and final file left for final by an earlier
// attempt.
func ClearStale(final string) error {
	for _, path := range []string{PartialPath(final), final} {
		if err := Remove(path); err != nil {
			return fmt.Errorf("clear stale %s: %w", path, err)
		}
	}
	return nil
}

// Remove deletes path, treating a missing file as success.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether path exists as a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Promote renames a completed partial file onto its final path.
func Promote(partial, final string) error {
	info, err := os.Stat(partial)
	if err != nil {
		return fmt.Errorf("stat partial output: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("partial output %s is not a regular file", partial)
	}
	if err := os.Rename(partial, final); err != nil {
		return fmt.Errorf("promote %s: %w", filepath.Base(final), err)
	}
	return nil
}

// WriteFileAtomic writes data to path through a partial sibling so readers
// never observe a truncated file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	partial := PartialPath(path)
	file, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = Remove(partial)
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = Remove(partial)
		return err
	}
	if err := file.Close(); err != nil {
		_ = Remove(partial)
		return err
	}
	if err := Promote(partial, path); err != nil {
		_ = Remove(partial)
		return err
	}
	return nil
}
