package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nropster/internal/fileutil"
	"nropster/internal/logging"
)

// CleanResult contains the outcome of a partial file sweep.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanOrphaned removes partial files in dirs whose final path is not in
// active. The caller must hold the run lock so no other run is writing them.
// Partials that belong to an active item are left for the stage to clear.
func CleanOrphaned(ctx context.Context, dirs []string, active map[string]struct{}, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	seen := make(map[string]struct{}, len(dirs))

	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			}
			continue
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return result
			}
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if !fileutil.IsPartial(path) {
				continue
			}
			if _, ok := active[fileutil.FinalPath(path)]; ok {
				continue
			}
			removeOrphan(&result, path, entry, logger)
		}
	}
	return result
}

func removeOrphan(result *CleanResult, path string, entry os.DirEntry, logger *slog.Logger) {
	var age time.Duration
	if info, err := entry.Info(); err == nil {
		age = time.Since(info.ModTime())
	}
	if err := fileutil.Remove(path); err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
		if logger != nil {
			logger.Warn("failed to remove orphaned partial file",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "partial_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check work_dir and destination_dir permissions"),
			)
		}
		return
	}
	result.Removed = append(result.Removed, path)
	if logger != nil {
		logger.Info("removed orphaned partial file",
			logging.String("path", path),
			logging.Duration("age", age),
			logging.String(logging.FieldEventType, "partial_cleanup"),
		)
	}
}
