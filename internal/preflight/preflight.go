package preflight

import (
	"os"

	"nropster/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the directories a run reads and writes.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Destination directory", cfg.Paths.DestinationDir),
	}
	// The edited directory is optional; only check it once it exists.
	if cfg.Paths.EditedDir != "" {
		if _, err := os.Stat(cfg.Paths.EditedDir); err == nil {
			results = append(results, CheckDirectoryAccess("Edited directory", cfg.Paths.EditedDir))
		}
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, result := range results {
		if !result.Passed {
			out = append(out, result)
		}
	}
	return out
}
