package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nropster/internal/services"
)

// RequireInput checks that path names an existing regular file. A missing
// input is a validation failure of the named stage.
func RequireInput(stageName, path string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrValidation, stageName, "check input", "no input path recorded", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "check input", filepath.Base(path), err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrValidation, stageName, "check input", fmt.Sprintf("%s is not a regular file", path), nil)
	}
	return nil
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(stageName, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "create directory", dir, err)
	}
	return nil
}
