package preflight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"nropster/internal/catalog"
	"nropster/internal/config"
	"nropster/internal/deps"
	"nropster/internal/services"
)

const recorderCheckTimeout = 30 * time.Second

// CheckRecorder lists the recorder's recordings to prove it is reachable and
// accepts the media access key.
func CheckRecorder(ctx context.Context, lister catalog.Lister) Result {
	const name = "Recorder"
	if lister == nil {
		return Result{Name: name, Detail: "not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, recorderCheckTimeout)
	defer cancel()

	raw, err := lister.FetchListing(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeRecorderError(err)}
	}
	recordings, err := catalog.Parse(bytes.NewReader(raw), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("listing unreadable (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d recordings)", len(recordings))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external programs the pipeline invokes.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.ForConfig(cfg))
}

func summarizeRecorderError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "listing timed out (recorder unresponsive)"
	case errors.Is(err, services.ErrSourceUnreachable):
		return err.Error()
	default:
		return fmt.Sprintf("listing failed (%v)", err)
	}
}
