package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"nropster/internal/fileutil"
	"nropster/internal/logging"
	"nropster/internal/services"
)

// Lister retrieves the raw listing document from the recorder.
type Lister interface {
	FetchListing(ctx context.Context) ([]byte, error)
}

// Load returns the recorder's recordings. With cached set, the listing saved
// by the previous run is used and the device is not contacted; otherwise the
// listing is retrieved and the cache refreshed.
func Load(ctx context.Context, lister Lister, cachePath string, cached bool, logger *slog.Logger) ([]Recording, error) {
	logger = logging.NewComponentLogger(logger, "catalog")

	var data []byte
	if cached {
		raw, err := os.ReadFile(cachePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, services.Wrap(services.ErrSourceUnreachable, "catalog", "load cached listing", "no cached listing; run without --cached first", err)
			}
			return nil, fmt.Errorf("read cached listing: %w", err)
		}
		logger.Info("using cached listing", logging.String("path", cachePath))
		data = raw
	} else {
		if lister == nil {
			return nil, services.Wrap(services.ErrSourceUnreachable, "catalog", "query now playing", "no device client configured", nil)
		}
		raw, err := lister.FetchListing(ctx)
		if err != nil {
			return nil, err
		}
		if cachePath != "" {
			if err := fileutil.WriteFileAtomic(cachePath, raw, 0o644); err != nil {
				logger.Warn("listing cache not written; --cached will use the previous listing",
					logging.String("path", cachePath),
					logging.Error(err),
				)
			}
		}
		data = raw
	}

	recordings, err := Parse(bytes.NewReader(data), logger)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnreachable, "catalog", "parse listing", "", err)
	}
	return recordings, nil
}
