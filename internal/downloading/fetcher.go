package downloading

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"nropster/internal/catalog"
	"nropster/internal/fileutil"
	"nropster/internal/logging"
	"nropster/internal/services"
)

// Source opens the chunk stream for a recording URL.
type Source interface {
	Open(ctx context.Context, url string) (catalog.ChunkStream, error)
}

// Progress receives byte counts while a transfer runs.
type Progress interface {
	Begin(label string, total int64) Tracker
}

// Tracker follows one transfer.
type Tracker interface {
	Add(n int)
	Done()
}

// Request describes one fetch.
type Request struct {
	URL          string
	Label        string
	ExpectedSize int64
	OutputPath   string
}

// Fetcher streams a recording through the decoder into a partial file and
// promotes it once the decoder finishes cleanly. Only errors classified as
// busy or fatal leave Fetch.
type Fetcher struct {
	source   Source
	decoder  Decoder
	progress Progress
	logger   *slog.Logger
	now      func() time.Time
}

// NewFetcher wires a fetcher. progress may be nil.
func NewFetcher(source Source, decoder Decoder, progress Progress, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		source:   source,
		decoder:  decoder,
		progress: progress,
		logger:   logging.NewComponentLogger(logger, "fetcher"),
		now:      time.Now,
	}
}

// Fetch retrieves req.URL into req.OutputPath and returns the elapsed time.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (time.Duration, error) {
	start := f.now()
	partial := fileutil.PartialPath(req.OutputPath)
	logger := logging.WithContext(ctx, f.logger)

	if err := fileutil.ClearStale(req.OutputPath); err != nil {
		return 0, fatal("clear stale output", err)
	}

	stream, err := f.source.Open(ctx, req.URL)
	if err != nil {
		return 0, boundary("open stream", err)
	}
	defer stream.Close()

	session, err := f.decoder.Start(ctx, partial)
	if err != nil {
		f.discard(logger, partial)
		return 0, fatal("start decoder", err)
	}

	tracker := f.begin(req)
	defer tracker.Done()

	written, err := pump(stream, session, tracker)
	if err != nil {
		session.Abort()
		f.discard(logger, partial)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fatal("interrupted", errors.Join(ctxErr, err))
		}
		return 0, boundary("stream", err)
	}
	if err := session.Finish(); err != nil {
		f.discard(logger, partial)
		return 0, fatal("decode", err)
	}
	if err := fileutil.Promote(partial, req.OutputPath); err != nil {
		f.discard(logger, partial)
		return 0, fatal("promote", err)
	}

	elapsed := f.now().Sub(start)
	logger.Debug("fetch complete",
		logging.Int64("stream_bytes", written),
		logging.Duration("elapsed", elapsed),
	)
	return elapsed, nil
}

// pump forwards every frame after the handshake to the decoder.
func pump(stream catalog.ChunkStream, sink io.Writer, tracker Tracker) (int64, error) {
	var written int64
	handshake := true
	for {
		frame, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		if handshake {
			handshake = false
			continue
		}
		if len(frame) == 0 {
			continue
		}
		n, err := sink.Write(frame)
		written += int64(n)
		tracker.Add(n)
		if err != nil {
			return written, err
		}
	}
}

func (f *Fetcher) begin(req Request) Tracker {
	if f.progress == nil {
		return nopTracker{}
	}
	return f.progress.Begin(req.Label, req.ExpectedSize)
}

func (f *Fetcher) discard(logger *slog.Logger, partial string) {
	if err := fileutil.Remove(partial); err != nil {
		logger.Warn("partial download not removed",
			logging.String("path", partial),
			logging.Error(err),
		)
	}
}

// HealthCheck reports whether the decoder can run.
func (f *Fetcher) HealthCheck() error {
	if checker, ok := f.decoder.(interface{ Available() error }); ok {
		return checker.Available()
	}
	return nil
}

// boundary keeps busy errors as they are and marks everything else as a
// fetch failure.
func boundary(operation string, err error) error {
	if services.Classify(err) == services.KindBusy {
		return err
	}
	return fatal(operation, err)
}

func fatal(operation string, err error) error {
	if errors.Is(err, services.ErrFetchFailed) {
		return err
	}
	return services.Wrap(services.ErrFetchFailed, "fetch", operation, "", err)
}

type nopTracker struct{}

func (nopTracker) Add(int) {}
func (nopTracker) Done()   {}
