package report

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"nropster/internal/downloading"
	"nropster/internal/logging"
	"nropster/internal/textutil"
)

const (
	progressBucket   = 10
	progressThrottle = 200 * time.Millisecond
)

// Begin starts tracking one transfer of total bytes. A total of zero or less
// means the size is unknown.
func (r *Reporter) Begin(label string, total int64) downloading.Tracker {
	if r.interactive {
		return r.newBarTracker(label, total)
	}
	return &sampledTracker{
		logger:  r.logger.With(logging.String(logging.FieldTitle, label)),
		total:   total,
		sampler: logging.NewProgressSampler(progressBucket),
		start:   time.Now(),
	}
}

type barTracker struct {
	bar *progressbar.ProgressBar
}

func (r *Reporter) newBarTracker(label string, total int64) *barTracker {
	if total <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(lockedWriter{mu: &r.mu, w: r.out}),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(r.barThrottle),
		progressbar.OptionClearOnFinish(),
	)
	return &barTracker{bar: bar}
}

func (t *barTracker) Add(n int) { _ = t.bar.Add(n) }

func (t *barTracker) Done() { _ = t.bar.Finish() }

// lockedWriter serializes bar redraws with the reporter's own lines.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// sampledTracker logs progress at percentage buckets for non-terminal output.
type sampledTracker struct {
	logger  *slog.Logger
	total   int64
	written int64
	sampler *logging.ProgressSampler
	start   time.Time
}

func (t *sampledTracker) Add(n int) {
	t.written += int64(n)
	percent := -1.0
	if t.total > 0 {
		percent = float64(t.written) * 100 / float64(t.total)
	}
	if !t.sampler.ShouldLog(percent, "fetch") {
		return
	}
	attrs := []logging.Attr{
		logging.String("bytes", textutil.FormatBytes(t.written)),
		logging.String(logging.FieldEventType, "fetch_progress"),
	}
	if percent >= 0 {
		attrs = append(attrs, logging.Int("percent", int(min(percent, 100))))
	}
	t.logger.Info("fetch progress", logging.Args(attrs...)...)
}

func (t *sampledTracker) Done() {
	t.logger.Debug("fetch stream finished",
		logging.String("stats", textutil.StatsLine(t.written, time.Since(t.start))),
	)
}
