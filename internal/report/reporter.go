package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"nropster/internal/logging"
	"nropster/internal/queue"
	"nropster/internal/textutil"
)

// Reporter prints run progress to an output stream. It is safe for use by
// both lanes at once.
type Reporter struct {
	out         io.Writer
	logger      *slog.Logger
	interactive bool
	barThrottle time.Duration

	mu   sync.Mutex
	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithInteractive forces terminal behavior on or off.
func WithInteractive(interactive bool) Option {
	return func(r *Reporter) { r.interactive = interactive }
}

// New builds a reporter writing to out. Terminal detection decides whether
// progress bars and colors are used.
func New(out io.Writer, logger *slog.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		out:         out,
		logger:      logging.NewComponentLogger(logger, "report"),
		interactive: isTerminal(out),
		barThrottle: progressThrottle,
		ok:          color.New(color.FgGreen),
		warn:        color.New(color.FgYellow),
		bad:         color.New(color.FgRed, color.Bold),
		dim:         color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, c := range []*color.Color{r.ok, r.warn, r.bad, r.dim} {
		if r.interactive {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// StageStarted prints the item about to be worked on.
func (r *Reporter) StageStarted(stage string, item queue.Snapshot) {
	r.printf("%s %s %s\n", r.dim.Sprintf("[%d]", item.Position), stageVerb(stage), item.Recording.String())
}

// StageFinished prints the outcome of one stage attempt.
func (r *Reporter) StageFinished(stage string, item queue.Snapshot, err error) {
	label := fmt.Sprintf("[%d]", item.Position)
	title := item.Recording.FullTitle()
	switch {
	case err == nil:
		n, d := stageStats(stage, item)
		r.printf("%s %s %s %s\n", r.dim.Sprint(label), r.ok.Sprint(stageDone(stage)), title, textutil.StatsLine(n, d))
	case item.Status == queue.StatusToFetch:
		r.printf("%s %s %s (recorder busy, will retry)\n", r.dim.Sprint(label), r.warn.Sprint("deferred"), title)
	default:
		r.printf("%s %s %s: %s\n", r.dim.Sprint(label), r.bad.Sprint("failed"), title, item.LastError.Message)
	}
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func stageVerb(stage string) string {
	if stage == "transcode" {
		return "transcoding"
	}
	return "fetching"
}

func stageDone(stage string) string {
	if stage == "transcode" {
		return "transcoded"
	}
	return "fetched"
}

func stageStats(stage string, item queue.Snapshot) (int64, time.Duration) {
	if stage == "transcode" {
		return fileSize(item.Paths.Destination), item.TranscodeDuration
	}
	return fileSize(item.Paths.Staged), item.FetchDuration
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
