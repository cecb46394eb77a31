package report

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"nropster/internal/catalog"
	"nropster/internal/logging"
	"nropster/internal/queue"
	"nropster/internal/selection"
	"nropster/internal/services"
)

func snapshot(pos int, title string, status queue.Status) queue.Snapshot {
	return queue.Snapshot{
		Position: pos,
		Recording: catalog.Recording{
			Title:      title,
			Size:       600_000_000,
			CapturedAt: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
			Duration:   30 * time.Minute,
			Keep:       true,
		},
		Status: status,
	}
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"to_fetch":           "To Fetch",
		"not-included":       "Not Included",
		"already-downloaded": "Already Downloaded",
		"fatal":              "Fatal",
	}
	for in, want := range cases {
		if got := label(in); got != want {
			t.Errorf("label(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummaryListsItemsAndErrors(t *testing.T) {
	done := snapshot(1, "Nature", queue.StatusDone)
	done.FetchDuration = 10 * time.Minute
	done.TranscodeDuration = 4 * time.Minute
	failed := snapshot(2, "News", queue.StatusErrored)
	failed.LastError = services.Failure{Kind: services.KindFatal, Message: "transcode failed: no output produced"}

	out := Summary([]queue.Snapshot{done, failed}, 15*time.Minute)
	for _, want := range []string{
		"Nature", "News", "Done", "Errored",
		"0:10", "1.0 MB/sec", "2.5 MB/sec",
		"1 done, 1 errored in 0:15",
		"Errors", "transcode failed: no output produced",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryWithoutErrorsOmitsErrorTable(t *testing.T) {
	done := snapshot(1, "Nature", queue.StatusDone)
	out := Summary([]queue.Snapshot{done, snapshot(2, "Late", queue.StatusToFetch)}, time.Minute)
	if strings.Contains(out, "Errors") {
		t.Fatalf("unexpected error table:\n%s", out)
	}
	if !strings.Contains(out, "1 unfinished (1 to fetch)") {
		t.Fatalf("expected unfinished count:\n%s", out)
	}
	if got := Summary(nil, 0); got != "Nothing to fetch.\n" {
		t.Fatalf("unexpected empty summary %q", got)
	}
}

func TestPlanRendersNonEmptyGroups(t *testing.T) {
	plan := selection.Plan{
		Entries: []selection.Entry{
			{Recording: snapshot(0, "Larry", "").Recording, Group: selection.GroupIncluded, Fetch: true},
			{Recording: snapshot(0, "News", "").Recording, Group: selection.GroupNotIncluded},
			{Recording: snapshot(0, "Old", "").Recording, Group: selection.GroupIncluded, Present: true},
		},
		Dropped: 2,
	}
	out := Plan(plan)
	for _, want := range []string{"Included (2)", "Not Included (1)", "Larry", "present", "2 recordings not marked keep"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "To Download") {
		t.Errorf("empty groups must be omitted:\n%s", out)
	}
	if got := Plan(selection.Plan{}); got != "No kept recordings.\n" {
		t.Fatalf("unexpected empty plan %q", got)
	}
}

func TestRecordingsListsKeptOnly(t *testing.T) {
	kept := snapshot(0, "Kept", "").Recording
	gone := snapshot(0, "Gone", "").Recording
	gone.Keep = false
	live := snapshot(0, "Live", "").Recording
	live.InProgress = true

	out := Recordings([]catalog.Recording{kept, gone, live})
	if strings.Contains(out, "Gone") {
		t.Fatalf("unkept recording listed:\n%s", out)
	}
	if !strings.Contains(out, kept.String()) || !strings.Contains(out, "Live (600 MB) [recording]") {
		t.Fatalf("unexpected listing:\n%s", out)
	}
}

func TestReporterStageLines(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, logging.NewNop(), WithInteractive(false))

	item := snapshot(3, "Nature", queue.StatusFetching)
	r.StageStarted("fetch", item)

	busy := snapshot(3, "Nature", queue.StatusToFetch)
	r.StageFinished("fetch", busy, services.Wrap(services.ErrBusy, "fetch", "open", "", nil))

	failed := snapshot(3, "Nature", queue.StatusErrored)
	failed.LastError = services.Failure{Kind: services.KindFatal, Message: "fetch failed: key rejected"}
	r.StageFinished("fetch", failed, errors.New("fetch failed"))

	out := buf.String()
	for _, want := range []string{
		"[3] fetching " + item.Recording.String(),
		"[3] deferred Nature (recorder busy, will retry)",
		"[3] failed Nature: fetch failed: key rejected",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("non-interactive output must not be colored: %q", out)
	}
}

type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= slog.LevelInfo }

func (h *captureHandler) Handle(_ context.Context, record slog.Record) error {
	h.records = append(h.records, record)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func TestSampledProgressLogsBuckets(t *testing.T) {
	handler := &captureHandler{}
	r := New(&bytes.Buffer{}, slog.New(handler), WithInteractive(false))

	tracker := r.Begin("Nature", 1000)
	for range 100 {
		tracker.Add(10)
	}
	tracker.Done()

	// One line per 10% bucket, including 0% on the first chunk boundary.
	if got := len(handler.records); got < 10 || got > 11 {
		t.Fatalf("expected about one progress line per bucket, got %d", got)
	}
}

func TestInteractiveProgressWritesBar(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, logging.NewNop(), WithInteractive(true))
	r.barThrottle = 0

	tracker := r.Begin("Nature", 100)
	tracker.Add(50)
	out := buf.String()
	tracker.Add(50)
	tracker.Done()

	for _, want := range []string{"Nature", "50%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in bar output %q", want, out)
		}
	}
}

func TestBarSharesReporterLock(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, logging.NewNop(), WithInteractive(true))
	r.barThrottle = 0
	tracker := r.Begin("Nature", 100)

	r.mu.Lock()
	wrote := make(chan struct{})
	go func() {
		tracker.Add(10)
		close(wrote)
	}()
	select {
	case <-wrote:
		r.mu.Unlock()
		t.Fatal("bar wrote while the reporter lock was held")
	case <-time.After(50 * time.Millisecond):
	}
	r.mu.Unlock()
	select {
	case <-wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("bar never wrote after the lock was released")
	}
	tracker.Done()
}
