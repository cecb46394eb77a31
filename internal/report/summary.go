package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"nropster/internal/catalog"
	"nropster/internal/queue"
	"nropster/internal/selection"
	"nropster/internal/textutil"
)

// Summary renders the end-of-run statistics: one row per work item, totals,
// and the causes of any errored items.
func Summary(items []queue.Snapshot, elapsed time.Duration) string {
	if len(items) == 0 {
		return "Nothing to fetch.\n"
	}

	var b strings.Builder
	rows := make([][]string, 0, len(items))
	var fetched int64
	counts := map[queue.Status]int{}
	var failed []queue.Snapshot
	for _, item := range items {
		counts[item.Status]++
		if item.FetchDuration > 0 {
			fetched += item.Recording.Size
		}
		if item.Status == queue.StatusErrored {
			failed = append(failed, item)
		}
		rows = append(rows, []string{
			strconv.Itoa(item.Position),
			item.Recording.FullTitle(),
			item.Recording.CaptureLabel(),
			label(string(item.Status)),
			textutil.FormatBytes(item.Recording.Size),
			durationCell(item.FetchDuration),
			textutil.FormatRate(item.Recording.Size, item.FetchDuration),
			durationCell(item.TranscodeDuration),
			textutil.FormatRate(item.Recording.Size, item.TranscodeDuration),
		})
	}
	b.WriteString(RenderTable(
		[]string{"#", "Title", "Captured", "Status", "Size", "Fetch", "Fetch Rate", "Transcode", "Transcode Rate"},
		rows, 0, 4, 5, 6, 7, 8,
	))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%d done, %d errored", counts[queue.StatusDone], counts[queue.StatusErrored])
	if pending := unfinished(counts); len(pending) > 0 {
		total := 0
		for _, part := range pending {
			total += part.count
		}
		parts := make([]string, 0, len(pending))
		for _, part := range pending {
			parts = append(parts, fmt.Sprintf("%d %s", part.count, strings.ToLower(label(string(part.status)))))
		}
		fmt.Fprintf(&b, ", %d unfinished (%s)", total, strings.Join(parts, ", "))
	}
	fmt.Fprintf(&b, " in %s (%s)\n", textutil.FormatClock(elapsed), textutil.StatsLine(fetched, elapsed))

	if len(failed) > 0 {
		errRows := make([][]string, 0, len(failed))
		for _, item := range failed {
			errRows = append(errRows, []string{
				strconv.Itoa(item.Position),
				item.Recording.FullTitle(),
				label(string(item.LastError.Kind)),
				item.LastError.Message,
			})
		}
		b.WriteString("\nErrors\n")
		b.WriteString(RenderTable([]string{"#", "Title", "Kind", "Cause"}, errRows, 0))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteSummary writes Summary to w.
func (r *Reporter) WriteSummary(items []queue.Snapshot, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.out, Summary(items, elapsed))
}

// Plan renders the classifier's display groups.
func Plan(plan selection.Plan) string {
	var b strings.Builder
	for _, group := range selection.Groups() {
		entries := plan.Group(group)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d)\n", label(string(group)), len(entries))
		rows := make([][]string, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, []string{
				entry.Recording.CaptureLabel(),
				textutil.FormatClock(entry.Recording.Duration),
				entry.Recording.FullTitle(),
				textutil.FormatBytes(entry.Recording.Size),
				entryNote(entry),
			})
		}
		b.WriteString(RenderTable([]string{"Captured", "Length", "Title", "Size", "Note"}, rows, 1, 3))
		b.WriteString("\n\n")
	}
	if b.Len() == 0 {
		return "No kept recordings.\n"
	}
	if plan.Dropped > 0 {
		fmt.Fprintf(&b, "%d recordings not marked keep were skipped.\n", plan.Dropped)
	}
	return b.String()
}

// Recordings renders the one-line description of every kept recording.
func Recordings(recordings []catalog.Recording) string {
	var b strings.Builder
	for _, rec := range recordings {
		if !rec.Keep {
			continue
		}
		b.WriteString(rec.String())
		if rec.InProgress {
			b.WriteString(" [recording]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func entryNote(entry selection.Entry) string {
	var notes []string
	if entry.Present {
		notes = append(notes, "present")
	}
	if entry.Fetch && entry.Present {
		notes = append(notes, "forced")
	}
	if entry.Recording.InProgress {
		notes = append(notes, "still recording")
	}
	return strings.Join(notes, ", ")
}

type statusCount struct {
	status queue.Status
	count  int
}

// unfinished lists the non-terminal statuses still holding items, in
// lifecycle order.
func unfinished(counts map[queue.Status]int) []statusCount {
	var out []statusCount
	for _, status := range queue.AllStatuses() {
		if status.IsTerminal() || counts[status] == 0 {
			continue
		}
		out = append(out, statusCount{status: status, count: counts[status]})
	}
	return out
}

func durationCell(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return textutil.FormatClock(d)
}
