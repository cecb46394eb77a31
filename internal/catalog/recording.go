package catalog

import (
	"fmt"
	"strings"
	"time"

	"nropster/internal/textutil"
)

// Recording is one entry of the recorder's listing. It is immutable once
// parsed.
type Recording struct {
	Title        string
	EpisodeTitle string
	Size         int64
	CapturedAt   time.Time
	Duration     time.Duration
	URL          string
	Keep         bool
	InProgress   bool
}

// FullTitle joins the title and episode title the way file names and
// selection patterns see them.
func (r Recording) FullTitle() string {
	title := strings.TrimSpace(r.Title)
	episode := strings.TrimSpace(r.EpisodeTitle)
	if episode == "" {
		return title
	}
	return title + "-" + episode
}

// CaptureLabel is the short local capture time shown in listings.
func (r Recording) CaptureLabel() string {
	return r.CapturedAt.Local().Format("01-02-15:04")
}

// String renders the one-line listing description:
//
//	04-21-20:00 1:00 Show-Episode (2.1 GB)
func (r Recording) String() string {
	return fmt.Sprintf("%s %s %s (%s)",
		r.CaptureLabel(),
		textutil.FormatClock(r.Duration),
		r.FullTitle(),
		textutil.FormatBytes(r.Size),
	)
}
