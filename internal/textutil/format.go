package textutil

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatClock renders d as h:mm with minutes rounded up, so a 61 second
// recording shows as 0:02. Zero and negative durations render as 0:00.
func FormatClock(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	seconds := int64(d / time.Second)
	if d%time.Second != 0 {
		seconds++
	}
	minutes := (seconds + 59) / 60
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// FormatBytes renders a byte count in SI units ("1.2 GB").
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatRate renders bytes moved over d as a per-second rate. An empty
// duration yields "-".
func FormatRate(n int64, d time.Duration) string {
	if d <= 0 || n <= 0 {
		return "-"
	}
	perSecond := float64(n) / d.Seconds()
	return humanize.Bytes(uint64(perSecond)) + "/sec"
}

// StatsLine is the one-line summary printed after a fetch or transcode.
func StatsLine(n int64, d time.Duration) string {
	return fmt.Sprintf("time: %s size: %s rate: %s", FormatClock(d), FormatBytes(n), FormatRate(n, d))
}
