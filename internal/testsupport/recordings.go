package testsupport

import (
	"time"

	"nropster/internal/catalog"
	"nropster/internal/config"
	"nropster/internal/queue"
)

// Recording builds a kept recording captured at the given offset from a fixed
// base time.
func Recording(title, episode string, offset time.Duration) catalog.Recording {
	base := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	return catalog.Recording{
		Title:        title,
		EpisodeTitle: episode,
		Size:         4 << 20,
		CapturedAt:   base.Add(offset),
		Duration:     30 * time.Minute,
		URL:          "http://recorder/download/" + title,
		Keep:         true,
	}
}

// WorkList wraps recordings in to_fetch items with paths under dirs, in the
// given order.
func WorkList(dirs queue.Dirs, recordings ...catalog.Recording) *queue.WorkList {
	items := make([]*queue.Item, 0, len(recordings))
	for i, rec := range recordings {
		items = append(items, queue.NewItem(i+1, rec, queue.DerivePaths(rec, dirs), false))
	}
	return queue.NewWorkList(items)
}

// Dirs derives the path directories from a test config.
func Dirs(cfg *config.Config) queue.Dirs {
	return queue.Dirs{
		Work:        cfg.Paths.WorkDir,
		Destination: cfg.Paths.DestinationDir,
		Edited:      cfg.Paths.EditedDir,
		Extension:   cfg.Transcoder.Extension,
	}
}
