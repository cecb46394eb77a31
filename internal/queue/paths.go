package queue

import (
	"path/filepath"
	"strings"
	"time"

	"nropster/internal/catalog"
	"nropster/internal/fileutil"
	"nropster/internal/textutil"
)

const (
	stagedExtension = "mpg"
	captureLayout   = "2006-01-02-15:04:05.999999999"
)

// Dirs are the directories and output extension paths are derived against.
type Dirs struct {
	Work        string
	Destination string
	Edited      string
	Extension   string
}

// Paths is the staged download, previously edited, and final destination
// location of one recording.
type Paths struct {
	Staged      string
	Edited      string
	Destination string
}

// FileRoot is the extension-less file name shared by every path of a
// recording: the sanitized full title followed by the UTC capture time with
// colons removed.
func FileRoot(rec catalog.Recording) string {
	title := textutil.SanitizeFileName(rec.FullTitle())
	if title == "" {
		title = "recording"
	}
	return title + " " + captureStamp(rec.CapturedAt)
}

func captureStamp(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format(captureLayout), ":", "")
}

// DerivePaths computes the path triple for rec. It depends only on the
// recording and dirs.
func DerivePaths(rec catalog.Recording, dirs Dirs) Paths {
	root := FileRoot(rec)
	ext := strings.TrimPrefix(dirs.Extension, ".")
	out := root + "." + ext
	paths := Paths{
		Staged:      filepath.Join(dirs.Work, root+"."+stagedExtension),
		Destination: filepath.Join(dirs.Destination, out),
	}
	if strings.TrimSpace(dirs.Edited) != "" {
		paths.Edited = filepath.Join(dirs.Edited, out)
	}
	return paths
}

// AlreadyPresent reports whether the finished file exists at the destination
// or has already been moved to the edited directory.
func (p Paths) AlreadyPresent() bool {
	if fileutil.Exists(p.Destination) {
		return true
	}
	return p.Edited != "" && fileutil.Exists(p.Edited)
}
