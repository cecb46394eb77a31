package selection

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"nropster/internal/catalog"
	"nropster/internal/config"
	"nropster/internal/logging"
	"nropster/internal/queue"
)

func testDirs(t *testing.T) queue.Dirs {
	t.Helper()
	base := t.TempDir()
	dirs := queue.Dirs{
		Work:        filepath.Join(base, "work"),
		Destination: filepath.Join(base, "dest"),
		Edited:      filepath.Join(base, "edited"),
		Extension:   "dv",
	}
	for _, dir := range []string{dirs.Work, dirs.Destination, dirs.Edited} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dirs
}

func rec(title string, hour int, keep bool) catalog.Recording {
	return catalog.Recording{
		Title:      title,
		Size:       1 << 20,
		CapturedAt: time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC),
		URL:        "http://recorder/" + title,
		Keep:       keep,
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestClassifyDropsUnkeptAndOrdersByCapture(t *testing.T) {
	opts := Options{Dirs: testDirs(t)}
	plan := Classify([]catalog.Recording{
		rec("Late", 22, true),
		rec("Early", 8, true),
		rec("Gone", 12, false),
	}, opts, logging.NewNop())

	if plan.Dropped != 1 {
		t.Fatalf("dropped = %d, want 1", plan.Dropped)
	}
	wl := plan.WorkList()
	if wl.Len() != 2 {
		t.Fatalf("work list has %d items, want 2", wl.Len())
	}
	items := wl.Items()
	if items[0].Recording.Title != "Early" || items[1].Recording.Title != "Late" {
		t.Fatalf("unexpected order %q, %q", items[0].Recording.Title, items[1].Recording.Title)
	}
	for i, item := range items {
		if item.Status() != queue.StatusToFetch {
			t.Fatalf("item %d status %s", i, item.Status())
		}
		if item.Position != i+1 {
			t.Fatalf("item %d position %d", i, item.Position)
		}
	}
}

func TestClassifyAlreadyDownloaded(t *testing.T) {
	dirs := testDirs(t)
	atDest := rec("AtDest", 1, true)
	inEdited := rec("InEdited", 2, true)
	fresh := rec("Fresh", 3, true)
	touch(t, queue.DerivePaths(atDest, dirs).Destination)
	touch(t, queue.DerivePaths(inEdited, dirs).Edited)

	plan := Classify([]catalog.Recording{atDest, inEdited, fresh}, Options{Dirs: dirs}, logging.NewNop())
	if got := len(plan.Group(GroupAlreadyDownloaded)); got != 2 {
		t.Fatalf("already-downloaded = %d, want 2", got)
	}
	if got := plan.Group(GroupToDownload); len(got) != 1 || got[0].Recording.Title != "Fresh" {
		t.Fatalf("unexpected to-download %+v", got)
	}

	forced := Classify([]catalog.Recording{atDest, inEdited, fresh}, Options{Dirs: dirs, Force: true}, logging.NewNop())
	if got := len(forced.Group(GroupToDownload)); got != 3 {
		t.Fatalf("forced to-download = %d, want 3", got)
	}
	if forced.WorkList().Len() != 3 {
		t.Fatal("force must put every present recording back in the work list")
	}
}

func TestClassifyIncludePattern(t *testing.T) {
	dirs := testDirs(t)
	a := rec("Larry King", 1, true)
	b := rec("News", 2, true)
	plan := Classify([]catalog.Recording{a, b}, Options{Dirs: dirs, Include: regexp.MustCompile("Larry")}, logging.NewNop())

	included := plan.Group(GroupIncluded)
	if len(included) != 1 || !included[0].Fetch {
		t.Fatalf("expected A included and fetchable, got %+v", included)
	}
	if got := plan.Group(GroupNotIncluded); len(got) != 1 || got[0].Recording.Title != "News" {
		t.Fatalf("expected B not included, got %+v", got)
	}
	wl := plan.WorkList()
	if wl.Len() != 1 {
		t.Fatalf("work list has %d items, want 1", wl.Len())
	}
	if item := wl.Items()[0]; !item.Included || item.Recording.Title != "Larry King" {
		t.Fatalf("unexpected work item %+v", item.Snapshot())
	}
}

func TestClassifyIncludedButPresent(t *testing.T) {
	dirs := testDirs(t)
	a := rec("Larry King", 1, true)
	touch(t, queue.DerivePaths(a, dirs).Destination)
	opts := Options{Dirs: dirs, Include: regexp.MustCompile("Larry")}

	plan := Classify([]catalog.Recording{a}, opts, logging.NewNop())
	included := plan.Group(GroupIncluded)
	if len(included) != 1 || included[0].Fetch || !included[0].Present {
		t.Fatalf("present included item must be shown but not fetched: %+v", included)
	}
	if plan.WorkList().Len() != 0 {
		t.Fatal("present included item entered the work list")
	}

	opts.Force = true
	if Classify([]catalog.Recording{a}, opts, logging.NewNop()).WorkList().Len() != 1 {
		t.Fatal("force must fetch a present included item")
	}
}

func TestClassifyExcludePattern(t *testing.T) {
	dirs := testDirs(t)
	plan := Classify([]catalog.Recording{
		rec("Infomercial", 1, true),
		rec("Movie", 2, true),
	}, Options{Dirs: dirs, Exclude: regexp.MustCompile("^Info")}, logging.NewNop())

	if got := plan.Group(GroupExcluded); len(got) != 1 || got[0].Fetch {
		t.Fatalf("unexpected excluded group %+v", got)
	}
	if got := plan.Group(GroupToDownload); len(got) != 1 || got[0].Recording.Title != "Movie" {
		t.Fatalf("unexpected to-download group %+v", got)
	}
}

func TestClassifyIncludeGovernsOverExclude(t *testing.T) {
	dirs := testDirs(t)
	opts := Options{Dirs: dirs, Include: regexp.MustCompile("Show"), Exclude: regexp.MustCompile("Show")}
	plan := Classify([]catalog.Recording{rec("Show", 1, true), rec("Other", 2, true)}, opts, logging.NewNop())
	if len(plan.Group(GroupIncluded)) != 1 || len(plan.Group(GroupNotIncluded)) != 1 {
		t.Fatalf("include must govern: %+v", plan.Entries)
	}
	if len(plan.Group(GroupExcluded)) != 0 {
		t.Fatal("exclude pattern must be ignored when include is set")
	}
}

func TestClassifyMatchesFullTitle(t *testing.T) {
	dirs := testDirs(t)
	r := rec("Show", 1, true)
	r.EpisodeTitle = "Pilot"
	plan := Classify([]catalog.Recording{r}, Options{Dirs: dirs, Include: regexp.MustCompile("^Show-Pilot$")}, logging.NewNop())
	if len(plan.Group(GroupIncluded)) != 1 {
		t.Fatal("include pattern must match title-episode")
	}
}

func TestClassifyGroupsAreDisjoint(t *testing.T) {
	dirs := testDirs(t)
	present := rec("Present", 4, true)
	touch(t, queue.DerivePaths(present, dirs).Destination)
	recs := []catalog.Recording{
		rec("Alpha", 1, true),
		rec("Beta", 2, true),
		rec("Gamma", 3, false),
		present,
	}
	for _, opts := range []Options{
		{Dirs: dirs},
		{Dirs: dirs, Include: regexp.MustCompile("Alpha|Present")},
		{Dirs: dirs, Exclude: regexp.MustCompile("Beta")},
	} {
		plan := Classify(recs, opts, logging.NewNop())
		seen := map[string]Group{}
		total := 0
		for _, g := range Groups() {
			for _, entry := range plan.Group(g) {
				if prev, ok := seen[entry.Recording.Title]; ok {
					t.Fatalf("%s in both %s and %s", entry.Recording.Title, prev, g)
				}
				seen[entry.Recording.Title] = g
				total++
			}
		}
		if total != 3 {
			t.Fatalf("groups cover %d recordings, want the 3 kept", total)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = "/w"
	cfg.Paths.DestinationDir = "/d"
	cfg.Paths.EditedDir = "/e"
	cfg.Selection.Include = "(?i)larry"
	cfg.Selection.Force = true

	opts, err := OptionsFromConfig(&cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Include == nil || !opts.Include.MatchString("LARRY") || opts.Exclude != nil || !opts.Force {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.Dirs.Work != "/w" || opts.Dirs.Destination != "/d" || opts.Dirs.Edited != "/e" || opts.Dirs.Extension != "dv" {
		t.Fatalf("unexpected dirs %+v", opts.Dirs)
	}

	cfg.Selection.Exclude = "(["
	if _, err := OptionsFromConfig(&cfg); err == nil {
		t.Fatal("expected compile error")
	}
}
