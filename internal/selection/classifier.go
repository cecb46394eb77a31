package selection

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"nropster/internal/catalog"
	"nropster/internal/config"
	"nropster/internal/logging"
	"nropster/internal/queue"
)

// Group is the display group a kept recording is reported under. Every kept
// recording belongs to exactly one group.
type Group string

const (
	GroupToDownload        Group = "to-download"
	GroupAlreadyDownloaded Group = "already-downloaded"
	GroupIncluded          Group = "included"
	GroupExcluded          Group = "excluded"
	GroupNotIncluded       Group = "not-included"
)

// Groups lists the display groups in report order.
func Groups() []Group {
	return []Group{GroupToDownload, GroupAlreadyDownloaded, GroupIncluded, GroupExcluded, GroupNotIncluded}
}

// Options controls classification.
type Options struct {
	Include *regexp.Regexp
	Exclude *regexp.Regexp
	Force   bool
	Dirs    queue.Dirs
}

// OptionsFromConfig compiles the configured patterns and derives the path
// directories.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		Force: cfg.Selection.Force,
		Dirs: queue.Dirs{
			Work:        cfg.Paths.WorkDir,
			Destination: cfg.Paths.DestinationDir,
			Edited:      cfg.Paths.EditedDir,
			Extension:   cfg.Transcoder.Extension,
		},
	}
	var err error
	if opts.Include, err = compileOptional(cfg.Selection.Include); err != nil {
		return Options{}, fmt.Errorf("selection.include: %w", err)
	}
	if opts.Exclude, err = compileOptional(cfg.Selection.Exclude); err != nil {
		return Options{}, fmt.Errorf("selection.exclude: %w", err)
	}
	return opts, nil
}

func compileOptional(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

// Entry is one kept recording with its derived paths and disposition.
type Entry struct {
	Recording catalog.Recording
	Paths     queue.Paths
	Group     Group
	// Fetch is set when the recording enters the work list.
	Fetch bool
	// Present is set when the finished file already exists.
	Present bool
}

// Plan is the classifier's result: kept recordings in capture order.
type Plan struct {
	Entries []Entry
	Dropped int
}

// Classify drops recordings not marked keep, sorts the rest by capture time,
// and assigns each a display group.
func Classify(recordings []catalog.Recording, opts Options, logger *slog.Logger) Plan {
	logger = logging.NewComponentLogger(logger, "selection")

	kept := make([]catalog.Recording, 0, len(recordings))
	for _, rec := range recordings {
		if rec.Keep {
			kept = append(kept, rec)
		}
	}
	slices.SortStableFunc(kept, func(a, b catalog.Recording) int {
		return a.CapturedAt.Compare(b.CapturedAt)
	})

	if opts.Include != nil && opts.Exclude != nil {
		logger.Warn("exclude pattern ignored because an include pattern is set",
			logging.String("include", opts.Include.String()),
			logging.String("exclude", opts.Exclude.String()),
		)
	}

	plan := Plan{Entries: make([]Entry, 0, len(kept)), Dropped: len(recordings) - len(kept)}
	for _, rec := range kept {
		entry := classifyOne(rec, opts)
		if rec.InProgress && entry.Fetch {
			logger.Warn("recording is still in progress; the fetched copy may be incomplete",
				logging.String(logging.FieldTitle, rec.FullTitle()),
			)
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan
}

func classifyOne(rec catalog.Recording, opts Options) Entry {
	paths := queue.DerivePaths(rec, opts.Dirs)
	entry := Entry{Recording: rec, Paths: paths, Present: paths.AlreadyPresent()}
	title := rec.FullTitle()
	fetchable := !entry.Present || opts.Force

	switch {
	case opts.Include != nil:
		if !opts.Include.MatchString(title) {
			entry.Group = GroupNotIncluded
			return entry
		}
		entry.Group = GroupIncluded
		entry.Fetch = fetchable
	case opts.Exclude != nil && opts.Exclude.MatchString(title):
		entry.Group = GroupExcluded
	case fetchable:
		entry.Group = GroupToDownload
		entry.Fetch = true
	default:
		entry.Group = GroupAlreadyDownloaded
	}
	return entry
}

// Group returns the entries in g, in capture order.
func (p Plan) Group(g Group) []Entry {
	var out []Entry
	for _, entry := range p.Entries {
		if entry.Group == g {
			out = append(out, entry)
		}
	}
	return out
}

// Fetchable returns the entries that enter the work list.
func (p Plan) Fetchable() []Entry {
	var out []Entry
	for _, entry := range p.Entries {
		if entry.Fetch {
			out = append(out, entry)
		}
	}
	return out
}

// WorkList builds the run's items, numbered from 1 in capture order, all in
// to_fetch.
func (p Plan) WorkList() *queue.WorkList {
	fetchable := p.Fetchable()
	items := make([]*queue.Item, 0, len(fetchable))
	for i, entry := range fetchable {
		items = append(items, queue.NewItem(i+1, entry.Recording, entry.Paths, entry.Group == GroupIncluded))
	}
	return queue.NewWorkList(items)
}

// Summary logs the size of each display group.
func (p Plan) Summary(logger *slog.Logger) {
	attrs := make([]logging.Attr, 0, len(Groups())+1)
	for _, g := range Groups() {
		attrs = append(attrs, logging.Int(string(g), len(p.Group(g))))
	}
	attrs = append(attrs, logging.Int("not_kept", p.Dropped))
	logging.NewComponentLogger(logger, "selection").Info("recordings classified", logging.Args(attrs...)...)
}
