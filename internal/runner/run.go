package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"nropster/internal/catalog"
	"nropster/internal/config"
	"nropster/internal/deps"
	"nropster/internal/downloading"
	"nropster/internal/encoding"
	"nropster/internal/logging"
	"nropster/internal/notifications"
	"nropster/internal/preflight"
	"nropster/internal/queue"
	"nropster/internal/report"
	"nropster/internal/selection"
	"nropster/internal/staging"
	"nropster/internal/workflow"
)

// Recorder is the device surface a run needs: the listing and the content
// streams. *catalog.Client implements it.
type Recorder interface {
	catalog.Lister
	downloading.Source
}

// Options configures one run.
type Options struct {
	// Cached reuses the listing saved by the previous run.
	Cached bool
	// Out receives progress lines and the summary. Defaults to stdout.
	Out io.Writer
	// Logger replaces the logger built from the config.
	Logger *slog.Logger
	// Recorder replaces the device client built from the config.
	Recorder Recorder
	// Notifier replaces the ntfy service built from the config.
	Notifier notifications.Service
	// Reporter options, e.g. report.WithInteractive.
	Reporter []report.Option
}

// Result summarizes a finished run.
type Result struct {
	RunID   string
	Items   int
	Done    int
	Errored int
	Elapsed time.Duration
	// LastError is the most recent failure recorded by either lane.
	LastError string
}

// Run fetches and transcodes every selected recording once, then prints the
// run summary. It returns an error when the run could not start, when the
// recorder listing is unavailable, or when the run was interrupted.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) (Result, error) {
	if cfg == nil {
		return Result{}, fmt.Errorf("config is required")
	}

	ctx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.NewFromConfig(cfg)
		if err != nil {
			return Result{}, fmt.Errorf("init logger: %w", err)
		}
	}
	runID := uuid.NewString()
	logger = logger.With(logging.String("run_id", runID))
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return Result{}, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return Result{}, fmt.Errorf("another nropster run is already using %s", cfg.Paths.WorkDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("release run lock failed", logging.Error(err))
		}
	}()

	if err := checkEnvironment(cfg, logger); err != nil {
		return Result{}, err
	}

	recorder := opts.Recorder
	if recorder == nil {
		if err := cfg.ValidateDevice(); err != nil {
			return Result{}, err
		}
		client, err := catalog.NewClient(cfg.Device, logger)
		if err != nil {
			return Result{}, err
		}
		recorder = client
	}

	recordings, err := catalog.Load(ctx, recorder, cfg.CatalogCachePath(), opts.Cached, logger)
	if err != nil {
		logger.Error("recorder listing unavailable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "listing_unavailable"),
			logging.String(logging.FieldErrorHint, "check device.address and that the recorder is on the network"),
		)
		return Result{RunID: runID}, err
	}

	selOpts, err := selection.OptionsFromConfig(cfg)
	if err != nil {
		return Result{RunID: runID}, err
	}
	plan := selection.Classify(recordings, selOpts, logger)
	plan.Summary(logger)
	work := plan.WorkList()
	sweepPartials(ctx, cfg, work, logger)

	reporter := report.New(out, logger, opts.Reporter...)
	decoder := downloading.NewCommandDecoder(cfg.Decoder, cfg.Device.MediaAccessKey)
	fetcher := downloading.NewFetcher(recorder, decoder, reporter, logger)
	transcoder := encoding.NewTranscoder(cfg.Transcoder, logger)

	managerOpts := []workflow.ManagerOption{workflow.WithObserver(reporter)}
	if opts.Notifier != nil {
		managerOpts = append(managerOpts, workflow.WithNotifier(opts.Notifier))
	}
	manager := workflow.NewManager(cfg, work, logger, managerOpts...)
	manager.ConfigureStages(workflow.StageSet{
		Fetcher:    downloading.NewStage(fetcher, logger),
		Transcoder: encoding.NewStage(transcoder, logger),
	})
	for _, health := range manager.StageHealth(ctx) {
		if err := health.Err(); err != nil {
			return Result{RunID: runID}, err
		}
	}

	logger.Info("run starting",
		logging.String(logging.FieldEventType, "run_started"),
		logging.Int("items", work.Len()),
		logging.String("handoff", cfg.Workflow.Handoff),
	)
	started := time.Now()
	runErr := manager.Run(ctx)
	elapsed := time.Since(started)

	snapshots := work.Snapshots()
	reporter.WriteSummary(snapshots, elapsed)

	status := manager.Status(ctx)
	result := Result{
		RunID:     runID,
		Items:     len(snapshots),
		Done:      status.Counts[queue.StatusDone],
		Errored:   status.Counts[queue.StatusErrored],
		Elapsed:   elapsed,
		LastError: status.LastError,
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("done", result.Done),
		logging.Int("errored", result.Errored),
		logging.Duration("elapsed", elapsed),
	}
	if result.LastError != "" {
		attrs = append(attrs, logging.String("last_error", result.LastError))
	}
	logger.Info("run finished", logging.Args(attrs...)...)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return result, fmt.Errorf("run interrupted: %w", runErr)
		}
		return result, runErr
	}
	return result, nil
}

// checkEnvironment verifies directory access and the external programs.
func checkEnvironment(cfg *config.Config, logger *slog.Logger) error {
	if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
		parts := make([]string, 0, len(failed))
		for _, result := range failed {
			parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
	}

	statuses := preflight.CheckSystemDeps(cfg)
	for _, status := range statuses {
		logger.Debug("dependency",
			logging.String("name", status.Name),
			logging.String("command", status.Command),
			logging.String("path", status.Path),
			logging.Bool("available", status.Available),
		)
	}
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		parts := make([]string, 0, len(missing))
		for _, status := range missing {
			parts = append(parts, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
		return fmt.Errorf("missing required programs: %s", strings.Join(parts, ", "))
	}
	return nil
}

// sweepPartials removes partial files left by earlier runs for recordings
// this run does not own.
func sweepPartials(ctx context.Context, cfg *config.Config, work *queue.WorkList, logger *slog.Logger) {
	active := make(map[string]struct{}, work.Len()*2)
	for _, item := range work.Items() {
		active[item.Paths.Staged] = struct{}{}
		active[item.Paths.Destination] = struct{}{}
	}
	result := staging.CleanOrphaned(ctx, []string{cfg.Paths.WorkDir, cfg.Paths.DestinationDir}, active, logger)
	if len(result.Removed) > 0 || len(result.Errors) > 0 {
		logger.Info("partial file sweep",
			logging.Int("removed", len(result.Removed)),
			logging.Int("errors", len(result.Errors)),
		)
	}
}
