package downloading

import (
	"context"
	"log/slog"
	"os"
	"time"

	"nropster/internal/logging"
	"nropster/internal/queue"
	"nropster/internal/stage"
	"nropster/internal/textutil"
)

// Runner is the fetch capability the stage drives. *Fetcher implements it;
// tests substitute stubs.
type Runner interface {
	Fetch(ctx context.Context, req Request) (time.Duration, error)
}

// Stage adapts a Runner to the workflow's stage contract.
type Stage struct {
	runner Runner
	logger *slog.Logger
}

// NewStage builds the fetch stage handler.
func NewStage(runner Runner, logger *slog.Logger) *Stage {
	return &Stage{runner: runner, logger: logging.NewComponentLogger(logger, "fetch")}
}

// Prepare makes sure the work directory exists.
func (s *Stage) Prepare(_ context.Context, item *queue.Item) error {
	return stage.EnsureParentDir("fetch", item.Paths.Staged)
}

// Execute fetches the recording into its staged path.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	rec := item.Recording
	elapsed, err := s.runner.Fetch(ctx, Request{
		URL:          rec.URL,
		Label:        item.Title(),
		ExpectedSize: rec.Size,
		OutputPath:   item.Paths.Staged,
	})
	if err != nil {
		return err
	}
	item.RecordFetch(elapsed)

	size := rec.Size
	if info, statErr := os.Stat(item.Paths.Staged); statErr == nil {
		size = info.Size()
	}
	logging.WithContext(ctx, s.logger).Info("fetched",
		logging.String(logging.FieldTitle, item.Title()),
		logging.String("stats", textutil.StatsLine(size, elapsed)),
	)
	return nil
}

// HealthCheck reports decoder availability when the runner can tell.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.runner == nil {
		return stage.Unhealthy("fetch", "fetcher not configured")
	}
	if checker, ok := s.runner.(interface{ HealthCheck() error }); ok {
		if err := checker.HealthCheck(); err != nil {
			return stage.Unhealthy("fetch", err.Error())
		}
	}
	return stage.Healthy("fetch")
}
