package encoding

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

// Runner is the transcode capability the stage drives.
type Runner interface {
	Encode(ctx context.Context, input, output string) (time.Duration, error)
}

// Stage adapts a Runner to the workflow's stage contract.
type Stage struct {
	runner Runner
	logger *slog.Logger
}

// NewStage builds the transcode stage handler.
func NewStage(runner Runner, logger *slog.Logger) *Stage {
	return &Stage{runner: runner, logger: logging.NewComponentLogger(logger, "transcode")}
}

// Prepare checks the fetched file is present and the destination exists.
func (s *Stage) Prepare(_ context.Context, item *queue.Item) error {
	if err := stage.RequireInput("transcode", item.Paths.Staged); err != nil {
		return err
	}
	return stage.EnsureParentDir("transcode", item.Paths.Destination)
}

// Execute transcodes the staged download into the destination path.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	elapsed, err := s.runner.Encode(ctx, item.Paths.Staged, item.Paths.Destination)
	if err != nil {
		return err
	}
	item.RecordTranscode(elapsed)

	var size int64
	if info, statErr := os.Stat(item.Paths.Destination); statErr == nil {
		size = info.Size()
	}
	logging.WithContext(ctx, s.logger).Info("transcoded",
		logging.String(logging.FieldTitle, item.Title()),
		logging.String("stats", textutil.StatsLine(size, elapsed)),
	)
	return nil
}

// HealthCheck reports transcoder availability when the runner can tell.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.runner == nil {
		return stage.Unhealthy("transcode", "transcoder not configured")
	}
	if checker, ok := s.runner.(interface{ Available() error }); ok {
		if err := checker.Available(); err != nil {
			return stage.Unhealthy("transcode", err.Error())
		}
	}
	return stage.Healthy("transcode")
}
