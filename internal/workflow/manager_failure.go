package workflow

import (
	"context"
	"errors"
	"log/slog"

	"nropster/internal/logging"
	"nropster/internal/queue"
	"nropster/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, lane *laneState, logger *slog.Logger, item *queue.Item, stageErr error) {
	resolved, err := item.Fail(lane.kind, stageErr)
	if err != nil {
		logger.Error("failed to record stage failure", logging.Error(err))
		m.setLastError(err)
		return
	}

	attrs := []logging.Attr{
		logging.String("resolved_status", string(resolved)),
		logging.ErrorKind(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Error(stageErr),
	}

	switch {
	case resolved == queue.StatusToFetch:
		attrs = append(attrs, logging.String(logging.FieldErrorHint, "recorder busy; retrying on the next scan"))
		logger.Warn("stage deferred", logging.Args(attrs...)...)
	case errors.Is(stageErr, context.Canceled):
		logger.Warn("stage interrupted", logging.Args(attrs...)...)
	default:
		attrs = append(attrs, logging.String(logging.FieldErrorHint, failureHint(stageErr)))
		logger.Error("stage failed", logging.Args(attrs...)...)
		m.setLastError(stageErr)
		m.notifyStageError(ctx, lane.stage.name, item, stageErr)
	}

	m.observer.StageFinished(lane.stage.name, item.Snapshot(), stageErr)
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrFetchFailed):
		return "check the media access key and that the recording still exists"
	case errors.Is(err, services.ErrExternalTool):
		return "check the decoder command and its output in the log"
	case errors.Is(err, services.ErrTranscodeFailed):
		return "the fetched file is kept in the work directory for inspection"
	case errors.Is(err, services.ErrValidation):
		return "the input file went missing between stages"
	case errors.Is(err, services.ErrConfiguration):
		return "check directory permissions"
	default:
		return ""
	}
}
