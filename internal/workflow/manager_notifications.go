package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nropster/internal/logging"
	"nropster/internal/queue"
)

func (m *Manager) notifyStageError(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	contextLabel := fmt.Sprintf("%s (%s)", item.Title(), stageName)
	if err := m.notifier.NotifyError(ctx, stageErr, contextLabel); err != nil {
		m.logNotifyFailure(ctx, "stage error", err)
	}
}

func (m *Manager) notifyRunStarted(ctx context.Context) {
	if m.work.Len() == 0 {
		return
	}
	if err := m.notifier.NotifyRunStarted(ctx, m.work.Len()); err != nil {
		m.logNotifyFailure(ctx, "run start", err)
	}
}

// notifyRunCompleted still reports an interrupted run.
func (m *Manager) notifyRunCompleted(ctx context.Context, duration time.Duration) {
	if m.work.Len() == 0 {
		return
	}
	counts := m.work.Counts()
	if err := m.notifier.NotifyRunCompleted(context.WithoutCancel(ctx), counts[queue.StatusDone], counts[queue.StatusErrored], duration); err != nil {
		m.logNotifyFailure(ctx, "run completion", err)
	}
}

func (m *Manager) logNotifyFailure(ctx context.Context, what string, err error) {
	logger := m.logger.With(logging.String(logging.FieldComponent, "workflow-manager"))
	if errors.Is(err, context.Canceled) {
		logger.Debug("shutting down, could not send " + what + " notification")
		return
	}
	logging.WithContext(ctx, logger).Debug(what+" notification failed", logging.Error(err))
}
