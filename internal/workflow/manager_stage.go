package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nropster/internal/logging"
	"nropster/internal/queue"
)

func (m *Manager) processItem(ctx context.Context, lane *laneState, item *queue.Item) {
	stg := lane.stage
	requestID := uuid.NewString()
	stageCtx := withStageContext(ctx, lane, stg.name, item, requestID)
	stageLogger := logging.WithContext(stageCtx, lane.logger).With(
		logging.String(logging.FieldTitle, item.Title()),
	)

	if err := item.Transition(lane.kind, stg.processingStatus); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return
	}
	m.observer.StageStarted(stg.name, item.Snapshot())
	if lane.notifies {
		defer m.work.Notify()
	}

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("source", item.Recording.URL),
	)

	if err := m.executeStage(stageCtx, stg, item); err != nil {
		m.handleStageFailure(stageCtx, lane, stageLogger, item, err)
		return
	}

	if err := item.Transition(lane.kind, stg.doneStatus); err != nil {
		stageLogger.Error("failed to record stage result", logging.Error(err))
		m.setLastError(err)
		return
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(stg.doneStatus)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.observer.StageFinished(stg.name, item.Snapshot(), nil)
}

func (m *Manager) executeStage(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	if err := stg.handler.Prepare(ctx, item); err != nil {
		return err
	}
	return stg.handler.Execute(ctx, item)
}
