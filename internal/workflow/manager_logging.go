package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"nropster/internal/logging"
	"nropster/internal/queue"
	"nropster/internal/services"
)

func (m *Manager) laneLogger(lane *laneState) *slog.Logger {
	return m.logger.With(
		logging.String(logging.FieldComponent, fmt.Sprintf("workflow-%s-runner", lane.name)),
		logging.String(logging.FieldLane, lane.name),
	)
}

func withStageContext(ctx context.Context, lane *laneState, stageName string, item *queue.Item, requestID string) context.Context {
	attempt := services.Attempt{Stage: stageName, RequestID: requestID}
	if item != nil {
		attempt.ItemID = item.Position
	}
	if lane != nil {
		attempt.Lane = lane.name
	}
	return services.WithAttempt(ctx, attempt)
}
