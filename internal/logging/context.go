package logging

import (
	"context"
	"log/slog"

	"nropster/internal/services"
)

const (
	// FieldComponent names the subsystem emitting a line.
	FieldComponent = "component"
	// FieldItemID is the work item's position in the run's work list.
	FieldItemID = "item_id"
	// FieldStage is the workflow stage (fetch or transcode).
	FieldStage = "stage"
	// FieldLane is the worker lane processing the item.
	FieldLane = "lane"
	// FieldCorrelationID ties together every line of one stage attempt.
	FieldCorrelationID = "correlation_id"
	// FieldTitle is the recording's full title.
	FieldTitle = "title"
	// FieldEventType classifies notable events for filtering.
	FieldEventType = "event_type"
	// FieldErrorKind is the retry classification of a failure.
	FieldErrorKind = "error_kind"
	// FieldErrorHint suggests an operator action for a failure.
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	attempt, ok := services.AttemptFromContext(ctx)
	if !ok {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if attempt.ItemID > 0 {
		fields = append(fields, slog.Int(FieldItemID, attempt.ItemID))
	}
	if attempt.Stage != "" {
		fields = append(fields, slog.String(FieldStage, attempt.Stage))
	}
	if attempt.Lane != "" {
		fields = append(fields, slog.String(FieldLane, attempt.Lane))
	}
	if attempt.RequestID != "" {
		fields = append(fields, slog.String(FieldCorrelationID, attempt.RequestID))
	}
	return fields
}

// WithContext returns logger augmented with the fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
