package stage

import (
	"context"

	"nropster/internal/queue"
)

// Handler is one step of the pipeline as the workflow lanes see it. The lane
// moves the item into its processing status before Prepare, and into the
// stage's done status only when both Prepare and Execute return nil. An error
// from either is classified busy or fatal by the lane.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}
