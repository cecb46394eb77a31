package workflow

import (
	"log/slog"

	"nropster/internal/queue"
	"nropster/internal/stage"
)

// StageSet bundles the concrete stage handlers the manager orchestrates.
type StageSet struct {
	Fetcher    stage.Handler
	Transcoder stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

type laneState struct {
	kind   queue.Lane
	name   string
	stage  pipelineStage
	logger *slog.Logger
	// paced lanes wait between consecutive attempts within one pass.
	paced bool
	// signalled lanes wait for the work list's ready signal instead of the
	// poll interval.
	signalled bool
	// notifies lanes wake the work list after every item outcome and on exit.
	notifies bool
}

// Observer receives stage lifecycle callbacks. Calls arrive from both lanes
// concurrently.
type Observer interface {
	StageStarted(stage string, item queue.Snapshot)
	StageFinished(stage string, item queue.Snapshot, err error)
}

type noopObserver struct{}

func (noopObserver) StageStarted(string, queue.Snapshot)         {}
func (noopObserver) StageFinished(string, queue.Snapshot, error) {}
