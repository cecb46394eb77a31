package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"nropster/internal/logging"
)

// Run starts both lanes and blocks until each has found no further progress
// possible, or ctx is cancelled. It returns ctx.Err() after a cancellation.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.lanes) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}
	lanes := append([]*laneState(nil), m.lanes...)
	for _, lane := range lanes {
		lane.logger = m.laneLogger(lane)
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	start := time.Now()
	m.notifyRunStarted(ctx)

	var wg sync.WaitGroup
	for _, lane := range lanes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.runLane(ctx, lane)
		}()
	}
	wg.Wait()

	m.notifyRunCompleted(ctx, time.Since(start))
	return ctx.Err()
}

func (m *Manager) runLane(ctx context.Context, lane *laneState) {
	logger := lane.logger
	if lane.notifies {
		defer m.work.Notify()
	}

	for pass := 1; ; pass++ {
		if ctx.Err() != nil {
			logger.Info("lane stopped", logging.String(logging.FieldEventType, "lane_interrupted"))
			return
		}

		m.runPass(ctx, lane)

		if !m.work.CanProgress(lane.kind) {
			logger.Info("lane finished",
				logging.Int("passes", pass),
				logging.String(logging.FieldEventType, "lane_complete"),
			)
			return
		}
		m.waitForItemOrShutdown(ctx, lane)
	}
}

// runPass acts once on every item currently waiting in the lane's start
// status.
func (m *Manager) runPass(ctx context.Context, lane *laneState) {
	for i, item := range m.work.InStatus(lane.stage.startStatus) {
		if ctx.Err() != nil {
			return
		}
		if i > 0 && lane.paced && m.pacing > 0 {
			if !sleepContext(ctx, m.pacing) {
				return
			}
		}
		m.processItem(ctx, lane, item)
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context, lane *laneState) {
	if lane.signalled {
		select {
		case <-ctx.Done():
		case <-m.work.Ready():
		}
		return
	}
	sleepContext(ctx, m.pollInterval)
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
