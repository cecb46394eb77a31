package workflow

import (
	"context"

	"nropster/internal/queue"
	"nropster/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	Counts      map[queue.Status]int
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	m.mu.RUnlock()

	summary := StatusSummary{
		Running:     running,
		Counts:      m.work.Counts(),
		StageHealth: m.StageHealth(ctx),
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	return summary
}

// StageHealth runs every configured stage's health check.
func (m *Manager) StageHealth(ctx context.Context) map[string]stage.Health {
	m.mu.RLock()
	lanes := append([]*laneState(nil), m.lanes...)
	m.mu.RUnlock()

	health := make(map[string]stage.Health, len(lanes))
	for _, lane := range lanes {
		health[lane.stage.name] = lane.stage.handler.HealthCheck(ctx)
	}
	return health
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
