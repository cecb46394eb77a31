package workflow

import (
	"log/slog"
	"sync"
	"time"

	"nropster/internal/config"
	"nropster/internal/logging"
	"nropster/internal/notifications"
	"nropster/internal/queue"
)

// Manager runs the fetch and transcode lanes over one work list until
// neither can make further progress.
type Manager struct {
	work         *queue.WorkList
	logger       *slog.Logger
	notifier     notifications.Service
	observer     Observer
	pollInterval time.Duration
	pacing       time.Duration
	handoff      string

	lanes []*laneState

	mu      sync.RWMutex
	running bool
	lastErr error
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithNotifier replaces the notifier built from configuration.
func WithNotifier(notifier notifications.Service) ManagerOption {
	return func(m *Manager) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

// WithObserver registers a stage lifecycle observer.
func WithObserver(observer Observer) ManagerOption {
	return func(m *Manager) {
		if observer != nil {
			m.observer = observer
		}
	}
}

// WithPollInterval overrides the configured delay between scans.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.pollInterval = d }
}

// WithPacing overrides the configured delay between fetch attempts.
func WithPacing(d time.Duration) ManagerOption {
	return func(m *Manager) { m.pacing = d }
}

// WithHandoff overrides the configured hand-off mode.
func WithHandoff(mode string) ManagerOption {
	return func(m *Manager) { m.handoff = mode }
}

// NewManager constructs a workflow manager for work.
func NewManager(cfg *config.Config, work *queue.WorkList, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		work:         work,
		logger:       logger,
		notifier:     notifications.NewService(cfg),
		observer:     noopObserver{},
		pollInterval: time.Duration(cfg.Workflow.PollInterval) * time.Second,
		pacing:       time.Duration(cfg.Workflow.FetchPacing) * time.Second,
		handoff:      cfg.Workflow.Handoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
