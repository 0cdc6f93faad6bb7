package worker

import (
	"time"

	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	"github.com/sdr-enthusiasts/acarshub/internal/storage"
)

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	LogManager *logging.SlogManager
	Backend    storage.Backend
}

// Manager drains the storage backend's staging queue on an interval.
type Manager struct {
	deps      Dependencies
	stopChan  chan struct{}
	isRunning bool
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	return &Manager{
		deps: deps,
	}
}

// Start launches the background flush goroutine.
func (m *Manager) Start(interval time.Duration) {
	if m.isRunning {
		return
	}
	m.stopChan = make(chan struct{})
	m.isRunning = true

	log := m.deps.LogManager.Logger()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				if err := m.deps.Backend.Flush(); err != nil {
					log.Error("Failed to flush message backlog", "error", err)
				}
			}
		}
	}()
}

// Stop halts the flush goroutine and drains any remaining messages.
func (m *Manager) Stop() {
	if !m.isRunning {
		return
	}
	close(m.stopChan)
	m.isRunning = false

	if err := m.deps.Backend.Flush(); err != nil {
		m.deps.LogManager.Logger().Error("Final flush failed", "error", err)
	}
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.deps.Backend.(storage.DBWriteDurationProvider); ok {
		return p.GetLastDBWriteDuration()
	}
	return 0
}
