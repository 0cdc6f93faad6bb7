package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/sdr-enthusiasts/acarshub/internal/adsb"
	"github.com/sdr-enthusiasts/acarshub/internal/correlate"
	"github.com/sdr-enthusiasts/acarshub/internal/influx"
	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	"github.com/sdr-enthusiasts/acarshub/internal/worker"
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// QueueDepthProvider is an optional interface backends implement to
// expose their staging queue depth.
type QueueDepthProvider interface {
	QueueLen() int
}

// Enricher fills receiver-relative range and bearing on paired entries.
type Enricher interface {
	Enrich(paired []core.PairedAircraft)
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Store         *correlate.Store
	ADSBContext   *adsb.Context
	LogManager    *logging.SlogManager
	WorkerManager *worker.Manager
	Influx        *influx.Manager
	QueueDepth    QueueDepthProvider
	Enricher      Enricher
	MaxGroups     int
	Interval      time.Duration
}

// Service culls the group arena on an interval and reports pipeline health.
type Service struct {
	deps      Dependencies
	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// collect runs one monitoring cycle: cull over-budget groups, then
// report arena size and write backlog.
func (s *Service) collect() {
	logger := s.deps.LogManager.Logger()

	var snapshot *core.PositionSnapshot
	if s.deps.ADSBContext != nil {
		snapshot = s.deps.ADSBContext.Snapshot()
	}

	dropped := s.deps.Store.Cull(s.deps.MaxGroups, snapshot)
	if dropped > 0 {
		logger.Debug("Culled message groups", "dropped", dropped, "max", s.deps.MaxGroups)
	}

	if snapshot != nil {
		paired := s.deps.Store.PairAll(snapshot)
		if s.deps.Enricher != nil {
			s.deps.Enricher.Enrich(paired)
		}
		withMessages := 0
		for _, p := range paired {
			if p.Strategy != core.MatchNone {
				withMessages++
			}
		}
		logger.Debug("Paired position feed", "aircraft", len(paired), "withMessages", withMessages)
	}

	queueDepth := 0
	if s.deps.QueueDepth != nil {
		queueDepth = s.deps.QueueDepth.QueueLen()
	}

	var lastWrite time.Duration
	if s.deps.WorkerManager != nil {
		lastWrite = s.deps.WorkerManager.GetLastDBWriteDuration()
	}

	logger.Debug("Pipeline status",
		"groups", s.deps.Store.Len(),
		"queueDepth", queueDepth,
		"lastDBWrite", lastWrite,
	)

	if s.deps.Influx != nil {
		point := influx.SystemPoint(s.deps.Store.Len(), queueDepth, lastWrite)
		if err := s.deps.Influx.WritePoint(context.Background(), "system", point); err != nil {
			logger.Error("Error writing system point", "error", err)
		}
	}
}

// Start starts the monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.collect()
			}
		}
	}()

	return nil
}

// Stop stops the monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
