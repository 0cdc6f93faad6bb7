// Package adsb polls a tar1090-compatible aircraft.json endpoint and
// publishes immutable position snapshots for pairing and culling.
package adsb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sdr-enthusiasts/acarshub/internal/geo"
	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Dependencies holds all dependencies for the position feed service.
type Dependencies struct {
	LogManager *logging.SlogManager
	Context    *Context

	URL      string
	Interval time.Duration

	// Receiver coordinates for range/bearing enrichment. Both zero
	// disables enrichment.
	StationLat float64
	StationLon float64
}

// Service polls the position feed on a fixed interval.
type Service struct {
	deps       Dependencies
	httpClient *http.Client

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
}

// NewService creates a new position feed poller.
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:       deps,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		stopChan:   make(chan struct{}),
	}
}

// IsRunning returns whether the poller is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Fetch retrieves and parses one snapshot from the feed.
func (s *Service) Fetch() (*core.PositionSnapshot, error) {
	resp, err := s.httpClient.Get(s.deps.URL)
	if err != nil {
		return nil, fmt.Errorf("position feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("position feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading position feed body: %w", err)
	}

	return ParseSnapshot(body)
}

// ParseSnapshot parses an aircraft.json document.
func ParseSnapshot(body []byte) (*core.PositionSnapshot, error) {
	var snap core.PositionSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("parsing position snapshot: %w", err)
	}
	return &snap, nil
}

// Enrich fills receiver-relative range and bearing on paired entries
// that carry a position. A receiver at 0,0 disables enrichment.
func (s *Service) Enrich(paired []core.PairedAircraft) {
	if s.deps.StationLat == 0 && s.deps.StationLon == 0 {
		return
	}
	for i := range paired {
		if paired[i].Lat == nil || paired[i].Lon == nil {
			continue
		}
		rangeKm, bearing := geo.RangeBearing(
			s.deps.StationLat, s.deps.StationLon,
			*paired[i].Lat, *paired[i].Lon,
		)
		paired[i].RangeKm = &rangeKm
		paired[i].BearingDeg = &bearing
	}
}

// Start starts the polling goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	logger := s.deps.LogManager.Logger()
	logger.Info("Starting position feed poller", "url", s.deps.URL, "interval", s.deps.Interval)

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
				snap, err := s.Fetch()
				if err != nil {
					logger.Error("Position feed poll failed", "error", err)
					continue
				}
				s.deps.Context.SetSnapshot(snap)
				logger.Debug("Position snapshot updated", "aircraft", len(snap.Aircraft))
			}
		}
	}()

	return nil
}

// Stop stops the poller.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
