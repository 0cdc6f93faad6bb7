package adsb

import (
	"sync"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Context holds the latest position feed snapshot. The poller replaces
// it atomically; consumers read whatever snapshot is current at the
// start of their pass and use it to completion.
type Context struct {
	mu       sync.RWMutex
	snapshot *core.PositionSnapshot
}

// NewContext creates an empty snapshot holder.
func NewContext() *Context {
	return &Context{}
}

// Snapshot returns the latest snapshot, or nil when the feed has not
// produced one (or is disabled).
func (c *Context) Snapshot() *core.PositionSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// SetSnapshot publishes a new snapshot.
func (c *Context) SetSnapshot(s *core.PositionSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = s
}
