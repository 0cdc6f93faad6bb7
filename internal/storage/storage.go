// internal/storage/storage.go
package storage

import (
	"time"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Backend is the interface all message history stores must satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// RecordMessage stages one accepted message for persistence.
	RecordMessage(m *core.Message) error

	// Flush writes all staged messages.
	Flush() error

	// MessageCount returns the number of persisted messages.
	MessageCount() (int64, error)
}

// DBWriteDurationProvider is an optional interface backends implement
// to expose their last write duration for monitoring.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}
