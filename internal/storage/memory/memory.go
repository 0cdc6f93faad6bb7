// Package memory is an in-process history store used when no database
// is configured and in tests.
package memory

import (
	"sync"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Backend stores accepted messages in memory.
type Backend struct {
	mu       sync.Mutex
	messages []core.Message
}

// New creates an empty memory backend.
func New() *Backend {
	return &Backend{}
}

// Init is a no-op for the memory backend.
func (b *Backend) Init() error { return nil }

// Close is a no-op for the memory backend.
func (b *Backend) Close() error { return nil }

// RecordMessage copies the message into the store.
func (b *Backend) RecordMessage(m *core.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, *m)
	return nil
}

// Flush is a no-op; records are stored on write.
func (b *Backend) Flush() error { return nil }

// MessageCount returns the number of stored messages.
func (b *Backend) MessageCount() (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.messages)), nil
}

// Messages returns a copy of the stored messages.
func (b *Backend) Messages() []core.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Message, len(b.messages))
	copy(out, b.messages)
	return out
}
