// Package gormstorage persists accepted messages through gorm, batching
// writes behind a staging queue.
package gormstorage

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	"github.com/sdr-enthusiasts/acarshub/internal/model"
	"github.com/sdr-enthusiasts/acarshub/internal/queue"
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Dependencies holds all dependencies for the gorm backend.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// Backend writes messages to the database in batches. With a nil DB it
// runs queue-only, which unit tests rely on.
type Backend struct {
	deps  Dependencies
	queue *queue.Queue[model.Message]

	mu                  sync.RWMutex
	lastDBWriteDuration time.Duration
}

// New creates a gorm-backed history store.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:  deps,
		queue: queue.New[model.Message](),
	}
}

// Init is a no-op; migration is the database manager's job.
func (b *Backend) Init() error { return nil }

// Close flushes any staged messages.
func (b *Backend) Close() error {
	return b.Flush()
}

// RecordMessage stages one message for the next batch write.
func (b *Backend) RecordMessage(m *core.Message) error {
	b.queue.Push(model.FromCore(m))
	return nil
}

// QueueLen returns the number of staged messages.
func (b *Backend) QueueLen() int {
	return b.queue.Len()
}

// Flush writes all staged messages in one batch.
func (b *Backend) Flush() error {
	batch := b.queue.GetAndEmpty()
	if len(batch) == 0 {
		return nil
	}
	if b.deps.DB == nil {
		return fmt.Errorf("no database connection, dropping %d messages", len(batch))
	}

	start := time.Now()
	if err := b.deps.DB.CreateInBatches(batch, 1000).Error; err != nil {
		return fmt.Errorf("batch message write failed: %w", err)
	}

	b.mu.Lock()
	b.lastDBWriteDuration = time.Since(start)
	b.mu.Unlock()

	b.deps.LogManager.Logger().Debug("Flushed message batch",
		"count", len(batch), "duration", time.Since(start))
	return nil
}

// MessageCount returns the number of persisted messages.
func (b *Backend) MessageCount() (int64, error) {
	if b.deps.DB == nil {
		return 0, fmt.Errorf("no database connection")
	}
	var count int64
	if err := b.deps.DB.Model(&model.Message{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetLastDBWriteDuration returns the duration of the last batch write.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastDBWriteDuration
}
