package gormstorage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// newTestBackend creates a Backend with no DB (queue-only mode for unit testing).
func newTestBackend() *Backend {
	return New(Dependencies{
		DB:         nil,
		LogManager: logging.NewSlogManager(),
	})
}

func TestNew(t *testing.T) {
	b := newTestBackend()
	require.NotNil(t, b)
	require.NotNil(t, b.queue)
}

func TestInitClose(t *testing.T) {
	b := newTestBackend()

	err := b.Init()
	require.NoError(t, err)

	err = b.Close()
	require.NoError(t, err)
}

func TestRecordMessage_QueuesToInternalQueue(t *testing.T) {
	b := newTestBackend()
	b.Init()
	defer b.Close()

	msg := &core.Message{
		UID:       "uid-1",
		Timestamp: 1692800000,
		Link:      core.LinkACARS,
		Tail:      "N12345",
	}

	err := b.RecordMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, 1, b.QueueLen())
}

func TestFlush_EmptyQueue_NoError(t *testing.T) {
	b := newTestBackend()
	b.Init()
	defer b.Close()

	err := b.Flush()
	require.NoError(t, err)
}

func TestFlush_NoDB_ReturnsError(t *testing.T) {
	b := newTestBackend()
	b.Init()

	require.NoError(t, b.RecordMessage(&core.Message{UID: "uid-1", Timestamp: 1}))

	err := b.Flush()
	require.Error(t, err)
	assert.Equal(t, 0, b.QueueLen(), "queue drained even when write fails")
}

func TestMessageCount_NoDB_ReturnsError(t *testing.T) {
	b := newTestBackend()

	_, err := b.MessageCount()
	require.Error(t, err)
}

func TestGetLastDBWriteDuration(t *testing.T) {
	b := newTestBackend()

	assert.Equal(t, time.Duration(0), b.GetLastDBWriteDuration())

	b.lastDBWriteDuration = 100 * time.Millisecond
	assert.Equal(t, 100*time.Millisecond, b.GetLastDBWriteDuration())
}
