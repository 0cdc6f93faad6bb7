package monitor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdr-enthusiasts/acarshub/internal/adsb"
	"github.com/sdr-enthusiasts/acarshub/internal/correlate"
	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

func newTestStore(t *testing.T, groups int) *correlate.Store {
	t.Helper()
	store := correlate.NewStore(correlate.NewMatcher(core.Terms{}), nil)
	for i := 0; i < groups; i++ {
		store.Ingest(&core.Message{
			UID:       fmt.Sprintf("uid-%d", i),
			Timestamp: float64(1000 + i),
			Tail:      fmt.Sprintf("N%05d", i),
		})
	}
	return store
}

func TestCollect_CullsOverBudgetGroups(t *testing.T) {
	store := newTestStore(t, 10)
	s := NewService(Dependencies{
		Store:       store,
		ADSBContext: adsb.NewContext(),
		LogManager:  logging.NewSlogManager(),
		MaxGroups:   3,
		Interval:    time.Second,
	})

	s.collect()
	assert.Equal(t, 3, store.Len())
}

func TestCollect_UnderBudget_NoOp(t *testing.T) {
	store := newTestStore(t, 2)
	s := NewService(Dependencies{
		Store:      store,
		LogManager: logging.NewSlogManager(),
		MaxGroups:  5,
		Interval:   time.Second,
	})

	s.collect()
	assert.Equal(t, 2, store.Len())
}

func TestStartStop(t *testing.T) {
	store := newTestStore(t, 10)
	s := NewService(Dependencies{
		Store:      store,
		LogManager: logging.NewSlogManager(),
		MaxGroups:  3,
		Interval:   10 * time.Millisecond,
	})

	require.NoError(t, s.Start())
	require.Eventually(t, func() bool {
		return store.Len() == 3
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	require.Eventually(t, func() bool {
		return !s.IsRunning()
	}, time.Second, 5*time.Millisecond)
}
