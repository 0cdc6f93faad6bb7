package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueuePushAndDrain(t *testing.T) {
	q := New[int]()
	assert.True(t, q.Empty())

	q.Push(1, 2, 3)
	assert.Equal(t, 3, q.Len())
	assert.False(t, q.Empty())

	items := q.GetAndEmpty()
	assert.Equal(t, []int{1, 2, 3}, items)
	assert.True(t, q.Empty())
	assert.Empty(t, q.GetAndEmpty())
}

func TestQueueConcurrentPush(t *testing.T) {
	q := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(j)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, q.Len())
}
