package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Update(t *testing.T) {
	var changes []Counters
	tracker := New(func(c Counters) { changes = append(changes, c) })
	tracker.Update(Delta{Created: 2})
	tracker.Update(Delta{Ticks: 1, Completed: 1})
	tracker.Update(Delta{Killed: 1, Ticks: 1, IdleTicks: 1, OutOfMemory: 1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, 2, snapshot.Created)
	assert.Equal(t, 1, snapshot.Completed)
	assert.Equal(t, 1, snapshot.Killed)
	assert.Equal(t, 2, snapshot.Ticks)
	assert.Equal(t, 1, snapshot.IdleTicks)
	assert.Equal(t, 1, snapshot.OutOfMemory)
	assert.Equal(t, 0, snapshot.Live())
	assert.False(t, snapshot.StartedAt.IsZero())
	assert.Len(t, changes, 3)
	assert.Equal(t, snapshot, changes[2])

	silent := New(nil)
	silent.Update(Delta{Created: 1})
	assert.Equal(t, 1, silent.Snapshot().Live())
}

func TestProgress_Nil(t *testing.T) {
	var tracker *Progress
	tracker.Update(Delta{Created: 1})
	assert.Equal(t, Counters{}, tracker.Snapshot())
}

func TestProgress_Concurrent(t *testing.T) {
	tracker := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.Update(Delta{Ticks: 1})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, tracker.Snapshot().Ticks)
}
