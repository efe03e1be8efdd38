package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(2)
	q.Submit(Spawn{At: Coord{0, 0, 0}, Material: 1})
	q.Submit(Destroy{At: Coord{0, 0, 0}})
	q.Submit(InitializeVolume{Seed: 9})
	assert.Equal(t, 3, q.Len())

	batch := q.take()
	assert.Equal(t, []Command{
		Spawn{At: Coord{0, 0, 0}, Material: 1},
		Destroy{At: Coord{0, 0, 0}},
		InitializeVolume{Seed: 9},
	}, batch)
	assert.Equal(t, 0, q.Len())

	q.Submit(Destroy{At: Coord{1, 1, 1}})
	q.release(batch)
	assert.Equal(t, 1, q.Len(), "submissions during a drain wait for the next one")
	assert.Equal(t, []Command{Destroy{At: Coord{1, 1, 1}}}, q.take())
}

func TestQueueConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	const producers, perProducer = 8, 500
	q := NewQueue(16)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Submit(Spawn{At: Coord{p, i, 0}})
			}
		}(p)
	}
	wg.Wait()

	batch := q.take()
	require.Len(t, batch, producers*perProducer)
	next := make([]int, producers)
	for _, cmd := range batch {
		s := cmd.(Spawn)
		assert.Equal(t, next[s.At.X], s.At.Y, "producer %d out of order", s.At.X)
		next[s.At.X]++
	}
}
