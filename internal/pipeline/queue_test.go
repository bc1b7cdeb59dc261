package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xlemi/spectronote/internal/audio"
)

func window(tag float32) audio.Window {
	return audio.Window{Samples: []float32{tag}, SampleRate: 8000}
}

func drain(q *Queue) []float32 {
	var tags []float32
	for w := range q.Windows() {
		tags = append(tags, w.Samples[0])
	}
	return tags
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(4)
	for i := 1; i <= 3; i++ {
		require.True(t, q.Offer(window(float32(i))))
	}
	assert.Equal(t, 3, q.Len())

	q.Close()
	assert.Equal(t, []float32{1, 2, 3}, drain(q))
	assert.Zero(t, q.Dropped())
}

func TestQueueDropsOldest(t *testing.T) {
	q := NewQueue(2)
	for i := 1; i <= 5; i++ {
		require.True(t, q.Offer(window(float32(i))))
	}
	assert.Equal(t, uint64(3), q.Dropped())

	q.Close()
	assert.Equal(t, []float32{4, 5}, drain(q))
}

func TestQueueOfferAfterClose(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	q.Close()

	assert.False(t, q.Offer(window(1)))
	assert.NotPanics(t, func() { q.Handler()(window(2)) })
}

func TestQueueMinimumDepth(t *testing.T) {
	q := NewQueue(0)
	q.Offer(window(1))
	q.Offer(window(2))
	q.Close()
	assert.Equal(t, []float32{2}, drain(q))
}
