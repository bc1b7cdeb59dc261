// Package pipeline connects the capture callback to the single goroutine
// that analyzes and renders windows.
package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/0xlemi/spectronote/internal/audio"
)

// Queue is a bounded FIFO of windows. When full, Offer discards the oldest
// queued window so producers never block and only recent audio is kept.
type Queue struct {
	mu      sync.Mutex
	closed  bool
	ch      chan audio.Window
	dropped atomic.Uint64
}

// NewQueue creates a queue holding at most depth windows.
func NewQueue(depth int) *Queue {
	if depth < 1 {
		depth = 1
	}
	return &Queue{ch: make(chan audio.Window, depth)}
}

// Offer enqueues w without blocking. It reports false once the queue is
// closed; callers on the audio path ignore the result.
func (q *Queue) Offer(w audio.Window) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	for {
		select {
		case q.ch <- w:
			return true
		default:
		}

		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}
	}
}

// Handler adapts the queue to an audio.Handler.
func (q *Queue) Handler() audio.Handler {
	return func(w audio.Window) {
		_ = q.Offer(w)
	}
}

// Windows returns the receive side. It is closed by Close after the
// remaining windows are drained.
func (q *Queue) Windows() <-chan audio.Window {
	return q.ch
}

// Dropped returns how many windows were discarded to make room.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Len returns the number of queued windows.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops accepting windows. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
