package blackboard

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// DefaultMirrorQueue is the number of records a Mirror buffers.
const DefaultMirrorQueue = 64

// publishTimeout bounds a single mirrored write.
const publishTimeout = 2 * time.Second

// Publisher stores thought records. *Client implements it.
type Publisher interface {
	PublishThought(ctx context.Context, r *ThoughtRecord) error
}

// Mirror forwards committed thoughts to a Publisher from its own goroutine.
// Publish never blocks; when the queue is full the record is dropped.
type Mirror struct {
	pub     Publisher
	queue   chan *ThoughtRecord
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewMirror creates a mirror with a queue of size records.
// A size <= 0 selects DefaultMirrorQueue.
func NewMirror(pub Publisher, size int) *Mirror {
	if size <= 0 {
		size = DefaultMirrorQueue
	}
	return &Mirror{
		pub:   pub,
		queue: make(chan *ThoughtRecord, size),
	}
}

// Publish enqueues a thought. Safe to call while holding other locks.
func (m *Mirror) Publish(thinker, thought string) {
	select {
	case m.queue <- NewThoughtRecord(thinker, thought):
	default:
		if m.dropped.Add(1) == 1 {
			log.Printf("[Mirror] Queue full, dropping thoughts")
		}
	}
}

// Dropped returns how many records were discarded because the queue was full.
func (m *Mirror) Dropped() int64 {
	return m.dropped.Load()
}

// Failed returns how many records the publisher rejected.
func (m *Mirror) Failed() int64 {
	return m.failed.Load()
}

// Run drains the queue until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-m.queue:
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := m.pub.PublishThought(pubCtx, r); err != nil {
				m.failed.Add(1)
				log.Printf("[Mirror] Failed to mirror thought from %s: %v", r.Thinker, err)
			}
			cancel()
		}
	}
}
