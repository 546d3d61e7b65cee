package blackboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingPublisher struct {
	mu      sync.Mutex
	records []*ThoughtRecord
	err     error
	gate    chan struct{}
}

func (p *recordingPublisher) PublishThought(ctx context.Context, r *ThoughtRecord) error {
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r)
	return p.err
}

func (p *recordingPublisher) thoughts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, r.Thought)
	}
	return out
}

func TestMirror_ForwardsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &recordingPublisher{}
	m := NewMirror(pub, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	m.Publish("A", "one")
	m.Publish("B", "two")
	m.Publish("C", "")

	require.Eventually(t, func() bool { return len(pub.thoughts()) == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"one", "two", ""}, pub.thoughts())

	cancel()
	<-done
}

func TestMirror_DropsWhenFull(t *testing.T) {
	m := NewMirror(&recordingPublisher{}, 2)

	m.Publish("A", "1")
	m.Publish("A", "2")
	m.Publish("A", "3")
	m.Publish("A", "4")

	assert.Equal(t, int64(2), m.Dropped())
}

func TestMirror_PublishDoesNotBlockOnSlowPublisher(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &recordingPublisher{gate: make(chan struct{})}
	m := NewMirror(pub, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	start := time.Now()
	for i := 0; i < 50; i++ {
		m.Publish("A", "x")
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Positive(t, m.Dropped())

	cancel()
	<-done
}

func TestMirror_CountsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &recordingPublisher{err: errors.New("redis down")}
	m := NewMirror(pub, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	m.Publish("A", "x")
	require.Eventually(t, func() bool { return m.Failed() == 1 }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestMirror_WithClient(t *testing.T) {
	client, _ := setupTestClient(t)
	m := NewMirror(client, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.Publish("OpenLibraryThinker", "Harry Potter")

	require.Eventually(t, func() bool {
		r, err := client.GetLatestThought(context.Background())
		return err == nil && r.Thought == "Harry Potter"
	}, 2*time.Second, 5*time.Millisecond)
}
