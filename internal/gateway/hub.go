// Package gateway relays the cave's latest thought to connected subscribers.
//
// Each attached sink runs its own delivery loop: it polls the snapshot on a
// fixed interval and sends only thoughts that differ from the last one it
// delivered to that sink. The empty thought is a thought like any other;
// only the state before the first commit is never sent. A failing sink is removed without affecting the
// others or the cave.
package gateway

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dyluth/whirlpool/internal/cave"
)

// DefaultPollInterval is how often a sink's loop reads the snapshot.
const DefaultPollInterval = 500 * time.Millisecond

// Snapshotter exposes the latest committed event. *cave.Cave implements it.
type Snapshotter interface {
	Snapshot() cave.Event
}

// Sink is one subscriber's outbound channel.
type Sink interface {
	Send(msg []byte) error
	Close() error
}

// Hub tracks connected sinks and drives their delivery loops.
type Hub struct {
	src      Snapshotter
	format   Format
	interval time.Duration

	mu    sync.RWMutex
	sinks map[Sink]struct{}
}

// NewHub creates a hub over src. A zero interval selects DefaultPollInterval
// and an empty format selects FormatText.
func NewHub(src Snapshotter, format Format, interval time.Duration) (*Hub, error) {
	if src == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if format == "" {
		format = FormatText
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Hub{
		src:      src,
		format:   format,
		interval: interval,
		sinks:    make(map[Sink]struct{}),
	}, nil
}

// Count returns the number of connected sinks.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}

// Attach registers sink and delivers changed thoughts to it until ctx is
// cancelled or a send fails. The sink is removed and closed on return.
// A nil return means ctx ended; otherwise the send error is returned.
func (h *Hub) Attach(ctx context.Context, sink Sink) error {
	h.add(sink)
	defer h.remove(sink)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var (
		last      string
		delivered bool
	)

	for {
		event := h.src.Snapshot()
		if !event.IsZero() && (!delivered || event.Thought != last) {
			msg, err := h.format.Encode(event)
			if err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			if err := sink.Send(msg); err != nil {
				log.Printf("[Gateway] Dropping subscriber: %v", err)
				return fmt.Errorf("delivery failed: %w", err)
			}
			last, delivered = event.Thought, true
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (h *Hub) add(sink Sink) {
	h.mu.Lock()
	h.sinks[sink] = struct{}{}
	n := len(h.sinks)
	h.mu.Unlock()

	log.Printf("[Gateway] Subscriber connected (%d connected)", n)
}

func (h *Hub) remove(sink Sink) {
	h.mu.Lock()
	delete(h.sinks, sink)
	n := len(h.sinks)
	h.mu.Unlock()

	if err := sink.Close(); err != nil {
		log.Printf("[Gateway] Failed to close subscriber: %v", err)
	}
	log.Printf("[Gateway] Subscriber disconnected (%d connected)", n)
}
