// Package cave owns the shared thought and runs every thinker against it.
package cave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dyluth/whirlpool/internal/thinker"
	"golang.org/x/sync/errgroup"
)

// DefaultSeed is the thought the chain starts from.
const DefaultSeed = "stake"

var (
	// ErrDuplicateThinker is returned by Register for a name already in use.
	ErrDuplicateThinker = errors.New("duplicate thinker")
	// ErrRunning is returned when registering while the run loop is active.
	ErrRunning = errors.New("cave is already running")
	// ErrNoThinkers is returned by Run when nothing is registered.
	ErrNoThinkers = errors.New("no thinkers registered")
)

// LockScope selects how much of a round runs under the cave lock.
type LockScope string

const (
	// LockScopeHold runs Think while holding the lock. Every lookup is
	// serialized into one global turn order.
	LockScopeHold LockScope = "hold"
	// LockScopeCommit runs Think outside the lock and commits only when no
	// other thinker committed since the round read the shared thought.
	LockScopeCommit LockScope = "commit"
)

// Validate checks the lock scope value.
func (s LockScope) Validate() error {
	switch s {
	case LockScopeHold, LockScopeCommit:
		return nil
	default:
		return fmt.Errorf("invalid lock scope: %q (must be 'hold' or 'commit')", string(s))
	}
}

// Event is one committed thought and the thinker that produced it.
type Event struct {
	Thinker string `json:"thinker"`
	Thought string `json:"thought"`
}

// IsZero reports whether no thinker has committed yet.
func (e Event) IsZero() bool {
	return e.Thinker == ""
}

// Options configure a Cave. Zero values select DefaultSeed, a [1s, 3s)
// delay and LockScopeHold.
type Options struct {
	InstanceName string
	Seed         string
	MinDelay     time.Duration
	MaxDelay     time.Duration
	LockScope    LockScope
	// Delay overrides the random pause between rounds.
	Delay func() time.Duration
}

// Cave holds the single shared thought. All reads and writes of the thought
// and the latest event happen under mu.
type Cave struct {
	opts Options

	mu       sync.Mutex
	thinkers []thinker.Thinker
	names    map[string]struct{}
	hooks    []func(Event)
	running  bool
	shared   string
	last     Event
	version  uint64
}

// New creates a cave with opts.
func New(opts Options) *Cave {
	if opts.Seed == "" {
		opts.Seed = DefaultSeed
	}
	if opts.MinDelay <= 0 {
		opts.MinDelay = time.Second
	}
	if opts.MaxDelay <= opts.MinDelay {
		opts.MaxDelay = opts.MinDelay + 2*time.Second
	}
	if opts.LockScope == "" {
		opts.LockScope = LockScopeHold
	}

	return &Cave{
		opts:   opts,
		names:  make(map[string]struct{}),
		shared: strings.TrimSpace(opts.Seed),
	}
}

// Register adds a thinker. It must be called before Run.
func (c *Cave) Register(t thinker.Thinker) error {
	if t == nil {
		return fmt.Errorf("thinker cannot be nil")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("thinker name cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrRunning
	}
	if _, exists := c.names[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateThinker, name)
	}

	c.names[name] = struct{}{}
	c.thinkers = append(c.thinkers, t)
	return nil
}

// OnCommit installs a hook called under the cave lock after every commit.
// Hooks must not block and must not call back into the cave.
func (c *Cave) OnCommit(hook func(Event)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrRunning
	}
	c.hooks = append(c.hooks, hook)
	return nil
}

// Names returns the registered thinker names in registration order.
func (c *Cave) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.thinkers))
	for _, t := range c.thinkers {
		names = append(names, t.Name())
	}
	return names
}

// Snapshot returns the latest event.
func (c *Cave) Snapshot() Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Thought returns the current shared thought.
func (c *Cave) Thought() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shared
}

// Run starts one loop per registered thinker and blocks until ctx is cancelled.
func (c *Cave) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrRunning
	}
	if len(c.thinkers) == 0 {
		c.mu.Unlock()
		return ErrNoThinkers
	}
	c.running = true
	thinkers := append([]thinker.Thinker(nil), c.thinkers...)
	seed := c.shared
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	log.Printf("[Cave] Contemplating '%s' with %d thinkers (lock scope: %s)", seed, len(thinkers), c.opts.LockScope)

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range thinkers {
		t := t
		g.Go(func() error {
			c.loop(gctx, t)
			return nil
		})
	}

	err := g.Wait()
	log.Printf("[Cave] Stopped")
	return err
}

// loop runs rounds for t until ctx is cancelled.
func (c *Cave) loop(ctx context.Context, t thinker.Thinker) {
	for {
		if ctx.Err() != nil {
			return
		}

		c.round(ctx, t)

		timer := time.NewTimer(c.delay())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// round runs one Think for t and commits the result. It reports whether the
// result was committed.
func (c *Cave) round(ctx context.Context, t thinker.Thinker) bool {
	if c.opts.LockScope == LockScopeCommit {
		return c.roundOutsideLock(ctx, t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := t.Think(ctx, c.shared)
	if ctx.Err() != nil {
		return false
	}
	c.commitLocked(t.Name(), next)
	return true
}

func (c *Cave) roundOutsideLock(ctx context.Context, t thinker.Thinker) bool {
	c.mu.Lock()
	previous, version := c.shared, c.version
	c.mu.Unlock()

	next := t.Think(ctx, previous)
	if ctx.Err() != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != version {
		c.logEvent("stale_discarded", map[string]interface{}{
			"thinker":  t.Name(),
			"thought":  next,
			"previous": previous,
		})
		return false
	}
	c.commitLocked(t.Name(), next)
	return true
}

// commitLocked records next as the shared thought. Caller holds mu.
func (c *Cave) commitLocked(name, next string) {
	next = strings.Join(strings.Fields(next), " ")
	previous := c.shared

	c.shared = next
	c.version++
	c.last = Event{Thinker: name, Thought: next}

	c.logEvent("thought_committed", map[string]interface{}{
		"thinker":  name,
		"thought":  next,
		"previous": previous,
		"version":  c.version,
	})

	for _, hook := range c.hooks {
		hook(c.last)
	}
}

// delay returns the pause before a thinker's next round.
func (c *Cave) delay() time.Duration {
	if c.opts.Delay != nil {
		return c.opts.Delay()
	}
	span := int64(c.opts.MaxDelay - c.opts.MinDelay)
	return c.opts.MinDelay + time.Duration(rand.Int63n(span))
}

// logEvent logs a structured event in JSON format.
func (c *Cave) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "cave"
	data["event_type"] = eventType
	if c.opts.InstanceName != "" {
		data["instance"] = c.opts.InstanceName
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Cave] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
