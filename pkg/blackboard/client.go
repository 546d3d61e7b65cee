package blackboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis operations for the thought mirror.
// All keys and channels are namespaced with the instance name.
// The client is safe for concurrent use.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a blackboard client for the specified instance.
//
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// NewClientFromURL parses a redis:// URL and creates a client for instanceName.
func NewClientFromURL(redisURL, instanceName string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewClient(opts, instanceName)
}

// InstanceName returns the namespace this client writes under.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Used by /healthz.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// PublishThought replaces the latest thought with r and publishes it on
// whirlpool:{instance}:thought_events. Earlier thoughts are not kept.
func (c *Client) PublishThought(ctx context.Context, r *ThoughtRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid thought record: %w", err)
	}

	recordJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal thought record: %w", err)
	}

	if err := c.rdb.HSet(ctx, ThoughtKey(c.instanceName), ThoughtToHash(r)).Err(); err != nil {
		return fmt.Errorf("failed to write thought to Redis: %w", err)
	}

	if err := c.rdb.Publish(ctx, ThoughtEventsChannel(c.instanceName), recordJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish thought event: %w", err)
	}

	return nil
}

// GetLatestThought returns the most recently published thought.
// Returns (nil, redis.Nil) if nothing has been published.
func (c *Client) GetLatestThought(ctx context.Context) (*ThoughtRecord, error) {
	hashData, err := c.rdb.HGetAll(ctx, ThoughtKey(c.instanceName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read thought from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	r, err := HashToThought(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize thought: %w", err)
	}
	return r, nil
}

// Subscription is an active Pub/Sub subscription to thought events.
// Caller must call Close() when done.
type Subscription struct {
	events <-chan *ThoughtRecord
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of thought events.
// It is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *ThoughtRecord {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors.
// Malformed messages are reported here and skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeThoughtEvents subscribes to committed thoughts for this instance.
//
// The subscription is confirmed with Redis before returning, so no event
// published after this call is missed. Delivery is at-most-once.
func (c *Client) SubscribeThoughtEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, ThoughtEventsChannel(c.instanceName))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to thought events: %w", err)
	}

	eventsChan := make(chan *ThoughtRecord, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var r ThoughtRecord
				if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal thought event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &r:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound reports whether err is redis.Nil.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
