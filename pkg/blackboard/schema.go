package blackboard

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so several
// whirlpool caves can share one Redis server.
//
// Key pattern: whirlpool:{instance_name}:{entity}
// Channel pattern: whirlpool:{instance_name}:{event_type}_events

// ThoughtKey returns the Redis key of the latest-thought hash.
// Pattern: whirlpool:{instance_name}:thought
func ThoughtKey(instanceName string) string {
	return fmt.Sprintf("whirlpool:%s:thought", instanceName)
}

// ThoughtEventsChannel returns the Pub/Sub channel of committed thoughts.
// Pattern: whirlpool:{instance_name}:thought_events
func ThoughtEventsChannel(instanceName string) string {
	return fmt.Sprintf("whirlpool:%s:thought_events", instanceName)
}
