// Package blackboard mirrors the cave's committed thoughts into Redis.
//
// # Overview
//
// The cave keeps its shared thought in memory. The blackboard is an optional
// mirror of it: every commit overwrites the latest thought and is published on
// a Pub/Sub channel, so that processes other than the server (for example
// `whirlpool watch`) can follow the chain.
//
// Redis is never the source of truth. The Mirror publishes asynchronously and
// drops records when Redis cannot keep up.
//
// # Usage Example
//
//	client, err := blackboard.NewClientFromURL("redis://localhost:6379", "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	mirror := blackboard.NewMirror(client, 0)
//	go mirror.Run(ctx)
//
//	mirror.Publish("WikipediaThinker", "Eiffel Tower")
//
// # Redis Schema
//
// Latest thought (hash): whirlpool:{instance_name}:thought
// Thought events (Pub/Sub): whirlpool:{instance_name}:thought_events
package blackboard
