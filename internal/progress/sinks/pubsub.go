package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/razor303Jc/Job-search-sub002/internal/progress"
)

// PubSubSink publishes progress events as JSON messages on a Pub/Sub topic,
// letting downstream consumers (dashboards, alerting) follow runs live.
type PubSubSink struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubSink opens a client for the project and binds the topic. The topic
// must already exist.
func NewPubSubSink(ctx context.Context, projectID, topicID string) (*PubSubSink, error) {
	if projectID == "" || topicID == "" {
		return nil, fmt.Errorf("pubsub project and topic are required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &PubSubSink{client: client, topic: client.Topic(topicID)}, nil
}

// Consume marshals the event and publishes it, waiting for server assignment
// so ordering within a run is preserved.
func (s *PubSubSink) Consume(ctx context.Context, evt progress.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	result := s.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"run_id": evt.RunID,
			"stage":  string(evt.Stage),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close flushes pending publishes and releases the client.
func (s *PubSubSink) Close(context.Context) error {
	s.topic.Stop()
	return s.client.Close()
}
