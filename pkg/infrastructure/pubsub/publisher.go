package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/cloudevents/sdk-go/v2/event"
)

// PubSubAdapter publishes CloudEvents to Google Cloud Pub/Sub
type PubSubAdapter struct {
	Client *pubsub.Client
}

// PublishCloudEvent sends e as a structured-mode JSON message. The event type
// and id are copied into the message attributes so subscribers can filter.
func (a *PubSubAdapter) PublishCloudEvent(ctx context.Context, topicID string, e event.Event) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	topic := a.Client.Topic(topicID)
	res := topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"ce-id":     e.ID(),
			"ce-type":   e.Type(),
			"ce-source": e.Source(),
		},
	})
	id, err := res.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", topicID, err)
	}
	return id, nil
}

// LogPublisher is a mock publisher for local development
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) PublishCloudEvent(ctx context.Context, topicID string, e event.Event) (string, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "MOCK PUBLISH",
		"component", "log_publisher",
		"topic", topicID,
		"event_id", e.ID(),
		"event_type", e.Type(),
		"data", string(e.Data()),
	)
	return "mock-msg-id", nil
}
