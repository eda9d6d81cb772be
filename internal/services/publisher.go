// internal/services/publisher.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/imi-ledger/internal/models"
)

const defaultPublishTimeout = 10 * time.Second

// FactPublisher forwards committed ledger facts to downstream consumers.
type FactPublisher interface {
	Publish(ctx context.Context, event models.LedgerEvent) error
}

// PubSubPublisher publishes facts to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

func NewPubSubPublisher(ctx context.Context, projectID, topic string) (*PubSubPublisher, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("pubsub project id is required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(fullTopicName(projectID, topic)),
	}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, event models.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode fact: %w", err)
	}

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_id":     strconv.FormatUint(event.ID, 10),
			"event_kind":   string(event.Kind),
			"subject_type": event.SubjectType,
			"subject_id":   strconv.FormatUint(event.SubjectID, 10),
			"hash":         event.Hash,
			"created_at":   event.CreatedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	if _, err := p.publisher.Publish(publishCtx, msg).Get(publishCtx); err != nil {
		return fmt.Errorf("failed to publish fact: %w", err)
	}
	return nil
}

func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

func fullTopicName(projectID, topic string) string {
	if strings.HasPrefix(topic, "projects/") {
		return topic
	}
	return fmt.Sprintf("projects/%s/topics/%s", projectID, topic)
}

// LogPublisher only logs facts. Used when Pub/Sub is not configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event models.LedgerEvent) error {
	logrus.WithFields(logrus.Fields{
		"event_id":     event.ID,
		"kind":         event.Kind,
		"subject_type": event.SubjectType,
		"subject_id":   event.SubjectID,
	}).Debug("Ledger fact committed")
	return nil
}
