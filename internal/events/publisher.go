// Package events publishes site lifecycle notifications to Pub/Sub for
// downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/site"
)

// Event actions carried in message attributes.
const (
	ActionSiteCreated = "site_created"
	ActionSiteUpdated = "site_updated"
)

// PublisherConfig holds configuration for the event publisher.
type PublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// Publisher sends site lifecycle events to a Pub/Sub topic.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// NewPublisher creates a new event publisher.
func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// siteEvent is the wire payload for site notifications.
type siteEvent struct {
	Tenant    string     `json:"tenant"`
	Site      *site.Site `json:"site"`
	Timestamp time.Time  `json:"timestamp"`
}

// PublishSiteCreated notifies downstream consumers of a new site. The
// publish is confirmed before returning so callers can decide how to
// treat delivery failures.
func (p *Publisher) PublishSiteCreated(ctx context.Context, s *site.Site) error {
	return p.publish(ctx, ActionSiteCreated, s)
}

// PublishSiteUpdated notifies downstream consumers of a site change.
func (p *Publisher) PublishSiteUpdated(ctx context.Context, s *site.Site) error {
	return p.publish(ctx, ActionSiteUpdated, s)
}

func (p *Publisher) publish(ctx context.Context, action string, s *site.Site) error {
	payload, err := json.Marshal(siteEvent{
		Tenant:    s.Tenant,
		Site:      s,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", action, err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"action": action,
			"tenant": s.Tenant,
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing %s event: %w", action, err)
	}

	p.logger.Debug().
		Str("message_id", id).
		Str("action", action).
		Str("site_id", s.ID).
		Msg("published site event")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
