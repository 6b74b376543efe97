package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"roster-bot/queues"

	gpubsub "cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
)

// Publisher mirrors RosterChanged events onto a Pub/Sub topic.
type Publisher struct {
	projectID  string
	eventTopic string
	credsFile  string

	mu     sync.Mutex
	client *gpubsub.Client
	topic  *gpubsub.Topic
}

func NewPublisher(projectID, eventTopic, credsFile string) *Publisher {
	return &Publisher{projectID: projectID, eventTopic: eventTopic, credsFile: credsFile}
}

func (p *Publisher) init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return nil
	}
	client, err := newClient(ctx, p.projectID, p.credsFile, "publisher")
	if err != nil {
		log.Error().Err(err).Str("projectID", p.projectID).Str("topic", p.eventTopic).Msg("failed to create pubsub client for publisher")
		return err
	}
	p.client = client
	p.topic = client.Topic(p.eventTopic)
	log.Info().Str("topic", p.eventTopic).Msg("pubsub publisher initialized")
	return nil
}

func (p *Publisher) PublishRosterChanged(ctx context.Context, ev *queues.RosterChanged) error {
	if err := p.init(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("eventId", ev.EventID).Msg("failed to marshal roster event")
		return err
	}
	msg := &gpubsub.Message{
		Data: b,
		Attributes: map[string]string{
			"type":    ev.Type,
			"action":  string(ev.Action),
			"outcome": ev.Outcome,
		},
	}
	// wait for the server ack
	id, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		log.Error().Err(err).Str("eventId", ev.EventID).Msg("failed to publish roster event")
		return err
	}
	log.Debug().Str("messageID", id).Str("eventId", ev.EventID).Str("outcome", ev.Outcome).Msg("published roster event")
	return nil
}

// Close flushes pending messages and releases the client.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	p.topic.Stop()
	err := p.client.Close()
	p.client, p.topic = nil, nil
	return err
}
