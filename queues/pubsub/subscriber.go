package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"roster-bot/queues"

	gpubsub "cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
)

// Subscriber feeds RosterRequests from a Pub/Sub subscription into a handler.
type Subscriber struct {
	projectID        string
	subscriptionName string
	credsFile        string
	client           *gpubsub.Client
	sub              *gpubsub.Subscription
}

func NewSubscriber(projectID, subscriptionName, credsFile string) *Subscriber {
	return &Subscriber{projectID: projectID, subscriptionName: subscriptionName, credsFile: credsFile}
}

// Start blocks until ctx is cancelled. Malformed and invalid messages are
// acked and dropped; a handler error nacks for redelivery.
func (s *Subscriber) Start(ctx context.Context, handler func(context.Context, *queues.RosterRequest) error) error {
	if s.client == nil {
		client, err := newClient(ctx, s.projectID, s.credsFile, "subscriber")
		if err != nil {
			log.Error().Err(err).Str("projectID", s.projectID).Str("subscription", s.subscriptionName).Msg("failed to create pubsub client for subscriber")
			return err
		}
		s.client = client
		s.sub = client.Subscription(s.subscriptionName)
		log.Info().Str("subscription", s.subscriptionName).Msg("pubsub subscriber initialized")
	}

	return s.sub.Receive(ctx, func(ctx context.Context, m *gpubsub.Message) {
		log.Debug().Str("messageID", m.ID).Int("size", len(m.Data)).Msg("received pubsub message")
		recvAt := time.Now()
		var req queues.RosterRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			log.Error().Err(err).Str("messageID", m.ID).Msg("failed to unmarshal roster request; dropping")
			m.Ack()
			return
		}
		if req.RequestID == "" {
			req.RequestID = m.ID
		}
		if err := req.Validate(); err != nil {
			log.Error().Err(err).Str("requestId", req.RequestID).Msg("invalid request payload")
			// poison
			m.Ack()
			return
		}

		log.Info().Str("requestId", req.RequestID).Str("action", string(req.Action)).Str("participant", req.ParticipantID).Msg("handling roster request")
		if err := handler(ctx, &req); err != nil {
			log.Error().Err(err).Str("requestId", req.RequestID).Msg("handler failed; will retry")
			m.Nack()
			return
		}
		log.Debug().Str("requestId", req.RequestID).Dur("latency", time.Since(recvAt)).Msg("handler succeeded; acking message")
		m.Ack()
	})
}
