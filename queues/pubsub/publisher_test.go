package pubsub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"roster-bot/queues"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newTestClient(t *testing.T) (*pstest.Server, *pubsub.Client) {
	t.Helper()
	// in-memory Pub/Sub server
	srv := pstest.NewServer()
	t.Cleanup(func() { srv.Close() })

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial error: %#v", err)
	}
	t.Cleanup(func() { conn.Close() })

	client, err := pubsub.NewClient(context.Background(), "test-project", option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("client error: %#v", err)
	}
	t.Cleanup(func() { client.Close() })
	return srv, client
}

type args struct {
	ev *queues.RosterChanged
}

type test struct {
	name    string
	setup   func() *Publisher
	args    args
	wantErr bool
}

func TestPublisher_PublishRosterChanged(t *testing.T) {
	if testing.Short() {
		t.Skip("short")
	}
	srv, client := newTestClient(t)
	ctx := context.Background()

	tests := []test{
		{
			name: "success",
			setup: func() *Publisher {
				topic, err := client.CreateTopic(ctx, "roster-events")
				if err != nil {
					t.Fatalf("create topic: %#v", err)
				}
				return &Publisher{projectID: "test-project", eventTopic: "roster-events", client: client, topic: topic}
			},
			args:    args{ev: &queues.RosterChanged{EnvelopeVersion: queues.EnvelopeVersion, Type: queues.TypeRosterChanged, EventID: "e1", Action: queues.ActionClaim, Outcome: "assigned"}},
			wantErr: false,
		},
		{
			name: "missing topic error",
			setup: func() *Publisher {
				topic := client.Topic("missing-topic")
				return &Publisher{projectID: "test-project", eventTopic: "missing-topic", client: client, topic: topic}
			},
			args:    args{ev: &queues.RosterChanged{EnvelopeVersion: queues.EnvelopeVersion, Type: queues.TypeRosterChanged, EventID: "e2", Outcome: "slot_taken", ErrorMessage: strPtr("taken")}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.setup()
			err := p.PublishRosterChanged(ctx, tt.args.ev)
			gotErr := (err != nil)
			if gotErr != tt.wantErr {
				t.Errorf("PublishRosterChanged() error mismatch\ngotErr: %#v\nwantErr: %#v\nerr: %#v", gotErr, tt.wantErr, err)
			}
		})
	}

	msgs := srv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("server messages = %d, want 1", len(msgs))
	}
	if got := msgs[0].Attributes["outcome"]; got != "assigned" {
		t.Errorf("outcome attribute = %q, want assigned", got)
	}
	var ev queues.RosterChanged
	if err := json.Unmarshal(msgs[0].Data, &ev); err != nil || ev.EventID != "e1" {
		t.Errorf("payload = %s (err %v)", msgs[0].Data, err)
	}
}

func TestSubscriber_Start(t *testing.T) {
	if testing.Short() {
		t.Skip("short")
	}
	_, client := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	topic, err := client.CreateTopic(ctx, "roster-requests")
	if err != nil {
		t.Fatalf("create topic: %#v", err)
	}
	sub, err := client.CreateSubscription(ctx, "roster-bot", pubsub.SubscriptionConfig{Topic: topic})
	if err != nil {
		t.Fatalf("create subscription: %#v", err)
	}

	payloads := [][]byte{
		[]byte("{not json"),
		[]byte(`{"requestId":"bad","action":"claim","participantId":"p1"}`),
		[]byte(`{"requestId":"good","action":"claim","participantId":"p1","slot":"tank"}`),
	}
	for _, b := range payloads {
		if _, err := topic.Publish(ctx, &pubsub.Message{Data: b}).Get(ctx); err != nil {
			t.Fatalf("publish: %#v", err)
		}
	}

	var (
		mu  sync.Mutex
		got []*queues.RosterRequest
	)
	s := &Subscriber{projectID: "test-project", subscriptionName: "roster-bot", client: client, sub: sub}
	err = s.Start(ctx, func(_ context.Context, req *queues.RosterRequest) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, req)
		cancel()
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %#v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("handler calls = %d, want 1", len(got))
	}
	if got[0].RequestID != "good" || got[0].Slot != "tank" {
		t.Errorf("handler got %#v", got[0])
	}
}

func strPtr(s string) *string { return &s }
