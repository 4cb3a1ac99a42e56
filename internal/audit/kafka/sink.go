// Package kafka streams audit events to a Kafka-compatible broker.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/audit"
)

// DefaultTopic receives audit events unless the deployment overrides it.
const DefaultTopic = "audit.dossier"

const producerLinger = 50 * time.Millisecond

// Sink produces audit events to a Kafka topic, keyed by request ID so all
// events from one request land on the same partition in order.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to the seed brokers and returns a sink producing to topic.
// An empty topic falls back to DefaultTopic.
func New(brokers []string, topic string) (*Sink, error) {
	if topic == "" {
		topic = DefaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID("physician-dossier"),
		kgo.ProducerLinger(producerLinger),
	)
	if err != nil {
		return nil, fmt.Errorf("connect audit brokers: %w", err)
	}

	return &Sink{client: client, topic: topic}, nil
}

func (s *Sink) Name() string { return "kafka" }

// Write produces the batch synchronously so the caller sees real delivery
// outcomes, not enqueue acknowledgements.
func (s *Sink) Write(ctx context.Context, events []audit.Event) error {
	records := make([]*kgo.Record, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode audit event %s: %w", e.ID, err)
		}
		records = append(records, &kgo.Record{
			Topic: s.topic,
			Key:   []byte(e.RequestID),
			Value: value,
		})
	}

	if err := s.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit batch: %w", err)
	}
	return nil
}

// EnsureTopic creates the audit topic when it does not already exist.
// A single partition keeps per-request ordering trivial at audit volumes;
// replication follows the cluster default.
func (s *Sink) EnsureTopic(ctx context.Context) error {
	admin := kadm.NewClient(s.client)

	topics, err := admin.ListTopics(ctx, s.topic)
	if err != nil {
		return fmt.Errorf("list audit topics: %w", err)
	}
	if topics.Has(s.topic) {
		return nil
	}

	resp, err := admin.CreateTopics(ctx, 1, -1, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create audit topic %q: %w", s.topic, err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %q: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
