package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaTransport is the production Transport on franz-go. Publishing shares
// one client; every Subscribe gets its own consumer client so group
// membership and topic sets stay independent.
type KafkaTransport struct {
	brokers []string
	produce *kgo.Client
	logger  *slog.Logger
}

// NewKafkaTransport connects the shared producer client and verifies broker
// reachability.
func NewKafkaTransport(ctx context.Context, brokers []string, logger *slog.Logger) (*KafkaTransport, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &KafkaTransport{brokers: brokers, produce: client, logger: logger}, nil
}

func (t *KafkaTransport) Publish(ctx context.Context, msg *Message) error {
	rec := &kgo.Record{Topic: msg.Topic, Value: msg.Value}
	for k, v := range msg.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	if err := t.produce.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}
	return nil
}

func (t *KafkaTransport) Subscribe(ctx context.Context, group string, topics []string, fn func(context.Context, *Message)) error {
	if len(topics) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(t.brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
	)
	if err != nil {
		return fmt.Errorf("kafka consumer for %s: %w", group, err)
	}
	defer consumer.Close()

	for {
		fetches := consumer.PollFetches(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if fetches.IsClientClosed() {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			t.logger.ErrorContext(ctx, "fetch error",
				"topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(rec *kgo.Record) {
			msg := &Message{Topic: rec.Topic, Value: rec.Value}
			if len(rec.Headers) > 0 {
				msg.Headers = make(map[string]string, len(rec.Headers))
				for _, h := range rec.Headers {
					msg.Headers[h.Key] = string(h.Value)
				}
			}
			// Each record is served on its own goroutine; handlers block on
			// portal and store I/O and independent calls must not queue
			// behind each other.
			go fn(ctx, msg)
		})
	}
}

func (t *KafkaTransport) Close() error {
	t.produce.Close()
	return nil
}

// KafkaAdmin implements TopicAdmin on kadm.
type KafkaAdmin struct {
	adm *kadm.Client
}

// Admin exposes topic administration over the transport's shared client.
func (t *KafkaTransport) Admin() *KafkaAdmin {
	return &KafkaAdmin{adm: kadm.NewClient(t.produce)}
}

// CreateTopic creates topic with a single partition, reporting an existing
// topic as (false, nil).
func (a *KafkaAdmin) CreateTopic(ctx context.Context, topic string) (bool, error) {
	resp, err := a.adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		if errors.Is(err, kerr.TopicAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	if resp.Err != nil {
		if errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return false, nil
		}
		return false, resp.Err
	}
	return true, nil
}
