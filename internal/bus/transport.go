package bus

import "context"

// Transport abstracts the broker. The production implementation is Kafka;
// tests run against the in-process memory transport.
type Transport interface {
	// Publish delivers one message. It returns once the broker has accepted
	// the record.
	Publish(ctx context.Context, msg *Message) error

	// Subscribe consumes the given topics under a consumer group, invoking fn
	// for every record until ctx is cancelled. Independent messages may be
	// handled concurrently; fn must be safe for that.
	Subscribe(ctx context.Context, group string, topics []string, fn func(context.Context, *Message)) error

	Close() error
}

// TopicAdmin creates topics. Create-if-absent: an existing topic is a normal
// steady-state outcome, not an error.
type TopicAdmin interface {
	CreateTopic(ctx context.Context, topic string) (created bool, err error)
}
