package bus

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Transport and TopicAdmin. It backs unit and
// scenario tests, mirroring the broker's delivery model: publish fans out to
// one subscriber per consumer group, asynchronously.
type MemoryBroker struct {
	mu      sync.Mutex
	subs    map[string][]*memorySub
	topics  map[string]struct{}
	pubErrs map[string]error
	wg      sync.WaitGroup
}

type memorySub struct {
	group string
	ctx   context.Context
	fn    func(context.Context, *Message)
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs:    map[string][]*memorySub{},
		topics:  map[string]struct{}{},
		pubErrs: map[string]error{},
	}
}

// FailPublish makes publishes to topic return err, simulating a broker that
// accepts nothing on that channel. Pass nil to clear.
func (b *MemoryBroker) FailPublish(topic string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.pubErrs, topic)
		return
	}
	b.pubErrs[topic] = err
}

func (b *MemoryBroker) Publish(ctx context.Context, msg *Message) error {
	b.mu.Lock()
	if err := b.pubErrs[msg.Topic]; err != nil {
		b.mu.Unlock()
		return err
	}

	// One delivery per consumer group, like the real broker.
	seen := map[string]bool{}
	var targets []*memorySub
	for _, s := range b.subs[msg.Topic] {
		if s.ctx.Err() != nil || seen[s.group] {
			continue
		}
		seen[s.group] = true
		targets = append(targets, s)
	}
	b.wg.Add(len(targets))
	b.mu.Unlock()

	for _, s := range targets {
		go func(s *memorySub) {
			defer b.wg.Done()
			s.fn(s.ctx, &Message{Topic: msg.Topic, Value: msg.Value, Headers: cloneHeaders(msg.Headers)})
		}(s)
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, group string, topics []string, fn func(context.Context, *Message)) error {
	b.mu.Lock()
	for _, t := range topics {
		b.subs[t] = append(b.subs[t], &memorySub{group: group, ctx: ctx, fn: fn})
	}
	b.mu.Unlock()

	<-ctx.Done()
	return ctx.Err()
}

// Subscribers reports how many subscriptions exist for topic. Tests use it
// to wait for consumers started on goroutines to finish registering.
func (b *MemoryBroker) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.subs[topic] {
		if s.ctx.Err() == nil {
			n++
		}
	}
	return n
}

func (b *MemoryBroker) CreateTopic(_ context.Context, topic string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.topics[topic]; ok {
		return false, nil
	}
	b.topics[topic] = struct{}{}
	return true, nil
}

// Close waits for in-flight deliveries to drain.
func (b *MemoryBroker) Close() error {
	b.wg.Wait()
	return nil
}

func cloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
