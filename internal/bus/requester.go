package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "trinity/pkg/domain-errors"
)

var (
	callsInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trinity_bus_calls_inflight",
		Help: "Correlated calls currently awaiting a reply",
	})
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trinity_bus_calls_total",
		Help: "Correlated calls by topic and outcome",
	}, []string{"topic", "outcome"})
	callDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trinity_bus_call_duration_ms",
		Help:    "Correlated call latency in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"topic"})
	lateReplies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trinity_bus_late_replies_total",
		Help: "Replies that arrived after their call timed out and were dropped",
	})
)

// Requester is the request/reply client. Each Call publishes one record with
// a fresh correlation id and blocks until the matching reply arrives on the
// topic's reply twin, or until the timeout. Reply topics are subscribed once
// in Start, never per call.
type Requester struct {
	transport Transport
	group     string
	logger    *slog.Logger
	tracer    trace.Tracer

	mu      sync.Mutex
	pending map[string]chan *Message

	replyTopics []string
}

// NewRequester builds a requester that will route replies for the given
// request topics. The group must be unique per process so every instance
// sees every reply and can match its own correlation ids.
func NewRequester(transport Transport, group string, topics []string, logger *slog.Logger) *Requester {
	replies := make([]string, 0, len(topics))
	for _, t := range topics {
		replies = append(replies, ReplyTopic(t))
	}
	return &Requester{
		transport:   transport,
		group:       group,
		logger:      logger,
		tracer:      otel.Tracer("trinity/bus"),
		pending:     map[string]chan *Message{},
		replyTopics: replies,
	}
}

// Start begins consuming reply topics. It blocks until ctx is cancelled and
// is intended to run in its own goroutine (or errgroup).
func (r *Requester) Start(ctx context.Context) error {
	return r.transport.Subscribe(ctx, r.group, r.replyTopics, r.dispatch)
}

// dispatch routes one reply to the pending resolver matching its correlation
// id. Exactly one resolver fires per reply; a reply whose id has no resolver
// (late, duplicate, or another instance's) is dropped without error.
func (r *Requester) dispatch(ctx context.Context, msg *Message) {
	id := msg.Header(HeaderCorrelationID)
	if id == "" {
		return
	}

	r.mu.Lock()
	ch, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()

	if !ok {
		lateReplies.Inc()
		r.logger.DebugContext(ctx, "dropping unmatched reply",
			"topic", msg.Topic, "correlation_id", id)
		return
	}
	ch <- msg
}

// Call publishes payload on topic and waits for the correlated reply. The
// reply payload is returned raw; handler-side failures come back as coded
// domain errors. On timeout the resolver is removed, so a later reply for
// the same id is discarded: at-most-once delivery to the caller even if the
// broker delivers the reply more than once.
func (r *Requester) Call(ctx context.Context, topic string, payload any, timeout time.Duration) (json.RawMessage, error) {
	ctx, span := r.tracer.Start(ctx, "bus.call",
		trace.WithAttributes(attribute.String("messaging.destination", topic)))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request for %s: %w", topic, err)
	}

	id := uuid.NewString()
	span.SetAttributes(attribute.String("messaging.correlation_id", id))
	ch := make(chan *Message, 1)

	r.mu.Lock()
	r.pending[id] = ch
	r.mu.Unlock()
	callsInflight.Inc()

	start := time.Now()
	defer func() {
		callsInflight.Dec()
		callDurationMs.WithLabelValues(topic).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	remove := func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}

	err = r.transport.Publish(ctx, &Message{
		Topic: topic,
		Value: body,
		Headers: map[string]string{
			HeaderCorrelationID: id,
			HeaderReplyTopic:    ReplyTopic(topic),
		},
	})
	if err != nil {
		remove()
		callsTotal.WithLabelValues(topic, "broker_error").Inc()
		span.SetStatus(codes.Error, "publish failed")
		return nil, dErrors.Wrap(dErrors.CodeBrokerUnavailable, "message broker unavailable", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		if code := reply.Header(HeaderErrorCode); code != "" {
			callsTotal.WithLabelValues(topic, "handler_error").Inc()
			span.SetStatus(codes.Error, code)
			return nil, dErrors.FromCode(code, reply.Header(HeaderErrorMessage))
		}
		callsTotal.WithLabelValues(topic, "ok").Inc()
		return reply.Value, nil
	case <-timer.C:
		remove()
		callsTotal.WithLabelValues(topic, "timeout").Inc()
		span.SetStatus(codes.Error, "timeout")
		return nil, dErrors.New(dErrors.CodeTimeout, fmt.Sprintf("no reply from %s within %s", topic, timeout))
	case <-ctx.Done():
		remove()
		callsTotal.WithLabelValues(topic, "cancelled").Inc()
		span.SetStatus(codes.Error, "cancelled")
		return nil, ctx.Err()
	}
}

// Emit publishes payload on topic with no correlation and no reply expected.
func (r *Requester) Emit(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", topic, err)
	}
	if err := r.transport.Publish(ctx, &Message{Topic: topic, Value: body}); err != nil {
		return dErrors.Wrap(dErrors.CodeBrokerUnavailable, "message broker unavailable", err)
	}
	return nil
}

// Call is the typed wrapper around Requester.Call for JSON reply payloads.
func Call[T any](ctx context.Context, r *Requester, topic string, payload any, timeout time.Duration) (*T, error) {
	raw, err := r.Call(ctx, topic, payload, timeout)
	if err != nil {
		return nil, err
	}
	var out T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("unmarshal reply from %s: %w", topic, err)
		}
	}
	return &out, nil
}
