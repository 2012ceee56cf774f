package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	dErrors "trinity/pkg/domain-errors"
)

// HandlerFunc processes one request payload and returns the reply body.
// Handlers carry no state between invocations; everything they need arrives
// in the payload.
type HandlerFunc func(ctx context.Context, payload []byte) (any, error)

// Responder serves request topics. For each inbound record with a reply
// topic it runs the registered handler and publishes exactly one reply
// echoing the correlation id. Records without a reply topic are events: the
// handler runs, no reply is produced, and handler errors are only logged.
type Responder struct {
	transport Transport
	group     string
	logger    *slog.Logger

	mu       sync.Mutex
	handlers map[string]HandlerFunc
}

func NewResponder(transport Transport, group string, logger *slog.Logger) *Responder {
	return &Responder{
		transport: transport,
		group:     group,
		logger:    logger,
		handlers:  map[string]HandlerFunc{},
	}
}

// Handle registers fn for topic. All registrations must happen before Start.
func (r *Responder) Handle(topic string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[topic] = fn
}

// Topics returns the registered topics, sorted, for provisioning.
func (r *Responder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Start consumes all registered topics until ctx is cancelled.
func (r *Responder) Start(ctx context.Context) error {
	return r.transport.Subscribe(ctx, r.group, r.Topics(), r.serve)
}

func (r *Responder) serve(ctx context.Context, msg *Message) {
	r.mu.Lock()
	fn, ok := r.handlers[msg.Topic]
	r.mu.Unlock()
	if !ok {
		r.logger.WarnContext(ctx, "no handler for topic", "topic", msg.Topic)
		return
	}

	result, err := fn(ctx, msg.Value)

	replyTopic := msg.Header(HeaderReplyTopic)
	if replyTopic == "" {
		// Fire-and-forget event.
		if err != nil {
			r.logger.ErrorContext(ctx, "event handler failed",
				"topic", msg.Topic, "error", err)
		}
		return
	}

	reply := &Message{
		Topic:   replyTopic,
		Headers: map[string]string{HeaderCorrelationID: msg.Header(HeaderCorrelationID)},
	}
	if err != nil {
		r.logger.WarnContext(ctx, "handler failed",
			"topic", msg.Topic, "code", string(dErrors.CodeOf(err)), "error", err)
		reply.Headers[HeaderErrorCode] = string(dErrors.CodeOf(err))
		reply.Headers[HeaderErrorMessage] = dErrors.MessageOf(err)
	} else if result != nil {
		body, merr := json.Marshal(result)
		if merr != nil {
			r.logger.ErrorContext(ctx, "marshal reply failed",
				"topic", msg.Topic, "error", merr)
			reply.Headers[HeaderErrorCode] = string(dErrors.CodeInternal)
			reply.Headers[HeaderErrorMessage] = "internal error"
		} else {
			reply.Value = body
		}
	}

	if perr := r.transport.Publish(ctx, reply); perr != nil {
		r.logger.ErrorContext(ctx, "publish reply failed",
			"topic", replyTopic, "error", perr)
	}
}

// JSONHandler adapts a typed request handler to a HandlerFunc. Payloads that
// fail to decode are rejected as bad requests before the handler runs.
func JSONHandler[In any](fn func(ctx context.Context, in In) (any, error)) HandlerFunc {
	return func(ctx context.Context, payload []byte) (any, error) {
		var in In
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &in); err != nil {
				return nil, dErrors.Wrap(dErrors.CodeBadRequest, "malformed payload", err)
			}
		}
		return fn(ctx, in)
	}
}
