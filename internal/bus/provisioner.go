package bus

import (
	"context"
	"log/slog"
)

// OutcomeStatus classifies the result of ensuring one topic.
type OutcomeStatus string

const (
	OutcomeCreated        OutcomeStatus = "created"
	OutcomeAlreadyExisted OutcomeStatus = "already-existed"
	OutcomeFailed         OutcomeStatus = "failed"
)

// Outcome is the per-topic result of a provisioning pass.
type Outcome struct {
	Topic  string
	Status OutcomeStatus
	Err    error
}

// Provisioner ensures the topics a service needs exist before it starts
// consuming or producing. Safe to run concurrently from multiple instances
// at startup; whichever instance wins the create, the rest see
// already-existed.
type Provisioner struct {
	admin  TopicAdmin
	logger *slog.Logger
}

func NewProvisioner(admin TopicAdmin, logger *slog.Logger) *Provisioner {
	return &Provisioner{admin: admin, logger: logger}
}

// Ensure creates each topic and its paired reply topic. A failed create is
// logged and reported in the outcome but never aborts the pass: the caller
// decides whether to retry.
func (p *Provisioner) Ensure(ctx context.Context, topics []string) []Outcome {
	all := make([]string, 0, len(topics)*2)
	for _, t := range topics {
		all = append(all, t, ReplyTopic(t))
	}
	return p.ensure(ctx, all)
}

// EnsureEvents creates topics without reply twins, for fire-and-forget
// channels that never carry a correlated response.
func (p *Provisioner) EnsureEvents(ctx context.Context, topics []string) []Outcome {
	return p.ensure(ctx, topics)
}

func (p *Provisioner) ensure(ctx context.Context, topics []string) []Outcome {
	outcomes := make([]Outcome, 0, len(topics))
	for _, topic := range topics {
		created, err := p.admin.CreateTopic(ctx, topic)
		switch {
		case err != nil:
			p.logger.WarnContext(ctx, "topic create failed", "topic", topic, "error", err)
			outcomes = append(outcomes, Outcome{Topic: topic, Status: OutcomeFailed, Err: err})
		case created:
			p.logger.InfoContext(ctx, "topic created", "topic", topic)
			outcomes = append(outcomes, Outcome{Topic: topic, Status: OutcomeCreated})
		default:
			outcomes = append(outcomes, Outcome{Topic: topic, Status: OutcomeAlreadyExisted})
		}
	}
	return outcomes
}
