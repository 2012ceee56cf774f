//go:build integration

package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "trinity/pkg/domain-errors"
	"trinity/pkg/testutil/containers"
)

type KafkaTransportSuite struct {
	suite.Suite
	transport *KafkaTransport
	cancel    context.CancelFunc
}

func TestKafkaTransportSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaTransportSuite))
}

func (s *KafkaTransportSuite) SetupSuite() {
	redpanda := containers.NewRedpandaContainer(s.T())

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	transport, err := NewKafkaTransport(ctx, redpanda.Brokers, testLogger())
	s.Require().NoError(err)
	s.transport = transport
}

func (s *KafkaTransportSuite) TearDownSuite() {
	s.cancel()
	_ = s.transport.Close()
}

func (s *KafkaTransportSuite) TestProvisionerIdempotent() {
	ctx := context.Background()
	provisioner := NewProvisioner(s.transport.Admin(), testLogger())

	outcomes := provisioner.Ensure(ctx, []string{"it.provision"})
	for _, o := range outcomes {
		s.Equal(OutcomeCreated, o.Status, o.Topic)
	}

	outcomes = provisioner.Ensure(ctx, []string{"it.provision"})
	for _, o := range outcomes {
		s.Equal(OutcomeAlreadyExisted, o.Status, o.Topic)
	}
}

func (s *KafkaTransportSuite) TestCallRoundTrip() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewProvisioner(s.transport.Admin(), testLogger()).Ensure(ctx, []string{"it.echo"})

	responder := NewResponder(s.transport, "it-worker", testLogger())
	responder.Handle("it.echo", JSONHandler(func(_ context.Context, in echoRequest) (any, error) {
		if in.N < 0 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "negative")
		}
		return echoReply{N: in.N}, nil
	}))
	go func() { _ = responder.Start(ctx) }()

	requester := NewRequester(s.transport, "it-caller", []string{"it.echo"}, testLogger())
	go func() { _ = requester.Start(ctx) }()

	// Group joins take a moment on a fresh broker; generous timeouts absorb
	// the initial rebalance.
	out, err := Call[echoReply](ctx, requester, "it.echo", echoRequest{N: 41}, 30*time.Second)
	s.Require().NoError(err)
	s.Equal(41, out.N)

	_, err = Call[echoReply](ctx, requester, "it.echo", echoRequest{N: -1}, 30*time.Second)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeBadRequest), "handler error code survives the broker")
}
