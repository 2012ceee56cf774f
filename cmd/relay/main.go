package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"trinity/internal/bus"
	"trinity/internal/platform/config"
	"trinity/internal/platform/logger"
	"trinity/internal/portal"
	"trinity/internal/relay"
)

// The relay worker consumes the user.* stage topics and talks to the portal.
// It holds no state, so any number of instances can run side by side.
func main() {
	cfg := config.FromEnv()
	log := logger.New("relay")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := bus.NewKafkaTransport(ctx, cfg.KafkaBrokers, log)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	bus.NewProvisioner(transport.Admin(), log).Ensure(ctx, relay.Topics())

	responder := bus.NewResponder(transport, "relay-service", log)
	relay.NewWorker(portal.NewClient(cfg.PortalBaseURL), log).Register(responder)

	log.Info("relay worker started", "topics", relay.Topics(), "portal", cfg.PortalBaseURL)
	if err := responder.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
