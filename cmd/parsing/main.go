package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"trinity/internal/bus"
	"trinity/internal/parsing"
	"trinity/internal/platform/config"
	"trinity/internal/platform/logger"
)

// The parsing worker serves the parsing.* topics, scraping the portal's
// JSON endpoints with the caller's session.
func main() {
	cfg := config.FromEnv()
	log := logger.New("parsing")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := bus.NewKafkaTransport(ctx, cfg.KafkaBrokers, log)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	bus.NewProvisioner(transport.Admin(), log).Ensure(ctx, parsing.Topics())

	responder := bus.NewResponder(transport, "parsing-service", log)
	parsing.NewWorker(parsing.NewClient(cfg.PortalBaseURL)).Register(responder)

	log.Info("parsing worker started", "topics", parsing.Topics(), "portal", cfg.PortalBaseURL)
	if err := responder.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
