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
	"trinity/internal/searchlog"
)

// The search-log worker appends subject-search events to daily files. The
// feed is fire-and-forget, so the topic is provisioned without a reply twin.
func main() {
	cfg := config.FromEnv()
	log := logger.New("searchlog")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writer, err := searchlog.NewWriter(cfg.LogDir, log)
	if err != nil {
		log.Error("log directory unavailable", "error", err)
		os.Exit(1)
	}

	transport, err := bus.NewKafkaTransport(ctx, cfg.KafkaBrokers, log)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	bus.NewProvisioner(transport.Admin(), log).EnsureEvents(ctx, []string{searchlog.TopicSubjectSearch})

	responder := bus.NewResponder(transport, "logging-service", log)
	searchlog.NewWorker(writer, log).Register(responder)

	log.Info("search-log worker started", "dir", cfg.LogDir)
	if err := responder.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
