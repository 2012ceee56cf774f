package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"trinity/internal/bus"
	"trinity/internal/management"
	"trinity/internal/platform/config"
	"trinity/internal/platform/logger"
	"trinity/internal/platform/redis"
)

// The management worker owns the login counter, admin sessions, and the
// academic term, all backed by redis.
func main() {
	cfg := config.FromEnv()
	log := logger.New("management")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	transport, err := bus.NewKafkaTransport(ctx, cfg.KafkaBrokers, log)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	provisioner := bus.NewProvisioner(transport.Admin(), log)
	provisioner.Ensure(ctx, management.Topics())
	provisioner.EnsureEvents(ctx, management.EventTopics())

	service := management.NewService(
		management.NewRedisStore(rdb.Client),
		cfg.AdminID,
		cfg.AdminPasswordHash,
		log,
	)

	responder := bus.NewResponder(transport, "management-service", log)
	management.NewWorker(service).Register(responder)

	log.Info("management worker started", "topics", responder.Topics())
	if err := responder.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
