package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"trinity/internal/board"
	"trinity/internal/bus"
	"trinity/internal/gateway"
	jwttoken "trinity/internal/jwt_token"
	"trinity/internal/management"
	"trinity/internal/parsing"
	"trinity/internal/platform/config"
	"trinity/internal/platform/httpserver"
	"trinity/internal/platform/logger"
	"trinity/internal/platform/metrics"
	"trinity/internal/relay"
	"trinity/internal/searchlog"
)

// The gateway is the only HTTP-facing binary. It provisions every topic it
// will call, runs the correlation router, and serves the public API.
func main() {
	cfg := config.FromEnv()
	log := logger.New("gateway")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := bus.NewKafkaTransport(ctx, cfg.KafkaBrokers, log)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	var callTopics []string
	callTopics = append(callTopics, relay.Topics()...)
	callTopics = append(callTopics, management.Topics()...)
	callTopics = append(callTopics, parsing.Topics()...)
	callTopics = append(callTopics, board.Topics()...)

	provisioner := bus.NewProvisioner(transport.Admin(), log)
	provisioner.Ensure(ctx, callTopics)
	provisioner.EnsureEvents(ctx, append(management.EventTopics(), searchlog.TopicSubjectSearch))

	// The requester group carries a per-process suffix. Reply topics have a
	// single partition, so replicas sharing one group would starve each other
	// of replies.
	requester := bus.NewRequester(transport, cfg.KafkaGroupID+"-gateway-"+uuid.NewString(), callTopics, log)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "trinity", "trinity-clients")
	m := metrics.New()
	handler := gateway.New(requester, tokens, m, log, cfg.CallTimeout)
	router := gateway.NewRouter(handler, jwttoken.NewAdapter(tokens), m, log)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := requester.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("gateway listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
	log.Info("gateway shut down cleanly")
}
