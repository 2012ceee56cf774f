package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"trinity/internal/board"
	"trinity/internal/bus"
	"trinity/internal/platform/config"
	"trinity/internal/platform/logger"
)

// The board worker serves the community posts over the board.* topics,
// backed by postgres.
func main() {
	cfg := config.FromEnv()
	log := logger.New("board")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("postgres ping failed", "error", err)
		os.Exit(1)
	}

	store := board.NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	transport, err := bus.NewKafkaTransport(ctx, cfg.KafkaBrokers, log)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	bus.NewProvisioner(transport.Admin(), log).Ensure(ctx, board.Topics())

	responder := bus.NewResponder(transport, "board-service", log)
	board.NewWorker(board.NewService(store, log)).Register(responder)

	log.Info("board worker started", "topics", board.Topics())
	if err := responder.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
