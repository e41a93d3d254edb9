package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Picces04/ToyStore-Client/internal/config"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kafka"
	"github.com/Picces04/ToyStore-Client/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, os.Stdout)
	if err != nil {
		return err
	}
	if len(cfg.Broker.Brokers) == 0 {
		return fmt.Errorf("broker.brokers: required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Broker.Brokers, cfg.Broker.Topic, cfg.Broker.Group, log)
	defer consumer.Close()

	log.Info().
		Strs("brokers", cfg.Broker.Brokers).
		Str("topic", cfg.Broker.Topic).
		Str("group", cfg.Broker.Group).
		Msg("consuming storefront activity")

	err = consumer.Consume(ctx, handleActivity(log))
	if ctx.Err() != nil {
		log.Info().Msg("shutting down")
		return nil
	}
	return err
}

// handleActivity logs each activity. Undecodable messages are logged and
// skipped so one bad record does not stall the group.
func handleActivity(log zerolog.Logger) kafka.MessageHandler {
	return func(_ context.Context, key, value []byte) error {
		var a kafka.Activity
		if err := json.Unmarshal(value, &a); err != nil {
			log.Warn().Err(err).Bytes("key", key).Msg("skipping malformed activity")
			return nil
		}
		log.Info().
			Str("id", a.ID).
			Str("kind", a.Kind).
			Str("type", a.Type).
			Str("visitor", a.VisitorID).
			Time("occurred_at", a.OccurredAt).
			Interface("payload", a.Payload).
			Msg("activity")
		return nil
	}
}
