package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

type Consumer struct {
	reader *kafka.Reader
	log    zerolog.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, log: log}
}

// Consume hands every message to handler until ctx ends. Handler errors are
// logged and the message is committed anyway.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("error reading message")
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			c.log.Error().Err(err).Str("key", string(msg.Key)).Msg("error handling message")
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
