// Package kafka provides the egress stage that publishes decoded
// frames as JSON messages to a kafka topic.
package kafka

import (
	"context"

	"github.com/openheavy/j1939tel/connector"
	"github.com/openheavy/j1939tel/internal/message"
	"github.com/openheavy/j1939tel/internal/stage"
	"github.com/openheavy/j1939tel/j1939"
	"github.com/segmentio/kafka-go"
)

type msgIn interface {
	message.Message

	GetDecodedMessages() []*j1939.DecodedMessage
}

type Stage[T msgIn] struct {
	*stage.Egress[T, worker[T], *workerArgs, *worker[T]]

	cfg *Config

	writer *kafka.Writer
}

func NewStage[T msgIn](inputConnector connector.Connector[T], cfg *Config) *Stage[T] {
	return &Stage[T]{
		Egress: stage.NewEgress[T, worker[T], *workerArgs]("kafka", inputConnector, cfg.PoolConfig),

		cfg: cfg,
	}
}

func (s *Stage[T]) Init(ctx context.Context) error {
	s.writer = &kafka.Writer{
		Addr:                   kafka.TCP(s.cfg.Brokers...),
		Topic:                  s.cfg.Topic,
		Balancer:               s.cfg.Balancer,
		MaxAttempts:            s.cfg.MaxAttempts,
		BatchSize:              s.cfg.BatchSize,
		BatchTimeout:           s.cfg.BatchTimeout,
		WriteTimeout:           s.cfg.WriteTimeout,
		RequiredAcks:           s.cfg.RequiredAcks,
		Async:                  s.cfg.Async,
		Compression:            s.cfg.Compression,
		AllowAutoTopicCreation: s.cfg.AllowAutoTopicCreation,
	}

	return s.Egress.Init(ctx, &workerArgs{writer: s.writer})
}

func (s *Stage[T]) Stop() {
	s.Egress.Close()

	if err := s.writer.Close(); err != nil {
		s.Tel.LogError("failed to close writer", err)
	}
}
