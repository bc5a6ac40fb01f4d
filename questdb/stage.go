// Package questdb provides the egress stage that flattens decoded
// frames into QuestDB rows.
package questdb

import (
	"context"
	"time"

	"github.com/openheavy/j1939tel/connector"
	"github.com/openheavy/j1939tel/internal/message"
	"github.com/openheavy/j1939tel/internal/stage"
	"github.com/openheavy/j1939tel/j1939"
	qdb "github.com/questdb/go-questdb-client/v3"
)

type msgIn interface {
	message.Message

	GetDecodedMessages() []*j1939.DecodedMessage
}

type Stage[T msgIn] struct {
	*stage.Egress[T, worker[T], *workerArgs, *worker[T]]

	cfg *Config

	senderPool *qdb.LineSenderPool
}

func NewStage[T msgIn](inputConnector connector.Connector[T], cfg *Config) *Stage[T] {
	return &Stage[T]{
		Egress: stage.NewEgress[T, worker[T], *workerArgs]("questdb", inputConnector, cfg.PoolConfig),

		cfg: cfg,
	}
}

func (s *Stage[T]) Init(ctx context.Context) error {
	// Create the sender pool
	senderPool, err := qdb.PoolFromOptions(
		qdb.WithAddress(s.cfg.Address),
		qdb.WithHttp(),
		qdb.WithAutoFlushRows(75_000),
		qdb.WithRetryTimeout(time.Second),
	)
	if err != nil {
		return err
	}
	s.senderPool = senderPool

	return s.Egress.Init(ctx, &workerArgs{
		senderPool: senderPool,
		table:      s.cfg.Table,
	})
}

func (s *Stage[T]) Stop() {
	s.Egress.Close()

	// Close the sender pool
	if err := s.senderPool.Close(context.Background()); err != nil {
		s.Tel.LogError("failed to close sender pool", err)
	}
}
