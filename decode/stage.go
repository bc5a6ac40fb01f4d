// Package decode provides the handler stage that runs the J1939
// engine over raw CAN frame batches.
package decode

import (
	"context"

	"github.com/openheavy/j1939tel/connector"
	"github.com/openheavy/j1939tel/internal/message"
	"github.com/openheavy/j1939tel/internal/stage"
	"github.com/openheavy/j1939tel/j1939"
)

type msgIn interface {
	message.Message

	GetRawCANMessages() []RawMessage
}

type Stage[T msgIn] struct {
	*stage.Handler[T, *Message, worker[T], *workerArgs, *worker[T]]

	db j1939.Database
}

func NewStage[T msgIn](
	inputConnector connector.Connector[T], outputConnector connector.Connector[*Message], cfg *Config,
) *Stage[T] {

	return &Stage[T]{
		Handler: stage.NewHandler[T, *Message, worker[T], *workerArgs](
			"decode", inputConnector, outputConnector, cfg.PoolConfig,
		),

		db: cfg.Database,
	}
}

func (s *Stage[T]) Init(ctx context.Context) error {
	decoder := j1939.NewDecoder(s.db)

	return s.Handler.Init(ctx, &workerArgs{decoder: decoder})
}

func (s *Stage[T]) Stop() {
	s.Handler.Close()
}
