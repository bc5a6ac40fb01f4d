// Package cannelloni provides the handler stage that unpacks
// cannelloni data packets into raw CAN frame batches.
package cannelloni

import (
	"context"

	"github.com/openheavy/j1939tel/connector"
	"github.com/openheavy/j1939tel/internal/message"
	"github.com/openheavy/j1939tel/internal/stage"
)

type Stage[T message.Serializable] struct {
	*stage.Handler[T, *Message, worker[T], any, *worker[T]]
}

func NewStage[T message.Serializable](
	inputConnector connector.Connector[T], outputConnector connector.Connector[*Message], cfg *Config,
) *Stage[T] {

	return &Stage[T]{
		Handler: stage.NewHandler[T, *Message, worker[T], any](
			"cannelloni", inputConnector, outputConnector, cfg.PoolConfig,
		),
	}
}

func (s *Stage[T]) Init(ctx context.Context) error {
	return s.Handler.Init(ctx, nil)
}

func (s *Stage[T]) Stop() {
	s.Handler.Close()
}
