// Package socketcan provides the ingress stage that reads CAN frames
// from a SocketCAN network interface.
package socketcan

import (
	"context"

	"github.com/openheavy/j1939tel/connector"
	"github.com/openheavy/j1939tel/internal/stage"
	"go.einride.tech/can/pkg/socketcan"
)

type Stage struct {
	*stage.Ingress[*Message, worker, *workerArgs, *worker]

	iface string
}

func NewStage(outputConnector connector.Connector[*Message], cfg *Config) *Stage {
	return &Stage{
		Ingress: stage.NewIngress[*Message, worker, *workerArgs](
			"socketcan", outputConnector, cfg.PoolConfig,
		),

		iface: cfg.Interface,
	}
}

func (s *Stage) Init(ctx context.Context) error {
	conn, err := socketcan.DialContext(ctx, "can", s.iface)
	if err != nil {
		return err
	}

	return s.Ingress.Init(ctx, &workerArgs{conn: conn})
}

func (s *Stage) Stop() {
	s.Ingress.Close()
}
