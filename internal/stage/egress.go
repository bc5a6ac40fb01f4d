package stage

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/openheavy/j1939tel/connector"
	"github.com/openheavy/j1939tel/internal"
	"github.com/openheavy/j1939tel/internal/pool"
)

type Egress[M msg, W, WArgs any, WPtr pool.EgressWorkerPtr[W, WArgs, M]] struct {
	Tel *internal.Telemetry

	inputConnector connector.Connector[M]

	workerPool *pool.Egress[M, W, WArgs, WPtr]

	// Telemetry metrics
	skippedMessages atomic.Int64
}

func NewEgress[M msg, W, WArgs any, WPtr pool.EgressWorkerPtr[W, WArgs, M]](
	name string, inputConnector connector.Connector[M], poolCfg *pool.Config,
) *Egress[M, W, WArgs, WPtr] {

	tel := internal.NewTelemetry("egress", name)

	return &Egress[M, W, WArgs, WPtr]{
		Tel: tel,

		inputConnector: inputConnector,

		workerPool: pool.NewEgress[M, W, WArgs, WPtr](tel, poolCfg),
	}
}

func (e *Egress[M, W, WArgs, WPtr]) initMetrics() {
	e.Tel.NewCounter("skipped_messages", func() int64 { return e.skippedMessages.Load() })
}

func (e *Egress[M, W, WArgs, WPtr]) Init(ctx context.Context, workerArgs WArgs) error {
	defer e.Tel.LogInfo("initialized")

	if err := e.workerPool.Init(ctx, workerArgs); err != nil {
		return err
	}

	e.initMetrics()

	return nil
}

func (e *Egress[M, W, WArgs, WPtr]) Run(ctx context.Context) {
	e.Tel.LogInfo("running")
	defer e.Tel.LogInfo("stopped")

	// Run the worker pool
	go e.workerPool.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		default:
		}

		msg, err := e.inputConnector.Read()
		if err != nil {
			// Check if the input connector is closed, if so stop
			if errors.Is(err, connector.ErrClosed) {
				e.Tel.LogInfo("input connector is closed, stopping")
				return
			}

			e.Tel.LogError("failed to read from input connector", err)
			continue
		}

		// Push a new task to the worker pool
		if !e.workerPool.AddTask(ctx, msg) {
			e.skippedMessages.Add(1)
		}
	}
}

func (e *Egress[M, W, WArgs, WPtr]) Close() {
	e.Tel.LogInfo("closing")

	e.workerPool.Close()
}
