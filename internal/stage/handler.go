package stage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/openheavy/j1939tel/connector"
	"github.com/openheavy/j1939tel/internal"
	"github.com/openheavy/j1939tel/internal/pool"
)

type Handler[MIn, MOut msg, W, WArgs any, WPtr pool.HandlerWorkerPtr[W, WArgs, MIn, MOut]] struct {
	tel *internal.Telemetry

	inputConnector  connector.Connector[MIn]
	outputConnector connector.Connector[MOut]

	writerInputCh <-chan MOut
	writerWg      *sync.WaitGroup

	workerPool *pool.Handler[W, WArgs, MIn, MOut, WPtr]

	// Telemetry metrics
	skippedMessages atomic.Int64
}

func NewHandler[MIn, MOut msg, W, WArgs any, WPtr pool.HandlerWorkerPtr[W, WArgs, MIn, MOut]](
	name string, inputConnector connector.Connector[MIn], outputConnector connector.Connector[MOut], poolCfg *pool.Config,
) *Handler[MIn, MOut, W, WArgs, WPtr] {

	tel := internal.NewTelemetry("handler", name)

	return &Handler[MIn, MOut, W, WArgs, WPtr]{
		tel: tel,

		inputConnector:  inputConnector,
		outputConnector: outputConnector,

		writerWg: &sync.WaitGroup{},

		workerPool: pool.NewHandler[W, WArgs, MIn, MOut, WPtr](tel, poolCfg),
	}
}

func (h *Handler[MIn, MOut, W, WArgs, WPtr]) initMetrics() {
	h.tel.NewCounter("skipped_messages", func() int64 { return h.skippedMessages.Load() })
}

func (h *Handler[MIn, MOut, W, WArgs, WPtr]) Init(ctx context.Context, workerArgs WArgs) error {
	defer h.tel.LogInfo("initialized")

	if err := h.workerPool.Init(ctx, workerArgs); err != nil {
		return err
	}

	// Set the writer input channel to the output channel of the worker pool
	h.writerInputCh = h.workerPool.GetOutputCh()

	h.initMetrics()

	return nil
}

func (h *Handler[MIn, MOut, W, WArgs, WPtr]) runWriter(ctx context.Context) {
	h.writerWg.Add(1)
	defer h.writerWg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msgOut := <-h.writerInputCh:
			if err := h.outputConnector.Write(msgOut); err != nil {
				h.tel.LogError("failed to write into output connector", err)
			}
		}
	}
}

func (h *Handler[MIn, MOut, W, WArgs, WPtr]) Run(ctx context.Context) {
	h.tel.LogInfo("running")
	defer h.tel.LogInfo("stopped")

	// Run the worker pool
	go h.workerPool.Run(ctx)

	// Run the writer goroutine
	go h.runWriter(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		default:
		}

		msg, err := h.inputConnector.Read()
		if err != nil {
			// Check if the input connector is closed, if so stop
			if errors.Is(err, connector.ErrClosed) {
				h.tel.LogInfo("input connector is closed, stopping")
				return
			}

			h.tel.LogError("failed to read from input connector", err)
			continue
		}

		// Push a new task to the worker pool
		if !h.workerPool.AddTask(ctx, msg) {
			h.skippedMessages.Add(1)
		}
	}
}

func (h *Handler[MIn, MOut, W, WArgs, WPtr]) Close() {
	h.tel.LogInfo("closing")

	// Close the output connector
	h.outputConnector.Close()
	h.workerPool.Close()

	// Wait for the writer to finish
	h.writerWg.Wait()
}
