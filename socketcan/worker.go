package socketcan

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/openheavy/j1939tel/decode"
	"github.com/openheavy/j1939tel/internal"
	"go.einride.tech/can/pkg/socketcan"
	"go.opentelemetry.io/otel/attribute"
)

type workerArgs struct {
	conn net.Conn
}

type worker struct {
	tel *internal.Telemetry

	conn net.Conn
	recv *socketcan.Receiver

	// Telemetry metrics
	receivedFrames atomic.Int64
}

func (w *worker) SetTelemetry(tel *internal.Telemetry) {
	w.tel = tel
}

func (w *worker) initMetrics() {
	w.tel.NewCounter("received_frames", func() int64 { return w.receivedFrames.Load() })
}

func (w *worker) Init(ctx context.Context, args *workerArgs) error {
	w.conn = args.conn
	w.recv = socketcan.NewReceiver(w.conn)

	// Hacky method to close the connection when the context is done
	go func() {
		<-ctx.Done()
		w.conn.Close()
	}()

	w.initMetrics()

	return nil
}

func (w *worker) Receive(ctx context.Context) (*Message, bool, error) {
	if !w.recv.Receive() {
		select {
		case <-ctx.Done():
			// If the context is done, signal
			// the worker pool to exit the run loop
			return nil, true, nil

		default:
		}

		err := w.recv.Err()
		if err != nil {
			w.tel.LogError("failed to receive frame", err)
		}

		return nil, true, err
	}

	// Create the trace for the incoming frame
	_, span := w.tel.NewTrace(ctx, "receive CAN frame")
	defer span.End()

	frame := w.recv.Frame()

	data := make([]byte, frame.Length)
	copy(data, frame.Data[:frame.Length])

	canMsg := newMessage(decode.RawMessage{
		CANID:   frame.ID,
		DataLen: int(frame.Length),
		RawData: data,
	})

	// Set the receive time and the timestamp
	recvTime := time.Now()
	canMsg.SetReceiveTime(recvTime)
	canMsg.SetTimestamp(recvTime)

	// Save the span into the message
	span.SetAttributes(attribute.Int("can_id", int(frame.ID)))
	canMsg.SaveSpan(span)

	// Update metrics
	w.receivedFrames.Add(1)

	return canMsg, false, nil
}

func (w *worker) Close(_ context.Context) error {
	return w.recv.Close()
}
