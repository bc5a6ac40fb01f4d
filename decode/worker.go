package decode

import (
	"context"
	"sync/atomic"

	"github.com/openheavy/j1939tel/internal"
	"github.com/openheavy/j1939tel/j1939"
	"go.opentelemetry.io/otel/attribute"
)

type workerArgs struct {
	decoder *j1939.Decoder
}

type worker[T msgIn] struct {
	tel *internal.Telemetry

	decoder *j1939.Decoder

	// Telemetry metrics
	decodedFrames atomic.Int64
	failedFrames  atomic.Int64
}

func (w *worker[T]) SetTelemetry(tel *internal.Telemetry) {
	w.tel = tel
}

func (w *worker[T]) initMetrics() {
	w.tel.NewCounter("decoded_frames", func() int64 { return w.decodedFrames.Load() })
	w.tel.NewCounter("failed_frames", func() int64 { return w.failedFrames.Load() })
}

func (w *worker[T]) Init(_ context.Context, args *workerArgs) error {
	w.decoder = args.decoder

	w.initMetrics()

	return nil
}

func (w *worker[T]) Handle(ctx context.Context, msgIn T) (*Message, error) {
	// Extract the span context from the input message
	_, span := w.tel.NewTrace(msgIn.LoadSpanContext(ctx), "decode CAN frame batch")
	defer span.End()

	rawMessages := msgIn.GetRawCANMessages()

	decodeMsg := newMessage(len(rawMessages))

	decodeMsg.SetReceiveTime(msgIn.GetReceiveTime())
	decodeMsg.SetTimestamp(msgIn.GetTimestamp())

	for _, raw := range rawMessages {
		decoded, err := w.decodeFrame(&raw)
		if err != nil {
			w.failedFrames.Add(1)
			w.tel.LogWarn("failed to decode frame", "can_id", raw.CANID, "error", err)
			continue
		}

		decodeMsg.Messages = append(decodeMsg.Messages, decoded)
		decodeMsg.MessageCount++
		w.decodedFrames.Add(1)
	}

	// Save the span into the message
	span.SetAttributes(attribute.Int("frame_count", decodeMsg.MessageCount))
	decodeMsg.SaveSpan(span)

	return decodeMsg, nil
}

func (w *worker[T]) decodeFrame(raw *RawMessage) (*j1939.DecodedMessage, error) {
	if raw.DataLen > 8 {
		return nil, j1939.ErrInvalidFrame
	}

	frame := j1939.Frame{
		ID:  raw.CANID,
		DLC: uint8(raw.DataLen),
	}
	copy(frame.Data[:], raw.RawData)

	return w.decoder.DecodeFrame(frame)
}

func (w *worker[T]) Close(_ context.Context) error {
	return nil
}
