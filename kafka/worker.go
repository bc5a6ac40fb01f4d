package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"

	"github.com/openheavy/j1939tel/internal"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
)

type workerArgs struct {
	writer *kafka.Writer
}

type worker[T msgIn] struct {
	tel *internal.Telemetry

	writer *kafka.Writer

	// Telemetry metrics
	publishedMessages atomic.Int64
}

func (w *worker[T]) SetTelemetry(tel *internal.Telemetry) {
	w.tel = tel
}

func (w *worker[T]) initMetrics() {
	w.tel.NewCounter("published_messages", func() int64 { return w.publishedMessages.Load() })
}

func (w *worker[T]) Init(_ context.Context, args *workerArgs) error {
	w.writer = args.writer

	w.initMetrics()

	return nil
}

func (w *worker[T]) Deliver(ctx context.Context, msgIn T) error {
	// Extract the span context from the input message
	ctx, span := w.tel.NewTrace(msgIn.LoadSpanContext(ctx), "deliver kafka messages")
	defer span.End()

	decMessages := msgIn.GetDecodedMessages()
	if len(decMessages) == 0 {
		return nil
	}

	// Create the headers that carry the trace
	carrier := newHeaderCarrier()
	w.tel.InjectTrace(ctx, carrier)

	kafkaMessages := make([]kafka.Message, 0, len(decMessages))
	for _, decMsg := range decMessages {
		value, err := json.Marshal(decMsg)
		if err != nil {
			return err
		}

		// Key by PGN so all frames of a parameter group land
		// in the same partition
		kafkaMessages = append(kafkaMessages, kafka.Message{
			Key:     []byte(strconv.FormatUint(uint64(decMsg.PGN), 10)),
			Value:   value,
			Headers: carrier.Headers(),
		})
	}

	if err := w.writer.WriteMessages(ctx, kafkaMessages...); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("message_count", len(kafkaMessages)))

	// Update metrics
	w.publishedMessages.Add(int64(len(kafkaMessages)))

	return nil
}

func (w *worker[T]) Close(_ context.Context) error {
	return nil
}
