package questdb

import (
	"context"
	"sync/atomic"

	"github.com/openheavy/j1939tel/internal"
	qdb "github.com/questdb/go-questdb-client/v3"
	"go.opentelemetry.io/otel/attribute"
)

type workerArgs struct {
	senderPool *qdb.LineSenderPool
	table      string
}

type worker[T msgIn] struct {
	tel *internal.Telemetry

	sender qdb.LineSender
	table  string

	// Telemetry metrics
	insertedRows atomic.Int64
}

func (w *worker[T]) SetTelemetry(tel *internal.Telemetry) {
	w.tel = tel
}

func (w *worker[T]) initMetrics() {
	w.tel.NewCounter("inserted_rows", func() int64 { return w.insertedRows.Load() })
}

func (w *worker[T]) Init(ctx context.Context, args *workerArgs) error {
	// Get and set the sender from the pool
	sender, err := args.senderPool.Sender(ctx)
	if err != nil {
		return err
	}
	w.sender = sender

	w.table = args.table

	w.initMetrics()

	return nil
}

func (w *worker[T]) Deliver(ctx context.Context, msgIn T) error {
	// Extract the span context from the input message
	ctx, span := w.tel.NewTrace(msgIn.LoadSpanContext(ctx), "deliver QuestDB rows")
	defer span.End()

	timestamp := msgIn.GetTimestamp()

	tmpInsRows := int64(0)
	for _, decMsg := range msgIn.GetDecodedMessages() {
		if !decMsg.Decoded {
			continue
		}

		// One row per decoded SPN
		for _, spnNumber := range decMsg.SPNs.Numbers() {
			spn, ok := decMsg.SPNs.Get(spnNumber)
			if !ok {
				continue
			}

			query := w.sender.Table(w.table)

			query.Symbol("pgn_name", decMsg.PGNName)
			query.Symbol("spn_name", spn.Definition.Name)
			query.Symbol("sa_name", decMsg.SourceAddressName)
			query.Symbol("units", spn.Definition.Units)

			query.Int64Column("can_id", int64(decMsg.ID))
			query.Int64Column("pgn", int64(decMsg.PGN))
			query.Int64Column("spn", int64(spnNumber))
			query.Int64Column("source_address", int64(decMsg.SourceAddress))
			query.Int64Column("value_raw", int64(spn.ValueRaw))
			query.Float64Column("value", spn.ValueDecoded)
			query.BoolColumn("valid", spn.Valid)

			if err := query.At(ctx, timestamp); err != nil {
				return err
			}

			tmpInsRows++
		}
	}

	span.SetAttributes(attribute.Int64("inserted_rows", tmpInsRows))

	// Update metrics
	w.insertedRows.Add(tmpInsRows)

	return nil
}

func (w *worker[T]) Close(ctx context.Context) error {
	// Close the sender
	select {
	case <-ctx.Done():
		return w.sender.Close(context.Background())
	default:
		return w.sender.Close(ctx)
	}
}
