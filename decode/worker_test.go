package decode

import (
	"context"
	"testing"

	"github.com/openheavy/j1939tel/internal"
	"github.com/openheavy/j1939tel/internal/message"
	"github.com/openheavy/j1939tel/j1939"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDatabase = `{
	"J1939PGNdb": {
		"61444": {
			"Name": "Electronic Engine Controller 1",
			"SPNs": [190],
			"SPNStartBits": [24]
		}
	},
	"J1939SPNdb": {
		"190": {
			"Name": "Engine Speed",
			"Offset": 0.0,
			"OperationalHigh": 8031.875,
			"OperationalLow": 0.0,
			"Resolution": 0.125,
			"SPNLength": 16,
			"Units": "rpm"
		}
	},
	"J1939SATabledb": {
		"0": "Engine #1"
	}
}`

type dummyMsgIn struct {
	message.Base

	messages []RawMessage
}

func (d *dummyMsgIn) GetRawCANMessages() []RawMessage {
	return d.messages
}

func newTestWorker(t *testing.T) *worker[*dummyMsgIn] {
	t.Helper()

	db, err := j1939.ParseDatabase([]byte(testDatabase))
	require.NoError(t, err)

	w := &worker[*dummyMsgIn]{}
	w.SetTelemetry(internal.NewTelemetry("handler", "decode-test"))
	require.NoError(t, w.Init(context.Background(), &workerArgs{decoder: j1939.NewDecoder(db)}))

	return w
}

func Test_worker_Handle(t *testing.T) {
	w := newTestWorker(t)

	msgIn := &dummyMsgIn{
		messages: []RawMessage{
			{CANID: 0x0CF00400, DataLen: 8, RawData: []byte{0xFF, 0xFF, 0xFF, 0x68, 0x13, 0xFF, 0xFF, 0xFF}},
			{CANID: 0x18FFFF00, DataLen: 8, RawData: []byte{0, 0, 0, 0, 0, 0, 0, 0}},
		},
	}

	msgOut, err := w.Handle(context.Background(), msgIn)
	require.NoError(t, err)

	require.Equal(t, 2, msgOut.MessageCount)

	decoded := msgOut.GetDecodedMessages()

	assert.True(t, decoded[0].Decoded)
	speed, ok := decoded[0].SPNs.Get(190)
	require.True(t, ok)
	assert.Equal(t, 621.0, speed.ValueDecoded)

	// Unknown PGN still yields a message, just not decoded
	assert.False(t, decoded[1].Decoded)
	assert.False(t, decoded[1].PGNKnown)
}

func Test_worker_Handle_InvalidFrames(t *testing.T) {
	w := newTestWorker(t)

	msgIn := &dummyMsgIn{
		messages: []RawMessage{
			// CAN FD payload length, skipped
			{CANID: 0x0CF00400, DataLen: 12, RawData: make([]byte, 12)},
			{CANID: 0x0CF00400, DataLen: 8, RawData: []byte{0xFF, 0xFF, 0xFF, 0x68, 0x13, 0xFF, 0xFF, 0xFF}},
		},
	}

	msgOut, err := w.Handle(context.Background(), msgIn)
	require.NoError(t, err)

	assert.Equal(t, 1, msgOut.MessageCount)
	assert.Equal(t, int64(1), w.failedFrames.Load())
	assert.Equal(t, int64(1), w.decodedFrames.Load())
}
