package cannelloni

import (
	"encoding/binary"
	"testing"

	"github.com/openheavy/j1939tel/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummyMsgIn struct {
	message.Base

	data []byte
}

func (d *dummyMsgIn) GetBytes() []byte {
	return d.data
}

func Test_worker_decodeFrame(t *testing.T) {
	w := &worker[*dummyMsgIn]{}

	buf := make([]byte, 5)
	buf[0] = 2
	buf[1] = 0
	buf[2] = 42
	binary.BigEndian.PutUint16(buf[3:5], 2)

	// Classic CAN message
	msgBuf := make([]byte, 13)
	binary.BigEndian.PutUint32(msgBuf[0:4], 0x0CF00400)
	msgBuf[4] = 8
	copy(msgBuf[5:], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	buf = append(buf, msgBuf...)

	// CAN FD message, flagged length plus a flags byte
	fdBuf := make([]byte, 18)
	binary.BigEndian.PutUint32(fdBuf[0:4], 0x18FEEE03)
	fdBuf[4] = 12 | 0x80
	fdBuf[5] = 0x01
	copy(fdBuf[6:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	buf = append(buf, fdBuf...)

	f, err := w.decodeFrame(buf)
	require.NoError(t, err)

	assert.Equal(t, uint8(2), f.version)
	assert.Equal(t, uint8(42), f.sequenceNumber)
	require.Len(t, f.messages, 2)

	assert.Equal(t, uint32(0x0CF00400), f.messages[0].canID)
	assert.Equal(t, uint8(8), f.messages[0].dataLen)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, f.messages[0].data)

	assert.Equal(t, uint32(0x18FEEE03), f.messages[1].canID)
	assert.Equal(t, uint8(12), f.messages[1].dataLen)
	assert.Equal(t, uint8(0x01), f.messages[1].canFDFlags)
	assert.Len(t, f.messages[1].data, 12)
}

func Test_worker_decodeFrame_Invalid(t *testing.T) {
	w := &worker[*dummyMsgIn]{}

	_, err := w.decodeFrame(nil)
	assert.Error(t, err)

	_, err = w.decodeFrame([]byte{1, 0, 1})
	assert.Error(t, err)

	// Header announces more messages than the buffer carries
	buf := make([]byte, 5)
	buf[0] = 2
	binary.BigEndian.PutUint16(buf[3:5], 3)
	_, err = w.decodeFrame(buf)
	assert.Error(t, err)

	// Message payload shorter than its declared length
	msgBuf := make([]byte, 9)
	binary.BigEndian.PutUint32(msgBuf[0:4], 0x0CF00400)
	msgBuf[4] = 8
	binary.BigEndian.PutUint16(buf[3:5], 1)
	_, err = w.decodeFrame(append(buf, msgBuf...))
	assert.Error(t, err)
}

func Benchmark_worker_decodeFrame(b *testing.B) {
	b.ReportAllocs()

	w := &worker[*dummyMsgIn]{}
	frame := getEncodedFrame()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := w.decodeFrame(frame)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func getEncodedFrame() []byte {
	buf := make([]byte, 5)

	msgNum := 113

	buf[0] = 2
	buf[1] = 0
	buf[2] = 1
	binary.BigEndian.PutUint16(buf[3:5], uint16(msgNum))

	for canID := 0; canID < msgNum; canID++ {
		msgBuf := make([]byte, 13)

		binary.BigEndian.PutUint32(msgBuf[0:4], uint32(canID))
		msgBuf[4] = 8

		copy(msgBuf[5:], []byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8})

		buf = append(buf, msgBuf...)
	}

	return buf
}
