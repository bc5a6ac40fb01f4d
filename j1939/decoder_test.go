package j1939

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()

	db, err := LoadDatabase("testdata/j1939db.json")
	require.NoError(t, err)

	return NewDecoder(db, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func Test_DecodeIdentifier(t *testing.T) {
	fields := DecodeIdentifier(0x0CF00400)

	assert.Equal(t, uint8(3), fields.Priority)
	assert.Equal(t, uint32(61444), fields.PGN)
	assert.Equal(t, uint8(0), fields.SourceAddress)

	ids := []uint32{0, 0x0CF00400, 0x18FEEE03, 0x1FFFFFFF, 0xFFFFFFFF}
	for _, id := range ids {
		assert.Equal(t, id&0x1FFFFFFF, DecodeIdentifier(id).Raw())
	}
}

func Test_Decoder_EEC1(t *testing.T) {
	d := newTestDecoder(t)

	// SPN 512 in byte 1, SPN 190 in bytes 3-4 little endian.
	msg, err := d.Decode(0x0CF00400, 8, [8]byte{0xFF, 0x7D, 0xFF, 0x68, 0x13, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)

	assert.Equal(t, uint8(3), msg.Priority)
	assert.Equal(t, uint32(61444), msg.PGN)
	assert.Equal(t, uint8(0), msg.SourceAddress)
	assert.Equal(t, "Engine #1", msg.SourceAddressName)

	require.True(t, msg.PGNKnown)
	assert.Equal(t, "Electronic Engine Controller 1", msg.PGNName)
	assert.True(t, msg.Decoded)

	speed, ok := msg.SPNs.Get(190)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1368), speed.ValueRaw)
	assert.Equal(t, 621.0, speed.ValueDecoded)
	assert.True(t, speed.Valid)

	torque, ok := msg.SPNs.Get(512)
	require.True(t, ok)
	assert.Equal(t, uint64(125), torque.ValueRaw)
	assert.Equal(t, 0.0, torque.ValueDecoded)
	assert.True(t, torque.Valid)

	// SPN 9999 is declared by the PGN but has no database entry.
	_, ok = msg.SPNs.Get(9999)
	assert.False(t, ok)

	// Declaration order of the PGN, not numeric order.
	assert.Equal(t, []uint32{512, 190}, msg.SPNs.Numbers())
}

func Test_Decoder_OperationalRangeBounds(t *testing.T) {
	d := newTestDecoder(t)

	// Raw 0xFAFF scales to exactly the operational high of SPN 190.
	msg, err := d.Decode(0x0CF00400, 8, [8]byte{0xFF, 0x7D, 0xFF, 0xFF, 0xFA, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)

	speed, ok := msg.SPNs.Get(190)
	require.True(t, ok)
	assert.Equal(t, 8031.875, speed.ValueDecoded)
	assert.True(t, speed.Valid)

	// One step above the operational high.
	msg, err = d.Decode(0x0CF00400, 8, [8]byte{0xFF, 0x7D, 0xFF, 0x00, 0xFB, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)

	speed, ok = msg.SPNs.Get(190)
	require.True(t, ok)
	assert.False(t, speed.Valid)

	// An out of range SPN does not clear the decoded flag, SPN 512
	// still decodes.
	assert.True(t, msg.Decoded)
}

func Test_Decoder_ProprietarySPN(t *testing.T) {
	d := newTestDecoder(t)

	// PGN 61184 declares only the manufacturer specific SPN 2550.
	msg, err := d.Decode(0x18EF0003, 8, [8]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	require.NoError(t, err)

	require.True(t, msg.PGNKnown)
	assert.Equal(t, 0, msg.SPNs.Len())
	assert.False(t, msg.Decoded)
}

func Test_Decoder_MissingStartBit(t *testing.T) {
	d := newTestDecoder(t)

	// PGN 65262: SPN 110 at bit 0, SPN 975 with an unknown start bit.
	msg, err := d.Decode(0x18FEEE03, 8, [8]byte{0x6E, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)

	temp, ok := msg.SPNs.Get(110)
	require.True(t, ok)
	assert.Equal(t, 70.0, temp.ValueDecoded)
	assert.True(t, temp.Valid)
	assert.Equal(t, "Transmission #1", msg.SourceAddressName)

	_, ok = msg.SPNs.Get(975)
	assert.False(t, ok)
}

func Test_Decoder_UnknownPGN(t *testing.T) {
	d := newTestDecoder(t)

	msg, err := d.Decode(0x18FFFF0B, 8, [8]byte{})
	require.NoError(t, err)

	assert.False(t, msg.PGNKnown)
	assert.Nil(t, msg.SPNs)
	assert.False(t, msg.Decoded)
	assert.Equal(t, "Brakes - System Controller", msg.SourceAddressName)

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "PGNName")
	assert.NotContains(t, string(out), "SPNs")
	assert.Contains(t, string(out), `"Decoded":false`)
}

func Test_Decoder_ZeroSPNPGN(t *testing.T) {
	d := newTestDecoder(t)

	// PGN 65280 declares no SPNs at all.
	msg, err := d.Decode(0x18FF0003, 8, [8]byte{})
	require.NoError(t, err)

	require.True(t, msg.PGNKnown)
	assert.Equal(t, "Proprietary B", msg.PGNName)
	assert.Equal(t, 0, msg.SPNs.Len())
	assert.False(t, msg.Decoded)

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"SPNs":{}`)
}

func Test_Decoder_UnnamedPGN(t *testing.T) {
	d := newTestDecoder(t)

	// PGN 65281 has no name in the database.
	msg, err := d.Decode(0x18FF0103, 8, [8]byte{})
	require.NoError(t, err)

	require.True(t, msg.PGNKnown)
	assert.Equal(t, "Unknown", msg.PGNName)

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"PGNName":"Unknown"`)
}

func Test_Decoder_Errors(t *testing.T) {
	d := newTestDecoder(t)

	_, err := d.Decode(0x0CF00400, 9, [8]byte{})
	assert.ErrorIs(t, err, ErrInvalidFrame)

	uninitialized := NewDecoder(nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err = uninitialized.Decode(0x0CF00400, 8, [8]byte{})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func Test_Decoder_SourceAddressBands(t *testing.T) {
	d := newTestDecoder(t)

	tests := []struct {
		sa   uint8
		name string
	}{
		{0, "Engine #1"},
		{3, "Transmission #1"},
		{5, "Unknown"},
		{92, "Reserved"},
		{127, "Reserved"},
		{128, "Industry Group specific"},
		{247, "Industry Group specific"},
		{249, "Off Board Diagnostic-Service Tool #1"},
		{250, "Unknown"},
		{255, "Unknown"},
	}

	for _, tt := range tests {
		msg, err := d.Decode(0x18FFFF00|uint32(tt.sa), 8, [8]byte{})
		require.NoError(t, err)
		assert.Equal(t, tt.name, msg.SourceAddressName, "source address %d", tt.sa)
	}
}

func Test_Decoder_Idempotent(t *testing.T) {
	d := newTestDecoder(t)

	frame := Frame{ID: 0x0CF00400, DLC: 8, Data: [8]byte{0xFF, 0x7D, 0xFF, 0x68, 0x13, 0xFF, 0xFF, 0xFF}}

	first, err := d.DecodeFrame(frame)
	require.NoError(t, err)
	second, err := d.DecodeFrame(frame)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func Test_DecodedMessage_MarshalJSON(t *testing.T) {
	d := newTestDecoder(t)

	msg, err := d.Decode(0x0CF00400, 8, [8]byte{0xFF, 0x7D, 0xFF, 0x00, 0xFB, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	require.True(t, json.Valid(out))

	s := string(out)
	assert.Contains(t, s, `"ID":217056256`)
	assert.Contains(t, s, `"SAName":"Engine #1"`)
	assert.Contains(t, s, `"DataRaw":[255,125,255,0,251,255,255,255]`)
	assert.Contains(t, s, `"PGNName":"Electronic Engine Controller 1"`)

	// Out of range values render as the not available sentinel.
	assert.Contains(t, s, `"ValueDecoded":"Not available"`)

	// SPN keys keep the declaration order of the PGN.
	assert.Less(t, strings.Index(s, `"512"`), strings.Index(s, `"190"`))

	// Custom marshalers still compose with indented rendering.
	pretty, err := json.MarshalIndent(msg, "", "    ")
	require.NoError(t, err)
	assert.True(t, json.Valid(pretty))
}

func Test_DecodedMessage_MarshalJSON_ShortDLC(t *testing.T) {
	d := newTestDecoder(t)

	msg, err := d.Decode(0x18FFFF0B, 3, [8]byte{1, 2, 3})
	require.NoError(t, err)

	out, err := json.Marshal(msg)
	require.NoError(t, err)

	// All 8 payload bytes are rendered even when the DLC is shorter.
	assert.Contains(t, string(out), `"DataRaw":[1,2,3,0,0,0,0,0]`)
	assert.Contains(t, string(out), `"DLC":3`)
}
