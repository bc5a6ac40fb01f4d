package j1939

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ExtractRaw(t *testing.T) {
	payload := packPayload([8]byte{0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01})

	assert.Equal(t, uint64(0xFF), extractRaw(payload, 0, 8))
	assert.Equal(t, uint64(0x0F), extractRaw(payload, 4, 8))
	assert.Equal(t, uint64(1), extractRaw(payload, 56, 8))
	assert.Equal(t, uint64(0), extractRaw(payload, 8, 16))

	// A length of 64 or more selects the whole payload word.
	assert.Equal(t, payload, extractRaw(payload, 0, 64))
	assert.Equal(t, payload, extractRaw(payload, 0, 128))

	// Bits beyond the payload read as zero.
	assert.Equal(t, uint64(1), extractRaw(payload, 56, 16))
	assert.Equal(t, uint64(0), extractRaw(payload, 64, 8))
}

func Test_Convert(t *testing.T) {
	def := &SPNDefinition{
		Resolution:      0.125,
		Offset:          0,
		OperationalLow:  0,
		OperationalHigh: 8031.875,
	}

	value, valid := convert(0, def)
	assert.Equal(t, 0.0, value)
	assert.True(t, valid)

	value, valid = convert(64255, def)
	assert.Equal(t, 8031.875, value)
	assert.True(t, valid)

	_, valid = convert(64256, def)
	assert.False(t, valid)

	offs := &SPNDefinition{
		Resolution:      1,
		Offset:          -125,
		OperationalLow:  -125,
		OperationalHigh: 125,
	}

	value, valid = convert(0, offs)
	assert.Equal(t, -125.0, value)
	assert.True(t, valid)
}
