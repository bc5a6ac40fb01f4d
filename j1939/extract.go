package j1939

import "encoding/binary"

// packPayload packs the 8 byte payload into a single little endian
// word, so that a field starting at bit N of the frame starts at bit N
// of the word.
func packPayload(data [8]byte) uint64 {
	return binary.LittleEndian.Uint64(data[:])
}

// extractRaw returns the unsigned field of the given length starting at
// startBit of the payload word. Bits beyond the payload read as zero and
// a length of 64 or more selects the whole word.
func extractRaw(payload uint64, startBit, length uint32) uint64 {
	if startBit >= 64 {
		return 0
	}

	mask := ^uint64(0)
	if length < 64 {
		mask = 1<<length - 1
	}

	return (payload >> startBit) & mask
}

// convert scales a raw field value into engineering units and reports
// whether the result falls inside the operational range of the
// parameter. Both bounds are inclusive.
func convert(raw uint64, def *SPNDefinition) (value float64, valid bool) {
	value = float64(raw)*def.Resolution + def.Offset
	valid = value >= def.OperationalLow && value <= def.OperationalHigh
	return value, valid
}
