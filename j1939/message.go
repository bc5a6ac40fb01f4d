package j1939

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// notAvailable is rendered in place of the decoded value when the
// converted value falls outside the operational range of the parameter.
const notAvailable = "Not available"

// DecodedSPN is a single suspect parameter extracted from a frame.
// ValueDecoded is meaningful only when Valid is true.
type DecodedSPN struct {
	Definition SPNDefinition

	StartBit     uint32
	ValueRaw     uint64
	ValueDecoded float64
	Valid        bool
}

func (s *DecodedSPN) MarshalJSON() ([]byte, error) {
	out := struct {
		Name            string
		Units           string
		SPNLength       uint32
		Resolution      float64
		Offset          float64
		OperationalLow  float64
		OperationalHigh float64
		StartBit        uint32
		ValueRaw        uint64
		ValueDecoded    any
		Valid           bool
	}{
		Name:            s.Definition.Name,
		Units:           s.Definition.Units,
		SPNLength:       s.Definition.LengthBits,
		Resolution:      s.Definition.Resolution,
		Offset:          s.Definition.Offset,
		OperationalLow:  s.Definition.OperationalLow,
		OperationalHigh: s.Definition.OperationalHigh,
		StartBit:        s.StartBit,
		ValueRaw:        s.ValueRaw,
		ValueDecoded:    any(notAvailable),
		Valid:           s.Valid,
	}

	if s.Valid {
		out.ValueDecoded = s.ValueDecoded
	}

	return json.Marshal(out)
}

// SPNMap maps SPN numbers to their decoded values while preserving the
// order in which the parameter group declares them.
type SPNMap struct {
	order   []uint32
	entries map[uint32]*DecodedSPN
}

func newSPNMap() *SPNMap {
	return &SPNMap{
		entries: make(map[uint32]*DecodedSPN),
	}
}

func (m *SPNMap) add(spn uint32, decoded *DecodedSPN) {
	if _, ok := m.entries[spn]; !ok {
		m.order = append(m.order, spn)
	}
	m.entries[spn] = decoded
}

// Get returns the decoded value of the given SPN.
func (m *SPNMap) Get(spn uint32) (*DecodedSPN, bool) {
	decoded, ok := m.entries[spn]
	return decoded, ok
}

// Len returns the number of decoded SPNs.
func (m *SPNMap) Len() int {
	return len(m.order)
}

// Numbers returns the SPN numbers in declaration order.
// The returned slice must not be modified.
func (m *SPNMap) Numbers() []uint32 {
	return m.order
}

// MarshalJSON renders the map as a JSON object keyed by the decimal SPN
// number, in declaration order.
func (m *SPNMap) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')

	for i, spn := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteByte('"')
		buf.WriteString(strconv.FormatUint(uint64(spn), 10))
		buf.WriteString(`":`)

		entry, err := json.Marshal(m.entries[spn])
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// DecodedMessage is the result of decoding a single J1939 frame.
// Decoded reports whether at least one SPN was extracted; a message with
// Decoded false still carries the identifier split and the source
// address name.
type DecodedMessage struct {
	ID                uint32
	Priority          uint8
	PGN               uint32
	SourceAddress     uint8
	SourceAddressName string

	DLC  uint8
	Data [8]byte

	// PGNKnown reports whether the parameter group was found in the
	// database. PGNName and SPNs are only set when it is true.
	PGNKnown bool
	PGNName  string
	SPNs     *SPNMap

	Decoded bool
}

// MarshalJSON renders the message as a single JSON object. PGNName and
// SPNs are omitted for parameter groups absent from the database.
func (m *DecodedMessage) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')

	writeField := func(name string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('"')
		buf.WriteString(name)
		buf.WriteString(`":`)

		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(raw)

		return nil
	}

	// A byte slice would render as base64, the payload is expected as
	// an array of numbers. All 8 payload bytes are emitted regardless
	// of the DLC.
	dataRaw := make([]uint16, len(m.Data))
	for i := range dataRaw {
		dataRaw[i] = uint16(m.Data[i])
	}

	fields := []struct {
		name  string
		value any
	}{
		{"ID", m.ID},
		{"Priority", m.Priority},
		{"PGN", m.PGN},
		{"SA", m.SourceAddress},
		{"SAName", m.SourceAddressName},
		{"DLC", m.DLC},
		{"DataRaw", dataRaw},
	}

	for _, f := range fields {
		if err := writeField(f.name, f.value); err != nil {
			return nil, err
		}
	}

	if m.PGNKnown {
		if err := writeField("PGNName", m.PGNName); err != nil {
			return nil, err
		}
		if err := writeField("SPNs", m.SPNs); err != nil {
			return nil, err
		}
	}

	if err := writeField("Decoded", m.Decoded); err != nil {
		return nil, err
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
