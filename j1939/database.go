package j1939

// SPNRef binds an SPN declared by a parameter group to its starting bit
// position inside the 8 byte payload. A negative start bit means the
// position is unknown or malformed in the reference database; the decoder
// skips such entries.
type SPNRef struct {
	Number   uint32
	StartBit int32
}

// PGNDefinition describes a parameter group loaded from the reference
// database. The SPN list keeps the declaration order of the database.
type PGNDefinition struct {
	Number uint32
	Name   string
	SPNs   []SPNRef
}

// SPNDefinition describes a suspect parameter loaded from the reference
// database. Resolution and Offset convert the raw value into engineering
// units, the operational bounds delimit the range in which the converted
// value is considered valid.
type SPNDefinition struct {
	Number          uint32
	Name            string
	Units           string
	LengthBits      uint32
	Resolution      float64
	Offset          float64
	OperationalLow  float64
	OperationalHigh float64
}

// Database is the read-only lookup capability required by the [Decoder].
// An implementation must be safe for concurrent lookups; absence of an
// entry is a normal outcome, not an error, since most of the PGN space
// is undefined.
type Database interface {
	// PGN returns the parameter group definition for the given number.
	PGN(pgn uint32) (*PGNDefinition, bool)
	// SPN returns the suspect parameter definition for the given number.
	SPN(spn uint32) (*SPNDefinition, bool)
	// SourceAddressName returns the assigned name of a source address.
	SourceAddressName(sa uint8) (string, bool)
}
