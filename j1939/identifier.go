package j1939

// J1939 sub-field layout of the 29 bit extended CAN identifier.
const (
	priorityShift = 26
	priorityMask  = 1<<3 - 1

	pgnShift = 8
	pgnMask  = 1<<18 - 1

	sourceAddressMask = 1<<8 - 1
)

// IdentifierFields holds the J1939 sub-fields of a 29 bit CAN identifier.
type IdentifierFields struct {
	// Priority is the 3 bit message priority (bits 26-28).
	Priority uint8
	// PGN is the 18 bit parameter group number (bits 8-25).
	PGN uint32
	// SourceAddress is the 8 bit source address (bits 0-7).
	SourceAddress uint8
}

// DecodeIdentifier splits a CAN identifier into its J1939 sub-fields.
// Bits above the 29 bit identifier are ignored.
func DecodeIdentifier(id uint32) IdentifierFields {
	return IdentifierFields{
		Priority:      uint8((id >> priorityShift) & priorityMask),
		PGN:           (id >> pgnShift) & pgnMask,
		SourceAddress: uint8(id & sourceAddressMask),
	}
}

// Raw reconstructs the low 29 bits of the identifier the fields
// were decoded from.
func (f IdentifierFields) Raw() uint32 {
	return uint32(f.Priority)<<priorityShift | f.PGN<<pgnShift | uint32(f.SourceAddress)
}
