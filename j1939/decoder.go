// Package j1939 decodes SAE J1939 CAN frames into engineering-unit
// values using a digital annex JSON database.
package j1939

import (
	"errors"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var (
	// ErrNotInitialized is returned when the decoder has no database.
	ErrNotInitialized = errors.New("j1939: database not loaded")
	// ErrInvalidFrame is returned for frames longer than the 8 byte
	// classic CAN payload.
	ErrInvalidFrame = errors.New("j1939: DLC cannot be greater than 8 bytes")
)

// Manufacturer specific parameters with no public definition.
// They are silently left out of the decoded output.
var proprietarySPNs = map[uint32]struct{}{
	2550: {},
	2551: {},
	3328: {},
}

// Frame is a single classic CAN frame with a 29 bit identifier.
// Bytes of Data beyond DLC are ignored.
type Frame struct {
	ID   uint32
	DLC  uint8
	Data [8]byte
}

// Decoder decodes J1939 frames against a [Database].
// It is stateless apart from the database and safe for concurrent use.
type Decoder struct {
	db  Database
	log *slog.Logger
}

type DecoderOption func(*Decoder)

// WithLogger sets the logger used for database lookup notices.
func WithLogger(log *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		d.log = log
	}
}

// NewDecoder returns a decoder backed by the given database.
func NewDecoder(db Database, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		db: db,
		log: slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		})),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Decode decodes a single frame given its identifier, DLC and payload.
func (d *Decoder) Decode(id uint32, dlc uint8, data [8]byte) (*DecodedMessage, error) {
	return d.DecodeFrame(Frame{ID: id, DLC: dlc, Data: data})
}

// DecodeFrame decodes a single frame. The identifier split, source
// address name and payload are always populated; PGNName and SPNs only
// when the parameter group is known. A frame whose PGN or SPNs are
// absent from the database is not an error, the message is returned
// with Decoded set to false.
func (d *Decoder) DecodeFrame(frame Frame) (*DecodedMessage, error) {
	if d.db == nil {
		return nil, ErrNotInitialized
	}

	if frame.DLC > 8 {
		return nil, ErrInvalidFrame
	}

	fields := DecodeIdentifier(frame.ID)

	msg := &DecodedMessage{
		ID:                frame.ID,
		Priority:          fields.Priority,
		PGN:               fields.PGN,
		SourceAddress:     fields.SourceAddress,
		SourceAddressName: d.resolveSourceAddressName(fields.SourceAddress),
		DLC:               frame.DLC,
		Data:              frame.Data,
	}

	pgnDef, ok := d.db.PGN(fields.PGN)
	if !ok {
		d.log.Debug("no PGN data found in database", "pgn", fields.PGN)
		return msg, nil
	}

	msg.PGNKnown = true
	msg.PGNName = pgnDef.Name
	if msg.PGNName == "" {
		d.log.Warn("no PGN name found in database", "pgn", fields.PGN)
		msg.PGNName = "Unknown"
	}
	msg.SPNs = newSPNMap()

	payload := packPayload(frame.Data)

	for _, ref := range pgnDef.SPNs {
		if _, ok := proprietarySPNs[ref.Number]; ok {
			continue
		}

		if ref.StartBit < 0 {
			d.log.Warn("start bit missing or negative, skipping decode",
				"spn", ref.Number, "pgn", fields.PGN)
			continue
		}

		spnDef, ok := d.db.SPN(ref.Number)
		if !ok {
			d.log.Warn("no SPN data found in database", "spn", ref.Number)
			continue
		}

		raw := extractRaw(payload, uint32(ref.StartBit), spnDef.LengthBits)
		value, valid := convert(raw, spnDef)

		msg.SPNs.add(ref.Number, &DecodedSPN{
			Definition:   *spnDef,
			StartBit:     uint32(ref.StartBit),
			ValueRaw:     raw,
			ValueDecoded: value,
			Valid:        valid,
		})

		msg.Decoded = true
	}

	return msg, nil
}
