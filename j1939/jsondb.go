package j1939

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// looseFloat tolerates the non numeric values ("ASCII", "Variable")
// some digital annex entries carry in numeric fields, reading them
// as zero.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		*f = 0
		return nil
	}

	*f = looseFloat(value)

	return nil
}

// looseUint is the unsigned counterpart of [looseFloat].
type looseUint uint32

func (u *looseUint) UnmarshalJSON(data []byte) error {
	var value uint32
	if err := json.Unmarshal(data, &value); err != nil {
		*u = 0
		return nil
	}

	*u = looseUint(value)

	return nil
}

// On-disk layout of the digital annex JSON export. All the tables are
// keyed by the decimal string of the entry number.
type jsonDatabase struct {
	PGNs            map[string]jsonPGN `json:"J1939PGNdb"`
	SPNs            map[string]jsonSPN `json:"J1939SPNdb"`
	SourceAddresses map[string]string  `json:"J1939SATabledb"`
}

type jsonPGN struct {
	Name         string   `json:"Name"`
	SPNs         []uint32 `json:"SPNs"`
	SPNStartBits []int32  `json:"SPNStartBits"`
}

type jsonSPN struct {
	Name            string     `json:"Name"`
	Units           string     `json:"Units"`
	SPNLength       looseUint  `json:"SPNLength"`
	Resolution      looseFloat `json:"Resolution"`
	Offset          looseFloat `json:"Offset"`
	OperationalLow  looseFloat `json:"OperationalLow"`
	OperationalHigh looseFloat `json:"OperationalHigh"`
}

// JSONDatabase is a [Database] backed by a digital annex JSON export.
// It is immutable after loading and safe for concurrent lookups.
type JSONDatabase struct {
	pgns            map[uint32]*PGNDefinition
	spns            map[uint32]*SPNDefinition
	sourceAddresses map[uint8]string
}

// LoadDatabase reads and parses a digital annex JSON export from disk.
func LoadDatabase(path string) (*JSONDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database file: %w", err)
	}

	return ParseDatabase(data)
}

// ParseDatabase parses a digital annex JSON export.
func ParseDatabase(data []byte) (*JSONDatabase, error) {
	raw := jsonDatabase{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse database: %w", err)
	}

	db := &JSONDatabase{
		pgns:            make(map[uint32]*PGNDefinition, len(raw.PGNs)),
		spns:            make(map[uint32]*SPNDefinition, len(raw.SPNs)),
		sourceAddresses: make(map[uint8]string, len(raw.SourceAddresses)),
	}

	for key, entry := range raw.PGNs {
		pgn, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid PGN key %q: %w", key, err)
		}

		def := &PGNDefinition{
			Number: uint32(pgn),
			Name:   entry.Name,
			SPNs:   make([]SPNRef, 0, len(entry.SPNs)),
		}

		// The SPN and start bit lists are parallel arrays. A missing
		// start bit is recorded as unknown and skipped at decode time.
		for i, spn := range entry.SPNs {
			startBit := int32(-1)
			if i < len(entry.SPNStartBits) {
				startBit = entry.SPNStartBits[i]
			}

			def.SPNs = append(def.SPNs, SPNRef{Number: spn, StartBit: startBit})
		}

		db.pgns[uint32(pgn)] = def
	}

	for key, entry := range raw.SPNs {
		spn, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid SPN key %q: %w", key, err)
		}

		db.spns[uint32(spn)] = &SPNDefinition{
			Number:          uint32(spn),
			Name:            entry.Name,
			Units:           entry.Units,
			LengthBits:      uint32(entry.SPNLength),
			Resolution:      float64(entry.Resolution),
			Offset:          float64(entry.Offset),
			OperationalLow:  float64(entry.OperationalLow),
			OperationalHigh: float64(entry.OperationalHigh),
		}
	}

	for key, name := range raw.SourceAddresses {
		sa, err := strconv.ParseUint(key, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid source address key %q: %w", key, err)
		}

		db.sourceAddresses[uint8(sa)] = name
	}

	return db, nil
}

func (db *JSONDatabase) PGN(pgn uint32) (*PGNDefinition, bool) {
	def, ok := db.pgns[pgn]
	return def, ok
}

func (db *JSONDatabase) SPN(spn uint32) (*SPNDefinition, bool) {
	def, ok := db.spns[spn]
	return def, ok
}

func (db *JSONDatabase) SourceAddressName(sa uint8) (string, bool) {
	name, ok := db.sourceAddresses[sa]
	return name, ok
}
