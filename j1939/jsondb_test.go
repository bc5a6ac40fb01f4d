package j1939

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadDatabase(t *testing.T) {
	db, err := LoadDatabase("testdata/j1939db.json")
	require.NoError(t, err)

	pgn, ok := db.PGN(61444)
	require.True(t, ok)
	assert.Equal(t, "Electronic Engine Controller 1", pgn.Name)
	require.Len(t, pgn.SPNs, 3)
	assert.Equal(t, SPNRef{Number: 512, StartBit: 8}, pgn.SPNs[0])
	assert.Equal(t, SPNRef{Number: 190, StartBit: 24}, pgn.SPNs[1])

	spn, ok := db.SPN(190)
	require.True(t, ok)
	assert.Equal(t, "Engine Speed", spn.Name)
	assert.Equal(t, "rpm", spn.Units)
	assert.Equal(t, uint32(16), spn.LengthBits)
	assert.Equal(t, 0.125, spn.Resolution)

	// Non numeric annex values ("ASCII", "Variable") load as zero.
	prop, ok := db.SPN(2550)
	require.True(t, ok)
	assert.Equal(t, uint32(0), prop.LengthBits)
	assert.Equal(t, 0.0, prop.Resolution)

	name, ok := db.SourceAddressName(0)
	require.True(t, ok)
	assert.Equal(t, "Engine #1", name)

	_, ok = db.SourceAddressName(42)
	assert.False(t, ok)

	_, ok = db.PGN(1)
	assert.False(t, ok)
}

func Test_ParseDatabase_Invalid(t *testing.T) {
	_, err := ParseDatabase([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseDatabase([]byte(`{"J1939PGNdb": {"abc": {}}}`))
	assert.Error(t, err)

	_, err = ParseDatabase([]byte(`{"J1939SATabledb": {"300": "x"}}`))
	assert.Error(t, err)
}

func Test_LoadDatabase_MissingFile(t *testing.T) {
	_, err := LoadDatabase("testdata/nope.json")
	assert.Error(t, err)
}
