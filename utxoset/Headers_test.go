package utxoset

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHash(b byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = b
	}

	return h
}

func TestSnapshotHeaderRoundTrip(t *testing.T) {
	for _, version := range []Version{VersionLegacy, VersionCurrent} {
		header := &SnapshotHeader{
			Version:   version,
			BlockHash: testHash(0x42),
			Height:    850000,
			UTXOCount: 12345,
		}

		var buf bytes.Buffer

		require.NoError(t, header.Write(&buf))
		assert.Equal(t, headerSize, buf.Len())

		got, err := NewSnapshotHeaderFromReader(&buf)
		require.NoError(t, err)
		assert.Equal(t, header, got)
	}
}

func TestSnapshotHeaderUnknownMagic(t *testing.T) {
	b := make([]byte, headerSize)
	copy(b, "U-S-9.9")

	_, err := NewSnapshotHeaderFromReader(bytes.NewReader(b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrHeaderInvalid))
}

func TestSnapshotHeaderTruncated(t *testing.T) {
	b := make([]byte, headerSize)
	copy(b, MagicLegacy)

	_, err := NewSnapshotHeaderFromReader(bytes.NewReader(b[:20]))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTruncatedInput))
}

func TestSnapshotHeaderRejectsUnpaddedMagic(t *testing.T) {
	// Magic must be right-padded with zero bytes.
	b := make([]byte, headerSize)
	copy(b, "U-S-1.0x")

	_, err := NewSnapshotHeaderFromReader(bytes.NewReader(b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrHeaderInvalid))
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "U-S-1.0", VersionLegacy.String())
	assert.Equal(t, "U-S-2.0", VersionCurrent.String())
}
