package utxoset

import (
	"bytes"
	"context"
	"testing"

	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/bsv-blockchain/txoutset/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyValidSnapshots(t *testing.T) {
	for _, version := range []Version{VersionLegacy, VersionCurrent} {
		b := buildSnapshot(t, version, sampleEntries())

		result, err := Verify(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
		require.NoError(t, err)

		assert.Equal(t, version, result.Header.Version)
		assert.Equal(t, uint64(4), result.UTXOs)

		if version == VersionLegacy {
			assert.Equal(t, uint64(3), result.Records)
		} else {
			assert.Equal(t, uint64(4), result.Records)
		}
	}
}

func TestVerifyChecksumTamper(t *testing.T) {
	b := buildSnapshot(t, VersionCurrent, sampleEntries())
	b[len(b)-5] ^= 0x10

	_, err := Verify(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrChecksumMismatch))
	assert.Equal(t, "integrity", errors.GetErrorCategory(err))
}

func TestVerifyDetectsDuplicates(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries, entries[2])

	var buf bytes.Buffer

	header := &SnapshotHeader{
		Version:   VersionCurrent,
		BlockHash: testHash(0x99),
		Height:    850000,
		UTXOCount: uint64(len(entries)),
	}

	sw, err := NewWriter(&buf, header)
	require.NoError(t, err)

	for _, entry := range entries {
		require.NoError(t, sw.Append(&entry.Outpoint, entry.UTXO))
	}

	require.NoError(t, sw.Close())

	_, err = Verify(context.Background(), ulogger.TestLogger{}, bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateOutpoint))
}

func TestVerifyLegacyHasNoChecksum(t *testing.T) {
	// Legacy footers carry counts only, verification must still pass.
	b := buildSnapshot(t, VersionLegacy, sampleEntries())

	_, err := Verify(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
	require.NoError(t, err)
}
