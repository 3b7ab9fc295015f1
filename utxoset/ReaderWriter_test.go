package utxoset

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/bsv-blockchain/txoutset/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleEntries covers coinbase and regular outputs, a multi-output
// transaction and both template and raw scripts.
func sampleEntries() []Entry {
	p2pkh := []byte{bscript.OpDUP, bscript.OpHASH160, bscript.OpDATA20}
	p2pkh = append(p2pkh, bytes.Repeat([]byte{0x11}, 20)...)
	p2pkh = append(p2pkh, bscript.OpEQUALVERIFY, bscript.OpCHECKSIG)

	return []Entry{
		{
			Outpoint: NewOutpoint(testHash(0x01), 0),
			UTXO:     NewUTXO(5000000000, 1, true, p2pkh),
		},
		{
			Outpoint: NewOutpoint(testHash(0x02), 0),
			UTXO:     NewUTXO(123456789, 100, false, []byte{bscript.OpRETURN, 0x01, 0xaa}),
		},
		{
			Outpoint: NewOutpoint(testHash(0x02), 1),
			UTXO:     NewUTXO(546, 100, false, p2pkh),
		},
		{
			Outpoint: NewOutpoint(testHash(0xfe), 7),
			UTXO:     NewUTXO(1, 850000, false, nil),
		},
	}
}

func buildSnapshot(t *testing.T, version Version, entries []Entry) []byte {
	t.Helper()

	var buf bytes.Buffer

	header := &SnapshotHeader{
		Version:   version,
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

	return buf.Bytes()
}

func loadSnapshot(t *testing.T, b []byte) *UTXOSet {
	t.Helper()

	us, err := Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
	require.NoError(t, err)

	return us
}

func TestRoundTrip(t *testing.T) {
	for _, version := range []Version{VersionLegacy, VersionCurrent} {
		entries := sampleEntries()
		us := loadSnapshot(t, buildSnapshot(t, version, entries))

		require.Equal(t, len(entries), us.Length())

		for _, entry := range entries {
			got, ok := us.Get(entry.Outpoint)
			require.True(t, ok, "missing %s", entry.Outpoint)
			assert.True(t, entry.UTXO.Equal(got), "mismatch at %s", entry.Outpoint)
		}
	}
}

func TestRoundTripEmptySnapshot(t *testing.T) {
	for _, version := range []Version{VersionLegacy, VersionCurrent} {
		us := loadSnapshot(t, buildSnapshot(t, version, nil))
		assert.Equal(t, 0, us.Length())
	}
}

func TestCrossVersionEquivalence(t *testing.T) {
	entries := sampleEntries()

	legacy := loadSnapshot(t, buildSnapshot(t, VersionLegacy, entries))
	current := loadSnapshot(t, buildSnapshot(t, VersionCurrent, entries))

	equal, diff := legacy.UTXOs.IsEqual(current.UTXOs)
	assert.True(t, equal, diff)
}

func TestLegacyGroupsConsecutiveOutputs(t *testing.T) {
	// Outputs 2 and 3 share a txid, height and coinbase flag, so the legacy
	// writer folds them into one group.
	b := buildSnapshot(t, VersionLegacy, sampleEntries())

	rd, err := NewReader(bytes.NewReader(b))
	require.NoError(t, err)

	for {
		if _, _, err := rd.Next(context.Background()); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
	}

	assert.Equal(t, uint64(3), rd.RecordCount())
	assert.Equal(t, uint64(4), rd.UTXOCount())
}

func TestTruncationAlwaysFails(t *testing.T) {
	for _, version := range []Version{VersionLegacy, VersionCurrent} {
		full := buildSnapshot(t, version, sampleEntries())

		for cut := 0; cut < len(full); cut++ {
			_, err := Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(full[:cut]))
			require.Error(t, err, "version %v cut at %d decoded cleanly", version, cut)
			assert.Equal(t, "decode", errors.GetErrorCategory(err), "version %v cut at %d: %v", version, cut, err)
		}
	}
}

func TestHeaderCountMismatch(t *testing.T) {
	// Two records but a header declaring three.
	b := buildSnapshot(t, VersionCurrent, sampleEntries()[:2])
	b[magicSize+36] = 3

	_, err := Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCountMismatch))
}

func TestHugeDeclaredCountFailsFast(t *testing.T) {
	// A small file claiming a gigantic count must fail on the count check
	// without sizing any allocation from the claim.
	for _, declared := range []uint64{1 << 40, 1<<63 | 4, ^uint64(0)} {
		b := buildSnapshot(t, VersionCurrent, sampleEntries())
		binary.LittleEndian.PutUint64(b[magicSize+36:], declared)

		_, err := Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
		require.Error(t, err, "declared count %d", declared)
		assert.True(t, errors.Is(err, errors.ErrCountMismatch))

		_, err = Verify(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
		require.Error(t, err, "declared count %d", declared)
		assert.True(t, errors.Is(err, errors.ErrCountMismatch))
	}
}

func TestSizeHintIsClamped(t *testing.T) {
	assert.Equal(t, 0, sizeHint(0))
	assert.Equal(t, 4, sizeHint(4))
	assert.Equal(t, maxSizeHint, sizeHint(maxSizeHint))
	assert.Equal(t, maxSizeHint, sizeHint(maxSizeHint+1))
	assert.Equal(t, maxSizeHint, sizeHint(1<<63|4))
	assert.Equal(t, maxSizeHint, sizeHint(^uint64(0)))
}

// errorTailReader yields its wrapped content and then fails instead of
// reporting a clean end of stream.
type errorTailReader struct {
	r   io.Reader
	err error
}

func (e *errorTailReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err == io.EOF {
		return n, e.err
	}

	return n, err
}

func TestFooterTailReadErrorIsNotTrailingData(t *testing.T) {
	b := buildSnapshot(t, VersionCurrent, sampleEntries())

	r := &errorTailReader{r: bytes.NewReader(b), err: io.ErrClosedPipe}

	_, err := Load(context.Background(), ulogger.TestLogger{}, r)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errors.ErrMalformedRecord))
	assert.True(t, errors.Is(err, errors.ErrStorage))
}

func TestFooterCountMismatch(t *testing.T) {
	b := buildSnapshot(t, VersionLegacy, sampleEntries())

	// The footer utxo count sits 8 bytes from the end of a legacy file.
	binary.LittleEndian.PutUint64(b[len(b)-8:], 99)

	_, err := Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCountMismatch))
}

func TestChecksumTamper(t *testing.T) {
	b := buildSnapshot(t, VersionCurrent, sampleEntries())

	// The checksum is the last 32 bytes of a current file.
	b[len(b)-1] ^= 0xff

	_, err := Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrChecksumMismatch))
}

func TestRecordTamperFailsChecksum(t *testing.T) {
	entries := sampleEntries()
	b := buildSnapshot(t, VersionCurrent, entries)

	// Flip one bit of the first record's height code. The record still
	// decodes, the checksum catches the change.
	b[headerSize+36] ^= 0x01

	_, err := Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrChecksumMismatch))
}

func TestTrailingBytesRejected(t *testing.T) {
	for _, version := range []Version{VersionLegacy, VersionCurrent} {
		b := buildSnapshot(t, version, sampleEntries())
		b = append(b, 0x00)

		_, err := Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(b))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMalformedRecord))
	}
}

func TestDuplicateOutpoint(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries, entries[0])

	var buf bytes.Buffer

	header := &SnapshotHeader{
		Version:   VersionLegacy,
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

	_, err = Load(context.Background(), ulogger.TestLogger{}, bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateOutpoint))
}

func TestReaderContextCancellation(t *testing.T) {
	b := buildSnapshot(t, VersionCurrent, sampleEntries())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rd, err := NewReader(bytes.NewReader(b))
	require.NoError(t, err)

	_, _, err = rd.Next(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrContextCanceled))
}

func TestWriterRejectsCountShortfall(t *testing.T) {
	var buf bytes.Buffer

	header := &SnapshotHeader{
		Version:   VersionCurrent,
		BlockHash: testHash(0x99),
		Height:    1,
		UTXOCount: 2,
	}

	sw, err := NewWriter(&buf, header)
	require.NoError(t, err)

	entry := sampleEntries()[0]
	require.NoError(t, sw.Append(&entry.Outpoint, entry.UTXO))

	err = sw.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCountMismatch))
}

func TestWriterRejectsZeroTxID(t *testing.T) {
	var buf bytes.Buffer

	header := &SnapshotHeader{Version: VersionCurrent, UTXOCount: 1}

	sw, err := NewWriter(&buf, header)
	require.NoError(t, err)

	outpoint := NewOutpoint(testHash(0x00), 0)

	err = sw.Append(&outpoint, NewUTXO(1, 1, false, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}
