package utxoset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/txoutset/errors"
)

// Version selects one of the two snapshot encodings.
type Version int

const (
	// VersionLegacy is the transaction-grouped compressed encoding.
	VersionLegacy Version = 1

	// VersionCurrent is the flat fixed-width encoding.
	VersionCurrent Version = 2
)

const (
	// MagicLegacy is the file magic of legacy snapshots, right-padded to 8 bytes.
	MagicLegacy = "U-S-1.0"

	// MagicCurrent is the file magic of current snapshots, right-padded to 8 bytes.
	MagicCurrent = "U-S-2.0"

	magicSize  = 8
	headerSize = magicSize + 32 + 4 + 8
)

// EOFMarker terminates the record stream. A txid of all zeroes cannot occur.
var EOFMarker = make([]byte, 32)

func (v Version) String() string {
	switch v {
	case VersionLegacy:
		return MagicLegacy
	case VersionCurrent:
		return MagicCurrent
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// SnapshotHeader is the fixed-size header at the start of every snapshot file:
// 8 bytes magic, 32 bytes base block hash, 4 bytes LE height and 8 bytes LE
// declared UTXO count.
type SnapshotHeader struct {
	Version   Version
	BlockHash chainhash.Hash
	Height    uint32
	UTXOCount uint64
}

// Write writes the serialized header to w.
func (h *SnapshotHeader) Write(w io.Writer) error {
	var b [headerSize]byte

	switch h.Version {
	case VersionLegacy:
		copy(b[:magicSize], MagicLegacy)
	case VersionCurrent:
		copy(b[:magicSize], MagicCurrent)
	default:
		return errors.NewInvalidArgumentError("unknown snapshot version %d", int(h.Version))
	}

	copy(b[magicSize:magicSize+32], h.BlockHash[:])
	binary.LittleEndian.PutUint32(b[magicSize+32:], h.Height)
	binary.LittleEndian.PutUint64(b[magicSize+36:], h.UTXOCount)

	if _, err := w.Write(b[:]); err != nil {
		return errors.NewStorageError("error writing snapshot header", err)
	}

	return nil
}

// NewSnapshotHeaderFromReader reads and validates a snapshot header. The
// version is determined from the magic, every later read is dispatched on it.
func NewSnapshotHeaderFromReader(r io.Reader) (*SnapshotHeader, error) {
	var b [headerSize]byte

	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, errors.NewTruncatedInputError("error reading snapshot header", err)
	}

	h := &SnapshotHeader{}

	magic := b[:magicSize]

	switch {
	case bytes.Equal(magic, paddedMagic(MagicLegacy)):
		h.Version = VersionLegacy
	case bytes.Equal(magic, paddedMagic(MagicCurrent)):
		h.Version = VersionCurrent
	default:
		return nil, errors.NewHeaderInvalidError("unknown snapshot magic %q", string(bytes.TrimRight(magic, "\x00")))
	}

	copy(h.BlockHash[:], b[magicSize:magicSize+32])
	h.Height = binary.LittleEndian.Uint32(b[magicSize+32:])
	h.UTXOCount = binary.LittleEndian.Uint64(b[magicSize+36:])

	return h, nil
}

func paddedMagic(magic string) []byte {
	b := make([]byte, magicSize)
	copy(b, magic)

	return b
}

func (h *SnapshotHeader) String() string {
	return fmt.Sprintf("%s - block %s height %d - %d utxo(s)", h.Version, h.BlockHash.String(), h.Height, h.UTXOCount)
}
