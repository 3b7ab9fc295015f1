// Package utxoset decodes, verifies, writes and compares on-disk UTXO set
// snapshots. Two encodings are supported: the legacy transaction-grouped
// compressed format and the current flat fixed-width format. Both decode into
// the same canonical model so that snapshots can be compared across versions.
package utxoset

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/txoutset/errors"
)

// OutpointSize is the serialized size of an Outpoint in bytes.
const OutpointSize = 36

// Outpoint identifies a single transaction output.
type Outpoint struct {
	TxID  chainhash.Hash
	Index uint32
}

// NewOutpoint creates a new Outpoint.
func NewOutpoint(txID chainhash.Hash, index uint32) Outpoint {
	return Outpoint{
		TxID:  txID,
		Index: index,
	}
}

// Hash buckets the outpoint into one of mod shards.
func (o Outpoint) Hash(mod uint16) uint16 {
	return (uint16(o.TxID[0])<<8 | uint16(o.TxID[1])) % mod
}

// NewOutpointFromBytes creates a new Outpoint from a byte slice. It expects exactly
// 36 bytes, the first 32 being the transaction ID and the last 4 the index, both
// little endian.
func NewOutpointFromBytes(b []byte) (*Outpoint, error) {
	if len(b) != OutpointSize {
		return nil, errors.NewInvalidArgumentError("invalid outpoint length: expected %d bytes, got %d", OutpointSize, len(b))
	}

	txID, err := chainhash.NewHash(b[:32])
	if err != nil {
		return nil, errors.NewInvalidArgumentError("failed to create hash from bytes", err)
	}

	return &Outpoint{
		TxID:  *txID,
		Index: binary.LittleEndian.Uint32(b[32:]),
	}, nil
}

// Bytes returns the 36 byte serialized form of the Outpoint.
func (o *Outpoint) Bytes() []byte {
	serialized := make([]byte, OutpointSize)
	copy(serialized, o.TxID[:])
	binary.LittleEndian.PutUint32(serialized[32:], o.Index)

	return serialized
}

// NewOutpointFromReader reads a 36 byte Outpoint from r.
func NewOutpointFromReader(r io.Reader) (*Outpoint, error) {
	o := new(Outpoint)

	if _, err := io.ReadFull(r, o.TxID[:]); err != nil {
		return nil, errors.NewTruncatedInputError("error reading txid", err)
	}

	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, errors.NewTruncatedInputError("error reading index", err)
	}

	o.Index = binary.LittleEndian.Uint32(b[:])

	return o, nil
}

// Write writes the 36 byte serialized form of the Outpoint to w.
func (o *Outpoint) Write(w io.Writer) error {
	if _, err := w.Write(o.Bytes()); err != nil {
		return errors.NewStorageError("error writing outpoint", err)
	}

	return nil
}

// String returns the Outpoint formatted as "txid:index". The txid is rendered
// big endian in hex, as displayed by block explorers.
func (o Outpoint) String() string {
	return fmt.Sprintf("%v:%d", o.TxID, o.Index)
}

// Equal reports whether two outpoints reference the same output.
func (o *Outpoint) Equal(other *Outpoint) bool {
	return o.TxID.IsEqual(&other.TxID) && o.Index == other.Index
}

// Less imposes the canonical ordering used in diff output: ascending by raw
// txid bytes, then by output index.
func (o *Outpoint) Less(other *Outpoint) bool {
	for i := range o.TxID {
		if o.TxID[i] != other.TxID[i] {
			return o.TxID[i] < other.TxID[i]
		}
	}

	return o.Index < other.Index
}
