package utxoset

import (
	"bytes"
	"fmt"
	"math"

	"github.com/bsv-blockchain/txoutset/errors"
)

// UTXO is the canonical in-memory form of a single unspent output. Both
// snapshot encodings decode into this shape.
type UTXO struct {
	// Value is the amount in satoshis.
	Value uint64

	// Height is the block height the output was created at.
	Height uint32

	// Coinbase marks outputs of coinbase transactions.
	Coinbase bool

	// Script is the full locking script.
	Script []byte
}

// NewUTXO creates a new UTXO.
func NewUTXO(value uint64, height uint32, coinbase bool, script []byte) *UTXO {
	return &UTXO{
		Value:    value,
		Height:   height,
		Coinbase: coinbase,
		Script:   script,
	}
}

// Code packs the height and coinbase flag into a single value. The height is
// shifted left one bit and the flag stored in the least significant bit.
func (u *UTXO) Code() uint32 {
	var flag uint32
	if u.Coinbase {
		flag = 1
	}

	return u.Height<<1 | flag
}

// splitCode unpacks a height/coinbase code. Codes above 32 bits are rejected,
// no valid height reaches that range.
func splitCode(code uint64) (uint32, bool, error) {
	if code > math.MaxUint32 {
		return 0, false, errors.NewMalformedRecordError("height code %d overflows 32 bits", code)
	}

	return uint32(code >> 1), code&1 == 1, nil
}

// Equal reports whether two UTXOs hold the same value, height, coinbase flag
// and script.
func (u *UTXO) Equal(other *UTXO) bool {
	if u == nil || other == nil {
		return u == other
	}

	return u.Value == other.Value &&
		u.Height == other.Height &&
		u.Coinbase == other.Coinbase &&
		bytes.Equal(u.Script, other.Script)
}

func (u *UTXO) String() string {
	if u.Coinbase {
		return fmt.Sprintf("%d sat (height %d coinbase) - %x", u.Value, u.Height, u.Script)
	}

	return fmt.Sprintf("%d sat (height %d) - %x", u.Value, u.Height, u.Script)
}
