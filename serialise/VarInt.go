// Package serialise implements the compact integer, amount and script
// encodings shared by the snapshot file formats.
package serialise

import (
	"io"
	"math"

	"github.com/bsv-blockchain/txoutset/errors"
)

// VarInt is an MSB base-128 encoding of an unsigned integer. The high bit of
// each byte signals that another byte follows, and one is subtracted from all
// but the last digit so that every integer has exactly one encoding:
//
//	0:    [0x00]        256:   [0x81 0x00]
//	127:  [0x7f]        16383: [0xfe 0x7f]
//	128:  [0x80 0x00]   16384: [0xff 0x00]
//	255:  [0x80 0x7f]   65535: [0x82 0xfe 0x7f]

// WriteVarInt writes n to w in VarInt form.
func WriteVarInt(w io.Writer, n uint64) error {
	var b [10]byte // ceil(64/7) digits max

	i := len(b) - 1
	b[i] = byte(n & 0x7f)

	for n > 0x7f {
		n = (n >> 7) - 1
		i--
		b[i] = byte(n&0x7f) | 0x80
	}

	if _, err := w.Write(b[i:]); err != nil {
		return errors.NewTruncatedInputError("failed to write varint", err)
	}

	return nil
}

// ReadVarInt reads a single VarInt from r.
func ReadVarInt(r io.Reader) (uint64, error) {
	var (
		n   uint64
		buf [1]byte
	)

	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, errors.NewTruncatedInputError("failed to read varint byte", err)
		}

		b := buf[0]

		if n > math.MaxUint64>>7 {
			return 0, errors.NewMalformedRecordError("varint overflows 64 bits")
		}

		n = n<<7 | uint64(b&0x7f)

		if b&0x80 == 0 {
			return n, nil
		}

		if n == math.MaxUint64 {
			return 0, errors.NewMalformedRecordError("varint overflows 64 bits")
		}

		n++
	}
}

// AppendVarInt appends the VarInt form of n to dst.
func AppendVarInt(dst []byte, n uint64) []byte {
	var b [10]byte

	i := len(b) - 1
	b[i] = byte(n & 0x7f)

	for n > 0x7f {
		n = (n >> 7) - 1
		i--
		b[i] = byte(n&0x7f) | 0x80
	}

	return append(dst, b[i:]...)
}
