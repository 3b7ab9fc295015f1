package serialise

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/bsv-blockchain/txoutset/errors"
)

// CompactSize is the classic bitcoin wire length prefix:
//
//	size <  253        -- 1 byte
//	size <= 0xffff     -- 0xfd + 2 bytes LE
//	size <= 0xffffffff -- 0xfe + 4 bytes LE
//	size >  0xffffffff -- 0xff + 8 bytes LE

// WriteCompactSize writes n to w in CompactSize form.
func WriteCompactSize(w io.Writer, n uint64) error {
	var b [9]byte

	switch {
	case n < 253:
		b[0] = byte(n)

		if _, err := w.Write(b[:1]); err != nil {
			return errors.NewTruncatedInputError("failed to write compact size", err)
		}

		return nil

	case n <= math.MaxUint16:
		b[0] = 253
		binary.LittleEndian.PutUint16(b[1:3], uint16(n))

		if _, err := w.Write(b[:3]); err != nil {
			return errors.NewTruncatedInputError("failed to write compact size", err)
		}

		return nil

	case n <= math.MaxUint32:
		b[0] = 254
		binary.LittleEndian.PutUint32(b[1:5], uint32(n))

		if _, err := w.Write(b[:5]); err != nil {
			return errors.NewTruncatedInputError("failed to write compact size", err)
		}

		return nil

	default:
		b[0] = 255
		binary.LittleEndian.PutUint64(b[1:9], n)

		if _, err := w.Write(b[:9]); err != nil {
			return errors.NewTruncatedInputError("failed to write compact size", err)
		}

		return nil
	}
}

// ReadCompactSize reads a single CompactSize from r.
func ReadCompactSize(r io.Reader) (uint64, error) {
	var b [8]byte

	if _, err := io.ReadFull(r, b[:1]); err != nil {
		return 0, errors.NewTruncatedInputError("failed to read compact size", err)
	}

	switch b[0] {
	case 253:
		if _, err := io.ReadFull(r, b[:2]); err != nil {
			return 0, errors.NewTruncatedInputError("failed to read compact size", err)
		}

		return uint64(binary.LittleEndian.Uint16(b[:2])), nil

	case 254:
		if _, err := io.ReadFull(r, b[:4]); err != nil {
			return 0, errors.NewTruncatedInputError("failed to read compact size", err)
		}

		return uint64(binary.LittleEndian.Uint32(b[:4])), nil

	case 255:
		if _, err := io.ReadFull(r, b[:8]); err != nil {
			return 0, errors.NewTruncatedInputError("failed to read compact size", err)
		}

		return binary.LittleEndian.Uint64(b[:8]), nil

	default:
		return uint64(b[0]), nil
	}
}
