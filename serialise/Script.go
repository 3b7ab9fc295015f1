package serialise

import (
	"io"

	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/txoutset/errors"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// MaxScriptSize is the largest locking script a record may carry. Anything
// bigger is rejected as malformed rather than silently substituted.
const MaxScriptSize = 10000

// The common locking script shapes compress to a 1 byte template id plus a
// fixed payload. Everything else is written raw behind a VarInt holding the
// script length plus the number of template ids.
//
//	0x00  P2PKH          20 byte pubkey hash
//	0x01  P2SH           20 byte script hash
//	0x02  P2PK           32 byte x coordinate, even y
//	0x03  P2PK           32 byte x coordinate, odd y
//	0x04  P2PK (uncomp)  32 byte x coordinate, even y
//	0x05  P2PK (uncomp)  32 byte x coordinate, odd y
const numSpecialScripts = 6

func isP2PKH(script []byte) bool {
	return len(script) == 25 &&
		script[0] == bscript.OpDUP &&
		script[1] == bscript.OpHASH160 &&
		script[2] == bscript.OpDATA20 &&
		script[23] == bscript.OpEQUALVERIFY &&
		script[24] == bscript.OpCHECKSIG
}

func isP2SH(script []byte) bool {
	return len(script) == 23 &&
		script[0] == bscript.OpHASH160 &&
		script[1] == bscript.OpDATA20 &&
		script[22] == bscript.OpEQUAL
}

func isCompressedP2PK(script []byte) bool {
	return len(script) == 35 &&
		script[0] == bscript.OpDATA33 &&
		(script[1] == 0x02 || script[1] == 0x03) &&
		script[34] == bscript.OpCHECKSIG
}

func isUncompressedP2PK(script []byte) bool {
	if len(script) != 67 ||
		script[0] != bscript.OpDATA65 ||
		script[1] != 0x04 ||
		script[66] != bscript.OpCHECKSIG {
		return false
	}

	// Only keys actually on the curve compress losslessly.
	_, err := secp256k1.ParsePubKey(script[1:66])

	return err == nil
}

// WriteScript writes script in compressed form.
func WriteScript(w io.Writer, script []byte) error {
	switch {
	case isP2PKH(script):
		if _, err := w.Write([]byte{0x00}); err != nil {
			return errors.NewTruncatedInputError("failed to write script", err)
		}

		if _, err := w.Write(script[3:23]); err != nil {
			return errors.NewTruncatedInputError("failed to write script", err)
		}

		return nil

	case isP2SH(script):
		if _, err := w.Write([]byte{0x01}); err != nil {
			return errors.NewTruncatedInputError("failed to write script", err)
		}

		if _, err := w.Write(script[2:22]); err != nil {
			return errors.NewTruncatedInputError("failed to write script", err)
		}

		return nil

	case isCompressedP2PK(script):
		if _, err := w.Write(script[1:34]); err != nil {
			return errors.NewTruncatedInputError("failed to write script", err)
		}

		return nil

	case isUncompressedP2PK(script):
		// Template id 0x04 or 0x05 records the parity of y, the payload is
		// the x coordinate.
		if _, err := w.Write([]byte{0x04 | (script[65] & 0x01)}); err != nil {
			return errors.NewTruncatedInputError("failed to write script", err)
		}

		if _, err := w.Write(script[2:34]); err != nil {
			return errors.NewTruncatedInputError("failed to write script", err)
		}

		return nil

	default:
		if err := WriteVarInt(w, uint64(len(script))+numSpecialScripts); err != nil {
			return err
		}

		if _, err := w.Write(script); err != nil {
			return errors.NewTruncatedInputError("failed to write script", err)
		}

		return nil
	}
}

// ReadScript reads a compressed script and expands it to its full form.
func ReadScript(r io.Reader) ([]byte, error) {
	size, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	switch size {
	case 0x00:
		var hash [20]byte
		if _, err = io.ReadFull(r, hash[:]); err != nil {
			return nil, errors.NewTruncatedInputError("failed to read script payload", err)
		}

		script := make([]byte, 0, 25)
		script = append(script, bscript.OpDUP, bscript.OpHASH160, bscript.OpDATA20)
		script = append(script, hash[:]...)
		script = append(script, bscript.OpEQUALVERIFY, bscript.OpCHECKSIG)

		return script, nil

	case 0x01:
		var hash [20]byte
		if _, err = io.ReadFull(r, hash[:]); err != nil {
			return nil, errors.NewTruncatedInputError("failed to read script payload", err)
		}

		script := make([]byte, 0, 23)
		script = append(script, bscript.OpHASH160, bscript.OpDATA20)
		script = append(script, hash[:]...)
		script = append(script, bscript.OpEQUAL)

		return script, nil

	case 0x02, 0x03:
		var x [32]byte
		if _, err = io.ReadFull(r, x[:]); err != nil {
			return nil, errors.NewTruncatedInputError("failed to read script payload", err)
		}

		script := make([]byte, 0, 35)
		script = append(script, bscript.OpDATA33, byte(size))
		script = append(script, x[:]...)
		script = append(script, bscript.OpCHECKSIG)

		return script, nil

	case 0x04, 0x05:
		var x [32]byte
		if _, err = io.ReadFull(r, x[:]); err != nil {
			return nil, errors.NewTruncatedInputError("failed to read script payload", err)
		}

		compressed := make([]byte, 0, 33)
		compressed = append(compressed, byte(size)-2)
		compressed = append(compressed, x[:]...)

		pubKey, err := secp256k1.ParsePubKey(compressed)
		if err != nil {
			return nil, errors.NewMalformedRecordError("compressed script holds an invalid public key", err)
		}

		script := make([]byte, 0, 67)
		script = append(script, bscript.OpDATA65)
		script = append(script, pubKey.SerializeUncompressed()...)
		script = append(script, bscript.OpCHECKSIG)

		return script, nil

	default:
		rawSize := size - numSpecialScripts
		if rawSize > MaxScriptSize {
			return nil, errors.NewMalformedRecordError("script size %d exceeds the %d byte limit", rawSize, MaxScriptSize)
		}

		script := make([]byte, rawSize)
		if _, err = io.ReadFull(r, script); err != nil {
			return nil, errors.NewTruncatedInputError("failed to read script payload", err)
		}

		return script, nil
	}
}
