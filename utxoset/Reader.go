package utxoset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"io"
	"math"

	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/bsv-blockchain/txoutset/serialise"
)

// Reader streams a snapshot file record by record. The header is read and
// validated on construction and the decoder variant is fixed from its magic.
// Next returns io.EOF only after the EOF marker and footer have been read and
// every count and checksum check has passed, so a clean EOF means the file was
// structurally sound end to end.
type Reader struct {
	r      io.Reader
	header *SnapshotHeader

	// hasher accumulates the raw record bytes, current format only
	hasher hash.Hash

	// remaining outputs of the legacy group being decoded
	groupTxID     [32]byte
	groupHeight   uint32
	groupCoinbase bool
	groupLeft     uint64

	recordCount uint64
	utxoCount   uint64
	done        bool
}

// NewReader reads the snapshot header from r and returns a Reader positioned
// at the first record.
func NewReader(r io.Reader) (*Reader, error) {
	header, err := NewSnapshotHeaderFromReader(r)
	if err != nil {
		return nil, err
	}

	rd := &Reader{
		r:      r,
		header: header,
	}

	if header.Version == VersionCurrent {
		rd.hasher = sha256.New()
	}

	return rd, nil
}

// Header returns the snapshot header.
func (rd *Reader) Header() *SnapshotHeader {
	return rd.header
}

// RecordCount returns the number of records decoded so far. For legacy files
// a record is a transaction group, for current files a single output.
func (rd *Reader) RecordCount() uint64 {
	return rd.recordCount
}

// UTXOCount returns the number of outputs decoded so far.
func (rd *Reader) UTXOCount() uint64 {
	return rd.utxoCount
}

// Next decodes the next output. It returns io.EOF once the stream has been
// fully consumed and validated.
func (rd *Reader) Next(ctx context.Context) (*Outpoint, *UTXO, error) {
	if rd.done {
		return nil, nil, io.EOF
	}

	select {
	case <-ctx.Done():
		return nil, nil, errors.NewContextCanceledError("decode aborted", ctx.Err())
	default:
	}

	switch rd.header.Version {
	case VersionLegacy:
		return rd.nextLegacy()
	default:
		return rd.nextCurrent()
	}
}

func (rd *Reader) nextLegacy() (*Outpoint, *UTXO, error) {
	for rd.groupLeft == 0 {
		var txID [32]byte

		if _, err := io.ReadFull(rd.r, txID[:]); err != nil {
			return nil, nil, errors.NewTruncatedInputError("error reading group txid", err)
		}

		if bytes.Equal(txID[:], EOFMarker) {
			if err := rd.finish(); err != nil {
				return nil, nil, err
			}

			return nil, nil, io.EOF
		}

		code, err := serialise.ReadVarInt(rd.r)
		if err != nil {
			return nil, nil, err
		}

		height, coinbase, err := splitCode(code)
		if err != nil {
			return nil, nil, err
		}

		numOutputs, err := serialise.ReadCompactSize(rd.r)
		if err != nil {
			return nil, nil, err
		}

		if numOutputs > rd.header.UTXOCount {
			return nil, nil, errors.NewMalformedRecordError("group declares %d outputs, snapshot holds only %d", numOutputs, rd.header.UTXOCount)
		}

		rd.recordCount++
		rd.groupTxID = txID
		rd.groupHeight = height
		rd.groupCoinbase = coinbase
		rd.groupLeft = numOutputs
	}

	index, err := serialise.ReadCompactSize(rd.r)
	if err != nil {
		return nil, nil, err
	}

	if index > math.MaxUint32 {
		return nil, nil, errors.NewMalformedRecordError("output index %d overflows 32 bits", index)
	}

	value, err := serialise.ReadAmount(rd.r)
	if err != nil {
		return nil, nil, err
	}

	script, err := serialise.ReadScript(rd.r)
	if err != nil {
		return nil, nil, err
	}

	rd.groupLeft--
	rd.utxoCount++

	outpoint := NewOutpoint(rd.groupTxID, uint32(index))

	return &outpoint, NewUTXO(value, rd.groupHeight, rd.groupCoinbase, script), nil
}

func (rd *Reader) nextCurrent() (*Outpoint, *UTXO, error) {
	var txID [32]byte

	if _, err := io.ReadFull(rd.r, txID[:]); err != nil {
		return nil, nil, errors.NewTruncatedInputError("error reading record txid", err)
	}

	if bytes.Equal(txID[:], EOFMarker) {
		if err := rd.finish(); err != nil {
			return nil, nil, err
		}

		return nil, nil, io.EOF
	}

	// index + code + value + script length
	var b [20]byte

	if _, err := io.ReadFull(rd.r, b[:]); err != nil {
		return nil, nil, errors.NewTruncatedInputError("error reading record fields", err)
	}

	index := binary.LittleEndian.Uint32(b[0:4])
	code := binary.LittleEndian.Uint32(b[4:8])
	value := binary.LittleEndian.Uint64(b[8:16])
	scriptLen := binary.LittleEndian.Uint32(b[16:20])

	if scriptLen > serialise.MaxScriptSize {
		return nil, nil, errors.NewMalformedRecordError("script size %d exceeds the %d byte limit", scriptLen, serialise.MaxScriptSize)
	}

	script := make([]byte, scriptLen)
	if _, err := io.ReadFull(rd.r, script); err != nil {
		return nil, nil, errors.NewTruncatedInputError("error reading record script", err)
	}

	rd.hasher.Write(txID[:])
	rd.hasher.Write(b[:])
	rd.hasher.Write(script)

	rd.recordCount++
	rd.utxoCount++

	outpoint := NewOutpoint(txID, index)

	return &outpoint, NewUTXO(value, code>>1, code&1 == 1, script), nil
}

// finish reads the footer after the EOF marker and reconciles every declared
// count against what was actually decoded.
func (rd *Reader) finish() error {
	var b [16]byte

	if _, err := io.ReadFull(rd.r, b[:]); err != nil {
		return errors.NewTruncatedInputError("error reading footer counts", err)
	}

	footerRecords := binary.LittleEndian.Uint64(b[0:8])
	footerUTXOs := binary.LittleEndian.Uint64(b[8:16])

	if footerRecords != rd.recordCount {
		return errors.NewCountMismatchError("footer declares %d records, decoded %d", footerRecords, rd.recordCount)
	}

	if footerUTXOs != rd.utxoCount {
		return errors.NewCountMismatchError("footer declares %d utxos, decoded %d", footerUTXOs, rd.utxoCount)
	}

	if rd.header.UTXOCount != rd.utxoCount {
		return errors.NewCountMismatchError("header declares %d utxos, decoded %d", rd.header.UTXOCount, rd.utxoCount)
	}

	if rd.header.Version == VersionCurrent {
		var stored [32]byte

		if _, err := io.ReadFull(rd.r, stored[:]); err != nil {
			return errors.NewTruncatedInputError("error reading footer checksum", err)
		}

		computed := sha256.Sum256(rd.hasher.Sum(nil))

		if !bytes.Equal(stored[:], computed[:]) {
			return errors.NewChecksumMismatchError("checksum mismatch: stored %x, computed %x", stored, computed)
		}
	}

	var trailing [1]byte

	switch _, err := io.ReadFull(rd.r, trailing[:]); err {
	case io.EOF:
	case nil:
		return errors.NewMalformedRecordError("trailing bytes after footer")
	default:
		return errors.NewStorageError("error reading past footer", err)
	}

	rd.done = true

	return nil
}
