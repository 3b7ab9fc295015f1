package utxoset

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"io"

	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/bsv-blockchain/txoutset/serialise"
)

// Writer emits a snapshot file in either encoding. Outputs are appended one at
// a time; consecutive outputs sharing a txid, height and coinbase flag are
// folded into a single group when writing the legacy format. Close writes the
// EOF marker and footer, the file is incomplete without it.
type Writer struct {
	w      io.Writer
	header *SnapshotHeader

	// hasher accumulates the raw record bytes, current format only
	hasher hash.Hash

	// pending legacy group
	group []groupedOutput

	groupTxID     [32]byte
	groupHeight   uint32
	groupCoinbase bool

	recordCount uint64
	utxoCount   uint64
	closed      bool
}

type groupedOutput struct {
	index  uint32
	value  uint64
	script []byte
}

// NewWriter writes the snapshot header to w and returns a Writer ready to
// accept outputs. The declared UTXO count is fixed up front, Close fails if
// the appended outputs do not add up to it.
func NewWriter(w io.Writer, header *SnapshotHeader) (*Writer, error) {
	if err := header.Write(w); err != nil {
		return nil, err
	}

	sw := &Writer{
		w:      w,
		header: header,
	}

	if header.Version == VersionCurrent {
		sw.hasher = sha256.New()
	}

	return sw, nil
}

// Append writes a single output to the snapshot.
func (sw *Writer) Append(outpoint *Outpoint, utxo *UTXO) error {
	if sw.closed {
		return errors.NewProcessingError("writer is closed")
	}

	if bytes.Equal(outpoint.TxID[:], EOFMarker) {
		return errors.NewInvalidArgumentError("txid of all zeroes collides with the EOF marker")
	}

	if len(utxo.Script) > serialise.MaxScriptSize {
		return errors.NewInvalidArgumentError("script size %d exceeds the %d byte limit", len(utxo.Script), serialise.MaxScriptSize)
	}

	switch sw.header.Version {
	case VersionLegacy:
		return sw.appendLegacy(outpoint, utxo)
	default:
		return sw.appendCurrent(outpoint, utxo)
	}
}

func (sw *Writer) appendLegacy(outpoint *Outpoint, utxo *UTXO) error {
	sameGroup := len(sw.group) > 0 &&
		sw.groupTxID == outpoint.TxID &&
		sw.groupHeight == utxo.Height &&
		sw.groupCoinbase == utxo.Coinbase

	if !sameGroup {
		if err := sw.flushGroup(); err != nil {
			return err
		}

		sw.groupTxID = outpoint.TxID
		sw.groupHeight = utxo.Height
		sw.groupCoinbase = utxo.Coinbase
	}

	sw.group = append(sw.group, groupedOutput{
		index:  outpoint.Index,
		value:  utxo.Value,
		script: utxo.Script,
	})

	sw.utxoCount++

	return nil
}

// flushGroup writes the buffered legacy group: txid, height/coinbase code,
// output count, then each output as index, compressed amount and compressed
// script.
func (sw *Writer) flushGroup() error {
	if len(sw.group) == 0 {
		return nil
	}

	if _, err := sw.w.Write(sw.groupTxID[:]); err != nil {
		return errors.NewStorageError("error writing group txid", err)
	}

	var flag uint64
	if sw.groupCoinbase {
		flag = 1
	}

	if err := serialise.WriteVarInt(sw.w, uint64(sw.groupHeight)<<1|flag); err != nil {
		return err
	}

	if err := serialise.WriteCompactSize(sw.w, uint64(len(sw.group))); err != nil {
		return err
	}

	for _, out := range sw.group {
		if err := serialise.WriteCompactSize(sw.w, uint64(out.index)); err != nil {
			return err
		}

		if err := serialise.WriteAmount(sw.w, out.value); err != nil {
			return err
		}

		if err := serialise.WriteScript(sw.w, out.script); err != nil {
			return err
		}
	}

	sw.recordCount++
	sw.group = sw.group[:0]

	return nil
}

func (sw *Writer) appendCurrent(outpoint *Outpoint, utxo *UTXO) error {
	b := make([]byte, 0, 52+len(utxo.Script))

	b = append(b, outpoint.TxID[:]...)
	b = binary.LittleEndian.AppendUint32(b, outpoint.Index)
	b = binary.LittleEndian.AppendUint32(b, utxo.Code())
	b = binary.LittleEndian.AppendUint64(b, utxo.Value)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(utxo.Script)))
	b = append(b, utxo.Script...)

	if _, err := sw.w.Write(b); err != nil {
		return errors.NewStorageError("error writing record", err)
	}

	sw.hasher.Write(b)

	sw.recordCount++
	sw.utxoCount++

	return nil
}

// Close flushes any pending group and writes the EOF marker and footer.
func (sw *Writer) Close() error {
	if sw.closed {
		return errors.NewProcessingError("writer is closed")
	}

	if err := sw.flushGroup(); err != nil {
		return err
	}

	if sw.utxoCount != sw.header.UTXOCount {
		return errors.NewCountMismatchError("header declares %d utxos, appended %d", sw.header.UTXOCount, sw.utxoCount)
	}

	if _, err := sw.w.Write(EOFMarker); err != nil {
		return errors.NewStorageError("error writing EOF marker", err)
	}

	var footer [16]byte

	binary.LittleEndian.PutUint64(footer[0:8], sw.recordCount)
	binary.LittleEndian.PutUint64(footer[8:16], sw.utxoCount)

	if _, err := sw.w.Write(footer[:]); err != nil {
		return errors.NewStorageError("error writing footer counts", err)
	}

	if sw.header.Version == VersionCurrent {
		checksum := sha256.Sum256(sw.hasher.Sum(nil))

		if _, err := sw.w.Write(checksum[:]); err != nil {
			return errors.NewStorageError("error writing footer checksum", err)
		}
	}

	sw.closed = true

	return nil
}

// RecordCount returns the number of records written so far.
func (sw *Writer) RecordCount() uint64 {
	return sw.recordCount
}

// UTXOCount returns the number of outputs written so far.
func (sw *Writer) UTXOCount() uint64 {
	return sw.utxoCount
}
