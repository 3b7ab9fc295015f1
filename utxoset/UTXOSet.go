package utxoset

import (
	"context"
	"io"

	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/bsv-blockchain/txoutset/ulogger"
)

// maxSizeHint caps the preallocation taken from a snapshot header. The
// declared count is untrusted until the footer confirms it; the map grows
// past this on demand.
const maxSizeHint = 1 << 22

// sizeHint bounds a declared count to a safe capacity hint.
func sizeHint(count uint64) int {
	if count > maxSizeHint {
		return maxSizeHint
	}

	return int(count)
}

// UTXOSet is the canonical in-memory model of a snapshot: the header plus an
// outpoint to coin map with no duplicate outpoints.
type UTXOSet struct {
	logger ulogger.Logger

	// Header is the snapshot header the set was decoded from.
	Header *SnapshotHeader

	// UTXOs maps each outpoint to its coin.
	UTXOs UTXOMap
}

// NewUTXOSet creates an empty UTXOSet sized for length entries.
func NewUTXOSet(logger ulogger.Logger, header *SnapshotHeader, length int) *UTXOSet {
	return &UTXOSet{
		logger: logger,
		Header: header,
		UTXOs:  NewUTXOMap(length),
	}
}

// Load decodes a full snapshot from r into a UTXOSet. Decoding stops at the
// first error; a returned set is always complete and duplicate-free.
func Load(ctx context.Context, logger ulogger.Logger, r io.Reader) (*UTXOSet, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	header := rd.Header()

	logger.Debugf("loading snapshot %s", header)

	us := NewUTXOSet(logger, header, sizeHint(header.UTXOCount))

	for {
		outpoint, utxo, err := rd.Next(ctx)
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		if err := us.Add(*outpoint, utxo); err != nil {
			return nil, err
		}
	}

	logger.Infof("loaded snapshot %s: %d record(s), %d utxo(s)", header, rd.RecordCount(), rd.UTXOCount())

	return us, nil
}

// Add inserts a coin, rejecting outpoints already present.
func (us *UTXOSet) Add(outpoint Outpoint, utxo *UTXO) error {
	if us.UTXOs.Exists(outpoint) {
		return errors.NewDuplicateOutpointError("outpoint %s appears more than once", outpoint)
	}

	us.UTXOs.Put(outpoint, utxo)

	return nil
}

// Get returns the coin for an outpoint, if present.
func (us *UTXOSet) Get(outpoint Outpoint) (*UTXO, bool) {
	return us.UTXOs.Get(outpoint)
}

// Length returns the number of coins in the set.
func (us *UTXOSet) Length() int {
	return us.UTXOs.Length()
}

// WriteTo writes the whole set to w in the requested format. Outputs are
// emitted in canonical order so the produced file is deterministic.
func (us *UTXOSet) WriteTo(w io.Writer, version Version) error {
	header := &SnapshotHeader{
		Version:   version,
		BlockHash: us.Header.BlockHash,
		Height:    us.Header.Height,
		UTXOCount: uint64(us.Length()),
	}

	sw, err := NewWriter(w, header)
	if err != nil {
		return err
	}

	for _, entry := range us.sortedEntries() {
		if err := sw.Append(&entry.Outpoint, entry.UTXO); err != nil {
			return err
		}
	}

	return sw.Close()
}

// sortedEntries returns every coin in canonical order.
func (us *UTXOSet) sortedEntries() []Entry {
	entries := make([]Entry, 0, us.Length())

	us.UTXOs.Iter(func(outpoint Outpoint, utxo *UTXO) bool {
		entries = append(entries, Entry{Outpoint: outpoint, UTXO: utxo})

		return false
	})

	sortEntries(entries)

	return entries
}
