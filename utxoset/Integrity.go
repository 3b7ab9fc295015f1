package utxoset

import (
	"context"
	"io"

	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/bsv-blockchain/txoutset/ulogger"
)

// VerifyResult summarizes a structural verification pass.
type VerifyResult struct {
	Header  *SnapshotHeader
	Records uint64
	UTXOs   uint64
}

// Verify streams a whole snapshot without materializing the coins, checking
// everything the decoder enforces: header validity, record well-formedness,
// EOF marker, footer counts and the record-stream checksum. Outpoints are
// still tracked so duplicates are caught.
func Verify(ctx context.Context, logger ulogger.Logger, r io.Reader) (*VerifyResult, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	header := rd.Header()

	logger.Debugf("verifying snapshot %s", header)

	// values are not needed, only outpoint presence
	seen := NewUTXOMap(sizeHint(header.UTXOCount))

	for {
		outpoint, _, err := rd.Next(ctx)
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		if seen.Exists(*outpoint) {
			return nil, errors.NewDuplicateOutpointError("outpoint %s appears more than once", *outpoint)
		}

		seen.Put(*outpoint, nil)
	}

	logger.Infof("verified snapshot %s: %d record(s), %d utxo(s)", header, rd.RecordCount(), rd.UTXOCount())

	return &VerifyResult{
		Header:  header,
		Records: rd.RecordCount(),
		UTXOs:   rd.UTXOCount(),
	}, nil
}
