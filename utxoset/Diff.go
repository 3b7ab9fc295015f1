package utxoset

import (
	"fmt"
	"sort"
)

// Entry pairs an outpoint with its coin.
type Entry struct {
	Outpoint Outpoint
	UTXO     *UTXO
}

// DifferingEntry holds the two sides of a coin present in both snapshots with
// different contents.
type DifferingEntry struct {
	Outpoint Outpoint
	Left     *UTXO
	Right    *UTXO
}

// DiffResult is a semantic comparison of two snapshots. The three lists are
// disjoint and sorted in canonical order: ascending by raw txid bytes, then by
// output index.
type DiffResult struct {
	// OnlyLeft holds coins present in the left snapshot only.
	OnlyLeft []Entry

	// OnlyRight holds coins present in the right snapshot only.
	OnlyRight []Entry

	// Differing holds coins present in both with different value, height,
	// coinbase flag or script.
	Differing []DifferingEntry

	// Identical is true when all three lists are empty.
	Identical bool
}

// Diff compares two snapshot models. Encoding version, record grouping and
// file order play no part, only the canonical coins are compared. The smaller
// model drives the walk, the larger is only scanned when it can still hold
// keys the smaller one lacks.
func Diff(left, right *UTXOSet) *DiffResult {
	if right.Length() < left.Length() {
		result := Diff(right, left)

		result.OnlyLeft, result.OnlyRight = result.OnlyRight, result.OnlyLeft
		for i := range result.Differing {
			result.Differing[i].Left, result.Differing[i].Right = result.Differing[i].Right, result.Differing[i].Left
		}

		return result
	}

	result := &DiffResult{}

	matched := 0

	left.UTXOs.Iter(func(outpoint Outpoint, leftUTXO *UTXO) bool {
		rightUTXO, ok := right.Get(outpoint)

		switch {
		case !ok:
			result.OnlyLeft = append(result.OnlyLeft, Entry{Outpoint: outpoint, UTXO: leftUTXO})
		case !leftUTXO.Equal(rightUTXO):
			matched++
			result.Differing = append(result.Differing, DifferingEntry{
				Outpoint: outpoint,
				Left:     leftUTXO,
				Right:    rightUTXO,
			})
		default:
			matched++
		}

		return false
	})

	if matched < right.Length() {
		right.UTXOs.Iter(func(outpoint Outpoint, rightUTXO *UTXO) bool {
			if !left.UTXOs.Exists(outpoint) {
				result.OnlyRight = append(result.OnlyRight, Entry{Outpoint: outpoint, UTXO: rightUTXO})
			}

			return false
		})
	}

	sortEntries(result.OnlyLeft)
	sortEntries(result.OnlyRight)

	sort.Slice(result.Differing, func(i, j int) bool {
		return result.Differing[i].Outpoint.Less(&result.Differing[j].Outpoint)
	})

	result.Identical = len(result.OnlyLeft) == 0 &&
		len(result.OnlyRight) == 0 &&
		len(result.Differing) == 0

	return result
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Outpoint.Less(&entries[j].Outpoint)
	})
}

// Summary returns a one-line account of the comparison.
func (dr *DiffResult) Summary() string {
	if dr.Identical {
		return "snapshots are identical"
	}

	return fmt.Sprintf("%d only in left, %d only in right, %d differing",
		len(dr.OnlyLeft), len(dr.OnlyRight), len(dr.Differing))
}
