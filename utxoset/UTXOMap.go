package utxoset

// UTXOMap is the outpoint to coin mapping backing a snapshot model.
// Thread-safe through the sharded map underneath.
type UTXOMap struct {
	genericMap[Outpoint, *UTXO]
}

// NewUTXOMap creates a UTXOMap sized for length entries.
func NewUTXOMap(length int) UTXOMap {
	return UTXOMap{
		NewSplitSwissMap[Outpoint, *UTXO](length),
	}
}

// IsEqual compares two maps entry by entry using UTXO semantic equality.
func (um UTXOMap) IsEqual(other UTXOMap) (bool, string) {
	return um.genericMap.IsEqual(other.genericMap, func(a, b *UTXO) bool {
		return a.Equal(b)
	})
}
