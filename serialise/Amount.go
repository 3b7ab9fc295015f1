package serialise

import "io"

// Amounts are stored compressed. Most values in a real set are round numbers
// of satoshis, so the encoding factors out powers of ten before packing:
//
//	0                 -> 0
//	n = m * 10^e, e < 9, m = 10*x + d (1 <= d <= 9)
//	                  -> 1 + (x*9 + d - 1)*10 + e
//	n = m * 10^9      -> 1 + (m - 1)*10 + 9

// CompressAmount maps a satoshi value to its compressed form.
func CompressAmount(n uint64) uint64 {
	if n == 0 {
		return 0
	}

	e := uint64(0)
	for n%10 == 0 && e < 9 {
		n /= 10
		e++
	}

	if e < 9 {
		d := n % 10
		n /= 10

		return 1 + (n*9+d-1)*10 + e
	}

	return 1 + (n-1)*10 + 9
}

// DecompressAmount is the inverse of CompressAmount.
func DecompressAmount(x uint64) uint64 {
	if x == 0 {
		return 0
	}

	x--

	e := x % 10
	x /= 10

	var n uint64

	if e < 9 {
		d := x%9 + 1
		x /= 9
		n = x*10 + d
	} else {
		n = x + 1
	}

	for ; e > 0; e-- {
		n *= 10
	}

	return n
}

// WriteAmount writes a satoshi value in compressed VarInt form.
func WriteAmount(w io.Writer, n uint64) error {
	return WriteVarInt(w, CompressAmount(n))
}

// ReadAmount reads a compressed VarInt amount and expands it to satoshis.
func ReadAmount(r io.Reader) (uint64, error) {
	x, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}

	return DecompressAmount(x), nil
}
