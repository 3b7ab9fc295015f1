package serialise

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactSizeVectors(t *testing.T) {
	vectors := []struct {
		value   uint64
		encoded []byte
	}{
		{0, []byte{0x00}},
		{252, []byte{0xfc}},
		{253, []byte{0xfd, 0xfd, 0x00}},
		{65535, []byte{0xfd, 0xff, 0xff}},
		{65536, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{4294967295, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		{4294967296, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}

	for _, tc := range vectors {
		var buf bytes.Buffer

		require.NoError(t, WriteCompactSize(&buf, tc.value))
		assert.Equal(t, tc.encoded, buf.Bytes(), "value %d", tc.value)

		n, err := ReadCompactSize(&buf)
		require.NoError(t, err)
		assert.Equal(t, tc.value, n)
	}
}

func TestCompactSizeTruncated(t *testing.T) {
	for _, encoded := range [][]byte{
		nil,
		{0xfd},
		{0xfd, 0x01},
		{0xfe, 0x01, 0x02},
		{0xff, 0x01, 0x02, 0x03, 0x04},
	} {
		_, err := ReadCompactSize(bytes.NewReader(encoded))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrTruncatedInput))
	}
}
