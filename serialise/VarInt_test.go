package serialise

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var varIntVectors = []struct {
	value   uint64
	encoded []byte
}{
	{0, []byte{0x00}},
	{1, []byte{0x01}},
	{127, []byte{0x7f}},
	{128, []byte{0x80, 0x00}},
	{255, []byte{0x80, 0x7f}},
	{256, []byte{0x81, 0x00}},
	{16383, []byte{0xfe, 0x7f}},
	{16384, []byte{0xff, 0x00}},
	{16511, []byte{0xff, 0x7f}},
	{65535, []byte{0x82, 0xfe, 0x7f}},
	{1 << 32, []byte{0x8e, 0xfe, 0xfe, 0xff, 0x00}},
}

func TestVarIntWrite(t *testing.T) {
	for _, tc := range varIntVectors {
		var buf bytes.Buffer

		require.NoError(t, WriteVarInt(&buf, tc.value))
		assert.Equal(t, tc.encoded, buf.Bytes(), "value %d", tc.value)
	}
}

func TestVarIntRead(t *testing.T) {
	for _, tc := range varIntVectors {
		n, err := ReadVarInt(bytes.NewReader(tc.encoded))
		require.NoError(t, err)
		assert.Equal(t, tc.value, n)
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 252, 253, 1000, 1_000_000, 1<<63 - 1, 1 << 63, ^uint64(0)}

	for _, v := range values {
		var buf bytes.Buffer

		require.NoError(t, WriteVarInt(&buf, v))

		n, err := ReadVarInt(&buf)
		require.NoError(t, err)
		assert.Equal(t, v, n)
	}
}

func TestVarIntAppend(t *testing.T) {
	for _, tc := range varIntVectors {
		assert.Equal(t, tc.encoded, AppendVarInt(nil, tc.value))
	}
}

func TestVarIntTruncated(t *testing.T) {
	_, err := ReadVarInt(bytes.NewReader(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTruncatedInput))

	// High bit set promises another byte that never arrives.
	_, err = ReadVarInt(bytes.NewReader([]byte{0x80}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTruncatedInput))
}

func TestVarIntOverflow(t *testing.T) {
	// 11 continuation digits cannot fit in 64 bits.
	encoded := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}

	_, err := ReadVarInt(bytes.NewReader(encoded))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedRecord))
}
