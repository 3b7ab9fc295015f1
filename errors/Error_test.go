package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_NewCodedError tests the creation of coded errors.
func Test_NewCodedError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")
	require.NotNil(t, err)
	require.Equal(t, ERR_NOT_FOUND, err.Code())
	require.Equal(t, "resource not found", err.Message())

	secondErr := New(ERR_TRUNCATED_INPUT, "[ReadHeader][%s] short read", "_test_string_", err)
	thirdErr := New(ERR_MALFORMED_RECORD, "[ReadRecord][%s] bad record", "_test_string_", secondErr)
	anotherErr := New(ERR_MALFORMED_RECORD, "another record is bad")
	fourthErr := New(ERR_PROCESSING, "older error: ", thirdErr)
	fifthErr := New(ERR_HEADER_INVALID, "header does not parse", fourthErr)

	require.True(t, anotherErr.Is(thirdErr))
	require.True(t, fourthErr.Is(New(ERR_MALFORMED_RECORD, "")))
	require.True(t, fourthErr.Is(ErrMalformedRecord))

	require.True(t, fourthErr.Is(err))
	require.True(t, fifthErr.Is(thirdErr))
	require.True(t, fifthErr.Is(err))

	require.False(t, anotherErr.Is(fourthErr))
	require.False(t, fifthErr.Is(ErrChecksumMismatch))
}

func Test_MessageFormatting(t *testing.T) {
	err := New(ERR_COUNT_MISMATCH, "expected %d records, got %d", 3, 2)
	require.Equal(t, "expected 3 records, got 2", err.Message())
	require.Nil(t, err.WrappedErr())

	wrapped := New(ERR_PROCESSING, "while reading %s", "snapshot.dat", err)
	require.Equal(t, "while reading snapshot.dat", wrapped.Message())
	require.Equal(t, err, wrapped.WrappedErr())
}

func Test_WrapStdlibError(t *testing.T) {
	err := New(ERR_TRUNCATED_INPUT, "short read", io.ErrUnexpectedEOF)
	require.NotNil(t, err.WrappedErr())
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	// fmt-wrapped coded errors are still matched via Unwrap
	fmtErr := fmt.Errorf("outer: %w", err)
	require.True(t, Is(fmtErr, ErrTruncatedInput))
}

func Test_As(t *testing.T) {
	inner := New(ERR_DUPLICATE_OUTPOINT, "seen twice")
	outer := New(ERR_PROCESSING, "building model", inner)

	var tErr *Error
	require.True(t, As(outer, &tErr))
	assert.Equal(t, ERR_PROCESSING, tErr.Code())
}

func Test_InvalidCode(t *testing.T) {
	err := New(ERR(9999), "whatever")
	require.Equal(t, "invalid error code", err.Message())
	assert.Equal(t, "INVALID_CODE", ERR(9999).String())
}

func Test_NilError(t *testing.T) {
	var err *Error
	assert.Equal(t, "<nil>", err.Error())
	assert.Equal(t, ERR_UNKNOWN, err.Code())
	assert.False(t, err.Is(ErrUnknown))
}

func Test_Join(t *testing.T) {
	require.Nil(t, Join(nil, nil))

	joined := Join(NewHeaderInvalidError("bad magic"), nil, io.EOF)
	require.Error(t, joined)
	assert.Contains(t, joined.Error(), "bad magic")
	assert.Contains(t, joined.Error(), "EOF")
}

func Test_ErrorCategories(t *testing.T) {
	assert.Equal(t, "none", GetErrorCategory(nil))
	assert.Equal(t, "decode", GetErrorCategory(NewTruncatedInputError("short")))
	assert.Equal(t, "decode", GetErrorCategory(NewCountMismatchError("off by one")))
	assert.Equal(t, "integrity", GetErrorCategory(NewChecksumMismatchError("bad digest")))
	assert.Equal(t, "unknown", GetErrorCategory(io.EOF))

	wrapped := New(ERR_PROCESSING, "outer", NewDuplicateOutpointError("dup"))
	assert.True(t, IsDecodeError(wrapped.WrappedErr()))
}
