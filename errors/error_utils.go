// Package errors provides the coded error type shared by the snapshot codec,
// comparator and CLI.
package errors

import (
	"context"
	"errors"
)

// IsDecodeError reports whether err means the input file could not be decoded
// into a snapshot model at all, as opposed to a snapshot that decoded cleanly
// but failed a later check.
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_TRUNCATED_INPUT,
			ERR_MALFORMED_RECORD,
			ERR_HEADER_INVALID,
			ERR_COUNT_MISMATCH,
			ERR_DUPLICATE_OUTPOINT:
			return true
		}
	}

	return false
}

// IsIntegrityError reports whether err came from checksum verification rather
// than record decoding. The two failure modes are reported distinctly: a file
// can decode into a valid model and still carry a bad checksum.
func IsIntegrityError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		return tErr.Code() == ERR_CHECKSUM_MISMATCH
	}

	return false
}

// IsContextError determines if an error is related to context cancellation or deadline.
func IsContextError(err error) bool {
	if err == nil {
		return false
	}

	if err == context.Canceled || err == context.DeadlineExceeded {
		return true
	}

	var tErr *Error
	if As(err, &tErr) {
		if tErr.Code() == ERR_CONTEXT_CANCELED {
			return true
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}

// GetErrorCategory returns a string representing the category of the error.
// This is useful for logging and exit-code mapping.
func GetErrorCategory(err error) string {
	if err == nil {
		return "none"
	}

	if IsContextError(err) {
		return "context"
	}

	if IsIntegrityError(err) {
		return "integrity"
	}

	if IsDecodeError(err) {
		return "decode"
	}

	return "unknown"
}
