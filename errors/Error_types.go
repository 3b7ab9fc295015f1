package errors

// ERR is the numeric error code carried by every *Error.
type ERR int32

const (
	ERR_UNKNOWN          ERR = 0
	ERR_INVALID_ARGUMENT ERR = 1
	ERR_PROCESSING       ERR = 2
	ERR_CONFIGURATION    ERR = 3
	ERR_NOT_FOUND        ERR = 4
	ERR_CONTEXT_CANCELED ERR = 5
	ERR_ERROR            ERR = 9

	// Snapshot decode and verification errors.
	ERR_TRUNCATED_INPUT    ERR = 10
	ERR_MALFORMED_RECORD   ERR = 11
	ERR_HEADER_INVALID     ERR = 12
	ERR_COUNT_MISMATCH     ERR = 13
	ERR_DUPLICATE_OUTPOINT ERR = 14
	ERR_CHECKSUM_MISMATCH  ERR = 15

	ERR_STORAGE_ERROR ERR = 20
)

var ERR_name = map[int32]string{
	0:  "UNKNOWN",
	1:  "INVALID_ARGUMENT",
	2:  "PROCESSING",
	3:  "CONFIGURATION",
	4:  "NOT_FOUND",
	5:  "CONTEXT_CANCELED",
	9:  "ERROR",
	10: "TRUNCATED_INPUT",
	11: "MALFORMED_RECORD",
	12: "HEADER_INVALID",
	13: "COUNT_MISMATCH",
	14: "DUPLICATE_OUTPOINT",
	15: "CHECKSUM_MISMATCH",
	20: "STORAGE_ERROR",
}

func (e ERR) String() string {
	if name, ok := ERR_name[int32(e)]; ok {
		return name
	}

	return "INVALID_CODE"
}

var (
	ErrUnknown           = New(ERR_UNKNOWN, "unknown error")
	ErrInvalidArgument   = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrProcessing        = New(ERR_PROCESSING, "error processing")
	ErrConfiguration     = New(ERR_CONFIGURATION, "configuration error")
	ErrNotFound          = New(ERR_NOT_FOUND, "not found")
	ErrContextCanceled   = New(ERR_CONTEXT_CANCELED, "context canceled")
	ErrError             = New(ERR_ERROR, "generic error")
	ErrTruncatedInput    = New(ERR_TRUNCATED_INPUT, "truncated input")
	ErrMalformedRecord   = New(ERR_MALFORMED_RECORD, "malformed record")
	ErrHeaderInvalid     = New(ERR_HEADER_INVALID, "header invalid")
	ErrCountMismatch     = New(ERR_COUNT_MISMATCH, "count mismatch")
	ErrDuplicateOutpoint = New(ERR_DUPLICATE_OUTPOINT, "duplicate outpoint")
	ErrChecksumMismatch  = New(ERR_CHECKSUM_MISMATCH, "checksum mismatch")
	ErrStorage           = New(ERR_STORAGE_ERROR, "storage error")
)

// errors initialization functions

func NewUnknownError(message string, params ...interface{}) error {
	return New(ERR_UNKNOWN, message, params...)
}
func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}
func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}
func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}
func NewNotFoundError(message string, params ...interface{}) error {
	return New(ERR_NOT_FOUND, message, params...)
}
func NewContextCanceledError(message string, params ...interface{}) error {
	return New(ERR_CONTEXT_CANCELED, message, params...)
}
func NewError(message string, params ...interface{}) error {
	return New(ERR_ERROR, message, params...)
}
func NewTruncatedInputError(message string, params ...interface{}) error {
	return New(ERR_TRUNCATED_INPUT, message, params...)
}
func NewMalformedRecordError(message string, params ...interface{}) error {
	return New(ERR_MALFORMED_RECORD, message, params...)
}
func NewHeaderInvalidError(message string, params ...interface{}) error {
	return New(ERR_HEADER_INVALID, message, params...)
}
func NewCountMismatchError(message string, params ...interface{}) error {
	return New(ERR_COUNT_MISMATCH, message, params...)
}
func NewDuplicateOutpointError(message string, params ...interface{}) error {
	return New(ERR_DUPLICATE_OUTPOINT, message, params...)
}
func NewChecksumMismatchError(message string, params ...interface{}) error {
	return New(ERR_CHECKSUM_MISMATCH, message, params...)
}
func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}
