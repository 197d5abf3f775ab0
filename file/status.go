package file

// Status is the result of every File operation. The values form a total
// order: Ok is the only success value and severity increases as the value
// decreases. "At or below fatal" therefore means s <= StatusFatal.
type Status int8

const (
	// StatusOK indicates the operation succeeded.
	StatusOK Status = 0
	// StatusRetry indicates the identical operation should be resubmitted,
	// e.g. after an interrupted system call.
	StatusRetry Status = -1
	// StatusUnsupported indicates the backend cannot perform the operation.
	// The handle remains usable.
	StatusUnsupported Status = -2
	// StatusWarn indicates the operation raised a warning. The handle
	// remains usable, possibly with degraded functionality.
	StatusWarn Status = -3
	// StatusFailed indicates the operation failed non-fatally. The handle
	// remains usable.
	StatusFailed Status = -4
	// StatusFatal indicates the operation failed fatally. The handle can no
	// longer be used for anything but Close.
	StatusFatal Status = -5
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRetry:
		return "retry"
	case StatusUnsupported:
		return "unsupported"
	case StatusWarn:
		return "warn"
	case StatusFailed:
		return "failed"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error codes retained by a File after a failed operation. Non-negative
// values are one of the constants below; negative values are the negation of
// a platform error code (errno on unix, the last-error value on Windows) and
// are opaque beyond that.
const (
	// ErrNone means no error.
	ErrNone = 0
	// ErrInvalidArgument means an invalid argument was provided.
	ErrInvalidArgument = 1
	// ErrUnsupported means the operation is not supported.
	ErrUnsupported = 2
	// ErrProgrammerError means a function was called in an invalid state or
	// with a nil required output pointer. The caller cannot be trusted to
	// retry sensibly, so the handle is disabled.
	ErrProgrammerError = 3
	// ErrInternalError means an internal error in the library.
	ErrInternalError = 4
)

// OpenMode selects how a backend opens a file by name. Each backend maps the
// mode to its native open flags; an unknown mode is rejected with
// ErrInvalidArgument.
type OpenMode int

const (
	// ModeReadOnly opens an existing file for reading.
	ModeReadOnly OpenMode = iota
	// ModeReadWrite opens an existing file for reading and writing.
	ModeReadWrite
	// ModeWriteOnly creates or truncates a file for writing.
	ModeWriteOnly
	// ModeReadWriteTrunc creates or truncates a file for reading and writing.
	ModeReadWriteTrunc
	// ModeAppend creates a file if needed and positions every write at the
	// end. Write-only.
	ModeAppend
	// ModeReadAppend creates a file if needed, allows reads anywhere, and
	// positions every write at the end.
	ModeReadAppend
)
