// Package file implements a uniform, callback-driven file handle over
// heterogeneous backing stores.
//
// A File starts out empty. A backend (see the fdfile, stdiofile, winfile and
// memfile subpackages) registers up to six operation callbacks plus a context
// value and opens the handle, usually through OpenWithCallbacks. From then on
// Read, Write, Seek, Truncate and Close dispatch to the registered callbacks
// uniformly, regardless of what actually backs the handle.
//
// Every operation returns a Status rather than an error. The most recent
// error code and message are retained on the handle and can be retrieved via
// Error and ErrorString immediately after a failing call; their contents are
// undefined at any other time. The package itself never logs.
//
// A File must not be shared between goroutines without external
// synchronization; the model is single-owner and fully synchronous.
package file

import "fmt"

type state uint8

const (
	// stateNew is the zero value so that an uninitialized File is usable.
	stateNew state = iota
	stateOpened
	stateClosed
	stateFatal
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateOpened:
		return "opened"
	case stateClosed:
		return "closed"
	case stateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Callback signatures. The userdata value is whatever was registered with
// SetCallbackData. The count and offset output pointers passed to ReadFunc,
// WriteFunc and SeekFunc are guaranteed non-nil.
type (
	// OpenFunc acquires backend resources. If it returns anything other
	// than StatusOK, the registered CloseFunc runs before Open returns.
	OpenFunc func(f *File, userdata any) Status
	// CloseFunc releases backend resources. It runs at most once over the
	// lifetime of a handle, regardless of what other operations returned.
	// No further callbacks are invoked after it executes.
	CloseFunc func(f *File, userdata any) Status
	// ReadFunc reads into buf and reports the count via bytesRead. A count
	// of 0 means end of file, not an error.
	ReadFunc func(f *File, userdata any, buf []byte, bytesRead *uint64) Status
	// WriteFunc writes from buf and reports the count via bytesWritten.
	WriteFunc func(f *File, userdata any, buf []byte, bytesWritten *uint64) Status
	// SeekFunc repositions the handle. whence is one of io.SeekStart,
	// io.SeekCurrent or io.SeekEnd.
	SeekFunc func(f *File, userdata any, offset int64, whence int, newOffset *uint64) Status
	// TruncateFunc resizes the backing store. It must not change the
	// current file position.
	TruncateFunc func(f *File, userdata any, size uint64) Status
)

// File is a handle over some backing store. The zero value is ready to have
// callbacks registered and be opened.
//
// Go has no destructor, so the single-release guarantee of the original
// contract is expressed differently: Close is safe to call on a never-opened
// or already-closed handle (it does nothing and returns StatusOK), a failed
// Open runs the close callback itself, and a close callback never runs
// twice. Callers that opened a handle are expected to Close it, typically
// via defer.
type File struct {
	state state

	openFn     OpenFunc
	closeFn    CloseFunc
	readFn     ReadFunc
	writeFn    WriteFunc
	seekFn     SeekFunc
	truncateFn TruncateFunc
	userdata   any

	errCode int
	errMsg  string
}

// ensureState fails loudly when an operation is invoked in the wrong state.
// A violation is a caller bug, so the handle is disabled.
func (f *File) ensureState(op string, allowed ...state) Status {
	for _, s := range allowed {
		if f.state == s {
			return StatusOK
		}
	}
	f.SetError(ErrProgrammerError, "%s: invalid call in state %q", op, f.state)
	f.state = stateFatal
	return StatusFatal
}

// SetOpenCallback sets the open callback. Legal only before Open.
func (f *File) SetOpenCallback(fn OpenFunc) Status {
	if ret := f.ensureState("set open callback", stateNew); ret != StatusOK {
		return ret
	}
	f.openFn = fn
	return StatusOK
}

// SetCloseCallback sets the close callback. Legal only before Open.
func (f *File) SetCloseCallback(fn CloseFunc) Status {
	if ret := f.ensureState("set close callback", stateNew); ret != StatusOK {
		return ret
	}
	f.closeFn = fn
	return StatusOK
}

// SetReadCallback sets the read callback. Legal only before Open.
func (f *File) SetReadCallback(fn ReadFunc) Status {
	if ret := f.ensureState("set read callback", stateNew); ret != StatusOK {
		return ret
	}
	f.readFn = fn
	return StatusOK
}

// SetWriteCallback sets the write callback. Legal only before Open.
func (f *File) SetWriteCallback(fn WriteFunc) Status {
	if ret := f.ensureState("set write callback", stateNew); ret != StatusOK {
		return ret
	}
	f.writeFn = fn
	return StatusOK
}

// SetSeekCallback sets the seek callback. Legal only before Open.
func (f *File) SetSeekCallback(fn SeekFunc) Status {
	if ret := f.ensureState("set seek callback", stateNew); ret != StatusOK {
		return ret
	}
	f.seekFn = fn
	return StatusOK
}

// SetTruncateCallback sets the truncate callback. Legal only before Open.
func (f *File) SetTruncateCallback(fn TruncateFunc) Status {
	if ret := f.ensureState("set truncate callback", stateNew); ret != StatusOK {
		return ret
	}
	f.truncateFn = fn
	return StatusOK
}

// SetCallbackData sets the value passed to every callback. Legal only before
// Open.
func (f *File) SetCallbackData(userdata any) Status {
	if ret := f.ensureState("set callback data", stateNew); ret != StatusOK {
		return ret
	}
	f.userdata = userdata
	return StatusOK
}

// Open opens the handle. Once opened, the operation methods become available
// and the callbacks can no longer be changed.
//
// If the open callback does not return StatusOK, the close callback (if
// registered) is invoked before Open returns, so partially acquired backend
// resources are always released. The open callback's result is returned
// unchanged (StatusOK if no open callback is registered).
func (f *File) Open() Status {
	if ret := f.ensureState("open", stateNew); ret != StatusOK {
		return ret
	}

	ret := StatusOK
	if f.openFn != nil {
		ret = f.openFn(f, f.userdata)
	}
	if ret == StatusOK {
		f.state = stateOpened
	} else if ret <= StatusFatal {
		f.state = stateFatal
	}

	// The open failed, so release whatever the open callback acquired.
	if ret != StatusOK && f.closeFn != nil {
		f.closeFn(f, f.userdata)
	}

	return ret
}

// Close closes the handle. Closing a never-opened or already-closed handle
// does nothing and returns StatusOK; the close callback does not run in that
// case. Regardless of what the close callback returns, the handle ends up
// closed and can no longer be used.
func (f *File) Close() Status {
	ret := StatusOK

	if f.state != stateClosed && f.state != stateNew {
		if f.closeFn != nil {
			ret = f.closeFn(f, f.userdata)
		}
		// Never move to the fatal state here, even for a fatal-level
		// result. Closed already forbids further operations, and moving
		// to fatal instead would permit a second Close to run the close
		// callback again.
	}

	f.state = stateClosed

	return ret
}

// Read reads up to len(buf) bytes into buf and stores the count in
// bytesRead, which must be non-nil. A stored count of 0 means end of file.
// StatusRetry means the identical call should be resubmitted.
func (f *File) Read(buf []byte, bytesRead *uint64) Status {
	if ret := f.ensureState("read", stateOpened); ret != StatusOK {
		return ret
	}

	ret := StatusUnsupported
	switch {
	case bytesRead == nil:
		f.SetError(ErrProgrammerError, "read: bytesRead is nil")
		ret = StatusFatal
	case f.readFn != nil:
		ret = f.readFn(f, f.userdata, buf, bytesRead)
	default:
		f.SetError(ErrUnsupported, "read: no read callback registered")
	}
	if ret <= StatusFatal {
		f.state = stateFatal
	}

	return ret
}

// Write writes len(buf) bytes from buf and stores the count in bytesWritten,
// which must be non-nil. StatusRetry means the identical call should be
// resubmitted.
func (f *File) Write(buf []byte, bytesWritten *uint64) Status {
	if ret := f.ensureState("write", stateOpened); ret != StatusOK {
		return ret
	}

	ret := StatusUnsupported
	switch {
	case bytesWritten == nil:
		f.SetError(ErrProgrammerError, "write: bytesWritten is nil")
		ret = StatusFatal
	case f.writeFn != nil:
		ret = f.writeFn(f, f.userdata, buf, bytesWritten)
	default:
		f.SetError(ErrUnsupported, "write: no write callback registered")
	}
	if ret <= StatusFatal {
		f.state = stateFatal
	}

	return ret
}

// Seek sets the file position. whence is one of io.SeekStart, io.SeekCurrent
// or io.SeekEnd. newOffset may be nil if the caller does not need the
// resulting position; the callback always receives a valid output slot and
// the result is copied out only on success.
func (f *File) Seek(offset int64, whence int, newOffset *uint64) Status {
	if ret := f.ensureState("seek", stateOpened); ret != StatusOK {
		return ret
	}

	ret := StatusUnsupported
	var pos uint64
	if f.seekFn != nil {
		ret = f.seekFn(f, f.userdata, offset, whence, &pos)
	} else {
		f.SetError(ErrUnsupported, "seek: no seek callback registered")
	}
	if ret == StatusOK {
		if newOffset != nil {
			*newOffset = pos
		}
	} else if ret <= StatusFatal {
		f.state = stateFatal
	}

	return ret
}

// Truncate resizes the backing store to size bytes. The file position is not
// changed. Writing after truncating to a size smaller than the current
// position will grow the file again.
func (f *File) Truncate(size uint64) Status {
	if ret := f.ensureState("truncate", stateOpened); ret != StatusOK {
		return ret
	}

	ret := StatusUnsupported
	if f.truncateFn != nil {
		ret = f.truncateFn(f, f.userdata, size)
	} else {
		f.SetError(ErrUnsupported, "truncate: no truncate callback registered")
	}
	if ret <= StatusFatal {
		f.state = stateFatal
	}

	return ret
}

// Error returns the error code of the most recent failed operation. The
// value is defined only immediately after an operation fails. Non-negative
// codes are the Err* constants; negative codes are negated platform error
// codes.
func (f *File) Error() int {
	return f.errCode
}

// ErrorString returns the error message of the most recent failed operation.
// The value is defined only immediately after an operation fails.
func (f *File) ErrorString() string {
	return f.errMsg
}

// SetError stores an error code and a formatted message on the handle. Every
// callback implementation uses this to report failures; it is exported for
// backend packages. The return value exists for parity with the other
// operations; message formatting cannot fail in Go, so it is always
// StatusOK.
func (f *File) SetError(code int, format string, args ...any) Status {
	f.errCode = code
	f.errMsg = fmt.Sprintf(format, args...)
	return StatusOK
}
