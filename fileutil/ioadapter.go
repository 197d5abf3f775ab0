package fileutil

import (
	"fmt"
	"io"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// StatusError is the error form of a failed handle operation, carrying the
// status along with the code and message retained on the handle at the time
// of the failure.
type StatusError struct {
	Status  file.Status
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("file operation %s (code %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("file operation %s (code %d)", e.Status, e.Code)
}

func statusError(f *file.File, ret file.Status) error {
	return &StatusError{Status: ret, Code: f.Error(), Message: f.ErrorString()}
}

// Reader adapts a file handle to io.Reader and io.Seeker. Interrupted reads
// are resubmitted internally; other failures surface as *StatusError.
type Reader struct {
	f *file.File
}

// NewReader wraps f. The caller keeps ownership of the handle.
func NewReader(f *file.File) *Reader {
	return &Reader{f: f}
}

func (r *Reader) Read(p []byte) (int, error) {
	for {
		var n uint64
		ret := r.f.Read(p, &n)
		if ret == file.StatusRetry {
			continue
		}
		if ret != file.StatusOK {
			return 0, statusError(r.f, ret)
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return int(n), nil
	}
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var pos uint64
	if ret := r.f.Seek(offset, whence, &pos); ret != file.StatusOK {
		return 0, statusError(r.f, ret)
	}
	return int64(pos), nil
}

// Writer adapts a file handle to io.Writer. Interrupted writes are
// resubmitted internally. A backend that accepts fewer bytes than requested
// (a full fixed-size buffer) yields io.ErrShortWrite.
type Writer struct {
	f *file.File
}

// NewWriter wraps f. The caller keeps ownership of the handle.
func NewWriter(f *file.File) *Writer {
	return &Writer{f: f}
}

func (w *Writer) Write(p []byte) (int, error) {
	var n uint64
	ret := WriteFully(w.f, p, &n)
	if ret != file.StatusOK {
		return int(n), statusError(w.f, ret)
	}
	if n < uint64(len(p)) {
		return int(n), io.ErrShortWrite
	}
	return int(n), nil
}
