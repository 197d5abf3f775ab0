// Package winfile opens file handles backed by native Win32 HANDLEs.
//
// The backend logic is platform-independent and exercised against a
// SystemCalls double anywhere; only the default capability binds to the real
// Win32 API and is compiled on Windows alone.
//
// Win32 has no native append mode, so append is emulated by seeking to the
// end of the file immediately before each write. The seek-then-write pair is
// not atomic.
package winfile

import (
	"errors"
	"io"
	"math"
	"syscall"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// Handle is a native file handle.
type Handle uintptr

// InvalidHandle mirrors INVALID_HANDLE_VALUE.
const InvalidHandle = ^Handle(0)

// Win32 constants used by the mode mapping. Kept as local copies so the
// mapping logic stays buildable off Windows.
const (
	genericRead  = 0x8000_0000
	genericWrite = 0x4000_0000

	shareRead  = 0x1
	shareWrite = 0x2

	createAlways = 2
	openExisting = 3
	openAlways   = 4

	fileBegin   = 0
	fileCurrent = 1
	fileEnd     = 2

	fileAttributeDirectory = 0x10

	// ERROR_DIRECTORY, the EISDIR analogue of the platform.
	errorDirectory = 267
)

// SystemCalls is the set of native primitives the platform-handle backend
// needs.
type SystemCalls interface {
	CreateFile(name string, access, shareMode, creation, attrs uint32) (Handle, error)
	CloseHandle(h Handle) error
	ReadFile(h Handle, p []byte) (uint32, error)
	WriteFile(h Handle, p []byte) (uint32, error)
	// SetFilePointer moves the handle position and returns the new
	// absolute offset. moveMethod is fileBegin, fileCurrent or fileEnd.
	SetFilePointer(h Handle, offset int64, moveMethod uint32) (int64, error)
	SetEndOfFile(h Handle) error
	// FileAttributes reports the attribute bits of an open handle.
	FileAttributes(h Handle) (uint32, error)
}

type winCtx struct {
	funcs SystemCalls

	handle Handle
	owned  bool
	append bool

	filename string
	access   uint32
	sharing  uint32
	creation uint32
	attrib   uint32
}

func errnoCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	return file.ErrInternalError
}

func openCb(f *file.File, userdata any) file.Status {
	ctx := userdata.(*winCtx)

	if ctx.filename != "" {
		h, err := ctx.funcs.CreateFile(ctx.filename,
			ctx.access, ctx.sharing, ctx.creation, ctx.attrib)
		if err != nil {
			f.SetError(errnoCode(err), "failed to open file: %v", err)
			return file.StatusFailed
		}
		ctx.handle = h
	}

	attrs, err := ctx.funcs.FileAttributes(ctx.handle)
	if err != nil {
		f.SetError(errnoCode(err), "failed to stat file: %v", err)
		return file.StatusFailed
	}

	if attrs&fileAttributeDirectory != 0 {
		f.SetError(-errorDirectory, "cannot open directory")
		return file.StatusFailed
	}

	return file.StatusOK
}

func closeCb(f *file.File, userdata any) file.Status {
	ctx := userdata.(*winCtx)

	if ctx.owned && ctx.handle != InvalidHandle {
		if err := ctx.funcs.CloseHandle(ctx.handle); err != nil {
			f.SetError(errnoCode(err), "failed to close file: %v", err)
			return file.StatusFailed
		}
	}

	return file.StatusOK
}

func readCb(f *file.File, userdata any, buf []byte, bytesRead *uint64) file.Status {
	ctx := userdata.(*winCtx)

	// The native call takes a 32-bit count.
	if uint64(len(buf)) > math.MaxUint32 {
		buf = buf[:math.MaxUint32]
	}

	n, err := ctx.funcs.ReadFile(ctx.handle, buf)
	if err != nil {
		f.SetError(errnoCode(err), "failed to read file: %v", err)
		return file.StatusFailed
	}

	*bytesRead = uint64(n)
	return file.StatusOK
}

func writeCb(f *file.File, userdata any, buf []byte, bytesWritten *uint64) file.Status {
	ctx := userdata.(*winCtx)

	// Emulated append mode: position at end-of-file right before the
	// write. Not atomic.
	if ctx.append {
		var pos uint64
		if ret := seekCb(f, userdata, 0, io.SeekEnd, &pos); ret != file.StatusOK {
			return ret
		}
	}

	if uint64(len(buf)) > math.MaxUint32 {
		buf = buf[:math.MaxUint32]
	}

	n, err := ctx.funcs.WriteFile(ctx.handle, buf)
	if err != nil {
		f.SetError(errnoCode(err), "failed to write file: %v", err)
		return file.StatusFailed
	}

	*bytesWritten = uint64(n)
	return file.StatusOK
}

func seekCb(f *file.File, userdata any, offset int64, whence int, newOffset *uint64) file.Status {
	ctx := userdata.(*winCtx)

	var moveMethod uint32
	switch whence {
	case io.SeekStart:
		moveMethod = fileBegin
	case io.SeekCurrent:
		moveMethod = fileCurrent
	case io.SeekEnd:
		moveMethod = fileEnd
	default:
		f.SetError(file.ErrInvalidArgument, "invalid whence argument: %d", whence)
		return file.StatusFailed
	}

	pos, err := ctx.funcs.SetFilePointer(ctx.handle, offset, moveMethod)
	if err != nil {
		f.SetError(errnoCode(err), "failed to seek file: %v", err)
		return file.StatusFailed
	}

	*newOffset = uint64(pos)
	return file.StatusOK
}

func truncateCb(f *file.File, userdata any, size uint64) file.Status {
	ctx := userdata.(*winCtx)

	// Save the current position, move to the new size, set end-of-file
	// there, then restore.
	var currentPos, tmp uint64
	if ret := seekCb(f, userdata, 0, io.SeekCurrent, &currentPos); ret != file.StatusOK {
		return ret
	}
	if ret := seekCb(f, userdata, int64(size), io.SeekStart, &tmp); ret != file.StatusOK {
		return ret
	}

	ret := file.StatusOK
	if err := ctx.funcs.SetEndOfFile(ctx.handle); err != nil {
		f.SetError(errnoCode(err), "failed to set EOF position: %v", err)
		ret = file.StatusFailed
	}

	if r := seekCb(f, userdata, int64(currentPos), io.SeekStart, &tmp); r != file.StatusOK {
		// The file position is now unknown, so the handle must not be
		// used anymore.
		ret = file.StatusFatal
	}

	return ret
}

func openCtx(f *file.File, ctx *winCtx) file.Status {
	return file.OpenWithCallbacks(f,
		openCb,
		closeCb,
		readCb,
		writeCb,
		seekCb,
		truncateCb,
		ctx)
}

func convertMode(ctx *winCtx, mode file.OpenMode) bool {
	var access, creation uint32
	// Match the sharing semantics of open().
	sharing := uint32(shareRead | shareWrite)
	appendMode := false

	switch mode {
	case file.ModeReadOnly:
		access = genericRead
		creation = openExisting
	case file.ModeReadWrite:
		access = genericRead | genericWrite
		creation = openExisting
	case file.ModeWriteOnly:
		access = genericWrite
		creation = createAlways
	case file.ModeReadWriteTrunc:
		access = genericRead | genericWrite
		creation = createAlways
	case file.ModeAppend:
		access = genericWrite
		creation = openAlways
		appendMode = true
	case file.ModeReadAppend:
		access = genericRead | genericWrite
		creation = openAlways
		appendMode = true
	default:
		return false
	}

	ctx.access = access
	ctx.sharing = sharing
	ctx.creation = creation
	ctx.attrib = 0
	ctx.append = appendMode

	return true
}

// Open opens f from an already-open native handle. If owned is true, the
// handle is closed when f is closed. append enables emulated append mode,
// which the platform cannot express natively.
func Open(f *file.File, h Handle, owned, append bool) file.Status {
	return OpenWith(defaultFuncs, f, h, owned, append)
}

// OpenWith is Open with an explicit SystemCalls capability.
func OpenWith(funcs SystemCalls, f *file.File, h Handle, owned, append bool) file.Status {
	return openCtx(f, &winCtx{funcs: funcs, handle: h, owned: owned, append: append})
}

// OpenFilename opens f from a filename with the given mode. The handle is
// owned by the File.
func OpenFilename(f *file.File, filename string, mode file.OpenMode) file.Status {
	return OpenFilenameWith(defaultFuncs, f, filename, mode)
}

// OpenFilenameWith is OpenFilename with an explicit SystemCalls capability.
func OpenFilenameWith(funcs SystemCalls, f *file.File, filename string, mode file.OpenMode) file.Status {
	ctx := &winCtx{
		funcs:    funcs,
		handle:   InvalidHandle,
		owned:    true,
		filename: filename,
	}

	if !convertMode(ctx, mode) {
		f.SetError(file.ErrInvalidArgument, "invalid mode: %d", mode)
		return file.StatusFatal
	}

	return openCtx(f, ctx)
}
