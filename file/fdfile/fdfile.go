//go:build unix

// Package fdfile opens file handles backed by raw POSIX file descriptors.
//
// All native calls go through the SystemCalls capability so tests can
// substitute a recording double; production code uses the golang.org/x/sys
// bindings.
package fdfile

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// defaultPerm matches the permission bits the library has always used for
// newly created files (umask still applies).
const defaultPerm = 0o666

// SystemCalls is the set of native primitives the descriptor backend needs.
type SystemCalls interface {
	Open(path string, flags int, perm uint32) (int, error)
	Fstat(fd int, stat *unix.Stat_t) error
	Close(fd int) error
	Ftruncate(fd int, size int64) error
	Seek(fd int, offset int64, whence int) (int64, error)
	Read(fd int, p []byte) (int, error)
	Write(fd int, p []byte) (int, error)
}

type realSystemCalls struct{}

func (realSystemCalls) Open(path string, flags int, perm uint32) (int, error) {
	return unix.Open(path, flags, perm)
}

func (realSystemCalls) Fstat(fd int, stat *unix.Stat_t) error {
	return unix.Fstat(fd, stat)
}

func (realSystemCalls) Close(fd int) error {
	return unix.Close(fd)
}

func (realSystemCalls) Ftruncate(fd int, size int64) error {
	return unix.Ftruncate(fd, size)
}

func (realSystemCalls) Seek(fd int, offset int64, whence int) (int64, error) {
	return unix.Seek(fd, offset, whence)
}

func (realSystemCalls) Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func (realSystemCalls) Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

var defaultFuncs SystemCalls = realSystemCalls{}

type fdCtx struct {
	funcs SystemCalls

	fd    int
	owned bool

	filename string
	flags    int
}

// errnoCode converts a native error to the negative code stored on the
// handle.
func errnoCode(err error) int {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	return file.ErrInternalError
}

func openCb(f *file.File, userdata any) file.Status {
	ctx := userdata.(*fdCtx)

	if ctx.filename != "" {
		fd, err := ctx.funcs.Open(ctx.filename, ctx.flags, defaultPerm)
		if err != nil {
			f.SetError(errnoCode(err), "failed to open file: %v", err)
			return file.StatusFailed
		}
		ctx.fd = fd
	}

	var stat unix.Stat_t
	if err := ctx.funcs.Fstat(ctx.fd, &stat); err != nil {
		f.SetError(errnoCode(err), "failed to stat file: %v", err)
		return file.StatusFailed
	}

	if stat.Mode&unix.S_IFMT == unix.S_IFDIR {
		f.SetError(-int(unix.EISDIR), "cannot open directory")
		return file.StatusFailed
	}

	return file.StatusOK
}

func closeCb(f *file.File, userdata any) file.Status {
	ctx := userdata.(*fdCtx)

	if ctx.owned && ctx.fd >= 0 {
		if err := ctx.funcs.Close(ctx.fd); err != nil {
			f.SetError(errnoCode(err), "failed to close file: %v", err)
			return file.StatusFailed
		}
	}

	return file.StatusOK
}

func readCb(f *file.File, userdata any, buf []byte, bytesRead *uint64) file.Status {
	ctx := userdata.(*fdCtx)

	// A Go slice cannot exceed the count representable by the native
	// call, so no clamping is needed here.
	n, err := ctx.funcs.Read(ctx.fd, buf)
	if err != nil {
		f.SetError(errnoCode(err), "failed to read file: %v", err)
		if errors.Is(err, unix.EINTR) {
			return file.StatusRetry
		}
		return file.StatusFailed
	}

	*bytesRead = uint64(n)
	return file.StatusOK
}

func writeCb(f *file.File, userdata any, buf []byte, bytesWritten *uint64) file.Status {
	ctx := userdata.(*fdCtx)

	n, err := ctx.funcs.Write(ctx.fd, buf)
	if err != nil {
		f.SetError(errnoCode(err), "failed to write file: %v", err)
		if errors.Is(err, unix.EINTR) {
			return file.StatusRetry
		}
		return file.StatusFailed
	}

	*bytesWritten = uint64(n)
	return file.StatusOK
}

func seekCb(f *file.File, userdata any, offset int64, whence int, newOffset *uint64) file.Status {
	ctx := userdata.(*fdCtx)

	pos, err := ctx.funcs.Seek(ctx.fd, offset, whence)
	if err != nil {
		f.SetError(errnoCode(err), "failed to seek file: %v", err)
		return file.StatusFailed
	}

	*newOffset = uint64(pos)
	return file.StatusOK
}

func truncateCb(f *file.File, userdata any, size uint64) file.Status {
	ctx := userdata.(*fdCtx)

	if err := ctx.funcs.Ftruncate(ctx.fd, int64(size)); err != nil {
		f.SetError(errnoCode(err), "failed to truncate file: %v", err)
		return file.StatusFailed
	}

	return file.StatusOK
}

func openCtx(f *file.File, ctx *fdCtx) file.Status {
	return file.OpenWithCallbacks(f,
		openCb,
		closeCb,
		readCb,
		writeCb,
		seekCb,
		truncateCb,
		ctx)
}

func convertMode(mode file.OpenMode) (int, bool) {
	flags := unix.O_CLOEXEC

	switch mode {
	case file.ModeReadOnly:
		flags |= unix.O_RDONLY
	case file.ModeReadWrite:
		flags |= unix.O_RDWR
	case file.ModeWriteOnly:
		flags |= unix.O_WRONLY | unix.O_CREAT | unix.O_TRUNC
	case file.ModeReadWriteTrunc:
		flags |= unix.O_RDWR | unix.O_CREAT | unix.O_TRUNC
	case file.ModeAppend:
		flags |= unix.O_WRONLY | unix.O_CREAT | unix.O_APPEND
	case file.ModeReadAppend:
		flags |= unix.O_RDWR | unix.O_CREAT | unix.O_APPEND
	default:
		return 0, false
	}

	return flags, true
}

// Open opens f from an already-open file descriptor. If owned is true, the
// descriptor is closed when f is closed.
func Open(f *file.File, fd int, owned bool) file.Status {
	return OpenWith(defaultFuncs, f, fd, owned)
}

// OpenWith is Open with an explicit SystemCalls capability.
func OpenWith(funcs SystemCalls, f *file.File, fd int, owned bool) file.Status {
	return openCtx(f, &fdCtx{funcs: funcs, fd: fd, owned: owned})
}

// OpenFilename opens f from a filename with the given mode. The descriptor
// is owned by the handle.
func OpenFilename(f *file.File, filename string, mode file.OpenMode) file.Status {
	return OpenFilenameWith(defaultFuncs, f, filename, mode)
}

// OpenFilenameWith is OpenFilename with an explicit SystemCalls capability.
func OpenFilenameWith(funcs SystemCalls, f *file.File, filename string, mode file.OpenMode) file.Status {
	flags, ok := convertMode(mode)
	if !ok {
		f.SetError(file.ErrInvalidArgument, "invalid mode: %d", mode)
		return file.StatusFatal
	}

	return openCtx(f, &fdCtx{
		funcs:    funcs,
		fd:       -1,
		owned:    true,
		filename: filename,
		flags:    flags,
	})
}
