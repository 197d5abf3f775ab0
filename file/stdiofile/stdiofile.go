// Package stdiofile opens file handles backed by buffered standard I/O
// streams (*os.File).
//
// Whether the stream is seekable is decided once at open time from the
// file's type, because probing with a seek does not reliably fail on
// non-seekable descriptors. All native calls go through the SystemCalls
// capability so tests can substitute a recording double.
package stdiofile

import (
	"errors"
	"io"
	"os"
	"runtime"
	"syscall"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

const defaultPerm = 0o666

// SystemCalls is the set of stream primitives the backend needs. The fp
// argument is whatever stream the handle was opened from; doubles are free
// to ignore it.
type SystemCalls interface {
	Fopen(path string, flags int) (*os.File, error)
	Fstat(fp *os.File) (os.FileInfo, error)
	Fclose(fp *os.File) error
	// Fileno reports the underlying descriptor, or a negative value when
	// the stream has none.
	Fileno(fp *os.File) int
	Fread(fp *os.File, p []byte) (int, error)
	Fwrite(fp *os.File, p []byte) (int, error)
	Fseek(fp *os.File, offset int64, whence int) (int64, error)
	Ftruncate(fp *os.File, size int64) error
}

type realSystemCalls struct{}

func (realSystemCalls) Fopen(path string, flags int) (*os.File, error) {
	return os.OpenFile(path, flags, defaultPerm)
}

func (realSystemCalls) Fstat(fp *os.File) (os.FileInfo, error) {
	return fp.Stat()
}

func (realSystemCalls) Fclose(fp *os.File) error {
	return fp.Close()
}

func (realSystemCalls) Fileno(fp *os.File) int {
	return int(fp.Fd())
}

func (realSystemCalls) Fread(fp *os.File, p []byte) (int, error) {
	return fp.Read(p)
}

func (realSystemCalls) Fwrite(fp *os.File, p []byte) (int, error) {
	return fp.Write(p)
}

func (realSystemCalls) Fseek(fp *os.File, offset int64, whence int) (int64, error) {
	return fp.Seek(offset, whence)
}

func (realSystemCalls) Ftruncate(fp *os.File, size int64) error {
	return fp.Truncate(size)
}

var defaultFuncs SystemCalls = realSystemCalls{}

type stdioCtx struct {
	funcs SystemCalls

	fp    *os.File
	owned bool

	filename string
	flags    int

	canSeek bool
}

func errnoCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	return file.ErrInternalError
}

// seekable reports whether a stream of this type supports seeking: regular
// files everywhere, block devices on Linux.
func seekable(info os.FileInfo) bool {
	if info.Mode().IsRegular() {
		return true
	}
	if runtime.GOOS == "linux" {
		m := info.Mode()
		return m&os.ModeDevice != 0 && m&os.ModeCharDevice == 0
	}
	return false
}

func openCb(f *file.File, userdata any) file.Status {
	ctx := userdata.(*stdioCtx)

	if ctx.filename != "" {
		fp, err := ctx.funcs.Fopen(ctx.filename, ctx.flags)
		if err != nil {
			f.SetError(errnoCode(err), "failed to open file: %v", err)
			return file.StatusFailed
		}
		ctx.fp = fp
	}

	if fd := ctx.funcs.Fileno(ctx.fp); fd >= 0 {
		info, err := ctx.funcs.Fstat(ctx.fp)
		if err != nil {
			f.SetError(errnoCode(err), "failed to stat file: %v", err)
			return file.StatusFailed
		}

		if info.IsDir() {
			f.SetError(-int(syscall.EISDIR), "cannot open directory")
			return file.StatusFailed
		}

		ctx.canSeek = seekable(info)
	}

	return file.StatusOK
}

func closeCb(f *file.File, userdata any) file.Status {
	ctx := userdata.(*stdioCtx)

	if ctx.owned && ctx.fp != nil {
		if err := ctx.funcs.Fclose(ctx.fp); err != nil {
			f.SetError(errnoCode(err), "failed to close file: %v", err)
			return file.StatusFailed
		}
	}

	return file.StatusOK
}

func readCb(f *file.File, userdata any, buf []byte, bytesRead *uint64) file.Status {
	ctx := userdata.(*stdioCtx)

	n, err := ctx.funcs.Fread(ctx.fp, buf)
	if err != nil && err != io.EOF {
		f.SetError(errnoCode(err), "failed to read file: %v", err)
		if errors.Is(err, syscall.EINTR) {
			return file.StatusRetry
		}
		return file.StatusFailed
	}

	*bytesRead = uint64(n)
	return file.StatusOK
}

func writeCb(f *file.File, userdata any, buf []byte, bytesWritten *uint64) file.Status {
	ctx := userdata.(*stdioCtx)

	n, err := ctx.funcs.Fwrite(ctx.fp, buf)
	if err != nil {
		f.SetError(errnoCode(err), "failed to write file: %v", err)
		if errors.Is(err, syscall.EINTR) {
			return file.StatusRetry
		}
		return file.StatusFailed
	}

	*bytesWritten = uint64(n)
	return file.StatusOK
}

func seekCb(f *file.File, userdata any, offset int64, whence int, newOffset *uint64) file.Status {
	ctx := userdata.(*stdioCtx)

	if !ctx.canSeek {
		f.SetError(file.ErrUnsupported, "stream does not support seeking")
		return file.StatusUnsupported
	}

	pos, err := ctx.funcs.Fseek(ctx.fp, offset, whence)
	if err != nil {
		f.SetError(errnoCode(err), "failed to seek file: %v", err)
		return file.StatusFailed
	}

	*newOffset = uint64(pos)
	return file.StatusOK
}

func truncateCb(f *file.File, userdata any, size uint64) file.Status {
	ctx := userdata.(*stdioCtx)

	if fd := ctx.funcs.Fileno(ctx.fp); fd < 0 {
		f.SetError(file.ErrUnsupported, "no descriptor available for stream")
		return file.StatusUnsupported
	}

	if err := ctx.funcs.Ftruncate(ctx.fp, int64(size)); err != nil {
		f.SetError(errnoCode(err), "failed to truncate file: %v", err)
		return file.StatusFailed
	}

	return file.StatusOK
}

func openCtx(f *file.File, ctx *stdioCtx) file.Status {
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
	var flags int

	switch mode {
	case file.ModeReadOnly:
		flags = os.O_RDONLY
	case file.ModeReadWrite:
		flags = os.O_RDWR
	case file.ModeWriteOnly:
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case file.ModeReadWriteTrunc:
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case file.ModeAppend:
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case file.ModeReadAppend:
		flags = os.O_RDWR | os.O_CREATE | os.O_APPEND
	default:
		return 0, false
	}

	return flags | syscall.O_CLOEXEC, true
}

// Open opens f from an already-open stream. If owned is true, the stream is
// closed when f is closed.
func Open(f *file.File, fp *os.File, owned bool) file.Status {
	return OpenWith(defaultFuncs, f, fp, owned)
}

// OpenWith is Open with an explicit SystemCalls capability.
func OpenWith(funcs SystemCalls, f *file.File, fp *os.File, owned bool) file.Status {
	return openCtx(f, &stdioCtx{funcs: funcs, fp: fp, owned: owned})
}

// OpenFilename opens f from a filename with the given mode. The stream is
// owned by the handle.
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

	return openCtx(f, &stdioCtx{
		funcs:    funcs,
		owned:    true,
		filename: filename,
		flags:    flags,
	})
}
