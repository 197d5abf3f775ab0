package stdiofile

import (
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// fakeInfo is a minimal os.FileInfo for scripting Fstat results.
type fakeInfo struct {
	mode os.FileMode
}

func (fakeInfo) Name() string        { return "fake" }
func (fakeInfo) Size() int64         { return 0 }
func (i fakeInfo) Mode() os.FileMode { return i.mode }
func (fakeInfo) ModTime() time.Time  { return time.Time{} }
func (i fakeInfo) IsDir() bool       { return i.mode.IsDir() }
func (fakeInfo) Sys() any            { return nil }

// stubCalls is a scripted SystemCalls double recording every stream call.
type stubCalls struct {
	calls []string

	openErr error
	info    os.FileInfo
	statErr error
	fd      int

	readData []byte
	readErr  error
	readErrs int

	writeErr error
	seekPos  int64
	seekErr  error
	truncErr error

	lastOpenPath  string
	lastOpenFlags int
	lastTruncSize int64
}

func (s *stubCalls) Fopen(path string, flags int) (*os.File, error) {
	s.calls = append(s.calls, "fopen")
	s.lastOpenPath = path
	s.lastOpenFlags = flags
	if s.openErr != nil {
		return nil, s.openErr
	}
	// The returned stream is only ever passed back into the double.
	return &os.File{}, nil
}

func (s *stubCalls) Fstat(_ *os.File) (os.FileInfo, error) {
	s.calls = append(s.calls, "fstat")
	if s.statErr != nil {
		return nil, s.statErr
	}
	return s.info, nil
}

func (s *stubCalls) Fclose(_ *os.File) error {
	s.calls = append(s.calls, "fclose")
	return nil
}

func (s *stubCalls) Fileno(_ *os.File) int {
	return s.fd
}

func (s *stubCalls) Fread(_ *os.File, p []byte) (int, error) {
	s.calls = append(s.calls, "fread")
	if s.readErrs > 0 {
		s.readErrs--
		return 0, s.readErr
	}
	return copy(p, s.readData), nil
}

func (s *stubCalls) Fwrite(_ *os.File, p []byte) (int, error) {
	s.calls = append(s.calls, "fwrite")
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return len(p), nil
}

func (s *stubCalls) Fseek(_ *os.File, _ int64, _ int) (int64, error) {
	s.calls = append(s.calls, "fseek")
	if s.seekErr != nil {
		return 0, s.seekErr
	}
	return s.seekPos, nil
}

func (s *stubCalls) Ftruncate(_ *os.File, size int64) error {
	s.calls = append(s.calls, "ftruncate")
	s.lastTruncSize = size
	return s.truncErr
}

func regularStub() *stubCalls {
	return &stubCalls{info: fakeInfo{mode: 0o644}, fd: 3}
}

func TestConvertMode(t *testing.T) {
	tests := []struct {
		mode  file.OpenMode
		flags int
	}{
		{file.ModeReadOnly, os.O_RDONLY},
		{file.ModeReadWrite, os.O_RDWR},
		{file.ModeWriteOnly, os.O_WRONLY | os.O_CREATE | os.O_TRUNC},
		{file.ModeReadWriteTrunc, os.O_RDWR | os.O_CREATE | os.O_TRUNC},
		{file.ModeAppend, os.O_WRONLY | os.O_CREATE | os.O_APPEND},
		{file.ModeReadAppend, os.O_RDWR | os.O_CREATE | os.O_APPEND},
	}

	for _, tc := range tests {
		stub := regularStub()

		var f file.File
		require.Equal(t, file.StatusOK, OpenFilenameWith(stub, &f, "/tmp/x", tc.mode))
		require.Equal(t, tc.flags|syscall.O_CLOEXEC, stub.lastOpenFlags)
		f.Close()
	}
}

func TestInvalidModeIsFatalWithoutOpening(t *testing.T) {
	stub := regularStub()

	var f file.File
	require.Equal(t, file.StatusFatal, OpenFilenameWith(stub, &f, "/tmp/x", file.OpenMode(-1)))
	require.Equal(t, file.ErrInvalidArgument, f.Error())
	require.Empty(t, stub.calls)
}

func TestOpenRejectsDirectory(t *testing.T) {
	stub := regularStub()
	stub.info = fakeInfo{mode: os.ModeDir | 0o755}

	var f file.File
	require.Equal(t, file.StatusFailed, OpenFilenameWith(stub, &f, "/tmp", file.ModeReadOnly))
	require.Equal(t, -int(syscall.EISDIR), f.Error())

	// The failed open released the stream it acquired.
	require.Equal(t, []string{"fopen", "fstat", "fclose"}, stub.calls)
}

func TestNoDescriptorSkipsStat(t *testing.T) {
	stub := regularStub()
	stub.fd = -1

	var f file.File
	require.Equal(t, file.StatusOK, OpenFilenameWith(stub, &f, "/tmp/x", file.ModeReadOnly))
	require.NotContains(t, stub.calls, "fstat")

	// Without a stat, seekability defaults to unsupported.
	require.Equal(t, file.StatusUnsupported, f.Seek(0, io.SeekStart, nil))
	require.Equal(t, file.ErrUnsupported, f.Error())

	// Truncation needs a descriptor too.
	require.Equal(t, file.StatusUnsupported, f.Truncate(0))
	require.NotContains(t, stub.calls, "ftruncate")
}

func TestNonRegularFileIsNotSeekable(t *testing.T) {
	stub := regularStub()
	stub.info = fakeInfo{mode: os.ModeNamedPipe | 0o600}

	var f file.File
	require.Equal(t, file.StatusOK, OpenFilenameWith(stub, &f, "/tmp/fifo", file.ModeReadOnly))

	require.Equal(t, file.StatusUnsupported, f.Seek(0, io.SeekStart, nil))
	require.NotContains(t, stub.calls, "fseek")

	// Reads still work on a non-seekable stream.
	stub.readData = []byte("ab")
	var n uint64
	require.Equal(t, file.StatusOK, f.Read(make([]byte, 2), &n))
	require.Equal(t, uint64(2), n)
}

func TestInterruptedReadIsRetry(t *testing.T) {
	stub := regularStub()
	stub.readData = []byte("data")
	stub.readErr = syscall.EINTR
	stub.readErrs = 1

	var f file.File
	require.Equal(t, file.StatusOK, OpenFilenameWith(stub, &f, "/tmp/x", file.ModeReadOnly))

	buf := make([]byte, 4)
	var n uint64
	require.Equal(t, file.StatusRetry, f.Read(buf, &n))
	require.Equal(t, file.StatusOK, f.Read(buf, &n))
	require.Equal(t, uint64(4), n)
}

func TestSeekAndTruncateDelegate(t *testing.T) {
	stub := regularStub()
	stub.seekPos = 42

	var f file.File
	require.Equal(t, file.StatusOK, OpenFilenameWith(stub, &f, "/tmp/x", file.ModeReadWrite))

	var pos uint64
	require.Equal(t, file.StatusOK, f.Seek(42, io.SeekStart, &pos))
	require.Equal(t, uint64(42), pos)

	require.Equal(t, file.StatusOK, f.Truncate(9))
	require.Equal(t, int64(9), stub.lastTruncSize)
}

func TestBorrowedStreamNotClosed(t *testing.T) {
	stub := regularStub()

	var f file.File
	require.Equal(t, file.StatusOK, OpenWith(stub, &f, &os.File{}, false))
	require.Equal(t, file.StatusOK, f.Close())
	require.NotContains(t, stub.calls, "fclose")
}

func TestRealFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	var f file.File
	require.Equal(t, file.StatusOK, OpenFilename(&f, path, file.ModeReadWriteTrunc))

	var n uint64
	require.Equal(t, file.StatusOK, f.Write([]byte("abcdef"), &n))
	require.Equal(t, uint64(6), n)

	var pos uint64
	require.Equal(t, file.StatusOK, f.Seek(-4, io.SeekEnd, &pos))
	require.Equal(t, uint64(2), pos)

	buf := make([]byte, 4)
	require.Equal(t, file.StatusOK, f.Read(buf, &n))
	require.Equal(t, []byte("cdef"), buf)

	require.Equal(t, file.StatusOK, f.Close())
}

func TestRealPipeIsNotSeekable(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()

	var f file.File
	require.Equal(t, file.StatusOK, Open(&f, r, true))
	defer f.Close()

	require.Equal(t, file.StatusUnsupported, f.Seek(0, io.SeekStart, nil))

	_, err = w.Write([]byte("hi"))
	require.NoError(t, err)

	buf := make([]byte, 2)
	var n uint64
	require.Equal(t, file.StatusOK, f.Read(buf, &n))
	require.Equal(t, []byte("hi"), buf)
}

func TestRealDirectoryRejected(t *testing.T) {
	var f file.File
	require.Equal(t, file.StatusFailed, OpenFilename(&f, t.TempDir(), file.ModeReadOnly))
	require.Equal(t, -int(syscall.EISDIR), f.Error())
}
