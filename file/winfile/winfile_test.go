package winfile

import (
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// stubCalls is a scripted SystemCalls double recording every native call.
type stubCalls struct {
	calls []string

	createErr error
	attrs     uint32
	attrsErr  error
	closeErr  error

	readData []byte
	readErr  error

	writeErr error

	// pos tracks the simulated file position; size the simulated file size,
	// so end-relative seeks behave.
	pos  int64
	size int64

	seekErr     error
	seekErrAt   int // fail the nth seek call (1-based); 0 means never
	seekCount   int
	endOfFile   error
	lastEOFPos  int64
	lastCreate  struct{ access, sharing, creation uint32 }
	lastCreated string
}

func (s *stubCalls) CreateFile(name string, access, shareMode, creation, attrs uint32) (Handle, error) {
	s.calls = append(s.calls, "create")
	s.lastCreated = name
	s.lastCreate = struct{ access, sharing, creation uint32 }{access, shareMode, creation}
	if s.createErr != nil {
		return InvalidHandle, s.createErr
	}
	return Handle(7), nil
}

func (s *stubCalls) CloseHandle(_ Handle) error {
	s.calls = append(s.calls, "close")
	return s.closeErr
}

func (s *stubCalls) ReadFile(_ Handle, p []byte) (uint32, error) {
	s.calls = append(s.calls, "read")
	if s.readErr != nil {
		return 0, s.readErr
	}
	return uint32(copy(p, s.readData)), nil
}

func (s *stubCalls) WriteFile(_ Handle, p []byte) (uint32, error) {
	s.calls = append(s.calls, "write")
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.pos += int64(len(p))
	if s.pos > s.size {
		s.size = s.pos
	}
	return uint32(len(p)), nil
}

func (s *stubCalls) SetFilePointer(_ Handle, offset int64, moveMethod uint32) (int64, error) {
	s.seekCount++
	s.calls = append(s.calls, fmt.Sprintf("seek(%d,%d)", offset, moveMethod))
	if s.seekErr != nil && (s.seekErrAt == 0 || s.seekErrAt == s.seekCount) {
		return 0, s.seekErr
	}
	switch moveMethod {
	case fileBegin:
		s.pos = offset
	case fileCurrent:
		s.pos += offset
	case fileEnd:
		s.pos = s.size + offset
	}
	return s.pos, nil
}

func (s *stubCalls) SetEndOfFile(_ Handle) error {
	s.calls = append(s.calls, "seteof")
	s.lastEOFPos = s.pos
	return s.endOfFile
}

func (s *stubCalls) FileAttributes(_ Handle) (uint32, error) {
	s.calls = append(s.calls, "attrs")
	if s.attrsErr != nil {
		return 0, s.attrsErr
	}
	return s.attrs, nil
}

func TestConvertMode(t *testing.T) {
	tests := []struct {
		mode     file.OpenMode
		access   uint32
		creation uint32
	}{
		{file.ModeReadOnly, genericRead, openExisting},
		{file.ModeReadWrite, genericRead | genericWrite, openExisting},
		{file.ModeWriteOnly, genericWrite, createAlways},
		{file.ModeReadWriteTrunc, genericRead | genericWrite, createAlways},
		{file.ModeAppend, genericWrite, openAlways},
		{file.ModeReadAppend, genericRead | genericWrite, openAlways},
	}

	for _, tc := range tests {
		stub := &stubCalls{}

		var f file.File
		require.Equal(t, file.StatusOK, OpenFilenameWith(stub, &f, "x.bin", tc.mode))
		require.Equal(t, "x.bin", stub.lastCreated)
		require.Equal(t, tc.access, stub.lastCreate.access)
		require.Equal(t, uint32(shareRead|shareWrite), stub.lastCreate.sharing)
		require.Equal(t, tc.creation, stub.lastCreate.creation)
		f.Close()
	}
}

func TestInvalidModeIsFatalWithoutOpening(t *testing.T) {
	stub := &stubCalls{}

	var f file.File
	require.Equal(t, file.StatusFatal, OpenFilenameWith(stub, &f, "x.bin", file.OpenMode(42)))
	require.Equal(t, file.ErrInvalidArgument, f.Error())
	require.Empty(t, stub.calls)
}

func TestOpenRejectsDirectory(t *testing.T) {
	stub := &stubCalls{attrs: fileAttributeDirectory}

	var f file.File
	require.Equal(t, file.StatusFailed, OpenFilenameWith(stub, &f, "dir", file.ModeReadOnly))
	require.Equal(t, -errorDirectory, f.Error())

	// The failed open released the handle it acquired.
	require.Equal(t, []string{"create", "attrs", "close"}, stub.calls)
}

func TestOpenFailureReportsLastError(t *testing.T) {
	stub := &stubCalls{createErr: syscall.Errno(2)} // ERROR_FILE_NOT_FOUND

	var f file.File
	require.Equal(t, file.StatusFailed, OpenFilenameWith(stub, &f, "missing", file.ModeReadOnly))
	require.Equal(t, -2, f.Error())
}

func TestReadWrite(t *testing.T) {
	stub := &stubCalls{readData: []byte("data")}

	var f file.File
	require.Equal(t, file.StatusOK, OpenWith(stub, &f, Handle(7), false, false))

	buf := make([]byte, 4)
	var n uint64
	require.Equal(t, file.StatusOK, f.Read(buf, &n))
	require.Equal(t, uint64(4), n)
	require.Equal(t, []byte("data"), buf)

	require.Equal(t, file.StatusOK, f.Write([]byte("xy"), &n))
	require.Equal(t, uint64(2), n)
}

func TestAppendSeeksToEndBeforeWrite(t *testing.T) {
	stub := &stubCalls{size: 10}

	var f file.File
	require.Equal(t, file.StatusOK, OpenWith(stub, &f, Handle(7), false, true))

	var n uint64
	require.Equal(t, file.StatusOK, f.Write([]byte("ab"), &n))
	require.Equal(t, uint64(2), n)

	// The write was preceded by an end-relative seek.
	require.Equal(t, []string{"attrs", fmt.Sprintf("seek(0,%d)", fileEnd), "write"}, stub.calls)
	require.Equal(t, int64(12), stub.pos)
}

func TestTruncateRestoresPosition(t *testing.T) {
	stub := &stubCalls{size: 100}

	var f file.File
	require.Equal(t, file.StatusOK, OpenWith(stub, &f, Handle(7), false, false))

	require.Equal(t, file.StatusOK, f.Seek(40, io.SeekStart, nil))
	require.Equal(t, file.StatusOK, f.Truncate(60))

	// Save position, seek to the new size, set EOF, restore.
	require.Equal(t, []string{
		"attrs",
		fmt.Sprintf("seek(40,%d)", fileBegin),
		fmt.Sprintf("seek(0,%d)", fileCurrent),
		fmt.Sprintf("seek(60,%d)", fileBegin),
		"seteof",
		fmt.Sprintf("seek(40,%d)", fileBegin),
	}, stub.calls)
	require.Equal(t, int64(60), stub.lastEOFPos)
	require.Equal(t, int64(40), stub.pos)
}

func TestTruncateRestoreFailureIsFatal(t *testing.T) {
	stub := &stubCalls{size: 100}
	stub.seekErr = syscall.Errno(5) // ERROR_ACCESS_DENIED territory
	stub.seekErrAt = 4              // save, move, (seteof), restore

	var f file.File
	require.Equal(t, file.StatusOK, OpenWith(stub, &f, Handle(7), false, false))
	require.Equal(t, file.StatusOK, f.Seek(40, io.SeekStart, nil))

	require.Equal(t, file.StatusFatal, f.Truncate(60))

	// The position is unknown, so the handle is disabled for everything but
	// Close.
	var n uint64
	require.Equal(t, file.StatusFatal, f.Read(make([]byte, 1), &n))
	require.Equal(t, file.ErrProgrammerError, f.Error())
	require.Equal(t, file.StatusOK, f.Close())
}

func TestSeekRejectsInvalidWhence(t *testing.T) {
	stub := &stubCalls{}

	var f file.File
	require.Equal(t, file.StatusOK, OpenWith(stub, &f, Handle(7), false, false))

	require.Equal(t, file.StatusFailed, f.Seek(0, 99, nil))
	require.Equal(t, file.ErrInvalidArgument, f.Error())
}

func TestCloseOwnership(t *testing.T) {
	owned := &stubCalls{}
	var f file.File
	require.Equal(t, file.StatusOK, OpenWith(owned, &f, Handle(7), true, false))
	require.Equal(t, file.StatusOK, f.Close())
	require.Contains(t, owned.calls, "close")

	borrowed := &stubCalls{}
	var g file.File
	require.Equal(t, file.StatusOK, OpenWith(borrowed, &g, Handle(7), false, false))
	require.Equal(t, file.StatusOK, g.Close())
	require.NotContains(t, borrowed.calls, "close")
}
