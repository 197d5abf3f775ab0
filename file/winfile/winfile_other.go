//go:build !windows

package winfile

import "syscall"

// unsupportedSystemCalls is the default capability off Windows. Opening a
// handle without injecting a capability fails cleanly instead of crashing;
// the backend logic itself is still fully testable through OpenWith.
type unsupportedSystemCalls struct{}

func (unsupportedSystemCalls) CreateFile(string, uint32, uint32, uint32, uint32) (Handle, error) {
	return InvalidHandle, syscall.ENOTSUP
}

func (unsupportedSystemCalls) CloseHandle(Handle) error {
	return syscall.ENOTSUP
}

func (unsupportedSystemCalls) ReadFile(Handle, []byte) (uint32, error) {
	return 0, syscall.ENOTSUP
}

func (unsupportedSystemCalls) WriteFile(Handle, []byte) (uint32, error) {
	return 0, syscall.ENOTSUP
}

func (unsupportedSystemCalls) SetFilePointer(Handle, int64, uint32) (int64, error) {
	return 0, syscall.ENOTSUP
}

func (unsupportedSystemCalls) SetEndOfFile(Handle) error {
	return syscall.ENOTSUP
}

func (unsupportedSystemCalls) FileAttributes(Handle) (uint32, error) {
	return 0, syscall.ENOTSUP
}

var defaultFuncs SystemCalls = unsupportedSystemCalls{}
