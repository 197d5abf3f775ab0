package winfile

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// realSystemCalls binds the capability to the Win32 API.
type realSystemCalls struct{}

func (realSystemCalls) CreateFile(name string, access, shareMode, creation, attrs uint32) (Handle, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return InvalidHandle, err
	}

	sa := &windows.SecurityAttributes{InheritHandle: 0}
	sa.Length = uint32(unsafe.Sizeof(*sa))

	h, err := windows.CreateFile(p, access, shareMode, sa, creation, attrs, 0)
	if err != nil {
		return InvalidHandle, err
	}
	return Handle(h), nil
}

func (realSystemCalls) CloseHandle(h Handle) error {
	return windows.CloseHandle(windows.Handle(h))
}

func (realSystemCalls) ReadFile(h Handle, p []byte) (uint32, error) {
	var done uint32
	if err := windows.ReadFile(windows.Handle(h), p, &done, nil); err != nil {
		return 0, err
	}
	return done, nil
}

func (realSystemCalls) WriteFile(h Handle, p []byte) (uint32, error) {
	var done uint32
	if err := windows.WriteFile(windows.Handle(h), p, &done, nil); err != nil {
		return 0, err
	}
	return done, nil
}

func (realSystemCalls) SetFilePointer(h Handle, offset int64, moveMethod uint32) (int64, error) {
	return windows.Seek(windows.Handle(h), offset, int(moveMethod))
}

func (realSystemCalls) SetEndOfFile(h Handle) error {
	return windows.SetEndOfFile(windows.Handle(h))
}

func (realSystemCalls) FileAttributes(h Handle) (uint32, error) {
	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(windows.Handle(h), &info); err != nil {
		return 0, err
	}
	return info.FileAttributes, nil
}

var defaultFuncs SystemCalls = realSystemCalls{}
