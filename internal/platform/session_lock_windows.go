//go:build windows

package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

type windowsSessionLock struct {
	handle windows.Handle
}

func acquireSessionLock(dir string) (SessionLock, error) {
	namePtr, err := windows.UTF16PtrFromString(sessionMutexName(dir))
	if err != nil {
		return nil, fmt.Errorf("encode session mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, namePtr)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if handle != 0 {
			_ = windows.CloseHandle(handle)
		}

		return nil, ErrSessionActive
	}
	if err != nil {
		if handle != 0 {
			_ = windows.CloseHandle(handle)
		}

		return nil, fmt.Errorf("create session mutex: %w", err)
	}

	return &windowsSessionLock{handle: handle}, nil
}

func (l *windowsSessionLock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}

	err := windows.CloseHandle(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("close session mutex handle: %w", err)
	}

	return nil
}

func sessionMutexName(dir string) string {
	return `Local\marginiq-session-` + normalizeLockComponent(dir, "default")
}
