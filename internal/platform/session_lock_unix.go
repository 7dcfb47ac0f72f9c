//go:build unix

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

const sessionLockFilename = "session.lock"

type unixSessionLock struct {
	file *os.File
}

func acquireSessionLock(dir string) (SessionLock, error) {
	if dir == "" {
		return nil, errors.New("session lock dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create session lock dir: %w", err)
	}

	lockPath := filepath.Join(dir, sessionLockFilename)
	// #nosec G304 -- lockPath is inside the app config dir.
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open session lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, ErrSessionActive
		}

		return nil, fmt.Errorf("acquire session file lock: %w", err)
	}

	return &unixSessionLock{file: file}, nil
}

func (l *unixSessionLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	unlockErr := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil && !errors.Is(unlockErr, syscall.EBADF) {
		return fmt.Errorf("unlock session file lock: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close session lock file: %w", closeErr)
	}

	return nil
}
