//go:build !unix && !windows

package platform

import (
	"fmt"
	"runtime"
)

func acquireSessionLock(_ string) (SessionLock, error) {
	return nil, fmt.Errorf("%w on %s", ErrSessionLockUnsupported, runtime.GOOS)
}
