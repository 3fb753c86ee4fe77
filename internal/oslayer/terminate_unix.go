// terminate_unix.go — Default-signal process termination.

//go:build !windows

package oslayer

import (
	"fmt"
	"syscall"
)

// Terminate sends the default termination signal to pid. Confirmation
// of death is the caller's job, via ProcessAlive.
func (a *Adapter) Terminate(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("terminate: invalid pid %d", pid)
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		if err == syscall.ESRCH {
			return nil
		}
		return fmt.Errorf("terminate pid %d: %w", pid, err)
	}
	return nil
}
