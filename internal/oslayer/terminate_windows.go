// terminate_windows.go — taskkill-based process termination.

//go:build windows

package oslayer

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Terminate kills pid and its process tree via taskkill. Windows has
// no default termination signal to send, so the forced variant is the
// only reliable path.
func (a *Adapter) Terminate(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("terminate: invalid pid %d", pid)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.RunCommand(ctx, "taskkill", "/pid", strconv.Itoa(pid), "/t", "/f")
}
