// spawn_windows.go — Windows spawn stub; the fd-3 IPC channel needs a
// Unix socketpair.

//go:build windows

package oslayer

import (
	"errors"
	"io"
	"os/exec"

	"github.com/hamishmack/daedalus/internal/ipc"
)

// ErrIPCUnsupported is returned on platforms without fd-passing
// support for the IPC channel. Orphan reaping and termination still
// work on Windows; only supervised spawn does not.
var ErrIPCUnsupported = errors.New("ipc spawn is not supported on windows")

// Spawn is unavailable on Windows.
func (a *Adapter) Spawn(path string, args []string, logSink io.Writer) (*Child, error) {
	return nil, ErrIPCUnsupported
}

func exitStatus(cmd *exec.Cmd) ipc.ExitStatus {
	st := ipc.ExitStatus{Code: -1}
	if ps := cmd.ProcessState; ps != nil {
		st.Code = ps.ExitCode()
	}
	return st
}
