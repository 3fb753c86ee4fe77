// spawn_unix.go — Node spawn with a socketpair IPC channel on fd 3.

//go:build !windows

package oslayer

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/hamishmack/daedalus/internal/ipc"
)

// Spawn launches the node binary with stdio [inherit, log, log, ipc].
// fd 3 in the child is one end of a Unix socketpair carrying
// line-delimited JSON frames in both directions.
func (a *Adapter) Spawn(path string, args []string, logSink io.Writer) (*Child, error) {
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("ipc socketpair: %w", err)
	}
	parentEnd := os.NewFile(uintptr(fds[0]), "node-ipc")
	childEnd := os.NewFile(uintptr(fds[1]), "node-ipc-child")

	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = logSink
	cmd.Stderr = logSink
	cmd.ExtraFiles = []*os.File{childEnd}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		_ = parentEnd.Close()
		_ = childEnd.Close()
		return nil, fmt.Errorf("spawn %s: %w", path, err)
	}
	// The child holds its own copy of the socket.
	_ = childEnd.Close()

	c := &Child{
		log:      a.log,
		cmd:      cmd,
		pid:      cmd.Process.Pid,
		pipe:     parentEnd,
		events:   make(chan ipc.Event, 16),
		readDone: make(chan struct{}),
	}
	c.connected.Store(true)
	c.pump()
	a.log.Info("node spawned", "pid", c.pid, "path", path)
	return c, nil
}

// exitStatus derives the exit code and terminating signal from a
// completed command.
func exitStatus(cmd *exec.Cmd) ipc.ExitStatus {
	st := ipc.ExitStatus{Code: -1}
	ps := cmd.ProcessState
	if ps == nil {
		return st
	}
	st.Code = ps.ExitCode()
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		st.Signal = ws.Signal().String()
	}
	return st
}
