// adapter.go — Process and filesystem primitives the supervisor drives.
package oslayer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/hamishmack/daedalus/internal/logging"
)

// Adapter is the real OS implementation behind the supervisor's
// adapter interface: spawn with an IPC channel, command execution,
// file reads, append-only log sinks, the (pid, name) alive probe, and
// process termination.
type Adapter struct {
	log logging.Logger
}

// New returns an adapter logging through log.
func New(log logging.Logger) *Adapter {
	return &Adapter{log: log}
}

// ReadFile reads the file at path in full.
func (a *Adapter) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// OpenAppend opens path for appending, creating it if absent. The
// returned stream is the node's log sink; the supervisor closes it on
// every reset.
func (a *Adapter) OpenAppend(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log sink: %w", err)
	}
	return f, nil
}

// RunCommand executes name with args and waits for completion.
func (a *Adapter) RunCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ProcessAlive reports whether a process with the given pid exists and
// runs under the executable name (an empty name matches any process).
// The ".exe" suffix is ignored so configs stay portable.
func (a *Adapter) ProcessAlive(pid int, name string) bool {
	if pid <= 0 {
		return false
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	if err != nil || !running {
		return false
	}
	if name == "" {
		return true
	}
	procName, err := p.Name()
	if err != nil {
		// Existence is confirmed; name introspection can fail on
		// restricted platforms. Err on the side of "alive".
		return true
	}
	return executableName(procName) == executableName(name)
}

func executableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(strings.ToLower(base), ".exe")
}
