// child.go — Handle to a spawned node process and its IPC channel.
package oslayer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/hamishmack/daedalus/internal/ipc"
	"github.com/hamishmack/daedalus/internal/logging"
)

// Child owns a spawned node process plus the duplex IPC pipe on its
// fd 3. Events (inbound messages, channel errors, process exit) are
// delivered in order on a single channel; the exit event is always
// last, after which the channel is closed.
type Child struct {
	log logging.Logger
	cmd *exec.Cmd
	pid int

	writeMu sync.Mutex
	pipe    *os.File

	connected atomic.Bool
	closeOnce sync.Once

	events   chan ipc.Event
	readDone chan struct{}
}

// Pid returns the operating-system process id of the node.
func (c *Child) Pid() int { return c.pid }

// Connected reports whether the IPC channel is open.
func (c *Child) Connected() bool { return c.connected.Load() }

// Events returns the ordered event stream for this child. The channel
// is closed after the exit event has been delivered.
func (c *Child) Events() <-chan ipc.Event { return c.events }

// Send writes one frame to the node.
func (c *Child) Send(v any) error {
	if !c.connected.Load() {
		return fmt.Errorf("ipc channel closed")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ipc.WriteFrame(c.pipe, v)
}

// Disconnect closes the launcher's side of the IPC channel. The node
// observes EOF on its channel, which is the cooperative shutdown
// signal. Safe to call more than once.
func (c *Child) Disconnect() error {
	var err error
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		err = c.pipe.Close()
	})
	return err
}

// pump reads inbound frames until the channel closes, then waits for
// process exit and emits the final exit event.
func (c *Child) pump() {
	go func() {
		defer close(c.readDone)
		reader := ipc.NewReader(c.pipe)
		for {
			msg, err := reader.Next()
			if err != nil {
				if !isClosedPipe(err) {
					c.events <- ipc.Event{Err: err}
				}
				return
			}
			m := msg
			c.events <- ipc.Event{Message: &m}
		}
	}()

	go func() {
		_ = c.cmd.Wait()
		// Exit strictly follows all channel traffic.
		<-c.readDone
		c.connected.Store(false)
		status := exitStatus(c.cmd)
		c.events <- ipc.Event{Exit: &status}
		close(c.events)
	}()
}

// isClosedPipe distinguishes an orderly channel close (node exited, or
// Disconnect closed the pipe out from under the reader) from a real
// channel failure.
func isClosedPipe(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.ECONNRESET)
}
