// fakes_test.go — Scripted collaborators for supervisor tests.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/hamishmack/daedalus/internal/ipc"
	"github.com/hamishmack/daedalus/internal/lifecycle"
)

type fakeChild struct {
	pid       int
	connected atomic.Bool

	mu           sync.Mutex
	sent         []any
	disconnects  int
	onSend       func(c *fakeChild, v any)
	onDisconnect func(c *fakeChild)

	events    chan ipc.Event
	closeOnce sync.Once
}

func newFakeChild(pid int) *fakeChild {
	c := &fakeChild{pid: pid, events: make(chan ipc.Event, 32)}
	c.connected.Store(true)
	return c
}

func (c *fakeChild) Pid() int                 { return c.pid }
func (c *fakeChild) Connected() bool          { return c.connected.Load() }
func (c *fakeChild) Events() <-chan ipc.Event { return c.events }

func (c *fakeChild) Send(v any) error {
	if !c.connected.Load() {
		return fmt.Errorf("channel closed")
	}
	c.mu.Lock()
	c.sent = append(c.sent, v)
	hook := c.onSend
	c.mu.Unlock()
	if hook != nil {
		hook(c, v)
	}
	return nil
}

func (c *fakeChild) Disconnect() error {
	c.connected.Store(false)
	c.mu.Lock()
	c.disconnects++
	hook := c.onDisconnect
	c.mu.Unlock()
	if hook != nil {
		hook(c)
	}
	return nil
}

func (c *fakeChild) emitMessage(m ipc.Message) {
	c.events <- ipc.Event{Message: &m}
}

func (c *fakeChild) emitError(err error) {
	c.events <- ipc.Event{Err: err}
}

// emitExit delivers the final exit event and closes the stream, like
// the real child handle does.
func (c *fakeChild) emitExit(code int, signal string) {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		c.events <- ipc.Event{Exit: &ipc.ExitStatus{Code: code, Signal: signal}}
		close(c.events)
	})
}

func (c *fakeChild) sentFrames() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

type closeCountingSink struct {
	mu     sync.Mutex
	closes int
}

func (s *closeCountingSink) Write(p []byte) (int, error) { return len(p), nil }
func (s *closeCountingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

type fakeAdapter struct {
	mu          sync.Mutex
	alive       map[int]bool
	files       map[string][]byte
	queue       []*fakeChild
	spawned     []*fakeChild
	sinks       []*closeCountingSink
	terminated  []int
	commands    [][]string
	spawnErr    error
	onTerminate func(a *fakeAdapter, pid int)
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		alive: make(map[int]bool),
		files: make(map[string][]byte),
	}
}

func (a *fakeAdapter) enqueueChild(c *fakeChild) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queue = append(a.queue, c)
}

func (a *fakeAdapter) setAlive(pid int, alive bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alive[pid] = alive
}

func (a *fakeAdapter) Spawn(path string, args []string, logSink io.Writer) (Child, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.spawnErr != nil {
		return nil, a.spawnErr
	}
	if len(a.queue) == 0 {
		return nil, fmt.Errorf("no scripted child left")
	}
	c := a.queue[0]
	a.queue = a.queue[1:]
	a.spawned = append(a.spawned, c)
	a.alive[c.pid] = true
	return c, nil
}

func (a *fakeAdapter) RunCommand(ctx context.Context, name string, args ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commands = append(a.commands, append([]string{name}, args...))
	return nil
}

func (a *fakeAdapter) ReadFile(path string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return data, nil
}

func (a *fakeAdapter) OpenAppend(path string) (io.WriteCloser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sink := &closeCountingSink{}
	a.sinks = append(a.sinks, sink)
	return sink, nil
}

func (a *fakeAdapter) ProcessAlive(pid int, name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alive[pid]
}

func (a *fakeAdapter) Terminate(pid int) error {
	a.mu.Lock()
	a.terminated = append(a.terminated, pid)
	hook := a.onTerminate
	a.mu.Unlock()
	if hook != nil {
		hook(a, pid)
	}
	return nil
}

func (a *fakeAdapter) terminatedPids() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.terminated...)
}

func (a *fakeAdapter) spawnCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.spawned)
}

// recordingBroadcaster captures everything pushed to observers.
type recordingBroadcaster struct {
	mu     sync.Mutex
	states []lifecycle.State
	tls    []TLSConfig
}

func (b *recordingBroadcaster) BroadcastStateChange(state lifecycle.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = append(b.states, state)
}

func (b *recordingBroadcaster) BroadcastTLSConfig(tls TLSConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tls = append(b.tls, tls)
}

func (b *recordingBroadcaster) stateLog() []lifecycle.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]lifecycle.State(nil), b.states...)
}

func (b *recordingBroadcaster) tlsLog() []TLSConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]TLSConfig(nil), b.tls...)
}
