// machine.go — Lifecycle state machine with listener and broadcast dispatch.
package lifecycle

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/hamishmack/daedalus/internal/logging"
)

// Listeners is the bundle of callbacks invoked after each transition.
// Any callback may be nil. Callbacks run synchronously on the
// transitioning goroutine and are panic-isolated: a panicking listener
// is logged and never propagates into the machine.
type Listeners struct {
	OnStarting      func()
	OnRunning       func()
	OnStopping      func()
	OnStopped       func()
	OnUpdating      func()
	OnUpdated       func()
	OnCrashed       func(exitCode int, signal string)
	OnError         func(err error)
	OnUnrecoverable func()
}

// Detail carries transition-specific payload for Crashed and Errored.
type Detail struct {
	ExitCode int
	Signal   string
	Err      error
}

// Machine drives the node lifecycle FSM. For every accepted transition
// it updates the state first, then invokes the matching listener, then
// notifies the broadcast hook — in that order.
type Machine struct {
	log       logging.Logger
	listeners Listeners
	notify    func(State)

	mu    sync.Mutex
	state State
}

// New builds a machine in the Stopped state. notify is the broadcast
// hook called with the new state after each transition; it may be nil.
func New(log logging.Logger, listeners Listeners, notify func(State)) *Machine {
	return &Machine{log: log, listeners: listeners, notify: notify, state: Stopped}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transition moves the machine to the given state. Re-entering the
// current state is a no-op: no listener fires and nothing is broadcast,
// so duplicate triggers collapse into a single observed transition.
// An inadmissible transition is rejected with an error and no side
// effects.
func (m *Machine) Transition(to State) error {
	return m.TransitionWith(to, Detail{})
}

// TransitionWith is Transition carrying a payload for the Crashed and
// Errored listeners.
func (m *Machine) TransitionWith(to State, d Detail) error {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return nil
	}
	if !Admissible(from, to) {
		m.mu.Unlock()
		return fmt.Errorf("inadmissible transition %s -> %s", from, to)
	}
	m.state = to
	m.mu.Unlock()

	m.log.Debug("lifecycle transition", "from", from.String(), "to", to.String())
	m.dispatch(to, d)
	if m.notify != nil {
		m.notify(to)
	}
	return nil
}

func (m *Machine) dispatch(to State, d Detail) {
	switch to {
	case Starting:
		m.invoke("on_starting", m.listeners.OnStarting)
	case Running:
		m.invoke("on_running", m.listeners.OnRunning)
	case Stopping:
		m.invoke("on_stopping", m.listeners.OnStopping)
	case Stopped:
		m.invoke("on_stopped", m.listeners.OnStopped)
	case Updating:
		m.invoke("on_updating", m.listeners.OnUpdating)
	case Updated:
		m.invoke("on_updated", m.listeners.OnUpdated)
	case Crashed:
		if fn := m.listeners.OnCrashed; fn != nil {
			m.invoke("on_crashed", func() { fn(d.ExitCode, d.Signal) })
		}
	case Errored:
		if fn := m.listeners.OnError; fn != nil {
			m.invoke("on_error", func() { fn(d.Err) })
		}
	case Unrecoverable:
		m.invoke("on_unrecoverable", m.listeners.OnUnrecoverable)
	}
}

// invoke runs a listener with panic recovery so a misbehaving observer
// cannot take the machine down with it.
func (m *Machine) invoke(name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("lifecycle listener panicked",
				"listener", name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}
