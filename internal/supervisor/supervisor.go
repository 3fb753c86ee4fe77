// supervisor.go — Lifecycle owner for the supervised node process.
package supervisor

import (
	"context"
	"io"
	"sync"

	"github.com/hamishmack/daedalus/internal/ipc"
	"github.com/hamishmack/daedalus/internal/lifecycle"
	"github.com/hamishmack/daedalus/internal/logging"
)

// Child is the handle to a spawned node process. The real
// implementation lives in internal/oslayer; tests substitute scripted
// fakes.
type Child interface {
	Pid() int
	Connected() bool
	Send(v any) error
	Disconnect() error
	Events() <-chan ipc.Event
}

// OSAdapter is the process/filesystem surface the supervisor drives.
type OSAdapter interface {
	Spawn(path string, args []string, logSink io.Writer) (Child, error)
	RunCommand(ctx context.Context, name string, args ...string) error
	ReadFile(path string) ([]byte, error)
	OpenAppend(path string) (io.WriteCloser, error)
	ProcessAlive(pid int, name string) bool
	Terminate(pid int) error
}

// Store persists launcher state across runs. Only one record is kept:
// the last observed node pid.
type Store interface {
	GetInt(key string) (int, bool, error)
	SetInt(key string, value int) error
}

// Broadcaster forwards lifecycle changes and the TLS handshake
// artifact to external observers.
type Broadcaster interface {
	BroadcastStateChange(state lifecycle.State)
	BroadcastTLSConfig(tls TLSConfig)
}

// TLSConfig is the certificate triplet plus endpoint that downstream
// clients use to reach the node. The supervisor forwards it verbatim
// and never interprets the certificate bytes.
type TLSConfig struct {
	CA       []byte
	Key      []byte
	Cert     []byte
	Hostname string
	Port     uint16
}

// Supervisor owns a single node process end to end: spawn, IPC, the
// lifecycle FSM, TLS harvesting, pid persistence and orphan reaping.
// Public operations are serialized; at most one lifecycle operation is
// in flight at any moment.
type Supervisor struct {
	log     logging.Logger
	osa     OSAdapter
	store   Store
	bcast   Broadcaster
	machine *lifecycle.Machine

	// opMu makes each lifecycle operation a critical section.
	opMu sync.Mutex

	mu           sync.Mutex
	cfg          *Config
	child        Child
	tls          *TLSConfig
	status       any
	startupTries int
	logSink      io.WriteCloser

	faults *faultSet
}

// New wires a supervisor against its collaborators. The listener
// bundle observes transitions; state changes are additionally pushed
// through bcast after the matching listener has run.
func New(log logging.Logger, osa OSAdapter, st Store, bcast Broadcaster, listeners lifecycle.Listeners) *Supervisor {
	s := &Supervisor{
		log:    log,
		osa:    osa,
		store:  st,
		bcast:  bcast,
		faults: newFaultSet(),
	}
	s.machine = lifecycle.New(log, listeners, func(state lifecycle.State) {
		bcast.BroadcastStateChange(state)
	})
	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() lifecycle.State { return s.machine.State() }

// Pid returns the node's process id, if a child handle exists.
func (s *Supervisor) Pid() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.child == nil {
		return 0, false
	}
	return s.child.Pid(), true
}

// StartupTries returns the number of starts since the last successful
// entry into the running state.
func (s *Supervisor) StartupTries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startupTries
}

// TLSConfig returns a copy of the harvested TLS configuration, if the
// node has reported one and no reset has occurred since.
func (s *Supervisor) TLSConfig() (TLSConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tls == nil {
		return TLSConfig{}, false
	}
	return s.tls.clone(), true
}

// Status returns the cached caller-controlled status value.
func (s *Supervisor) Status() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SaveStatus caches an opaque status value on behalf of callers. The
// supervisor never interprets it.
func (s *Supervisor) SaveStatus(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = v
}

// ActiveFaults returns the fault identifiers the node has confirmed.
func (s *Supervisor) ActiveFaults() []string { return s.faults.Snapshot() }

func (t TLSConfig) clone() TLSConfig {
	c := TLSConfig{Hostname: t.Hostname, Port: t.Port}
	c.CA = append([]byte(nil), t.CA...)
	c.Key = append([]byte(nil), t.Key...)
	c.Cert = append([]byte(nil), t.Cert...)
	return c
}

// config returns the active config pointer.
func (s *Supervisor) config() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Supervisor) currentChild() Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.child
}

// childAlive reports whether the supervised process is still running
// at the OS level.
func (s *Supervisor) childAlive() bool {
	s.mu.Lock()
	child, cfg := s.child, s.cfg
	s.mu.Unlock()
	if child == nil || cfg == nil {
		return false
	}
	return s.osa.ProcessAlive(child.Pid(), cfg.NodePath)
}
