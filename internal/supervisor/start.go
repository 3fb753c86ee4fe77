// start.go — Start, restart and orphan reaping.
package supervisor

import (
	"fmt"

	"github.com/hamishmack/daedalus/internal/ipc"
	"github.com/hamishmack/daedalus/internal/lifecycle"
	"github.com/hamishmack/daedalus/internal/waitutil"
)

// Start launches the node under the given configuration. Preconditions
// are checked in order and the first failure short-circuits with no
// state change: a connected child or non-startable state rejects with
// ErrAlreadyRunning; an orphan from a previous run that cannot be
// reaped rejects with ErrOrphanReapFailed; an exhausted retry budget
// rejects with ErrTooManyRetries unless forced.
func (s *Supervisor) Start(cfg Config, forced bool) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.startLocked(cfg, forced)
}

func (s *Supervisor) startLocked(cfg Config, forced bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	state := s.machine.State()
	s.mu.Lock()
	connected := s.child != nil && s.child.Connected()
	tries := s.startupTries
	s.mu.Unlock()

	if connected {
		return ErrAlreadyRunning
	}
	if !state.Startable() {
		// Busy states reject outright; terminal states admit only a
		// forced start and otherwise report the exhausted budget.
		if !state.Terminal() {
			return fmt.Errorf("%w: state %s", ErrAlreadyRunning, state)
		}
		if !forced {
			return fmt.Errorf("%w: state %s", ErrTooManyRetries, state)
		}
	}
	if err := s.reapOrphan(&cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrOrphanReapFailed, err)
	}
	if !forced && tries >= cfg.StartupMaxRetries {
		return fmt.Errorf("%w: %d tries", ErrTooManyRetries, tries)
	}

	s.mu.Lock()
	s.cfg = &cfg
	s.startupTries++
	s.mu.Unlock()

	if err := s.machine.Transition(lifecycle.Starting); err != nil {
		return err
	}

	sink, err := s.osa.OpenAppend(cfg.LogFilePath)
	if err != nil {
		err = fmt.Errorf("open node log: %w", err)
		_ = s.machine.TransitionWith(lifecycle.Errored, lifecycle.Detail{Err: err})
		return err
	}
	child, err := s.osa.Spawn(cfg.NodePath, cfg.NodeArgs, sink)
	if err != nil {
		_ = sink.Close()
		err = fmt.Errorf("spawn node: %w", err)
		_ = s.machine.TransitionWith(lifecycle.Errored, lifecycle.Detail{Err: err})
		return err
	}

	s.mu.Lock()
	s.child = child
	s.logSink = sink
	s.mu.Unlock()

	go s.eventLoop(child)

	if err := waitutil.Await(child.Connected, cfg.StartupTimeout); err != nil {
		// The exit or error handler moves the FSM forward once the
		// child terminates; the starting transition stands.
		return fmt.Errorf("%w: pid %d", ErrSpawnTimeout, child.Pid())
	}
	if err := child.Send(ipc.NewQueryPort()); err != nil {
		return fmt.Errorf("query port: %w", err)
	}
	s.log.Info("node starting", "pid", child.Pid(), "tries", s.StartupTries())
	return nil
}

// Restart stops any running node and starts it again with the previous
// configuration. Failures transition to errored and are surfaced.
func (s *Supervisor) Restart(forced bool) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cfg := s.config()
	if cfg == nil {
		return fmt.Errorf("restart before first start")
	}
	if child := s.currentChild(); child != nil && child.Connected() {
		if err := s.stopLocked(); err != nil {
			_ = s.machine.TransitionWith(lifecycle.Errored, lifecycle.Detail{Err: err})
			return err
		}
	}
	if err := s.startLocked(*cfg, forced); err != nil {
		_ = s.machine.TransitionWith(lifecycle.Errored, lifecycle.Detail{Err: err})
		return err
	}
	return nil
}

// reapOrphan kills a node left behind by a previous launcher run,
// identified by the persisted pid plus the alive-probe. A live orphan
// that survives the kill timeout aborts the start.
func (s *Supervisor) reapOrphan(cfg *Config) error {
	pid, ok, err := s.store.GetInt(cfg.pidKey())
	if err != nil {
		return fmt.Errorf("read persisted pid: %w", err)
	}
	if !ok || pid <= 0 {
		return nil
	}
	if !s.osa.ProcessAlive(pid, cfg.NodePath) {
		return nil
	}
	s.log.Info("reaping orphaned node from previous run", "pid", pid)
	if err := s.osa.Terminate(pid); err != nil {
		return fmt.Errorf("kill orphan %d: %w", pid, err)
	}
	err = waitutil.Await(func() bool {
		return !s.osa.ProcessAlive(pid, cfg.NodePath)
	}, cfg.KillTimeout)
	if err != nil {
		return fmt.Errorf("orphan %d survived kill", pid)
	}
	return nil
}
