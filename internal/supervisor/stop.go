// stop.go — Cooperative stop, forced kill, and reset bookkeeping.
package supervisor

import (
	"fmt"

	"github.com/hamishmack/daedalus/internal/lifecycle"
	"github.com/hamishmack/daedalus/internal/waitutil"
)

// Stop asks the node to shut down by disconnecting the IPC channel and
// waits for process death. If the node outlives the shutdown timeout,
// Stop escalates to Kill. Stopping an already-dead node is a
// successful no-op.
func (s *Supervisor) Stop() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.stopLocked()
}

func (s *Supervisor) stopLocked() error {
	s.mu.Lock()
	child, cfg := s.child, s.cfg
	s.mu.Unlock()
	if child == nil || cfg == nil {
		return nil
	}
	if !s.osa.ProcessAlive(child.Pid(), cfg.NodePath) {
		// Dead at the OS level but not yet cleaned up (e.g. after a
		// channel error that produced no exit event).
		s.reset()
		return nil
	}

	if err := s.machine.Transition(lifecycle.Stopping); err != nil {
		s.log.Debug("stop transition rejected", "error", err)
	}
	_ = child.Disconnect()

	pid := child.Pid()
	err := waitutil.Await(func() bool {
		return !s.osa.ProcessAlive(pid, cfg.NodePath)
	}, cfg.ShutdownTimeout)
	if err != nil {
		s.log.Info("node ignored shutdown, escalating to kill",
			"pid", pid, "timeout", cfg.ShutdownTimeout)
		return s.killLocked()
	}

	if err := s.machine.Transition(lifecycle.Stopped); err != nil {
		s.log.Debug("stopped transition rejected", "error", err)
	}
	s.reset()
	return nil
}

// Kill terminates the node process without ceremony and waits for the
// alive-probe to confirm death. Killing an already-dead node is a
// successful no-op; a node that survives the kill timeout yields
// ErrKillFailed after bookkeeping is reset.
func (s *Supervisor) Kill() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.killLocked()
}

func (s *Supervisor) killLocked() error {
	s.mu.Lock()
	child, cfg := s.child, s.cfg
	s.mu.Unlock()
	if child == nil || cfg == nil {
		return nil
	}
	if !s.osa.ProcessAlive(child.Pid(), cfg.NodePath) {
		s.reset()
		return nil
	}

	if st := s.machine.State(); st != lifecycle.Stopping && st != lifecycle.Stopped {
		if err := s.machine.Transition(lifecycle.Stopping); err != nil {
			s.log.Debug("kill transition rejected", "error", err)
		}
	}

	pid := child.Pid()
	if err := s.osa.Terminate(pid); err != nil {
		s.log.Error("terminate failed", "pid", pid, "error", err)
	}
	err := waitutil.Await(func() bool {
		return !s.osa.ProcessAlive(pid, cfg.NodePath)
	}, cfg.KillTimeout)
	if err != nil {
		s.reset()
		return fmt.Errorf("%w: pid %d", ErrKillFailed, pid)
	}

	if err := s.machine.Transition(lifecycle.Stopped); err != nil {
		s.log.Debug("stopped transition rejected", "error", err)
	}
	s.reset()
	return nil
}

// reset clears per-run bookkeeping: the last observed pid is persisted
// first, then the log sink is closed, the IPC channel detached and the
// cached TLS config dropped. Safe to call more than once; every
// terminal path funnels through here.
func (s *Supervisor) reset() {
	s.mu.Lock()
	child, sink, cfg := s.child, s.logSink, s.cfg
	s.child = nil
	s.logSink = nil
	s.tls = nil
	s.mu.Unlock()

	if child != nil && cfg != nil {
		if pid := child.Pid(); pid > 0 {
			if err := s.store.SetInt(cfg.pidKey(), pid); err != nil {
				s.log.Error("persist node pid", "pid", pid, "error", err)
			}
		}
	}
	if child != nil {
		_ = child.Disconnect()
	}
	if sink != nil {
		_ = sink.Close()
	}
	s.faults.Replace(nil)
}
