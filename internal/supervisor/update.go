// update.go — Coordinated node self-update.
package supervisor

import (
	"fmt"

	"github.com/hamishmack/daedalus/internal/lifecycle"
	"github.com/hamishmack/daedalus/internal/waitutil"
)

// updateExitCode is the contract with the node: this exit code, and
// only while updating, signals a successful self-update.
const updateExitCode = 20

// ExpectUpdate announces that the node is about to self-update and
// waits for it to exit with the update exit code. Reaching the updated
// state, and then actual process death, are each bounded by the update
// timeout; on either timeout the node is killed and ErrUpdateTimeout
// returned.
func (s *Supervisor) ExpectUpdate() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cfg := s.config()
	if cfg == nil {
		return fmt.Errorf("expect update before first start")
	}
	if err := s.machine.Transition(lifecycle.Updating); err != nil {
		return err
	}

	err := waitutil.Await(func() bool {
		return s.machine.State() == lifecycle.Updated
	}, cfg.UpdateTimeout)
	if err != nil {
		if terr := s.machine.Transition(lifecycle.UpdateFailed); terr != nil {
			s.log.Debug("update-failed transition rejected", "error", terr)
		}
		if kerr := s.killLocked(); kerr != nil {
			s.log.Error("kill after update timeout", "error", kerr)
		}
		return fmt.Errorf("%w: node never reported update exit", ErrUpdateTimeout)
	}

	// The updated transition fires from the exit handler, which runs
	// before the process is necessarily reaped at the OS level. Hold
	// the caller until the probe agrees.
	err = waitutil.Await(func() bool {
		return !s.childAlive()
	}, cfg.UpdateTimeout)
	if err != nil {
		if kerr := s.killLocked(); kerr != nil {
			s.log.Error("kill after update exit timeout", "error", kerr)
		}
		return fmt.Errorf("%w: node reported update but never exited", ErrUpdateTimeout)
	}
	return nil
}
