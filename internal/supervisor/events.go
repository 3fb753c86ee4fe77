// events.go — Inbound IPC traffic, exit classification and error recovery.
package supervisor

import (
	"fmt"
	"path/filepath"

	"github.com/hamishmack/daedalus/internal/ipc"
	"github.com/hamishmack/daedalus/internal/lifecycle"
	"github.com/hamishmack/daedalus/internal/util"
	"github.com/hamishmack/daedalus/internal/waitutil"
)

// eventLoop drains one child's event stream. Message, exit and error
// events arrive on a single channel and are handled one at a time, so
// channel callbacks never interleave with each other.
func (s *Supervisor) eventLoop(child Child) {
	for ev := range child.Events() {
		switch {
		case ev.Message != nil:
			s.handleMessage(*ev.Message)
		case ev.Exit != nil:
			s.handleExit(ev.Exit.Code, ev.Exit.Signal)
		case ev.Err != nil:
			s.handleError(ev.Err)
		}
	}
}

func (s *Supervisor) handleMessage(msg ipc.Message) {
	switch {
	case msg.ReplyPort != nil:
		s.handleReplyPort(*msg.ReplyPort)
	case msg.FInjects != nil:
		s.faults.Replace(*msg.FInjects)
		s.log.Info("node fault set updated", "faults", *msg.FInjects)
	case msg.Started != nil:
		s.log.Info("node handshake received")
	default:
		s.log.Debug("ignoring unknown node message")
	}
}

// handleReplyPort assembles the TLS configuration from the node's
// reported port plus the three certificate files. The first ReplyPort
// observed while starting promotes the node to running and broadcasts
// the TLS config exactly once; later frames refresh the stored config
// silently.
func (s *Supervisor) handleReplyPort(port uint16) {
	cfg := s.config()
	if cfg == nil {
		return
	}
	base := filepath.Join(cfg.TLSPath, "client")
	ca, err := s.osa.ReadFile(filepath.Join(base, "ca.crt"))
	if err != nil {
		s.handleError(fmt.Errorf("read tls ca: %w", err))
		return
	}
	key, err := s.osa.ReadFile(filepath.Join(base, "client.key"))
	if err != nil {
		s.handleError(fmt.Errorf("read tls key: %w", err))
		return
	}
	cert, err := s.osa.ReadFile(filepath.Join(base, "client.pem"))
	if err != nil {
		s.handleError(fmt.Errorf("read tls cert: %w", err))
		return
	}
	tls := TLSConfig{CA: ca, Key: key, Cert: cert, Hostname: "localhost", Port: port}

	wasStarting := s.machine.State() == lifecycle.Starting
	s.mu.Lock()
	s.tls = &tls
	s.mu.Unlock()

	if !wasStarting {
		return
	}
	if err := s.machine.Transition(lifecycle.Running); err != nil {
		s.log.Debug("running transition rejected", "error", err)
		return
	}
	s.mu.Lock()
	s.startupTries = 0
	s.mu.Unlock()
	s.bcast.BroadcastTLSConfig(tls.clone())
	s.log.Info("node running", "port", port)
}

// handleExit classifies a node exit. The process is given the
// shutdown timeout to disappear at the OS level (with one forced kill
// if it does not), then the terminal state is chosen from the current
// lifecycle state, the exit code and the retry budget.
func (s *Supervisor) handleExit(code int, signal string) {
	cfg := s.config()
	if cfg == nil {
		return
	}

	if s.machine.State() == lifecycle.Running {
		if err := s.machine.Transition(lifecycle.Exiting); err != nil {
			s.log.Debug("exiting transition rejected", "error", err)
		}
	}

	s.mu.Lock()
	pid := 0
	if s.child != nil {
		pid = s.child.Pid()
	}
	tries := s.startupTries
	s.mu.Unlock()

	if pid > 0 {
		err := waitutil.Await(func() bool {
			return !s.osa.ProcessAlive(pid, cfg.NodePath)
		}, cfg.ShutdownTimeout)
		if err != nil {
			// Continue regardless of the outcome; the probe may
			// simply lag the exit event.
			_ = s.osa.Terminate(pid)
		}
	}

	var terr error
	switch st := s.machine.State(); {
	case st == lifecycle.Stopping:
		terr = s.machine.Transition(lifecycle.Stopped)
	case st == lifecycle.Updating && code == updateExitCode:
		terr = s.machine.Transition(lifecycle.Updated)
	case tries >= cfg.StartupMaxRetries:
		s.log.Error("node exited with retry budget exhausted",
			"code", code, "signal", signal, "tries", tries)
		terr = s.machine.Transition(lifecycle.Unrecoverable)
	default:
		s.log.Error("node crashed", "code", code, "signal", signal)
		terr = s.machine.TransitionWith(lifecycle.Crashed,
			lifecycle.Detail{ExitCode: code, Signal: signal})
	}
	if terr != nil {
		s.log.Debug("exit transition rejected", "error", terr)
	}
	s.reset()
}

// handleError reports a channel-level failure and recovers by
// restarting the node. The restart runs off the event goroutine so the
// remaining events of the dying child can still drain.
func (s *Supervisor) handleError(err error) {
	s.log.Error("node channel error", "error", err)
	if terr := s.machine.TransitionWith(lifecycle.Errored, lifecycle.Detail{Err: err}); terr != nil {
		s.log.Debug("errored transition rejected", "error", terr)
	}
	util.SafeGo(s.log, func() {
		if rerr := s.Restart(false); rerr != nil {
			s.log.Error("restart after channel error failed", "error", rerr)
		}
	})
}
