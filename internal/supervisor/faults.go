// faults.go — Fault-injection bookkeeping and the toggle operation.
package supervisor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hamishmack/daedalus/internal/ipc"
	"github.com/hamishmack/daedalus/internal/waitutil"
)

// faultSet tracks fault identifiers the node has confirmed active. It
// is replaced wholesale from FInjects frames and cleared on reset —
// never mutated optimistically on send.
type faultSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newFaultSet() *faultSet {
	return &faultSet{ids: make(map[string]struct{})}
}

func (f *faultSet) Replace(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	f.mu.Lock()
	f.ids = next
	f.mu.Unlock()
}

func (f *faultSet) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[id]
	return ok
}

func (f *faultSet) Snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// InjectFault asks the node to enable or disable the named fault and
// waits for the node's FInjects confirmation to reflect it. With no
// node connected it is a successful no-op.
func (s *Supervisor) InjectFault(id string, enable bool) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	child, cfg := s.child, s.cfg
	s.mu.Unlock()
	if child == nil || !child.Connected() || cfg == nil {
		return nil
	}

	if err := child.Send(ipc.NewSetFInject(id, enable)); err != nil {
		return fmt.Errorf("send fault toggle %q: %w", id, err)
	}
	err := waitutil.Await(func() bool {
		return s.faults.Has(id) == enable
	}, cfg.faultTimeout())
	if err != nil {
		return fmt.Errorf("%w: fault %q enable=%t", ErrFaultTimeout, id, enable)
	}
	return nil
}
