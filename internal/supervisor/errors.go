// errors.go — Typed failures surfaced by supervisor operations.
package supervisor

import "errors"

var (
	// ErrAlreadyRunning rejects a start while a node is connected or
	// the lifecycle state does not admit starting.
	ErrAlreadyRunning = errors.New("node already running")
	// ErrOrphanReapFailed aborts a start that could not clear an
	// orphaned node from a previous launcher run.
	ErrOrphanReapFailed = errors.New("orphaned node could not be reaped")
	// ErrTooManyRetries rejects an unforced start once the retry
	// budget is exhausted.
	ErrTooManyRetries = errors.New("startup retry budget exhausted")
	// ErrSpawnTimeout reports that the IPC channel never connected
	// within the startup timeout.
	ErrSpawnTimeout = errors.New("node did not connect before startup timeout")
	// ErrStopTimeout reports that the node outlived the shutdown
	// timeout. Stop recovers from it internally by escalating to Kill.
	ErrStopTimeout = errors.New("node did not exit before shutdown timeout")
	// ErrKillFailed reports a node that survived the kill timeout.
	ErrKillFailed = errors.New("node still alive after kill")
	// ErrUpdateTimeout reports that the expected self-update did not
	// complete in time.
	ErrUpdateTimeout = errors.New("node update did not complete before timeout")
	// ErrFaultTimeout reports that the node never acknowledged a fault
	// toggle.
	ErrFaultTimeout = errors.New("fault injection not acknowledged before timeout")
)
