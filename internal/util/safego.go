// safego.go — Panic-recovering goroutine launcher.
package util

import (
	"runtime/debug"

	"github.com/hamishmack/daedalus/internal/logging"
)

// SafeGo launches fn in a goroutine with deferred panic recovery.
// On panic: logs the stack trace. Background panics are survivable so
// the launcher stays up.
func SafeGo(log logging.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in background goroutine",
					"panic", r, "stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
