package health

import "sync/atomic"

var notReady atomic.Bool

// SetReady toggles the global readiness gate. The server flips it off when a
// graceful shutdown starts so load balancers drain traffic before the
// listener closes.
func SetReady(ready bool) {
	notReady.Store(!ready)
}

// IsReady reports the readiness gate state.
func IsReady() bool {
	return !notReady.Load()
}
