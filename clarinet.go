// Package clarinet is a portable, low-level network I/O library that gives
// applications a uniform interface to UDP and TCP endpoints across
// POSIX-style systems and Windows.
//
// Divergent kernel conventions (BSD sockets vs Winsock) hide behind a single
// address/endpoint model, a single socket handle type, and a single error
// taxonomy, while bit-exact control over wire-relevant parameters (port,
// scope id, TTL, MTU discovery mode, linger) is preserved.
//
// The library imposes no event loop, scheduling, or name resolution: sockets
// are plain handles, errors are plain values, and readiness is observed with
// Poll.
package clarinet

import "sync"

// -------------------------------------------------------------------------
// Network Subsystem
// -------------------------------------------------------------------------

var netsys struct {
	mu    sync.Mutex
	count int
}

// Initialize acquires the process-wide network subsystem. Calls are
// reference counted; each successful Initialize must be balanced by a
// Finalize. On POSIX systems this is bookkeeping only; on Windows the first
// call loads Winsock 2.2.
//
// The subsystem must be live before any socket is opened.
func Initialize() error {
	netsys.mu.Lock()
	defer netsys.mu.Unlock()
	if netsys.count == 0 {
		if err := netsysStartup(); err != nil {
			return err
		}
	}
	netsys.count++
	return nil
}

// Finalize releases one reference to the network subsystem. The last
// release unloads it. Finalizing an unreferenced subsystem fails with
// ErrInvalid.
func Finalize() error {
	netsys.mu.Lock()
	defer netsys.mu.Unlock()
	if netsys.count == 0 {
		return ErrInvalid
	}
	if netsys.count == 1 {
		if err := netsysTeardown(); err != nil {
			return err
		}
	}
	netsys.count--
	return nil
}
