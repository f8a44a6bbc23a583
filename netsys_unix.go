//go:build unix

package clarinet

// The socket API needs no process-wide setup on POSIX systems.

func netsysStartup() error  { return nil }
func netsysTeardown() error { return nil }
