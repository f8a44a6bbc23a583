//go:build windows

package clarinet

import "golang.org/x/sys/windows"

// netsysStartup loads Winsock 2.2. WSAStartup calls are reference counted
// by the system, but the library keeps its own count so POSIX and Windows
// behave identically.
func netsysStartup() error {
	var data windows.WSAData
	// Version 2.2 is the baseline for every supported Windows release.
	if err := windows.WSAStartup(uint32(0x202), &data); err != nil {
		return mapOSError(err)
	}
	return nil
}

func netsysTeardown() error {
	if err := windows.WSACleanup(); err != nil {
		return mapOSError(err)
	}
	return nil
}
