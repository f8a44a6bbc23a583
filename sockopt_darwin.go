//go:build darwin

package clarinet

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// -------------------------------------------------------------------------
// Option Engine — Darwin lowering
// -------------------------------------------------------------------------

// Option codes the unix package does not carry for this target.
const (
	sysIPDontFrag   = 0x1c // IP_DONTFRAG
	sysIPV6DontFrag = 0x3e // IPV6_DONTFRAG
	sysUDPNoCksum   = 0x01 // UDP_NOCKSUM
)

// SIGPIPE suppression has no per-call flag here; callers that care install
// SO_NOSIGPIPE themselves.
const sendFlags = 0

// lowerReuseAddr lowers the portable reuse flag. SO_REUSEPORT is required
// in addition to SO_REUSEADDR for fully identical (address, port) sharing.
func lowerReuseAddr(fd sockfd, on bool) error {
	v := intOpt(on)
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, v); err != nil {
		return mapOSError(err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, v); err != nil {
		return mapOSError(err)
	}
	return nil
}

// adjustBufferSize passes the requested size verbatim, except that zero is
// rejected by the kernel here, so the request is skipped and the system
// default stands.
func adjustBufferSize(value int32) (int, bool) {
	if value == 0 {
		return 0, true
	}
	return int(value), false
}

// Path MTU discovery on this target reduces to the DF flag: there is no
// per-socket discovery mode, only "don't fragment" on or off.
func sockSetMTUDiscover(fd sockfd, family Family, mode PMTUDMode) error {
	df := 0
	switch mode {
	case PMTUDOn, PMTUDProbe:
		df = 1
	}
	var err error
	if family == FamilyInet6 {
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, sysIPV6DontFrag, df)
	} else {
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IP, sysIPDontFrag, df)
	}
	if err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetMTUDiscover(fd sockfd, family Family) (PMTUDMode, error) {
	var v int
	var err error
	if family == FamilyInet6 {
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IPV6, sysIPV6DontFrag)
	} else {
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IP, sysIPDontFrag)
	}
	if err != nil {
		return 0, mapOSError(err)
	}
	if v != 0 {
		return PMTUDOn, nil
	}
	return PMTUDOff, nil
}

// There is no per-socket path MTU query on this target.
func sockGetMTU(fd sockfd, family Family) (int32, error) {
	return 0, ErrNotSup
}

// sockForceUDPChecksum clears the undocumented UDP_NOCKSUM flag so IPv4 UDP
// checksums are always computed, regardless of system configuration.
func sockForceUDPChecksum(fd sockfd, family Family) error {
	if family != FamilyInet {
		return nil
	}
	err := unix.SetsockoptInt(fd, unix.IPPROTO_UDP, sysUDPNoCksum, 0)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == syscall.ENOPROTOOPT {
			return nil
		}
		return mapOSError(err)
	}
	return nil
}
