//go:build linux

package clarinet

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// -------------------------------------------------------------------------
// Option Engine — Linux lowering
// -------------------------------------------------------------------------

// MSG_NOSIGNAL suppresses SIGPIPE when the peer breaks a stream connection;
// EPIPE is still returned.
const sendFlags = unix.MSG_NOSIGNAL

// lowerReuseAddr lowers the portable reuse flag. SO_REUSEPORT (kernel 3.9+)
// is required in addition to SO_REUSEADDR for two sockets to share a fully
// identical (address, port) pair, and it load-balances UDP across them.
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

// adjustBufferSize halves the requested size because the kernel doubles
// whatever is passed to SO_SNDBUF/SO_RCVBUF to account for bookkeeping
// overhead. The net effect is that get-after-set reports the requested
// value, with odd values rounded down one, consistent with other platforms.
func adjustBufferSize(value int32) (int, bool) {
	return int(value >> 1), false
}

// pmtudModeToNative maps the portable PMTUD mode to IP_PMTUDISC_* values.
// PMTUDOff maps to IP_PMTUDISC_OMIT (kernel 3.15+) unconditionally; there is
// no fallback to INTERFACE or DONT on kernels without it. IP_PMTUDISC_DONT still
// honors cached path MTU estimates learned from ICMP even though datagrams
// go out with DF=0, while OMIT ignores the estimate and fragments above the
// interface MTU.
func pmtudModeToNative(mode PMTUDMode) int {
	switch mode {
	case PMTUDOn:
		return unix.IP_PMTUDISC_DO
	case PMTUDOff:
		return unix.IP_PMTUDISC_OMIT
	case PMTUDProbe:
		return unix.IP_PMTUDISC_PROBE
	default:
		return unix.IP_PMTUDISC_WANT
	}
}

func pmtudModeFromNative(v int) (PMTUDMode, error) {
	switch v {
	case unix.IP_PMTUDISC_WANT:
		return PMTUDUnspec, nil
	case unix.IP_PMTUDISC_DO:
		return PMTUDOn, nil
	case unix.IP_PMTUDISC_DONT, unix.IP_PMTUDISC_OMIT, unix.IP_PMTUDISC_INTERFACE:
		return PMTUDOff, nil
	case unix.IP_PMTUDISC_PROBE:
		return PMTUDProbe, nil
	default:
		return 0, ErrSys
	}
}

func sockSetMTUDiscover(fd sockfd, family Family, mode PMTUDMode) error {
	v := pmtudModeToNative(mode)
	var err error
	if family == FamilyInet6 {
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MTU_DISCOVER, v)
	} else {
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_MTU_DISCOVER, v)
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
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MTU_DISCOVER)
	} else {
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_MTU_DISCOVER)
	}
	if err != nil {
		return 0, mapOSError(err)
	}
	return pmtudModeFromNative(v)
}

func sockGetMTU(fd sockfd, family Family) (int32, error) {
	var v int
	var err error
	if family == FamilyInet6 {
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MTU)
	} else {
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_MTU)
	}
	if err != nil {
		return 0, mapOSError(err)
	}
	return int32(v), nil
}

// sockForceUDPChecksum clears the undocumented SO_NO_CHECK flag so IPv4 UDP
// checksums are always computed, regardless of system configuration.
func sockForceUDPChecksum(fd sockfd, family Family) error {
	if family != FamilyInet {
		return nil
	}
	err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NO_CHECK, 0)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == syscall.ENOPROTOOPT {
			return nil
		}
		return mapOSError(err)
	}
	return nil
}
