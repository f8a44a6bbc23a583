//go:build freebsd

package clarinet

import "golang.org/x/sys/unix"

// -------------------------------------------------------------------------
// Option Engine — FreeBSD lowering
// -------------------------------------------------------------------------

// IPV6_DONTFRAG is not carried by the unix package for this target.
const sysIPV6DontFrag = 0x3e

const sendFlags = unix.MSG_NOSIGNAL

// lowerReuseAddr lowers the portable reuse flag. SO_REUSEPORT_LB is the
// load-balancing variant of SO_REUSEPORT and matches the sharing semantics
// the portable bind-conflict table specifies.
func lowerReuseAddr(fd sockfd, on bool) error {
	v := intOpt(on)
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, v); err != nil {
		return mapOSError(err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT_LB, v); err != nil {
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

// Path MTU discovery on this target reduces to the DF flag.
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
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_DONTFRAG, df)
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
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_DONTFRAG)
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

// No checksum-off flag exists on this target.
func sockForceUDPChecksum(fd sockfd, family Family) error {
	return nil
}
