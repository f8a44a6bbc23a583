//go:build windows

package clarinet

import (
	"syscall"
	"unsafe"
)

// -------------------------------------------------------------------------
// Option Engine — Winsock lowering
// -------------------------------------------------------------------------

func sockSetNonBlock(fd sockfd, on bool) error {
	mode := uint32(0)
	if on {
		mode = 1
	}
	if err := ioctlsocket(fd, sysFionbio, &mode); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockCheckStream(fd sockfd) error {
	typ, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, sysSOType)
	if err != nil {
		return ErrSys
	}
	if typ != syscall.SOCK_STREAM {
		return ErrProtoNoSupport
	}
	return nil
}

func sockCheckDgram(fd sockfd) error {
	typ, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, sysSOType)
	if err != nil {
		return ErrSys
	}
	if typ != syscall.SOCK_DGRAM {
		return ErrProtoNoSupport
	}
	return nil
}

// sockSetReuseAddr lowers the portable reuse flag. Winsock's SO_REUSEADDR
// alone is more permissive than the portable contract (it allows binding
// over an exclusive owner), so the inverse SO_EXCLUSIVEADDRUSE is toggled
// along with it.
func sockSetReuseAddr(fd sockfd, on bool) error {
	v := intOpt(on)
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, v); err != nil {
		return mapOSError(err)
	}
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, sysSOExclusiveAddrUse, 1-v); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetReuseAddr(fd sockfd) (int32, error) {
	v, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR)
	if err != nil {
		return 0, mapOSError(err)
	}
	return boolOpt(v), nil
}

func sockSetBuffer(fd sockfd, send bool, value int32) error {
	opt := syscall.SO_RCVBUF
	if send {
		opt = syscall.SO_SNDBUF
	}
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, opt, int(value)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetBuffer(fd sockfd, send bool) (int32, error) {
	opt := syscall.SO_RCVBUF
	if send {
		opt = syscall.SO_SNDBUF
	}
	v, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, opt)
	if err != nil {
		return 0, mapOSError(err)
	}
	return int32(v), nil
}

// Timeouts are DWORD milliseconds here; no structure translation needed.
func sockSetTimeout(fd sockfd, send bool, ms int32) error {
	opt := sysSORcvTimeo
	if send {
		opt = sysSOSndTimeo
	}
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, opt, int(ms)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetTimeout(fd sockfd, send bool) (int64, error) {
	opt := sysSORcvTimeo
	if send {
		opt = sysSOSndTimeo
	}
	v, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, opt)
	if err != nil {
		return 0, mapOSError(err)
	}
	return int64(uint32(v)), nil
}

func sockSetKeepAlive(fd sockfd, on bool) error {
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, intOpt(on)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetKeepAlive(fd sockfd) (int32, error) {
	v, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_KEEPALIVE)
	if err != nil {
		return 0, mapOSError(err)
	}
	return boolOpt(v), nil
}

func sockSetBroadcast(fd sockfd, on bool) error {
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_BROADCAST, intOpt(on)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetBroadcast(fd sockfd) (int32, error) {
	v, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_BROADCAST)
	if err != nil {
		return 0, mapOSError(err)
	}
	return boolOpt(v), nil
}

func sockSetLinger(fd sockfd, l Linger) error {
	nl := syscall.Linger{Linger: int32(l.Seconds)}
	if l.Enabled {
		nl.Onoff = 1
	}
	if err := syscall.SetsockoptLinger(fd, syscall.SOL_SOCKET, syscall.SO_LINGER, &nl); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetLinger(fd sockfd) (Linger, error) {
	var nl syscall.Linger
	vallen := int32(unsafe.Sizeof(nl))
	err := syscall.Getsockopt(fd, syscall.SOL_SOCKET, syscall.SO_LINGER,
		(*byte)(unsafe.Pointer(&nl)), &vallen)
	if err != nil {
		return Linger{}, mapOSError(err)
	}
	seconds := nl.Linger
	if seconds < 0 {
		seconds = 0
	} else if seconds > 0xffff {
		seconds = 0xffff
	}
	return Linger{Enabled: nl.Onoff != 0, Seconds: uint16(seconds)}, nil
}

func sockGetError(fd sockfd) (int32, error) {
	v, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, sysSOError)
	if err != nil {
		return 0, mapOSError(err)
	}
	return int32(errnoToError(syscall.Errno(v))), nil
}

func sockSetIPv6Only(fd sockfd, on bool) error {
	if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY, intOpt(on)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetIPv6Only(fd sockfd) (int32, error) {
	v, err := syscall.GetsockoptInt(fd, syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY)
	if err != nil {
		return 0, mapOSError(err)
	}
	return boolOpt(v), nil
}

func sockSetTTL(fd sockfd, family Family, ttl int32) error {
	var err error
	if family == FamilyInet6 {
		err = syscall.SetsockoptInt(fd, syscall.IPPROTO_IPV6, sysIPv6UnicastHops, int(ttl))
	} else {
		err = syscall.SetsockoptInt(fd, syscall.IPPROTO_IP, sysIPTTL, int(ttl))
	}
	if err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetTTL(fd sockfd, family Family) (int32, error) {
	var v int
	var err error
	if family == FamilyInet6 {
		v, err = syscall.GetsockoptInt(fd, syscall.IPPROTO_IPV6, sysIPv6UnicastHops)
	} else {
		v, err = syscall.GetsockoptInt(fd, syscall.IPPROTO_IP, sysIPTTL)
	}
	if err != nil {
		return 0, mapOSError(err)
	}
	return int32(v), nil
}

func pmtudModeToNative(mode PMTUDMode) int {
	switch mode {
	case PMTUDOn:
		return sysPmtudDo
	case PMTUDOff:
		return sysPmtudDont
	case PMTUDProbe:
		return sysPmtudProbe
	default:
		return sysPmtudNotSet
	}
}

func pmtudModeFromNative(v int) (PMTUDMode, error) {
	switch v {
	case sysPmtudNotSet:
		return PMTUDUnspec, nil
	case sysPmtudDo:
		return PMTUDOn, nil
	case sysPmtudDont:
		return PMTUDOff, nil
	case sysPmtudProbe:
		return PMTUDProbe, nil
	default:
		return 0, ErrSys
	}
}

func sockSetMTUDiscover(fd sockfd, family Family, mode PMTUDMode) error {
	v := pmtudModeToNative(mode)
	var err error
	if family == FamilyInet6 {
		err = syscall.SetsockoptInt(fd, syscall.IPPROTO_IPV6, sysIPv6MTUDiscover, v)
	} else {
		err = syscall.SetsockoptInt(fd, syscall.IPPROTO_IP, sysIPMTUDiscover, v)
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
		v, err = syscall.GetsockoptInt(fd, syscall.IPPROTO_IPV6, sysIPv6MTUDiscover)
	} else {
		v, err = syscall.GetsockoptInt(fd, syscall.IPPROTO_IP, sysIPMTUDiscover)
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
		v, err = syscall.GetsockoptInt(fd, syscall.IPPROTO_IPV6, sysIPv6MTU)
	} else {
		v, err = syscall.GetsockoptInt(fd, syscall.IPPROTO_IP, sysIPMTU)
	}
	if err != nil {
		return 0, mapOSError(err)
	}
	return int32(v), nil
}
