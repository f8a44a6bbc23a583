//go:build unix

package clarinet

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// -------------------------------------------------------------------------
// Option Engine — shared POSIX lowering
// -------------------------------------------------------------------------
//
// Per-platform divergence (reuse lowering, buffer-size adjustment, path MTU
// discovery, checksum enforcement) lives in the per-OS files; everything
// here is common to all POSIX targets.

func sockSetNonBlock(fd sockfd, on bool) error {
	if err := unix.SetNonblock(fd, on); err != nil {
		return mapOSError(err)
	}
	return nil
}

// sockCheckStream verifies SO_TYPE before a stream-only option. Some
// systems tolerate mismatched options and others reject them; the engine is
// uniformly strict so behavior cannot vary by platform.
func sockCheckStream(fd sockfd) error {
	typ, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		return ErrSys
	}
	if typ != unix.SOCK_STREAM {
		return ErrProtoNoSupport
	}
	return nil
}

// sockCheckDgram is the datagram-only counterpart of sockCheckStream.
func sockCheckDgram(fd sockfd) error {
	typ, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		return ErrSys
	}
	if typ != unix.SOCK_DGRAM {
		return ErrProtoNoSupport
	}
	return nil
}

func sockSetReuseAddr(fd sockfd, on bool) error {
	return lowerReuseAddr(fd, on)
}

func sockGetReuseAddr(fd sockfd) (int32, error) {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR)
	if err != nil {
		return 0, mapOSError(err)
	}
	return boolOpt(v), nil
}

func sockSetBuffer(fd sockfd, send bool, value int32) error {
	v, skip := adjustBufferSize(value)
	if skip {
		return nil
	}
	opt := unix.SO_RCVBUF
	if send {
		opt = unix.SO_SNDBUF
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, opt, v); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetBuffer(fd sockfd, send bool) (int32, error) {
	opt := unix.SO_RCVBUF
	if send {
		opt = unix.SO_SNDBUF
	}
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, opt)
	if err != nil {
		return 0, mapOSError(err)
	}
	return int32(v), nil
}

func sockSetTimeout(fd sockfd, send bool, ms int32) error {
	opt := unix.SO_RCVTIMEO
	if send {
		opt = unix.SO_SNDTIMEO
	}
	tv := unix.NsecToTimeval(int64(ms) * int64(1e6))
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, opt, &tv); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetTimeout(fd sockfd, send bool) (int64, error) {
	opt := unix.SO_RCVTIMEO
	if send {
		opt = unix.SO_SNDTIMEO
	}
	tv, err := unix.GetsockoptTimeval(fd, unix.SOL_SOCKET, opt)
	if err != nil {
		return 0, mapOSError(err)
	}
	return int64(tv.Sec)*1000 + int64(tv.Usec)/1000, nil
}

func sockSetKeepAlive(fd sockfd, on bool) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, intOpt(on)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetKeepAlive(fd sockfd) (int32, error) {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE)
	if err != nil {
		return 0, mapOSError(err)
	}
	return boolOpt(v), nil
}

func sockSetBroadcast(fd sockfd, on bool) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, intOpt(on)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetBroadcast(fd sockfd) (int32, error) {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST)
	if err != nil {
		return 0, mapOSError(err)
	}
	return boolOpt(v), nil
}

func sockSetLinger(fd sockfd, l Linger) error {
	nl := unix.Linger{Linger: int32(l.Seconds)}
	if l.Enabled {
		nl.Onoff = 1
	}
	if err := unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, &nl); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetLinger(fd sockfd) (Linger, error) {
	nl, err := unix.GetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER)
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
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return 0, mapOSError(err)
	}
	return int32(errnoToError(syscall.Errno(v))), nil
}

func sockSetIPv6Only(fd sockfd, on bool) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, intOpt(on)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockGetIPv6Only(fd sockfd) (int32, error) {
	v, err := unix.GetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY)
	if err != nil {
		return 0, mapOSError(err)
	}
	return boolOpt(v), nil
}

// sockSetTTL sets the IPv4 TTL or the IPv6 unicast hop limit. IPV6_HOPLIMIT
// is deliberately not used: it controls the hop limit reported on received
// packets, not the one stamped on sent packets.
func sockSetTTL(fd sockfd, family Family, ttl int32) error {
	var err error
	if family == FamilyInet6 {
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS, int(ttl))
	} else {
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TTL, int(ttl))
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
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS)
	} else {
		v, err = unix.GetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TTL)
	}
	if err != nil {
		return 0, mapOSError(err)
	}
	return int32(v), nil
}
