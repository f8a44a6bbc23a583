//go:build unix

package clarinet

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// -------------------------------------------------------------------------
// Socket primitives — POSIX
// -------------------------------------------------------------------------

func familyToAF(family Family) int {
	if family == FamilyInet6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

func endpointToSockaddr(ep Endpoint) (unix.Sockaddr, error) {
	switch ep.Addr.family {
	case FamilyInet:
		sa := &unix.SockaddrInet4{Port: int(ep.Port)}
		copy(sa.Addr[:], ep.Addr.b[12:16])
		return sa, nil
	case FamilyInet6:
		sa := &unix.SockaddrInet6{Port: int(ep.Port), ZoneId: ep.Addr.scopeID}
		sa.Addr = ep.Addr.b
		return sa, nil
	default:
		return nil, ErrAfNoSupport
	}
}

func endpointFromSockaddr(sa unix.Sockaddr) (Endpoint, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return Endpoint{
			Addr: MakeIPv4(sa.Addr[0], sa.Addr[1], sa.Addr[2], sa.Addr[3]),
			Port: uint16(sa.Port),
		}, nil
	case *unix.SockaddrInet6:
		var a Addr
		a.family = FamilyInet6
		a.b = sa.Addr
		a.scopeID = sa.ZoneId
		return Endpoint{Addr: a, Port: uint16(sa.Port)}, nil
	default:
		return Endpoint{}, ErrAddrNotAvail
	}
}

func sockOpen(family Family, proto Protocol) (sockfd, error) {
	typ := unix.SOCK_DGRAM
	nproto := unix.IPPROTO_UDP
	if proto == ProtoTCP {
		typ = unix.SOCK_STREAM
		nproto = unix.IPPROTO_TCP
	}

	fd, err := unix.Socket(familyToAF(family), typ, nproto)
	if err != nil {
		return invalidSockfd, mapOSError(err)
	}

	if proto == ProtoUDP {
		// Some kernels carry a flag that disables UDP checksums. There is no
		// portable way for callers to turn checksums back on, so clear the
		// flag unconditionally at open.
		if err := sockForceUDPChecksum(fd, family); err != nil {
			unix.Close(fd)
			return invalidSockfd, ErrSys
		}
	}

	return fd, nil
}

// sockClose releases the descriptor. The first close is authoritative: any
// error other than "try again" is terminal because the kernel may have
// already released the descriptor for reuse. "Try again" only happens on a
// non-blocking socket with linger enabled and unsent data; the descriptor
// is switched to blocking and close is retried with coarse yields until the
// drain completes or the linger timeout expires in the kernel.
func sockClose(fd sockfd) error {
	err := unix.Close(fd)
	if err == nil {
		return nil
	}
	errno, ok := err.(syscall.Errno)
	if !ok {
		return ErrDefault
	}
	if !errnoAgain(errno) {
		return errnoToError(errno)
	}

	unix.SetNonblock(fd, false)
	for {
		err = unix.Close(fd)
		if err == nil {
			return nil
		}
		errno, ok = err.(syscall.Errno)
		if !ok {
			return ErrDefault
		}
		if !errnoAgain(errno) {
			return errnoToError(errno)
		}
		time.Sleep(time.Second)
	}
}

func sockBind(fd sockfd, local Endpoint) error {
	sa, err := endpointToSockaddr(local)
	if err != nil {
		return err
	}
	if err := unix.Bind(fd, sa); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockConnect(fd sockfd, remote Endpoint) error {
	sa, err := endpointToSockaddr(remote)
	if err != nil {
		return err
	}
	if err := unix.Connect(fd, sa); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockListen(fd sockfd, backlog int) error {
	if backlog < 0 {
		backlog = unix.SOMAXCONN
	}
	if err := unix.Listen(fd, backlog); err != nil {
		// The socket type is derived from the protocol, so an EOPNOTSUPP
		// here means the protocol cannot listen, not that the operation is
		// unsupported in general.
		if errno, ok := err.(syscall.Errno); ok && errno == syscall.EOPNOTSUPP {
			return ErrProtoNoSupport
		}
		return mapOSError(err)
	}
	return nil
}

func sockAccept(fd sockfd) (sockfd, Endpoint, error) {
	nfd, sa, err := unix.Accept(fd)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == syscall.EOPNOTSUPP {
			return invalidSockfd, Endpoint{}, ErrProtoNoSupport
		}
		return invalidSockfd, Endpoint{}, mapOSError(err)
	}

	remote, err := endpointFromSockaddr(sa)
	if err != nil {
		// The accepted socket is usable even when the peer address cannot
		// be decoded; report the address failure and let the caller decide.
		return nfd, Endpoint{}, ErrAddrNotAvail
	}
	return nfd, remote, nil
}

func sockLocalEndpoint(fd sockfd) (Endpoint, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return Endpoint{}, mapOSError(err)
	}
	return endpointFromSockaddr(sa)
}

func sockRemoteEndpoint(fd sockfd) (Endpoint, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return Endpoint{}, mapOSError(err)
	}
	return endpointFromSockaddr(sa)
}

func sockSend(fd sockfd, p []byte) (int, error) {
	n, err := unix.SendmsgN(fd, p, nil, nil, sendFlags)
	if err != nil {
		return 0, mapOSError(err)
	}
	return n, nil
}

func sockSendTo(fd sockfd, p []byte, remote Endpoint) (int, error) {
	sa, err := endpointToSockaddr(remote)
	if err != nil {
		return 0, err
	}
	n, err := unix.SendmsgN(fd, p, nil, sa, sendFlags)
	if err != nil {
		return 0, mapOSError(err)
	}
	return n, nil
}

func sockRecv(fd sockfd, p []byte) (int, error) {
	n, err := unix.Recvfrom(fd, p, 0)
	if err != nil {
		return 0, mapOSError(err)
	}
	return n, nil
}

// sockRecvFrom drains one datagram with recvmsg so truncation is reported
// by the kernel via MSG_TRUNC instead of being silently dropped. recvfrom
// has no portable truncation signal.
func sockRecvFrom(fd sockfd, p []byte) (int, Endpoint, error) {
	n, _, recvflags, sa, err := unix.Recvmsg(fd, p, nil, 0)
	if err != nil {
		return 0, Endpoint{}, mapOSError(err)
	}
	if recvflags&unix.MSG_TRUNC != 0 {
		return 0, Endpoint{}, ErrMsgSize
	}
	// Some kernels report the full datagram size instead of setting
	// MSG_TRUNC.
	if n > len(p) {
		return 0, Endpoint{}, ErrMsgSize
	}
	remote, err := endpointFromSockaddr(sa)
	if err != nil {
		return 0, Endpoint{}, ErrAddrNotAvail
	}
	return n, remote, nil
}

func sockShutdown(fd sockfd, flags ShutdownFlags) error {
	var how int
	switch flags {
	case ShutdownRecv:
		how = unix.SHUT_RD
	case ShutdownSend:
		how = unix.SHUT_WR
	default:
		how = unix.SHUT_RDWR
	}
	if err := unix.Shutdown(fd, how); err != nil {
		return mapOSError(err)
	}
	return nil
}
