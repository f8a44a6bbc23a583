//go:build windows

package clarinet

import (
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// -------------------------------------------------------------------------
// Socket primitives — Winsock
// -------------------------------------------------------------------------

// Winsock constants the syscall package does not carry.
const (
	sysSOSndTimeo         = 0x1005 // SO_SNDTIMEO, DWORD milliseconds
	sysSORcvTimeo         = 0x1006 // SO_RCVTIMEO, DWORD milliseconds
	sysSOError            = 0x1007 // SO_ERROR
	sysSOType             = 0x1008 // SO_TYPE
	sysSOExclusiveAddrUse = ^0x4   // SO_EXCLUSIVEADDRUSE = ~SO_REUSEADDR

	sysIPTTL           = 4  // IP_TTL
	sysIPv6UnicastHops = 4  // IPV6_UNICAST_HOPS
	sysIPMTUDiscover   = 71 // IP_MTU_DISCOVER
	sysIPMTU           = 73 // IP_MTU
	sysIPv6MTUDiscover = 71 // IPV6_MTU_DISCOVER
	sysIPv6MTU         = 72 // IPV6_MTU

	sysUDPNoChecksum = 1 // UDP_NOCHECKSUM

	// IP_PMTUDISC_* values shared by the v4 and v6 discovery options.
	sysPmtudNotSet = 0
	sysPmtudDo     = 1
	sysPmtudDont   = 2
	sysPmtudProbe  = 3

	// SIO_UDP_CONNRESET = IOC_IN | IOC_VENDOR | 12
	sysSioUDPConnReset = 0x9800000c

	sysFionbio = 0x8004667e // FIONBIO
)

var (
	modws2_32   = windows.NewLazySystemDLL("ws2_32.dll")
	procaccept  = modws2_32.NewProc("accept")
	procWSAPoll = modws2_32.NewProc("WSAPoll")
	procioctl   = modws2_32.NewProc("ioctlsocket")
)

func familyToAF(family Family) int {
	if family == FamilyInet6 {
		return syscall.AF_INET6
	}
	return syscall.AF_INET
}

func endpointToSockaddr(ep Endpoint) (syscall.Sockaddr, error) {
	switch ep.Addr.family {
	case FamilyInet:
		sa := &syscall.SockaddrInet4{Port: int(ep.Port)}
		copy(sa.Addr[:], ep.Addr.b[12:16])
		return sa, nil
	case FamilyInet6:
		sa := &syscall.SockaddrInet6{Port: int(ep.Port), ZoneId: ep.Addr.scopeID}
		sa.Addr = ep.Addr.b
		return sa, nil
	default:
		return nil, ErrAfNoSupport
	}
}

func endpointFromSockaddr(sa syscall.Sockaddr) (Endpoint, error) {
	switch sa := sa.(type) {
	case *syscall.SockaddrInet4:
		return Endpoint{
			Addr: MakeIPv4(sa.Addr[0], sa.Addr[1], sa.Addr[2], sa.Addr[3]),
			Port: uint16(sa.Port),
		}, nil
	case *syscall.SockaddrInet6:
		var a Addr
		a.family = FamilyInet6
		a.b = sa.Addr
		a.scopeID = sa.ZoneId
		return Endpoint{Addr: a, Port: uint16(sa.Port)}, nil
	default:
		return Endpoint{}, ErrAddrNotAvail
	}
}

// On modern Windows the Winsock error shares the thread's last-error slot,
// so the errno reported by LazyProc.Call is the WSAGetLastError value.
func ioctlsocket(fd sockfd, cmd uint32, arg *uint32) error {
	r, _, callErr := procioctl.Call(uintptr(fd), uintptr(cmd), uintptr(unsafe.Pointer(arg)))
	if int32(r) != 0 {
		if errno, ok := callErr.(syscall.Errno); ok {
			return errno
		}
		return ErrDefault
	}
	return nil
}

func sockOpen(family Family, proto Protocol) (sockfd, error) {
	typ := syscall.SOCK_DGRAM
	nproto := syscall.IPPROTO_UDP
	if proto == ProtoTCP {
		typ = syscall.SOCK_STREAM
		nproto = syscall.IPPROTO_TCP
	}

	fd, err := syscall.Socket(familyToAF(family), typ, nproto)
	if err != nil {
		return invalidSockfd, mapOSError(err)
	}

	if proto == ProtoUDP {
		// Make sure UDP checksums are computed even if the system turned
		// them off; there is no portable way for callers to re-enable them.
		if family == FamilyInet {
			err := syscall.SetsockoptInt(fd, syscall.IPPROTO_UDP, sysUDPNoChecksum, 0)
			if err != nil && err != syscall.Errno(windows.WSAENOPROTOOPT) {
				syscall.Closesocket(fd)
				return invalidSockfd, ErrSys
			}
		}

		// Winsock delivers an asynchronous ICMP port-unreachable as a
		// WSAECONNRESET on the *next* recv, even on unconnected sockets.
		// Disable the behavior so datagram sockets do not fail spuriously.
		var off uint32
		var bytes uint32
		err := windows.WSAIoctl(windows.Handle(fd), sysSioUDPConnReset,
			(*byte)(unsafe.Pointer(&off)), uint32(unsafe.Sizeof(off)),
			nil, 0, &bytes, nil, 0)
		if err != nil {
			syscall.Closesocket(fd)
			return invalidSockfd, ErrSys
		}
	}

	return fd, nil
}

// sockClose releases the descriptor. WSAEWOULDBLOCK indicates a pending
// linger drain on a non-blocking socket: the descriptor is switched to
// blocking and close is retried with coarse yields until the drain
// completes or the linger timeout expires. Any other error is terminal.
func sockClose(fd sockfd) error {
	err := syscall.Closesocket(fd)
	if err == nil {
		return nil
	}
	errno, ok := err.(syscall.Errno)
	if !ok {
		return ErrDefault
	}
	if errno != syscall.Errno(windows.WSAEWOULDBLOCK) {
		return errnoToError(errno)
	}

	var blocking uint32
	ioctlsocket(fd, sysFionbio, &blocking)
	for {
		err = syscall.Closesocket(fd)
		if err == nil {
			return nil
		}
		errno, ok = err.(syscall.Errno)
		if !ok {
			return ErrDefault
		}
		if errno != syscall.Errno(windows.WSAEWOULDBLOCK) {
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
	if err := syscall.Bind(fd, sa); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockConnect(fd sockfd, remote Endpoint) error {
	sa, err := endpointToSockaddr(remote)
	if err != nil {
		return err
	}
	if err := syscall.Connect(fd, sa); err != nil {
		return mapOSError(err)
	}
	return nil
}

func sockListen(fd sockfd, backlog int) error {
	if backlog < 0 {
		backlog = syscall.SOMAXCONN
	}
	if err := syscall.Listen(fd, backlog); err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == syscall.Errno(windows.WSAEOPNOTSUPP) {
			return ErrProtoNoSupport
		}
		return mapOSError(err)
	}
	return nil
}

func sockAccept(fd sockfd) (sockfd, Endpoint, error) {
	var rsa syscall.RawSockaddrAny
	rsaLen := int32(unsafe.Sizeof(rsa))

	r, _, callErr := procaccept.Call(uintptr(fd),
		uintptr(unsafe.Pointer(&rsa)), uintptr(unsafe.Pointer(&rsaLen)))
	nfd := syscall.Handle(r)
	if nfd == syscall.InvalidHandle {
		errno, ok := callErr.(syscall.Errno)
		if !ok {
			return invalidSockfd, Endpoint{}, ErrDefault
		}
		if errno == syscall.Errno(windows.WSAEOPNOTSUPP) {
			return invalidSockfd, Endpoint{}, ErrProtoNoSupport
		}
		return invalidSockfd, Endpoint{}, errnoToError(errno)
	}

	sa, err := rsa.Sockaddr()
	if err != nil {
		return nfd, Endpoint{}, ErrAddrNotAvail
	}
	remote, cerr := endpointFromSockaddr(sa)
	if cerr != nil {
		return nfd, Endpoint{}, ErrAddrNotAvail
	}
	return nfd, remote, nil
}

func sockLocalEndpoint(fd sockfd) (Endpoint, error) {
	sa, err := syscall.Getsockname(fd)
	if err != nil {
		return Endpoint{}, mapOSError(err)
	}
	return endpointFromSockaddr(sa)
}

func sockRemoteEndpoint(fd sockfd) (Endpoint, error) {
	sa, err := syscall.Getpeername(fd)
	if err != nil {
		return Endpoint{}, mapOSError(err)
	}
	return endpointFromSockaddr(sa)
}

func wsaBuf(p []byte) syscall.WSABuf {
	buf := syscall.WSABuf{Len: uint32(len(p))}
	if len(p) > 0 {
		buf.Buf = &p[0]
	}
	return buf
}

func sockSend(fd sockfd, p []byte) (int, error) {
	buf := wsaBuf(p)
	var sent uint32
	if err := syscall.WSASend(fd, &buf, 1, &sent, 0, nil, nil); err != nil {
		return 0, mapOSError(err)
	}
	return int(sent), nil
}

func sockSendTo(fd sockfd, p []byte, remote Endpoint) (int, error) {
	sa, err := endpointToSockaddr(remote)
	if err != nil {
		return 0, err
	}
	buf := wsaBuf(p)
	var sent uint32
	if err := syscall.WSASendto(fd, &buf, 1, &sent, 0, sa, nil, nil); err != nil {
		return 0, mapOSError(err)
	}
	return int(sent), nil
}

func sockRecv(fd sockfd, p []byte) (int, error) {
	buf := wsaBuf(p)
	var recvd, flags uint32
	if err := syscall.WSARecv(fd, &buf, 1, &recvd, &flags, nil, nil); err != nil {
		return 0, mapOSError(err)
	}
	return int(recvd), nil
}

// sockRecvFrom drains one datagram. Winsock reports truncation as
// WSAEMSGSIZE, which the error mapper already turns into ErrMsgSize; the
// partial data is discarded.
func sockRecvFrom(fd sockfd, p []byte) (int, Endpoint, error) {
	var rsa syscall.RawSockaddrAny
	rsaLen := int32(unsafe.Sizeof(rsa))
	buf := wsaBuf(p)
	var recvd, flags uint32

	if err := syscall.WSARecvFrom(fd, &buf, 1, &recvd, &flags, &rsa, &rsaLen, nil, nil); err != nil {
		return 0, Endpoint{}, mapOSError(err)
	}

	sa, err := rsa.Sockaddr()
	if err != nil {
		return 0, Endpoint{}, ErrAddrNotAvail
	}
	remote, cerr := endpointFromSockaddr(sa)
	if cerr != nil {
		return 0, Endpoint{}, ErrAddrNotAvail
	}
	return int(recvd), remote, nil
}

func sockShutdown(fd sockfd, flags ShutdownFlags) error {
	var how int
	switch flags {
	case ShutdownRecv:
		how = syscall.SHUT_RD
	case ShutdownSend:
		how = syscall.SHUT_WR
	default:
		how = syscall.SHUT_RDWR
	}
	if err := syscall.Shutdown(fd, how); err != nil {
		return mapOSError(err)
	}
	return nil
}
