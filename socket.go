package clarinet

import "math"

// -------------------------------------------------------------------------
// Socket Handle
// -------------------------------------------------------------------------

// Socket is a portable socket handle. The zero value is in the Closed
// state, ready for Open. A Socket is held by address and is not movable
// while open: copying an open Socket yields two handles to the same
// descriptor, only one of which may be closed.
//
// Distinct sockets may be used concurrently from distinct goroutines
// without synchronization. Concurrent operations on the same socket are
// only defined where the underlying OS defines them; concurrent close is
// never defined.
type Socket struct {
	family Family
	fd     sockfd
}

// Family returns the address family of the socket, or FamilyUnspec when the
// socket is closed.
func (s *Socket) Family() Family { return s.family }

// open state check shared by every operation other than Open.
func (s *Socket) isOpen() bool {
	return s != nil && s.family != FamilyUnspec && validHandle(s.fd)
}

// Open acquires an OS socket for the given family and protocol. The socket
// must be in the Closed state. Unsupported families fail with
// ErrAfNoSupport and unsupported protocols with ErrProtoNoSupport.
//
// UDP sockets are opened with any platform-specific checksum-off flag
// cleared, so datagrams always carry checksums.
func (s *Socket) Open(family Family, proto Protocol) error {
	if s == nil || s.family != FamilyUnspec || validHandle(s.fd) {
		return ErrInvalid
	}
	if family != FamilyInet && family != FamilyInet6 {
		return ErrAfNoSupport
	}
	if proto != ProtoUDP && proto != ProtoTCP {
		return ErrProtoNoSupport
	}
	fd, err := sockOpen(family, proto)
	if err != nil {
		return err
	}
	s.family = family
	s.fd = fd
	return nil
}

// Close releases the socket. On success the handle returns to the Closed
// state. Any error other than ErrAgain is terminal: the handle must be
// treated as closed and the call must not be retried, because on most
// systems the OS releases the descriptor early in close and a retry could
// close an unrelated descriptor reused by another thread.
//
// ErrAgain from the OS indicates a pending linger drain on a non-blocking
// socket. The implementation switches the descriptor to blocking and
// retries with coarse yields until close completes or a terminal error is
// returned; the configured linger timeout bounds the loop.
func (s *Socket) Close() error {
	if !s.isOpen() {
		return ErrInvalid
	}
	if err := sockClose(s.fd); err != nil {
		return err
	}
	s.family = FamilyUnspec
	s.fd = invalidSockfd
	return nil
}

// Bind associates the socket with a local endpoint. The endpoint family
// must match the socket family. Conflicts with other bound sockets resolve
// per the bind-conflict policy and surface as ErrAddrInUse.
func (s *Socket) Bind(local Endpoint) error {
	if !s.isOpen() {
		return ErrInvalid
	}
	if local.Addr.family != s.family {
		return ErrAfNoSupport
	}
	return sockBind(s.fd, local)
}

// LocalEndpoint returns the endpoint the socket is bound to. A socket that
// has not been bound (reported by the kernel as port zero) fails with
// ErrInvalid: a bound socket can hold the wildcard address but never port
// zero.
func (s *Socket) LocalEndpoint() (Endpoint, error) {
	if !s.isOpen() {
		return Endpoint{}, ErrInvalid
	}
	ep, err := sockLocalEndpoint(s.fd)
	if err != nil {
		return Endpoint{}, err
	}
	if ep.Port == 0 {
		return Endpoint{}, ErrInvalid
	}
	return ep, nil
}

// RemoteEndpoint returns the peer endpoint set by a prior connect. Fails
// with ErrNotConn on an unconnected socket.
func (s *Socket) RemoteEndpoint() (Endpoint, error) {
	if !s.isOpen() {
		return Endpoint{}, ErrInvalid
	}
	return sockRemoteEndpoint(s.fd)
}

// Connect sets the remote peer. For UDP this only establishes the default
// destination for Send and a source filter for Recv (on POSIX systems; on
// Windows connected UDP sockets keep receiving from any source). For TCP it
// initiates the handshake; on a non-blocking socket ErrAgain means the
// handshake is in progress and completion is observed by polling for
// writability and reading OptError.
func (s *Socket) Connect(remote Endpoint) error {
	if !s.isOpen() {
		return ErrInvalid
	}
	if remote.Addr.family != s.family {
		return ErrAfNoSupport
	}
	return sockConnect(s.fd, remote)
}

// Listen marks a stream socket as passive. The backlog is a hint the
// kernel may clamp; a negative backlog selects the platform maximum.
// Datagram sockets fail with ErrProtoNoSupport.
func (s *Socket) Listen(backlog int) error {
	if !s.isOpen() {
		return ErrInvalid
	}
	return sockListen(s.fd, backlog)
}

// Accept takes the next pending connection from a listening socket. The
// client handle must be in the Closed state; on success it becomes Open
// with the server's family and the peer endpoint is returned.
//
// If the kernel reports a malformed peer address the accepted socket is
// still usable: the client handle is populated, the returned endpoint is
// zero, and the error is ErrAddrNotAvail.
func (s *Socket) Accept(client *Socket) (Endpoint, error) {
	if !s.isOpen() {
		return Endpoint{}, ErrInvalid
	}
	if client == nil || client.family != FamilyUnspec || validHandle(client.fd) {
		return Endpoint{}, ErrInvalid
	}
	fd, remote, err := sockAccept(s.fd)
	if err != nil && err != ErrAddrNotAvail {
		return Endpoint{}, err
	}
	client.family = s.family
	client.fd = fd
	return remote, err
}

// Send transmits on a connected socket. Stream sockets may transfer fewer
// bytes than requested; the count is returned. Datagram sockets transmit
// the buffer as a single datagram or not at all. Zero-length datagrams are
// legal. ErrAgain signals backpressure on a non-blocking socket.
func (s *Socket) Send(p []byte) (int, error) {
	if !s.isOpen() || len(p) > math.MaxInt32 {
		return 0, ErrInvalid
	}
	return sockSend(s.fd, p)
}

// SendTo transmits a single datagram to the given endpoint.
func (s *Socket) SendTo(p []byte, remote Endpoint) (int, error) {
	if !s.isOpen() || len(p) > math.MaxInt32 {
		return 0, ErrInvalid
	}
	return sockSendTo(s.fd, p, remote)
}

// Recv receives from a connected socket into p. Returns the number of
// bytes transferred; zero on a stream socket signals orderly shutdown by
// the peer.
func (s *Socket) Recv(p []byte) (int, error) {
	if !s.isOpen() || len(p) == 0 || len(p) > math.MaxInt32 {
		return 0, ErrInvalid
	}
	return sockRecv(s.fd, p)
}

// RecvFrom receives a single datagram into p and reports its source. A
// datagram larger than p fails with ErrMsgSize and the partial data is
// discarded. A malformed source address fails with ErrAddrNotAvail.
func (s *Socket) RecvFrom(p []byte) (int, Endpoint, error) {
	if !s.isOpen() || len(p) == 0 || len(p) > math.MaxInt32 {
		return 0, Endpoint{}, ErrInvalid
	}
	return sockRecvFrom(s.fd, p)
}

// Shutdown disables receives and/or sends on the socket. The flags must
// contain only the documented bits; anything else fails with ErrInvalid.
func (s *Socket) Shutdown(flags ShutdownFlags) error {
	if !s.isOpen() {
		return ErrInvalid
	}
	if flags == 0 || flags&^ShutdownBoth != 0 {
		return ErrInvalid
	}
	return sockShutdown(s.fd, flags)
}
