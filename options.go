package clarinet

// -------------------------------------------------------------------------
// Protocols
// -------------------------------------------------------------------------

// Protocol selects the transport protocol of a socket.
type Protocol uint32

const (
	ProtoNone Protocol = 0
	ProtoUDP  Protocol = 1 << 2
	ProtoTCP  Protocol = 1 << 3
)

// String returns the symbolic name of the protocol.
func (p Protocol) String() string {
	switch p {
	case ProtoUDP:
		return "UDP"
	case ProtoTCP:
		return "TCP"
	default:
		return "NONE"
	}
}

// -------------------------------------------------------------------------
// Option Identifiers
// -------------------------------------------------------------------------

// Option identifies a socket option. Every option has a unique integer
// across all protocol layers, so no accompanying "level" parameter exists
// and a mis-typed option family is impossible rather than silently wrong.
type Option int32

const (
	// OptNonBlock enables or disables non-blocking mode. Set-only.
	OptNonBlock Option = 1

	// OptReuseAddr controls how bind handles local address conflicts. The
	// boolean is lowered to the minimal set of native flags each platform
	// needs to honor the portable bind-conflict table.
	OptReuseAddr Option = 2

	// OptSndBuf is the send buffer size in bytes.
	OptSndBuf Option = 3

	// OptRcvBuf is the receive buffer size in bytes.
	OptRcvBuf Option = 4

	// OptSndTimeo is the send timeout in milliseconds. Zero means no
	// timeout.
	OptSndTimeo Option = 5

	// OptRcvTimeo is the receive timeout in milliseconds. Zero means no
	// timeout.
	OptRcvTimeo Option = 6

	// OptKeepAlive enables or disables TCP keepalive. Stream sockets only.
	OptKeepAlive Option = 7

	// OptLinger is the close-drain policy. Stream sockets only; the payload
	// is a Linger record, accessed through SetLinger and Linger.
	OptLinger Option = 8

	// OptDontLinger is the boolean inverse view of the linger enabled flag.
	// Toggling it never alters the configured linger seconds.
	OptDontLinger Option = 9

	// OptError reports and clears the pending socket error, already mapped
	// to the portable taxonomy. Get-only.
	OptError Option = 10

	// OptIPv6Only disables dual-stack on an IPv6 socket. IPv6 sockets only.
	OptIPv6Only Option = 100

	// OptTTL is the IPv4 time-to-live or IPv6 unicast hop limit, in
	// [1, 255].
	OptTTL Option = 101

	// OptMTU reports the currently known path MTU of a connected socket.
	// Get-only; reading an unconnected socket fails with ErrNotConn. On
	// Darwin, the BSDs and other POSIX targets, which have no per-socket
	// path MTU query, it always fails with ErrNotSup.
	OptMTU Option = 102

	// OptMTUDiscover is the path MTU discovery mode, a PMTUDMode value.
	OptMTUDiscover Option = 103

	// OptBroadcast enables or disables sending to broadcast addresses.
	// Datagram sockets only.
	OptBroadcast Option = 104
)

// -------------------------------------------------------------------------
// Linger
// -------------------------------------------------------------------------

// Linger is the payload of OptLinger: whether close waits for unsent data
// to drain and for at most how many seconds.
type Linger struct {
	Enabled bool
	Seconds uint16
}

// -------------------------------------------------------------------------
// PMTUD Mode
// -------------------------------------------------------------------------

// PMTUDMode selects the path MTU discovery policy of OptMTUDiscover. The
// mapping to native flag combinations is platform-internal.
type PMTUDMode int32

const (
	// PMTUDUnspec uses per-route or system defaults.
	PMTUDUnspec PMTUDMode = 0

	// PMTUDOn always performs path MTU discovery: DF is set and sends larger
	// than the path MTU fail with ErrMsgSize.
	PMTUDOn PMTUDMode = 1

	// PMTUDOff disables path MTU discovery: DF is cleared and datagrams
	// larger than the interface MTU are fragmented.
	PMTUDOff PMTUDMode = 2

	// PMTUDProbe sets DF but transmits datagrams even when they exceed the
	// current path MTU estimate.
	PMTUDProbe PMTUDMode = 3
)

// String returns the symbolic name of the mode.
func (m PMTUDMode) String() string {
	switch m {
	case PMTUDUnspec:
		return "UNSPEC"
	case PMTUDOn:
		return "ON"
	case PMTUDOff:
		return "OFF"
	case PMTUDProbe:
		return "PROBE"
	default:
		return "UNKNOWN"
	}
}

// -------------------------------------------------------------------------
// Shutdown Flags
// -------------------------------------------------------------------------

// ShutdownFlags selects which direction(s) of a connection to shut down.
type ShutdownFlags uint32

const (
	ShutdownRecv ShutdownFlags = 1 << 0
	ShutdownSend ShutdownFlags = 1 << 1
	ShutdownBoth               = ShutdownRecv | ShutdownSend
)
