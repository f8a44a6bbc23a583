//go:build windows

package clarinet

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// -------------------------------------------------------------------------
// Error Mapper — Winsock
// -------------------------------------------------------------------------

// errnoToError translates a Winsock error code into exactly one taxonomy
// value. Codes not enumerated collapse to ErrDefault.
//
// WSAEINPROGRESS is not the POSIX EINPROGRESS: Winsock 1.x used it to
// reject a second blocking call while one was outstanding in the same task,
// and since Winsock 2.x it shows up (anecdotally) when connect is called
// again while a first non-blocking attempt is pending. Both readings mean
// "already doing that", so it maps to ErrAlready; the POSIX sense of
// EINPROGRESS is covered by WSAEWOULDBLOCK, which maps to ErrAgain.
func errnoToError(errno syscall.Errno) Error {
	switch errno {
	case 0:
		return ErrNone
	case windows.WSA_INVALID_HANDLE,
		windows.WSAEBADF,
		windows.WSAEFAULT,
		windows.WSAEINVAL,
		windows.WSAEAFNOSUPPORT,
		windows.WSAEPFNOSUPPORT:
		return ErrInvalid
	case windows.WSASYSCALLFAILURE:
		return ErrSys
	case windows.WSA_NOT_ENOUGH_MEMORY:
		return ErrNoMem
	case windows.WSAEINTR:
		return ErrIntr
	case windows.WSAEOPNOTSUPP,
		windows.WSAESOCKTNOSUPPORT:
		return ErrNotSup
	case windows.WSAEPROTOTYPE,
		windows.WSAEPROTONOSUPPORT,
		windows.WSAENOPROTOOPT:
		return ErrProtoNoSupport
	case windows.WSAEACCES:
		return ErrAccess
	case windows.WSAEMFILE:
		return ErrMFile
	case windows.WSAEWOULDBLOCK:
		return ErrAgain
	case windows.WSAEINPROGRESS,
		windows.WSAEALREADY:
		return ErrAlready
	case windows.WSAENOTSOCK:
		return ErrNotSocket
	case windows.WSAEMSGSIZE:
		return ErrMsgSize
	case windows.WSAEADDRINUSE:
		return ErrAddrInUse
	case windows.WSAEADDRNOTAVAIL:
		return ErrAddrNotAvail
	case windows.WSAENETDOWN:
		return ErrNetDown
	case windows.WSAENETUNREACH:
		return ErrNetUnreach
	case windows.WSAENETRESET:
		// For streams: keepalive detected a broken connection. For
		// datagrams: an ICMP "TTL expired" arrived; the condition is
		// transient and send/recv remain usable.
		return ErrNetReset
	case windows.WSAECONNABORTED:
		return ErrConnAborted
	case windows.WSAECONNRESET:
		return ErrConnReset
	case windows.WSAENOBUFS:
		return ErrNoBufs
	case windows.WSAEISCONN:
		return ErrIsConn
	case windows.WSAENOTCONN:
		return ErrNotConn
	case windows.WSAESHUTDOWN:
		return ErrConnShutdown
	case windows.WSAETIMEDOUT:
		return ErrConnTimeout
	case windows.WSAECONNREFUSED:
		return ErrConnRefused
	case windows.WSAEHOSTDOWN:
		return ErrHostDown
	case windows.WSAEHOSTUNREACH:
		return ErrHostUnreach
	case windows.WSAEPROCLIM:
		return ErrProcLim
	case windows.WSASYSNOTREADY:
		return ErrNotReady
	case windows.WSAVERNOTSUPPORTED,
		windows.WSANOTINITIALISED:
		return ErrLibAcc
	case windows.WSAEINVALIDPROVIDER,
		windows.WSAEINVALIDPROCTABLE,
		windows.WSAEPROVIDERFAILEDINIT:
		return ErrLibBad
	default:
		return ErrDefault
	}
}

// mapOSError converts an error returned by the syscall layer into a
// taxonomy value. Non-errno errors collapse to ErrDefault.
func mapOSError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if e := errnoToError(errno); e != ErrNone {
			return e
		}
		return nil
	}
	return ErrDefault
}
