//go:build unix

package clarinet

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Readiness bits, straight from poll(2).
const (
	PollIn   = PollEvents(unix.POLLIN)
	PollOut  = PollEvents(unix.POLLOUT)
	PollPri  = PollEvents(unix.POLLPRI)
	PollErr  = PollEvents(unix.POLLERR)
	PollHup  = PollEvents(unix.POLLHUP)
	PollNVal = PollEvents(unix.POLLNVAL)
)

func sockPoll(items []PollItem, timeoutMillis int) (int, error) {
	fds := make([]unix.PollFd, len(items))
	for i := range items {
		fd := -1
		if s := items[i].Socket; s != nil && s.isOpen() {
			fd = s.fd
		}
		// Negative descriptors are ignored by poll and report no events.
		fds[i] = unix.PollFd{Fd: int32(fd), Events: int16(items[i].Events)}
	}

	n, err := unix.Poll(fds, timeoutMillis)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			return 0, errnoToError(errno)
		}
		return 0, ErrDefault
	}

	for i := range items {
		items[i].Revents = PollEvents(fds[i].Revents)
	}
	return n, nil
}
