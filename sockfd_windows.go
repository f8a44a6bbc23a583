//go:build windows

package clarinet

import "syscall"

// sockfd is the native descriptor type. Winsock never hands out a null
// socket handle, so the zero value doubles as the Closed-state sentinel.
type sockfd = syscall.Handle

const invalidSockfd sockfd = 0

func validHandle(fd sockfd) bool {
	return fd != 0 && fd != syscall.InvalidHandle
}
