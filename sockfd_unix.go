//go:build unix

package clarinet

// sockfd is the native descriptor type. On POSIX systems descriptors 0, 1
// and 2 are reserved for the standard streams and never belong to a socket,
// so the zero value doubles as the Closed-state sentinel.
type sockfd = int

const invalidSockfd sockfd = 0

func validHandle(fd sockfd) bool { return fd > 2 }
