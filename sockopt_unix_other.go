//go:build unix && !linux && !darwin && !freebsd

package clarinet

import "golang.org/x/sys/unix"

// -------------------------------------------------------------------------
// Option Engine — generic POSIX lowering
// -------------------------------------------------------------------------

const sendFlags = 0

func lowerReuseAddr(fd sockfd, on bool) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, intOpt(on)); err != nil {
		return mapOSError(err)
	}
	return nil
}

func adjustBufferSize(value int32) (int, bool) {
	return int(value), false
}

// No portable per-socket PMTUD control exists on this target; the default
// mode is whatever the platform does.
func sockSetMTUDiscover(fd sockfd, family Family, mode PMTUDMode) error {
	if mode == PMTUDUnspec {
		return nil
	}
	return ErrNotSup
}

func sockGetMTUDiscover(fd sockfd, family Family) (PMTUDMode, error) {
	return 0, ErrNotSup
}

func sockGetMTU(fd sockfd, family Family) (int32, error) {
	return 0, ErrNotSup
}

func sockForceUDPChecksum(fd sockfd, family Family) error {
	return nil
}
