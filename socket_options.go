package clarinet

import "math"

// -------------------------------------------------------------------------
// Option Engine — portable layer
// -------------------------------------------------------------------------
//
// Validation and payload normalization happen here; the platform layer only
// lowers already-validated values to native calls. Values out of range fail
// with ErrInvalid before any native call is made.

// SetOption sets an i32-payload option. OptLinger has a record payload and
// is set through SetLinger; passing it here fails with ErrInvalid, as does
// any get-only option (OptMTU, OptError).
func (s *Socket) SetOption(opt Option, value int32) error {
	if !s.isOpen() {
		return ErrInvalid
	}
	switch opt {
	case OptNonBlock:
		return sockSetNonBlock(s.fd, value != 0)
	case OptReuseAddr:
		return sockSetReuseAddr(s.fd, value != 0)
	case OptSndBuf, OptRcvBuf:
		if value < 0 {
			return ErrInvalid
		}
		return sockSetBuffer(s.fd, opt == OptSndBuf, value)
	case OptSndTimeo, OptRcvTimeo:
		if value < 0 {
			return ErrInvalid
		}
		return sockSetTimeout(s.fd, opt == OptSndTimeo, value)
	case OptKeepAlive:
		if err := sockCheckStream(s.fd); err != nil {
			return err
		}
		return sockSetKeepAlive(s.fd, value != 0)
	case OptDontLinger:
		if err := sockCheckStream(s.fd); err != nil {
			return err
		}
		// Flip only the enabled flag; the configured seconds are preserved.
		l, err := sockGetLinger(s.fd)
		if err != nil {
			return err
		}
		l.Enabled = value == 0
		return sockSetLinger(s.fd, l)
	case OptIPv6Only:
		if s.family != FamilyInet6 {
			return ErrInvalid
		}
		return sockSetIPv6Only(s.fd, value != 0)
	case OptTTL:
		if value < 1 || value > 255 {
			return ErrInvalid
		}
		return sockSetTTL(s.fd, s.family, value)
	case OptMTUDiscover:
		mode := PMTUDMode(value)
		switch mode {
		case PMTUDUnspec, PMTUDOn, PMTUDOff, PMTUDProbe:
			return sockSetMTUDiscover(s.fd, s.family, mode)
		}
		return ErrInvalid
	case OptBroadcast:
		if err := sockCheckDgram(s.fd); err != nil {
			return err
		}
		return sockSetBroadcast(s.fd, value != 0)
	}
	return ErrInvalid
}

// Option reads an i32-payload option. OptNonBlock is set-only and OptLinger
// is read through Linger; both fail with ErrInvalid here.
func (s *Socket) Option(opt Option) (int32, error) {
	if !s.isOpen() {
		return 0, ErrInvalid
	}
	switch opt {
	case OptReuseAddr:
		return sockGetReuseAddr(s.fd)
	case OptSndBuf, OptRcvBuf:
		return sockGetBuffer(s.fd, opt == OptSndBuf)
	case OptSndTimeo, OptRcvTimeo:
		ms, err := sockGetTimeout(s.fd, opt == OptSndTimeo)
		if err != nil {
			return 0, err
		}
		if ms > math.MaxInt32 {
			ms = math.MaxInt32
		}
		return int32(ms), nil
	case OptKeepAlive:
		if err := sockCheckStream(s.fd); err != nil {
			return 0, err
		}
		return sockGetKeepAlive(s.fd)
	case OptDontLinger:
		if err := sockCheckStream(s.fd); err != nil {
			return 0, err
		}
		l, err := sockGetLinger(s.fd)
		if err != nil {
			return 0, err
		}
		if l.Enabled {
			return 0, nil
		}
		return 1, nil
	case OptError:
		return sockGetError(s.fd)
	case OptIPv6Only:
		if s.family != FamilyInet6 {
			return 0, ErrInvalid
		}
		return sockGetIPv6Only(s.fd)
	case OptTTL:
		return sockGetTTL(s.fd, s.family)
	case OptMTU:
		return sockGetMTU(s.fd, s.family)
	case OptMTUDiscover:
		mode, err := sockGetMTUDiscover(s.fd, s.family)
		if err != nil {
			return 0, err
		}
		return int32(mode), nil
	case OptBroadcast:
		if err := sockCheckDgram(s.fd); err != nil {
			return 0, err
		}
		return sockGetBroadcast(s.fd)
	}
	return 0, ErrInvalid
}

// SetLinger configures the close-drain policy. Stream sockets only.
func (s *Socket) SetLinger(l Linger) error {
	if !s.isOpen() {
		return ErrInvalid
	}
	if err := sockCheckStream(s.fd); err != nil {
		return err
	}
	return sockSetLinger(s.fd, l)
}

// Linger reads the close-drain policy. Stream sockets only. Reading through
// Linger and through OptDontLinger always reflects the same underlying
// state.
func (s *Socket) Linger() (Linger, error) {
	if !s.isOpen() {
		return Linger{}, ErrInvalid
	}
	if err := sockCheckStream(s.fd); err != nil {
		return Linger{}, err
	}
	return sockGetLinger(s.fd)
}

func intOpt(on bool) int {
	if on {
		return 1
	}
	return 0
}

func boolOpt(v int) int32 {
	if v != 0 {
		return 1
	}
	return 0
}
