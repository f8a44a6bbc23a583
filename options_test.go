package clarinet_test

import (
	"testing"

	clarinet "github.com/nlebedenco/clarinet-go"
)

// TestOptionUniqueness verifies that every option identifier is a distinct
// integer: the API carries no "level" parameter, so a colliding code would
// make a mis-typed option family silently wrong.
func TestOptionUniqueness(t *testing.T) {
	t.Parallel()

	options := map[clarinet.Option]string{
		clarinet.OptNonBlock:    "NONBLOCK",
		clarinet.OptReuseAddr:   "REUSEADDR",
		clarinet.OptSndBuf:      "SNDBUF",
		clarinet.OptRcvBuf:      "RCVBUF",
		clarinet.OptSndTimeo:    "SNDTIMEO",
		clarinet.OptRcvTimeo:    "RCVTIMEO",
		clarinet.OptKeepAlive:   "KEEPALIVE",
		clarinet.OptLinger:      "LINGER",
		clarinet.OptDontLinger:  "DONTLINGER",
		clarinet.OptError:       "ERROR",
		clarinet.OptIPv6Only:    "IPV6ONLY",
		clarinet.OptTTL:         "TTL",
		clarinet.OptMTU:         "MTU",
		clarinet.OptMTUDiscover: "MTU_DISCOVER",
		clarinet.OptBroadcast:   "BROADCAST",
	}

	// The map keys collapse duplicates; 15 distinct options must survive.
	if len(options) != 15 {
		t.Fatalf("expected 15 distinct option codes, got %d", len(options))
	}
}

// TestShutdownFlags verifies the documented bit layout.
func TestShutdownFlags(t *testing.T) {
	t.Parallel()

	if clarinet.ShutdownBoth != clarinet.ShutdownRecv|clarinet.ShutdownSend {
		t.Error("ShutdownBoth must be the union of Recv and Send")
	}
	if clarinet.ShutdownRecv&clarinet.ShutdownSend != 0 {
		t.Error("Recv and Send must not overlap")
	}
}

// TestPMTUDModeNames pins the mode enumeration.
func TestPMTUDModeNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode clarinet.PMTUDMode
		code int32
		name string
	}{
		{clarinet.PMTUDUnspec, 0, "UNSPEC"},
		{clarinet.PMTUDOn, 1, "ON"},
		{clarinet.PMTUDOff, 2, "OFF"},
		{clarinet.PMTUDProbe, 3, "PROBE"},
	}
	for _, tt := range tests {
		if int32(tt.mode) != tt.code {
			t.Errorf("%s: code = %d, want %d", tt.name, int32(tt.mode), tt.code)
		}
		if tt.mode.String() != tt.name {
			t.Errorf("code %d: name = %q, want %q", tt.code, tt.mode.String(), tt.name)
		}
	}
}
