package clarinet_test

import (
	"testing"

	clarinet "github.com/nlebedenco/clarinet-go"
)

// TestLoopbackIPv4Boundaries verifies the loopback classification over the
// edges of 127.0.0.0/8: the block's network and broadcast addresses are not
// loopback, everything in between is.
func TestLoopbackIPv4Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		addr clarinet.Addr
		want bool
	}{
		{"0.0.0.0", clarinet.MakeIPv4(0, 0, 0, 0), false},
		{"255.255.255.255", clarinet.MakeIPv4(255, 255, 255, 255), false},
		{"127.0.0.0 network", clarinet.MakeIPv4(127, 0, 0, 0), false},
		{"127.0.0.1", clarinet.MakeIPv4(127, 0, 0, 1), true},
		{"127.0.0.2", clarinet.MakeIPv4(127, 0, 0, 2), true},
		{"127.255.255.254", clarinet.MakeIPv4(127, 255, 255, 254), true},
		{"127.255.255.255 broadcast", clarinet.MakeIPv4(127, 255, 255, 255), false},
		{"126.0.0.1", clarinet.MakeIPv4(126, 0, 0, 1), false},
		{"128.0.0.1", clarinet.MakeIPv4(128, 0, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.addr.IsLoopbackIPv4(); got != tt.want {
				t.Errorf("IsLoopbackIPv4(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

// TestPredicates walks the classification predicates over the named
// constants and representative values.
func TestPredicates(t *testing.T) {
	t.Parallel()

	mapped127 := clarinet.MakeIPv6(0, 0, 0, 0, 0, 0xffff, 0x7f00, 0x0001, 0)
	linkLocal := clarinet.MakeIPv6(0xfe80, 0, 0, 0, 0, 0, 0, 1, 0)
	siteLocal := clarinet.MakeIPv6(0xfec0, 0, 0, 0, 0, 0, 0, 1, 0)
	multicast := clarinet.MakeIPv6(0xff00, 0, 0, 0, 0, 0, 0, 1, 0)
	teredo := clarinet.MakeIPv6(0x2001, 0, 0x4136, 0xe378, 0x8000, 0x63bf, 0x3fff, 0xfdd2, 0)

	tests := []struct {
		name  string
		check bool
		want  bool
	}{
		{"none is unspec", clarinet.AddrNone.IsUnspec(), true},
		{"any v4 wildcard", clarinet.AddrAnyIPv4.IsAnyIPv4(), true},
		{"any v6 wildcard", clarinet.AddrAnyIPv6.IsAnyIPv6(), true},
		{"any v4 is any ip", clarinet.AddrAnyIPv4.IsAnyIP(), true},
		{"any v6 is any ip", clarinet.AddrAnyIPv6.IsAnyIP(), true},
		{"mapped wildcard is not any ip", clarinet.MakeIPv6(0, 0, 0, 0, 0, 0xffff, 0, 0, 0).IsAnyIP(), false},
		{"loopback v6", clarinet.AddrLoopbackIPv6.IsLoopbackIPv6(), true},
		{"loopback v4 mapped constant", clarinet.AddrLoopbackIPv4Mapped.IsLoopbackIPv4Mapped(), true},
		{"mapped 127.0.0.1 is mapped", mapped127.IsIPv4Mapped(), true},
		{"mapped 127.0.0.1 loopback ip", mapped127.IsLoopbackIP(), true},
		{"broadcast v4", clarinet.AddrBroadcastIPv4.IsBroadcastIPv4(), true},
		{"loopback v4 not broadcast", clarinet.AddrLoopbackIPv4.IsBroadcastIPv4(), false},
		{"link local", linkLocal.IsLinkLocalIPv6(), true},
		{"link local is not site local", linkLocal.IsSiteLocalIPv6(), false},
		{"site local", siteLocal.IsSiteLocalIPv6(), true},
		{"multicast", multicast.IsMulticastIPv6(), true},
		{"teredo", teredo.IsTeredoIPv6(), true},
		{"loopback v6 not teredo", clarinet.AddrLoopbackIPv6.IsTeredoIPv6(), false},
		{"mac is mac", clarinet.MakeMAC(0, 1, 2, 3, 4, 5).IsMAC(), true},
		{"mac is not ip", clarinet.MakeMAC(0, 1, 2, 3, 4, 5).IsAnyIP(), false},
	}

	for _, tt := range tests {
		if tt.check != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.check, tt.want)
		}
	}
}

// TestEqualEquivalent verifies the identity relations: equality implies
// equivalence, equivalence bridges IPv4 and its mapped form, and flow info
// never participates.
func TestEqualEquivalent(t *testing.T) {
	t.Parallel()

	v4 := clarinet.MakeIPv4(192, 168, 0, 1)
	mapped := clarinet.MakeIPv6(0, 0, 0, 0, 0, 0xffff, 0xc0a8, 0x0001, 0)
	otherV4 := clarinet.MakeIPv4(192, 168, 0, 2)
	scoped := clarinet.MakeIPv6(0xfe80, 0, 0, 0, 0, 0, 0, 1, 3)
	unscoped := clarinet.MakeIPv6(0xfe80, 0, 0, 0, 0, 0, 0, 1, 0)

	if !v4.Equal(v4) || !v4.Equivalent(v4) {
		t.Fatal("equality and equivalence must be reflexive")
	}
	if v4.Equal(mapped) {
		t.Error("IPv4 and its mapped form are not equal")
	}
	if !v4.Equivalent(mapped) || !mapped.Equivalent(v4) {
		t.Error("IPv4 and its mapped form are equivalent, both ways")
	}
	if v4.Equivalent(otherV4) {
		t.Error("distinct IPv4 addresses are not equivalent")
	}
	if scoped.Equal(unscoped) {
		t.Error("scope id is part of IPv6 identity")
	}

	// Flow info is not identity.
	flowed := unscoped.WithFlowInfo(0x12345678)
	if !flowed.Equal(unscoped) {
		t.Error("flow info must not participate in equality")
	}
	if !flowed.Equivalent(unscoped) {
		t.Error("flow info must not participate in equivalence")
	}

	// Equal implies equivalent for a sample of pairs.
	pairs := []clarinet.Addr{v4, mapped, scoped, clarinet.AddrAnyIPv6, clarinet.AddrLoopbackIPv4}
	for _, a := range pairs {
		for _, b := range pairs {
			if a.Equal(b) && !a.Equivalent(b) {
				t.Errorf("equal(%v, %v) without equivalent", a, b)
			}
		}
	}
}

// TestMapConversions verifies MapToIPv4/MapToIPv6 and their failure on
// inconvertible input.
func TestMapConversions(t *testing.T) {
	t.Parallel()

	v4 := clarinet.MakeIPv4(10, 0, 0, 7)

	mapped, err := v4.MapToIPv6()
	if err != nil {
		t.Fatalf("MapToIPv6: %v", err)
	}
	if !mapped.IsIPv4Mapped() {
		t.Fatal("MapToIPv6 must produce an IPv4-mapped address")
	}
	if !mapped.Equivalent(v4) {
		t.Fatal("mapped address must stay equivalent to its origin")
	}

	back, err := mapped.MapToIPv4()
	if err != nil {
		t.Fatalf("MapToIPv4: %v", err)
	}
	if !back.Equal(v4) {
		t.Fatalf("round-trip changed the address: %v != %v", back, v4)
	}

	// Copy semantics when already in the target family.
	same, err := v4.MapToIPv4()
	if err != nil || !same.Equal(v4) {
		t.Fatal("MapToIPv4 on IPv4 must copy")
	}

	// A plain (non-mapped) IPv6 address has no IPv4 form.
	if _, err := clarinet.AddrLoopbackIPv6.MapToIPv4(); err != clarinet.ErrInvalid {
		t.Fatalf("MapToIPv4(::1) = %v, want ErrInvalid", err)
	}
	if _, err := clarinet.MakeMAC(1, 2, 3, 4, 5, 6).MapToIPv6(); err != clarinet.ErrInvalid {
		t.Fatalf("MapToIPv6(mac) = %v, want ErrInvalid", err)
	}
}

// TestEndpointRelations lifts the address relations over endpoints.
func TestEndpointRelations(t *testing.T) {
	t.Parallel()

	v4 := clarinet.MakeEndpoint(clarinet.MakeIPv4(10, 0, 0, 1), 9000)
	mapped := clarinet.MakeEndpoint(clarinet.MakeIPv6(0, 0, 0, 0, 0, 0xffff, 0x0a00, 0x0001, 0), 9000)
	otherPort := clarinet.MakeEndpoint(clarinet.MakeIPv4(10, 0, 0, 1), 9001)

	if !v4.Equal(v4) {
		t.Error("endpoint equality must be reflexive")
	}
	if v4.Equal(mapped) {
		t.Error("endpoints with different address families are not equal")
	}
	if !v4.Equivalent(mapped) {
		t.Error("endpoints with equivalent addresses and equal ports are equivalent")
	}
	if v4.Equivalent(otherPort) {
		t.Error("port mismatch breaks equivalence")
	}
}
