package clarinet_test

import (
	"testing"

	clarinet "github.com/nlebedenco/clarinet-go"
)

func v4spec(wildcard, reuse bool) clarinet.BindSpec {
	return clarinet.BindSpec{Family: clarinet.FamilyInet, Wildcard: wildcard, Reuse: reuse}
}

func v6spec(wildcard, v6only, reuse bool) clarinet.BindSpec {
	return clarinet.BindSpec{Family: clarinet.FamilyInet6, Wildcard: wildcard, IPv6Only: v6only, Reuse: reuse}
}

// TestSameFamilyTable enumerates the full 16-row same-family table across
// every platform column. Row numbering follows the canonical enumeration:
// W/W, W/S, S/W, S/S for each (ra1, ra2) combination.
func TestSameFamilyTable(t *testing.T) {
	t.Parallel()

	const (
		ok    = clarinet.BindOK
		inuse = clarinet.BindAddrInUse
	)

	type outcomes struct {
		linux, bsd, windows, other clarinet.BindOutcome
	}

	rows := []struct {
		w1, ra1, w2, ra2 bool
		want             outcomes
	}{
		/*  0 */ {true, false, true, false, outcomes{inuse, inuse, inuse, inuse}},
		/*  1 */ {true, false, false, false, outcomes{inuse, inuse, inuse, inuse}},
		/*  2 */ {false, false, true, false, outcomes{inuse, inuse, inuse, inuse}},
		/*  3 */ {false, false, false, false, outcomes{inuse, inuse, inuse, inuse}},
		/*  4 */ {true, false, true, true, outcomes{inuse, inuse, inuse, inuse}},
		/*  5 */ {true, false, false, true, outcomes{inuse, ok, inuse, inuse}},
		/*  6 */ {false, false, true, true, outcomes{inuse, ok, ok, ok}},
		/*  7 */ {false, false, false, true, outcomes{inuse, inuse, inuse, inuse}},
		/*  8 */ {true, true, true, false, outcomes{inuse, inuse, inuse, inuse}},
		/*  9 */ {true, true, false, false, outcomes{inuse, inuse, ok, inuse}},
		/* 10 */ {false, true, true, false, outcomes{inuse, inuse, inuse, inuse}},
		/* 11 */ {false, true, false, false, outcomes{inuse, inuse, inuse, inuse}},
		/* 12 */ {true, true, true, true, outcomes{ok, ok, ok, ok}},
		/* 13 */ {true, true, false, true, outcomes{ok, ok, ok, ok}},
		/* 14 */ {false, true, true, true, outcomes{ok, ok, ok, ok}},
		/* 15 */ {false, true, false, true, outcomes{ok, ok, ok, ok}},
	}

	platforms := []struct {
		p    clarinet.Platform
		pick func(outcomes) clarinet.BindOutcome
	}{
		{clarinet.PlatformLinux, func(o outcomes) clarinet.BindOutcome { return o.linux }},
		{clarinet.PlatformBSD, func(o outcomes) clarinet.BindOutcome { return o.bsd }},
		{clarinet.PlatformWindows, func(o outcomes) clarinet.BindOutcome { return o.windows }},
		{clarinet.PlatformOther, func(o outcomes) clarinet.BindOutcome { return o.other }},
	}

	for i, row := range rows {
		for _, pl := range platforms {
			// IPv4 vs IPv4.
			got := clarinet.BindConflictOutcome(v4spec(row.w1, row.ra1), v4spec(row.w2, row.ra2), pl.p)
			if want := pl.pick(row.want); got != want {
				t.Errorf("v4 row %d on %s: got %v, want %v", i, pl.p, got, want)
			}
			// IPv6 vs IPv6 with both sockets IPv6-only follows the same table.
			got = clarinet.BindConflictOutcome(v6spec(row.w1, true, row.ra1), v6spec(row.w2, true, row.ra2), pl.p)
			if want := pl.pick(row.want); got != want {
				t.Errorf("v6 row %d on %s: got %v, want %v", i, pl.p, got, want)
			}
		}
	}
}

// TestCrossFamilyIsolated verifies that an IPv6-only socket never occupies
// the IPv4 space: all 16 combinations succeed, in both orders.
func TestCrossFamilyIsolated(t *testing.T) {
	t.Parallel()

	bools := []bool{false, true}
	platforms := []clarinet.Platform{
		clarinet.PlatformLinux, clarinet.PlatformBSD,
		clarinet.PlatformWindows, clarinet.PlatformOther,
	}

	for _, p := range platforms {
		for _, w1 := range bools {
			for _, ra1 := range bools {
				for _, w2 := range bools {
					for _, ra2 := range bools {
						if got := clarinet.BindConflictOutcome(v6spec(w1, true, ra1), v4spec(w2, ra2), p); got != clarinet.BindOK {
							t.Errorf("v6only(%v,%v) then v4(%v,%v) on %s: got %v", w1, ra1, w2, ra2, p, got)
						}
						if got := clarinet.BindConflictOutcome(v4spec(w1, ra1), v6spec(w2, true, ra2), p); got != clarinet.BindOK {
							t.Errorf("v4(%v,%v) then v6only(%v,%v) on %s: got %v", w1, ra1, w2, ra2, p, got)
						}
					}
				}
			}
		}
	}
}

// TestCrossFamilyDualStack verifies the dual-stack wildcard rows, including
// the Linux cell that follows the documented ADDRINUSE outcome and the
// specific-IPv6 rows that never conflict.
func TestCrossFamilyDualStack(t *testing.T) {
	t.Parallel()

	const (
		ok    = clarinet.BindOK
		inuse = clarinet.BindAddrInUse
	)

	tests := []struct {
		name          string
		first, second clarinet.BindSpec
		platform      clarinet.Platform
		want          clarinet.BindOutcome
	}{
		{"dual W first, v4 W, no reuse", v6spec(true, false, false), v4spec(true, false), clarinet.PlatformLinux, inuse},
		{"dual W first, v4 S, no reuse", v6spec(true, false, false), v4spec(false, false), clarinet.PlatformLinux, inuse},
		{"dual W first, v4 S reusing, bsd", v6spec(true, false, false), v4spec(false, true), clarinet.PlatformBSD, ok},
		{"dual W first, v4 S reusing, linux", v6spec(true, false, false), v4spec(false, true), clarinet.PlatformLinux, inuse},
		{"dual W reusing first, v4 W, windows", v6spec(true, false, true), v4spec(true, false), clarinet.PlatformWindows, ok},
		{"dual W reusing first, v4 W, linux", v6spec(true, false, true), v4spec(true, false), clarinet.PlatformLinux, inuse},
		{"dual W reusing first, v4 S, windows", v6spec(true, false, true), v4spec(false, false), clarinet.PlatformWindows, ok},
		{"both reusing", v6spec(true, false, true), v4spec(true, true), clarinet.PlatformLinux, ok},
		{"both reusing specific", v6spec(true, false, true), v4spec(false, true), clarinet.PlatformWindows, ok},

		{"dual S never occupies v4", v6spec(false, false, false), v4spec(true, false), clarinet.PlatformLinux, ok},
		{"dual S never occupies v4, reusing", v6spec(false, false, true), v4spec(false, true), clarinet.PlatformWindows, ok},
		{"v4 first, dual S second", v4spec(true, false), v6spec(false, false, false), clarinet.PlatformLinux, ok},

		{"v4 W first, dual W reusing, bsd", v4spec(true, false), v6spec(true, false, true), clarinet.PlatformBSD, ok},
		{"v4 S first, dual W reusing, linux (documented)", v4spec(false, false), v6spec(true, false, true), clarinet.PlatformLinux, inuse},
		{"v4 S first, dual W reusing, bsd", v4spec(false, false), v6spec(true, false, true), clarinet.PlatformBSD, ok},
		{"v4 W reusing first, dual W, windows", v4spec(true, true), v6spec(true, false, false), clarinet.PlatformWindows, ok},
		{"v4 first both reusing", v4spec(false, true), v6spec(true, false, true), clarinet.PlatformOther, ok},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := clarinet.BindConflictOutcome(tt.first, tt.second, tt.platform); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
