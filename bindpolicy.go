package clarinet

// -------------------------------------------------------------------------
// Bind Conflict Policy
// -------------------------------------------------------------------------
//
// Whether two sockets may bind to overlapping (address, port) tuples depends
// on address specificity, the IPv6-only mode, the reuse flag, and the
// platform. The kernel makes the final call; the tables below are the
// portable contract the option lowering is designed to produce, kept as
// data so each cell can be audited and exercised by tests.

// Platform identifies a bind-policy target. Grouping follows the native
// flag sets: all BSD-derived systems (including Darwin) share a column.
type Platform uint8

const (
	PlatformLinux Platform = iota
	PlatformBSD
	PlatformWindows
	PlatformOther
)

// String returns the symbolic name of the platform.
func (p Platform) String() string {
	switch p {
	case PlatformLinux:
		return "linux"
	case PlatformBSD:
		return "bsd"
	case PlatformWindows:
		return "windows"
	default:
		return "other"
	}
}

// BindOutcome is the result of attempting the second of two overlapping
// binds on the same port.
type BindOutcome uint8

const (
	// BindOK means the second bind succeeds.
	BindOK BindOutcome = iota

	// BindAddrInUse means the second bind fails with ErrAddrInUse.
	BindAddrInUse
)

// String returns the symbolic name of the outcome.
func (o BindOutcome) String() string {
	if o == BindOK {
		return "OK"
	}
	return "ADDRINUSE"
}

// BindSpec describes one side of a potential bind conflict.
type BindSpec struct {
	Family   Family
	Wildcard bool // all-zeros address of the family
	IPv6Only bool // meaningful only for FamilyInet6
	Reuse    bool // OptReuseAddr set
}

// bindKey indexes a rule row by (first wildcard, first reuse, second
// wildcard, second reuse).
type bindKey struct {
	w1, ra1, w2, ra2 bool
}

// bindRule is one table cell: a uniform outcome plus per-platform
// exceptions.
type bindRule struct {
	outcome BindOutcome
	except  map[Platform]BindOutcome
}

func (r bindRule) on(p Platform) BindOutcome {
	if o, ok := r.except[p]; ok {
		return o
	}
	return r.outcome
}

// sameFamilyRules is the 16-row table for two sockets of the same family
// (IPv4 vs IPv4, or IPv6 vs IPv6). Row order follows the canonical
// enumeration: W/W, W/S, S/W, S/S for each (ra1, ra2) combination.
var sameFamilyRules = map[bindKey]bindRule{
	{w1: true, ra1: false, w2: true, ra2: false}:   {outcome: BindAddrInUse},
	{w1: true, ra1: false, w2: false, ra2: false}:  {outcome: BindAddrInUse},
	{w1: false, ra1: false, w2: true, ra2: false}:  {outcome: BindAddrInUse},
	{w1: false, ra1: false, w2: false, ra2: false}: {outcome: BindAddrInUse},

	{w1: true, ra1: false, w2: true, ra2: true}: {outcome: BindAddrInUse},
	{w1: true, ra1: false, w2: false, ra2: true}: {
		outcome: BindAddrInUse,
		except:  map[Platform]BindOutcome{PlatformBSD: BindOK},
	},
	{w1: false, ra1: false, w2: true, ra2: true}: {
		outcome: BindOK,
		except:  map[Platform]BindOutcome{PlatformLinux: BindAddrInUse},
	},
	{w1: false, ra1: false, w2: false, ra2: true}: {outcome: BindAddrInUse},

	{w1: true, ra1: true, w2: true, ra2: false}: {outcome: BindAddrInUse},
	{w1: true, ra1: true, w2: false, ra2: false}: {
		outcome: BindAddrInUse,
		except:  map[Platform]BindOutcome{PlatformWindows: BindOK},
	},
	{w1: false, ra1: true, w2: true, ra2: false}:  {outcome: BindAddrInUse},
	{w1: false, ra1: true, w2: false, ra2: false}: {outcome: BindAddrInUse},

	{w1: true, ra1: true, w2: true, ra2: true}:    {outcome: BindOK},
	{w1: true, ra1: true, w2: false, ra2: true}:   {outcome: BindOK},
	{w1: false, ra1: true, w2: true, ra2: true}:   {outcome: BindOK},
	{w1: false, ra1: true, w2: false, ra2: true}:  {outcome: BindOK},
}

// crossDualV6First covers an IPv6 wildcard bound dual-stack (IPv6Only off)
// followed by an IPv4 bind. The dual-stack wildcard occupies the IPv4
// space, so the shape matches the same-family table except that Windows
// grants the reusing first socket priority over a later exclusive bind.
var crossDualV6First = map[bindKey]bindRule{
	{w1: true, ra1: false, w2: true, ra2: false}:  {outcome: BindAddrInUse},
	{w1: true, ra1: false, w2: false, ra2: false}: {outcome: BindAddrInUse},
	{w1: true, ra1: false, w2: true, ra2: true}:   {outcome: BindAddrInUse},
	{w1: true, ra1: false, w2: false, ra2: true}: {
		outcome: BindAddrInUse,
		except:  map[Platform]BindOutcome{PlatformBSD: BindOK},
	},
	{w1: true, ra1: true, w2: true, ra2: false}: {
		outcome: BindAddrInUse,
		except:  map[Platform]BindOutcome{PlatformWindows: BindOK},
	},
	{w1: true, ra1: true, w2: false, ra2: false}: {
		outcome: BindAddrInUse,
		except:  map[Platform]BindOutcome{PlatformWindows: BindOK},
	},
	{w1: true, ra1: true, w2: true, ra2: true}:  {outcome: BindOK},
	{w1: true, ra1: true, w2: false, ra2: true}: {outcome: BindOK},
}

// crossDualV4First covers an IPv4 bind followed by an IPv6 wildcard bound
// dual-stack. Symmetric to crossDualV6First; the Linux cell for a specific
// IPv4 first and a reusing dual wildcard second follows the documented
// outcome (ADDRINUSE) rather than the more permissive behavior some kernels
// exhibit.
var crossDualV4First = map[bindKey]bindRule{
	{w1: true, ra1: false, w2: true, ra2: false}:  {outcome: BindAddrInUse},
	{w1: false, ra1: false, w2: true, ra2: false}: {outcome: BindAddrInUse},
	{w1: true, ra1: false, w2: true, ra2: true}: {
		outcome: BindAddrInUse,
		except:  map[Platform]BindOutcome{PlatformBSD: BindOK},
	},
	{w1: false, ra1: false, w2: true, ra2: true}: {
		outcome: BindOK,
		except:  map[Platform]BindOutcome{PlatformLinux: BindAddrInUse},
	},
	{w1: true, ra1: true, w2: true, ra2: false}: {
		outcome: BindAddrInUse,
		except:  map[Platform]BindOutcome{PlatformWindows: BindOK},
	},
	{w1: false, ra1: true, w2: true, ra2: false}: {
		outcome: BindAddrInUse,
		except:  map[Platform]BindOutcome{PlatformWindows: BindOK},
	},
	{w1: true, ra1: true, w2: true, ra2: true}:  {outcome: BindOK},
	{w1: false, ra1: true, w2: true, ra2: true}: {outcome: BindOK},
}

// BindConflictOutcome reports the portable contract for binding second after
// first on the same port on the given platform.
func BindConflictOutcome(first, second BindSpec, p Platform) BindOutcome {
	key := bindKey{w1: first.Wildcard, ra1: first.Reuse, w2: second.Wildcard, ra2: second.Reuse}

	if first.Family == second.Family {
		return sameFamilyRules[key].on(p)
	}

	switch {
	case first.Family == FamilyInet6 && second.Family == FamilyInet:
		// An IPv6-only socket, or any specific IPv6 address, does not occupy
		// the IPv4 space.
		if first.IPv6Only || !first.Wildcard {
			return BindOK
		}
		return crossDualV6First[key].on(p)

	case first.Family == FamilyInet && second.Family == FamilyInet6:
		if second.IPv6Only || !second.Wildcard {
			return BindOK
		}
		return crossDualV4First[key].on(p)
	}

	// Families that never share an address space.
	return BindOK
}
