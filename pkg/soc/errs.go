package soc

import "errors"

var (
	// ErrUnknownDirective means a top-level line didn't start with a
	// recognized keyword (add_new_resource, comm_band, comm_band_self).
	ErrUnknownDirective = errors.New("soc: unrecognized directive")

	// ErrShortLine means a directive had fewer fields than it requires.
	ErrShortLine = errors.New("soc: line has too few fields")

	// ErrNoCluster means a resource-block line was dispatched with no
	// cluster open. A functionality/opp/trip_freq/power_profile line that
	// appears before any add_new_resource is read as a top-level line and
	// reported as ErrUnknownDirective instead.
	ErrNoCluster = errors.New("soc: directive outside of a resource block")

	// ErrBadDVFSMode means the DVFS token on an add_new_resource line wasn't
	// one of performance/powersave/ondemand/none/constant_<MHz>.
	ErrBadDVFSMode = errors.New("soc: unrecognized dvfs mode")
)
