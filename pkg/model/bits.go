package model

import "fmt"

// Bits is a data-volume measured in bits, used for comm_vol matrix entries
// and packet sizes. It is kept distinct from a byte count so that mixing a
// volume with a byte-oriented size is a compile error, not a silent /8 bug.
type Bits uint64

// Humanized returns a human-readable string with an automatic unit.
func (b Bits) Humanized() string {
	const unit = 1000
	v := float64(b)
	switch {
	case b >= 1_000_000_000:
		return fmt.Sprintf("%.2f Gb", v/1e9)
	case b >= 1_000_000:
		return fmt.Sprintf("%.2f Mb", v/1e6)
	case b >= unit:
		return fmt.Sprintf("%.2f Kb", v/1e3)
	default:
		return fmt.Sprintf("%d b", b)
	}
}

// BitsPerUs is a bandwidth measured in bits per microsecond, the unit the
// SoC descriptor's comm_band directives use. math.Inf(1) represents an
// unmetered link (the "bandwidth infinity" convention used in validation
// scenarios); ordinary float division already sends vol/+Inf to 0, so no
// special case is needed in LatencyUs.
type BitsPerUs float64

// LatencyUs returns the time, in microseconds, to move vol over this
// bandwidth.
func (bw BitsPerUs) LatencyUs(vol Bits) float64 {
	if vol == 0 {
		return 0
	}
	return float64(vol) / float64(bw)
}
