package model

import "fmt"

// ResourceType enumerates the PE kinds the SoC descriptor may declare.
type ResourceType string

const (
	TypeBig ResourceType = "BIG"
	TypeLTL ResourceType = "LTL"
	TypeACC ResourceType = "ACC"
	TypeCPU ResourceType = "CPU"
	TypeMEM ResourceType = "MEM"
	TypeCAC ResourceType = "CAC"
)

// OPP is an operating performance point: a (frequency, voltage) pair.
type OPP struct {
	FreqMHz int
	VoltMV  int
}

// DVFSMode selects the per-cluster frequency-scaling policy.
type DVFSMode struct {
	Kind         DVFSKind
	ConstantMHz  int // valid only when Kind == DVFSConstant
}

type DVFSKind int

const (
	DVFSPerformance DVFSKind = iota
	DVFSPowersave
	DVFSOndemand
	DVFSConstant
	DVFSNone
)

// String names the DVFS mode for trace rows and logging.
func (m DVFSMode) String() string {
	switch m.Kind {
	case DVFSPerformance:
		return "performance"
	case DVFSPowersave:
		return "powersave"
	case DVFSOndemand:
		return "ondemand"
	case DVFSConstant:
		return fmt.Sprintf("constant_%d", m.ConstantMHz)
	default:
		return "none"
	}
}

// Resource is the static template describing one PE: the task names it can
// run and their max-frequency runtimes (µs), parallel slices.
type Resource struct {
	ID                      PEID
	Name                    string
	Type                    ResourceType
	ClusterID               int
	Capacity                int // max concurrent tasks; MEM is excluded from scheduling
	SupportedFunctionalities []string
	Performance             []float64 // µs at max frequency, parallel to SupportedFunctionalities

	MeshName string
	Position int
	Width    int
	Height   int
	Color    string
}

// FunctionalityIndex returns the index of taskName in SupportedFunctionalities,
// or -1.
func (r *Resource) FunctionalityIndex(taskName string) int {
	for i, n := range r.SupportedFunctionalities {
		if n == taskName {
			return i
		}
	}
	return -1
}

// Supports reports whether this PE can execute taskName.
func (r *Resource) Supports(taskName string) bool {
	return r.FunctionalityIndex(taskName) >= 0
}

// PowerProfile maps a frequency threshold (MHz) to the measured maximum
// power (W) for 1..N concurrently active tasks on the cluster ("N" is the
// length of the slice, ordered by task count ascending).
type PowerProfile map[int][]float64

// Cluster groups PEs of identical type sharing one V/f domain.
type Cluster struct {
	ID       int
	Type     ResourceType
	PEIDs    []PEID

	OPP  []OPP
	DVFS DVFSMode

	PowerProfile   PowerProfile
	PGProfile      PowerProfile
	TripFreqMHz    []int // -1 entries mean "no cap" at that trip index
	DTPMTripFreqMHz []int

	CurrentFrequencyMHz int
	CurrentVoltageMV    int
	PolicyFrequencyMHz  int // desired frequency before any throttling cap
	CurrentPowerW       float64

	NumActiveCores int
	TotalCores     int

	// AvailableTimeUs is used by EFT-family schedulers as the PE's next
	// free slot estimate; kept per-cluster-PE in the scheduler state
	// instead, see pkg/scheduler.
}

// MaxFreqMHz returns the highest OPP frequency, or 0 if the cluster has none.
func (c *Cluster) MaxFreqMHz() int {
	if len(c.OPP) == 0 {
		return 0
	}
	return c.OPP[len(c.OPP)-1].FreqMHz
}

// MinFreqMHz returns the lowest OPP frequency, or 0 if the cluster has none.
func (c *Cluster) MinFreqMHz() int {
	if len(c.OPP) == 0 {
		return 0
	}
	return c.OPP[0].FreqMHz
}

// VoltageFor returns the voltage of the OPP matching freqMHz, and whether it
// was found.
func (c *Cluster) VoltageFor(freqMHz int) (int, bool) {
	for _, o := range c.OPP {
		if o.FreqMHz == freqMHz {
			return o.VoltMV, true
		}
	}
	return 0, false
}

// OPPIndex returns the index of the OPP matching freqMHz, or -1.
func (c *Cluster) OPPIndex(freqMHz int) int {
	for i, o := range c.OPP {
		if o.FreqMHz == freqMHz {
			return i
		}
	}
	return -1
}

// BandwidthMatrix is a square, symmetric matrix of link bandwidths, one row
// per PE; the memory PE is conventionally the last index.
type BandwidthMatrix [][]BitsPerUs

// Bandwidth returns the bandwidth between PE a and PE b.
func (m BandwidthMatrix) Bandwidth(a, b PEID) BitsPerUs {
	return m[a][b]
}
