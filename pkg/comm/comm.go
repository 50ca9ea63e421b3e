// Package comm computes the communication delay a dependency edge imposes
// between two tasks, in either of the two wire models: direct PE-to-PE
// transfer, or a two-hop write-then-read through a shared memory PE.
package comm

import "github.com/dashsim/simcore/pkg/model"

// DirectLatencyUs returns the time to move vol bits from srcPE straight to
// dstPE, the cost model used when the run is configured for PE-to-PE
// communication.
func DirectLatencyUs(bw model.BandwidthMatrix, srcPE, dstPE model.PEID, vol model.Bits) float64 {
	return bw.Bandwidth(srcPE, dstPE).LatencyUs(vol)
}

// WriteBackLatencyUs returns the time for a completed task on srcPE to push
// its output to memPE, the first hop of the shared-memory cost model.
func WriteBackLatencyUs(bw model.BandwidthMatrix, srcPE, memPE model.PEID, vol model.Bits) float64 {
	return bw.Bandwidth(srcPE, memPE).LatencyUs(vol)
}

// ReadLatencyUs returns the time for a task about to run on dstPE to pull
// its input back from memPE, the second hop of the shared-memory cost
// model.
func ReadLatencyUs(bw model.BandwidthMatrix, memPE, dstPE model.PEID, vol model.Bits) float64 {
	return bw.Bandwidth(memPE, dstPE).LatencyUs(vol)
}
