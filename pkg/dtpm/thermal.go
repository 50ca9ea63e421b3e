package dtpm

import "github.com/dashsim/simcore/pkg/model"

// NumHotspots is the number of thermal sensors tracked by the analytic
// model: memory, GPU, and one per big/little/accelerator cluster slot.
const NumHotspots = 5

// aModel and the bModel* vectors are the Odroid XU3 board's calibrated
// thermal RC-network coefficients: aModel captures cross-hotspot thermal
// coupling, and each bModel vector is one power source's per-hotspot
// sensitivity.
var aModel = [NumHotspots][NumHotspots]float64{
	{0.9928, 0.000566, 0.004281, 0.0003725, 1.34e-5},
	{0.006084, 0.9909, 0, 0.001016, 8.863e-5},
	{0, 0.0008608, 0.993, 0, 0.0008842},
	{0.006844, -0.0005119, 0, 0.9904, 0.0003392},
	{0.0007488, 0.003932, 8.654e-5, 0.002473, 0.9905},
}

var (
	bModelBig    = [NumHotspots]float64{0.0471, 0.01265, 0.113, 0.01646, 0.01476}
	bModelLittle = [NumHotspots]float64{0.02399, 0, 0.02819, 0.007198, 0.03902}
	bModelMem    = [NumHotspots]float64{0.07423, 0, 0.6708, 0, 0.01404}
	bModelGPU    = [NumHotspots]float64{6.898e-7, 0.001971, 2.108e-6, 0.01682, 0.03811}
	bModelAcc    = [NumHotspots]float64{0, 0, 0, 0, 0}
)

const (
	// PowerMemW is the Odroid XU3 board's fixed memory controller power.
	PowerMemW = 0.0473
	// PowerGPUW is the Odroid XU3 board's fixed GPU power.
	PowerGPUW = 0.1201
)

// BModel returns the per-cluster B coefficient vector for the thermal
// model, selected by cluster type.
func BModel(t model.ResourceType) [NumHotspots]float64 {
	switch t {
	case model.TypeBig:
		return bModelBig
	case model.TypeLTL:
		return bModelLittle
	default:
		return bModelAcc
	}
}

// PredictTemperature advances the per-hotspot temperature vector one
// sampling period given the current temperatures, ambient temperature, and
// the instantaneous power draw of memory, GPU, and every non-memory
// cluster (in common.ClusterManager.cluster_list order).
func PredictTemperature(current [NumHotspots]float64, ambientC float64, memW, gpuW float64, clusterPowerW []float64, clusterTypes []model.ResourceType) [NumHotspots]float64 {
	powers := make([]float64, 0, 2+len(clusterPowerW))
	powers = append(powers, memW, gpuW)
	powers = append(powers, clusterPowerW...)

	bCols := make([][NumHotspots]float64, 0, len(powers))
	bCols = append(bCols, bModelMem, bModelGPU)
	for _, t := range clusterTypes {
		bCols = append(bCols, BModel(t))
	}

	var out [NumHotspots]float64
	for h := 0; h < NumHotspots; h++ {
		sum := 0.0
		for k := 0; k < NumHotspots; k++ {
			sum += aModel[h][k] * (current[k] - ambientC)
		}
		for i, p := range powers {
			sum += bCols[i][h] * p
		}
		out[h] = sum + ambientC
	}
	return out
}
