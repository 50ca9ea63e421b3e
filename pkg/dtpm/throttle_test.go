package dtpm

import (
	"testing"

	"github.com/dashsim/simcore/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigCluster() *model.Cluster {
	return &model.Cluster{
		DVFS:                model.DVFSMode{Kind: model.DVFSPerformance},
		OPP:                 []model.OPP{{FreqMHz: 1000}, {FreqMHz: 2000}},
		TripFreqMHz:         []int{1500, 1000},
		DTPMTripFreqMHz:     []int{1800, 1200},
		CurrentFrequencyMHz: 2000,
	}
}

func TestThrottleEngagesAtTripPoint(t *testing.T) {
	c := bigCluster()
	s := NewThrottleState()
	desired := []int{2000}
	capped := s.Evaluate(80, []float64{70, 90}, []float64{5, 5}, []*model.Cluster{c}, TrackRegular, desired)
	require.Equal(t, 0, s.TripPoint)
	assert.Equal(t, 1500, capped[0])
}

func TestThrottleEscalatesToSecondTripPoint(t *testing.T) {
	c := bigCluster()
	s := NewThrottleState()
	capped := s.Evaluate(80, []float64{70, 90}, []float64{5, 5}, []*model.Cluster{c}, TrackRegular, []int{2000})
	require.Equal(t, 0, s.TripPoint)
	// Desired is re-derived from the now-capped cluster state each cycle.
	capped = s.Evaluate(95, []float64{70, 90}, []float64{5, 5}, []*model.Cluster{c}, TrackRegular, capped)
	assert.Equal(t, 1, s.TripPoint)
	assert.Equal(t, 1000, capped[0])
}

func TestThrottleRecoversWithHysteresis(t *testing.T) {
	c := bigCluster()
	s := NewThrottleState()
	capped := s.Evaluate(80, []float64{70, 90}, []float64{5, 5}, []*model.Cluster{c}, TrackRegular, []int{2000})
	require.Equal(t, 0, s.TripPoint)

	// Temperature dropped below trip_temp but not below trip_temp-hysteresis: stays throttled.
	capped = s.Evaluate(68, []float64{70, 90}, []float64{5, 5}, []*model.Cluster{c}, TrackRegular, capped)
	assert.Equal(t, 0, s.TripPoint)
	assert.Equal(t, 1500, capped[0])

	// Now below trip_temp - hysteresis: recovers, restoring the input frequency.
	capped = s.Evaluate(60, []float64{70, 90}, []float64{5, 5}, []*model.Cluster{c}, TrackRegular, []int{2000})
	assert.Equal(t, -1, s.TripPoint)
	assert.Equal(t, 2000, capped[0])
}

func TestDTPMTrackIsIndependentOfRegular(t *testing.T) {
	c := bigCluster()
	reg := NewThrottleState()
	dt := NewThrottleState()
	reg.Evaluate(80, []float64{70, 90}, []float64{5, 5}, []*model.Cluster{c}, TrackRegular, []int{2000})
	cappedDTPM := dt.Evaluate(72, []float64{75, 95}, []float64{5, 5}, []*model.Cluster{c}, TrackDTPM, []int{2000})
	assert.Equal(t, 0, reg.TripPoint)
	assert.Equal(t, -1, dt.TripPoint)
	assert.Equal(t, 2000, cappedDTPM[0])
}
