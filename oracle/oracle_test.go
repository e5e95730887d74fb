package oracle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrench-project/task-clustering-for-batch-simulator/batch"
	"github.com/wrench-project/task-clustering-for-batch-simulator/batch/batchfake"
	"github.com/wrench-project/task-clustering-for-batch-simulator/clustererrors"
)

func Test_EstimateWait_ZeroWaitWhenStartsNow(t *testing.T) {
	svc := batchfake.New(map[batch.HostId]float64{"h0": 1.0}, 4)
	svc.Now = func() float64 { return 100.0 }
	svc.StartEstimate = func(cfg batch.JobConfig) float64 { return 100.0 }

	a := New(svc)
	wait, err := a.EstimateWait(2, 60, 100.0)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, wait)
}

func Test_EstimateWait_PositiveWait(t *testing.T) {
	svc := batchfake.New(map[batch.HostId]float64{"h0": 1.0}, 4)
	svc.StartEstimate = func(cfg batch.JobConfig) float64 { return 150.0 }

	a := New(svc)
	wait, err := a.EstimateWait(2, 60, 100.0)
	assert.NoError(t, err)
	assert.Equal(t, 50.0, wait)
}

func Test_EstimateWait_NegativeEstimateIsOracleInvalid(t *testing.T) {
	svc := batchfake.New(map[batch.HostId]float64{"h0": 1.0}, 4)
	svc.StartEstimate = func(cfg batch.JobConfig) float64 { return -1.0 }

	a := New(svc)
	_, err := a.EstimateWait(2, 60, 100.0)
	assert.Error(t, err)
	assert.True(t, clustererrors.IsKind(err, clustererrors.OracleInvalid))
}

type failingService struct {
	*batchfake.Service
}

func (f *failingService) GetStartTimeEstimates(configs []batch.JobConfig) (map[string]float64, error) {
	return nil, errors.New("service unreachable")
}

func Test_EstimateWait_ServiceErrorIsOracleUnavailable(t *testing.T) {
	svc := &failingService{batchfake.New(nil, 4)}
	a := New(svc)
	_, err := a.EstimateWait(2, 60, 0)
	assert.Error(t, err)
	assert.True(t, clustererrors.IsKind(err, clustererrors.OracleUnavailable))
}

func Test_EstimateWait_SequenceIncreasesPerCall(t *testing.T) {
	svc := batchfake.New(map[batch.HostId]float64{"h0": 1.0}, 4)
	a := New(svc)
	assert.Equal(t, 0, a.Sequence)
	_, err := a.EstimateWait(1, 60, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, a.Sequence)
	_, err = a.EstimateWait(1, 60, 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, a.Sequence)
}
