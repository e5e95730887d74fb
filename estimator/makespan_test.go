package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrench-project/task-clustering-for-batch-simulator/clustererrors"
	"github.com/wrench-project/task-clustering-for-batch-simulator/workflow"
)

func Test_EstimateMakespan_EmptySet(t *testing.T) {
	m, err := EstimateMakespan(nil, 4, 1.0)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, m)
}

func Test_EstimateMakespan_ZeroHosts(t *testing.T) {
	tasks := []*workflow.Task{{ID: "a", Flops: 10}}
	_, err := EstimateMakespan(tasks, 0, 1.0)
	assert.Error(t, err)
	ce, ok := err.(*clustererrors.ClusterError)
	assert.True(t, ok)
	assert.Equal(t, clustererrors.InvalidArgument, ce.GetKind())
}

func Test_EstimateMakespan_SingleChain_OneHost(t *testing.T) {
	wf := workflow.New([]*workflow.Task{
		{ID: "A", Flops: 100},
		{ID: "B", Flops: 100},
		{ID: "C", Flops: 100},
	}, map[string][]string{
		"A": nil,
		"B": {"A"},
		"C": {"B"},
	})
	m, err := EstimateMakespan(wf.TasksInRange(0, 2), 1, 1.0)
	assert.NoError(t, err)
	assert.Equal(t, 300.0, m)
}

func Test_EstimateMakespan_SingleLevel_ParallelAcrossHosts(t *testing.T) {
	wf := workflow.New([]*workflow.Task{
		{ID: "a", Flops: 100},
		{ID: "b", Flops: 100},
		{ID: "c", Flops: 100},
		{ID: "d", Flops: 100},
	}, nil)
	m, err := EstimateMakespan(wf.TasksInLevel(0), 4, 1.0)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, m)
}

func Test_EstimateMakespan_MonotoneInHosts(t *testing.T) {
	wf := workflow.New([]*workflow.Task{
		{ID: "a", Flops: 100},
		{ID: "b", Flops: 100},
		{ID: "c", Flops: 100},
		{ID: "d", Flops: 100},
	}, nil)
	m1, err := EstimateMakespan(wf.TasksInLevel(0), 1, 1.0)
	assert.NoError(t, err)
	m2, err := EstimateMakespan(wf.TasksInLevel(0), 2, 1.0)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, m1, m2)
}

func Test_EstimateMakespan_Deterministic(t *testing.T) {
	wf := workflow.New([]*workflow.Task{
		{ID: "a", Flops: 30},
		{ID: "b", Flops: 70},
		{ID: "c", Flops: 10},
	}, nil)
	tasks := wf.TasksInLevel(0)
	m1, _ := EstimateMakespan(tasks, 2, 1.0)
	m2, _ := EstimateMakespan(tasks, 2, 1.0)
	assert.Equal(t, m1, m2)
}

func Test_EstimateMakespan_ParentOutsideSubsetTreatedComplete(t *testing.T) {
	wf := workflow.New([]*workflow.Task{
		{ID: "A", Flops: 100},
		{ID: "B", Flops: 50},
	}, map[string][]string{
		"A": nil,
		"B": {"A"},
	})
	// Only B is in the subset; A's completion is assumed, so B alone runs
	// for 50 seconds at coreSpeed=1.
	m, err := EstimateMakespan([]*workflow.Task{wf.Task("B")}, 1, 1.0)
	assert.NoError(t, err)
	assert.Equal(t, 50.0, m)
}
