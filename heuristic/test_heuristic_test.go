package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrench-project/task-clustering-for-batch-simulator/workflow"
)

func chainSnapshot() (Snapshot, *workflow.Workflow) {
	wf := workflow.New([]*workflow.Task{
		{ID: "A", Flops: 10},
		{ID: "B", Flops: 10},
		{ID: "C", Flops: 10},
	}, map[string][]string{
		"A": nil,
		"B": {"A"},
		"C": {"B"},
	})
	return Snapshot{Workflow: wf, StartLevel: 0, NumHosts: 4, CoreSpeed: 1}, wf
}

// sumFlopsEstimate ignores dependencies and just sums the flops of the
// given tasks divided by n, giving a fully predictable makespan for tests.
func sumFlopsEstimate(tasks []*workflow.Task, n int) (float64, error) {
	var total float64
	for _, t := range tasks {
		total += t.Flops
	}
	return total / float64(n), nil
}

func constantWait(w float64) WaitFunc {
	return func(parallelism int, walltimeSec float64, now float64) (float64, error) {
		return w, nil
	}
}

func Test_Test_Decide_SwitchesToIndividualWhenWaitDominates(t *testing.T) {
	snap, _ := chainSnapshot()
	h := &Test{WasteBound: 1.0, BeatBound: 0}
	decision, err := h.Decide(snap, sumFlopsEstimate, constantWait(1000))
	assert.NoError(t, err)
	assert.Equal(t, Individual, decision.Kind)
}

func Test_Test_Decide_SubmitsWholeDAGWhenNoSplitBeatsIt(t *testing.T) {
	snap, _ := chainSnapshot()
	h := &Test{WasteBound: 1.0, BeatBound: 0}
	decision, err := h.Decide(snap, sumFlopsEstimate, constantWait(0))
	assert.NoError(t, err)
	assert.Equal(t, Submit, decision.Kind)
	assert.Equal(t, 0, decision.StartLevel)
	assert.Equal(t, 2, decision.EndLevel)
	assert.Equal(t, 1, decision.Parallelism)
	assert.InDelta(t, 30*ExecFudge, decision.WalltimeSec, 0.001)
}

func Test_Test_Decide_AddsParentRuntimeLeewayOnlyWhenItExceedsChosenWait(t *testing.T) {
	snap, _ := chainSnapshot()
	snap.ParentRuntime = 100
	h := &Test{WasteBound: 1.0, BeatBound: 0}
	decision, err := h.Decide(snap, sumFlopsEstimate, constantWait(0))
	assert.NoError(t, err)
	assert.Equal(t, Submit, decision.Kind)
	assert.InDelta(t, (30+100)*ExecFudge, decision.WalltimeSec, 0.001)
}

func Test_Test_ComputeBestNumHosts_RejectsHighWasteRatio(t *testing.T) {
	wf := workflow.New([]*workflow.Task{
		{ID: "a", Flops: 10},
		{ID: "b", Flops: 10},
		{ID: "c", Flops: 10},
	}, nil)
	snap := Snapshot{Workflow: wf, NumHosts: 4}
	h := &Test{WasteBound: 0.3}
	// A makespan that doesn't shrink with more hosts makes extra hosts pure
	// waste: waste(n) = 1 - 1/n, so only n=1 clears a 0.3 bound.
	constantEstimate := func(tasks []*workflow.Task, n int) (float64, error) {
		return 20, nil
	}
	best, err := h.computeBestNumHosts(snap, constantEstimate, constantWait(0), 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, best.parallelism)
}
