package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrench-project/task-clustering-for-batch-simulator/workflow"
)

func Test_New_SnapshotExcludesAlreadyCompleted(t *testing.T) {
	tasks := []*workflow.Task{
		{ID: "a", State: workflow.Completed},
		{ID: "b", State: workflow.Ready},
		{ID: "c", State: workflow.NotReady},
	}
	j := New(Range{Start: 0, End: 1}, 2, 120, tasks)
	assert.Len(t, j.Tasks, 2)
	assert.True(t, j.HasTask("b"))
	assert.True(t, j.HasTask("c"))
	assert.False(t, j.HasTask("a"))
	assert.NotEmpty(t, j.ID)
}

func Test_New_DoesNotStartUnsubmitted(t *testing.T) {
	j := New(Range{Start: 0, End: 0}, 1, 60, nil)
	assert.False(t, j.Started())
	assert.Empty(t, j.PilotHandle)
}

func Test_OnStart_RecordsHandle(t *testing.T) {
	j := New(Range{Start: 0, End: 0}, 1, 60, nil)
	j.OnStart("job-1")
	assert.True(t, j.Started())
	assert.EqualValues(t, "job-1", j.PilotHandle)
}

func Test_OnTaskStartAndComplete_TracksRunningCount(t *testing.T) {
	tasks := []*workflow.Task{{ID: "a"}, {ID: "b"}}
	j := New(Range{Start: 0, End: 0}, 2, 60, tasks)
	j.OnTaskStart("a")
	j.OnTaskStart("b")
	assert.Equal(t, 2, j.NumRunning)
	j.OnTaskComplete("a")
	assert.Equal(t, 1, j.NumRunning)
}

func Test_OnTaskComplete_NeverGoesNegative(t *testing.T) {
	j := New(Range{Start: 0, End: 0}, 1, 60, nil)
	j.OnTaskComplete("ghost")
	assert.Equal(t, 0, j.NumRunning)
}

func Test_AllDone_FalseUntilEveryTaskCompletes(t *testing.T) {
	a := &workflow.Task{ID: "a", State: workflow.Ready}
	b := &workflow.Task{ID: "b", State: workflow.Ready}
	j := New(Range{Start: 0, End: 0}, 2, 60, []*workflow.Task{a, b})
	assert.False(t, j.AllDone())
	a.State = workflow.Completed
	assert.False(t, j.AllDone())
	b.State = workflow.Completed
	assert.True(t, j.AllDone())
}

func Test_RemainingTasks_ExcludesCompleted(t *testing.T) {
	a := &workflow.Task{ID: "a", State: workflow.Completed}
	b := &workflow.Task{ID: "b", State: workflow.Running}
	j := New(Range{Start: 0, End: 0}, 2, 60, []*workflow.Task{a, b})
	remaining := j.RemainingTasks()
	assert.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].ID)
}

func Test_Range_String(t *testing.T) {
	assert.Equal(t, "[2,4]", Range{Start: 2, End: 4}.String())
}
