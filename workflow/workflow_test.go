package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func chainWorkflow() *Workflow {
	tasks := []*Task{
		{ID: "A", Flops: 100},
		{ID: "B", Flops: 100},
		{ID: "C", Flops: 100},
	}
	parents := map[string][]string{
		"A": nil,
		"B": {"A"},
		"C": {"B"},
	}
	return New(tasks, parents)
}

func fanOutWorkflow() *Workflow {
	tasks := []*Task{
		{ID: "root", Flops: 10},
		{ID: "a", Flops: 10},
		{ID: "b", Flops: 10},
	}
	parents := map[string][]string{
		"root": nil,
		"a":    {"root"},
		"b":    {"root"},
	}
	return New(tasks, parents)
}

func Test_New_AssignsChainLevels(t *testing.T) {
	w := chainWorkflow()
	assert.Equal(t, 3, w.NumLevels())
	assert.Equal(t, 0, w.Task("A").Level())
	assert.Equal(t, 1, w.Task("B").Level())
	assert.Equal(t, 2, w.Task("C").Level())
}

func Test_New_SiblingsShareLevel(t *testing.T) {
	w := fanOutWorkflow()
	assert.Equal(t, 2, w.NumLevels())
	level1 := w.TasksInLevel(1)
	assert.Len(t, level1, 2)
}

func Test_TasksInRange(t *testing.T) {
	w := chainWorkflow()
	tasks := w.TasksInRange(0, 1)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "A", tasks[0].ID)
	assert.Equal(t, "B", tasks[1].ID)
}

func Test_TasksInLevel_OutOfRange(t *testing.T) {
	w := chainWorkflow()
	assert.Nil(t, w.TasksInLevel(-1))
	assert.Nil(t, w.TasksInLevel(99))
}

func Test_ParentsAndChildren(t *testing.T) {
	w := fanOutWorkflow()
	children := w.Children("root")
	assert.Len(t, children, 2)
	parents := w.Parents("a")
	assert.Equal(t, []*Task{w.Task("root")}, parents)
}

func Test_IsDone(t *testing.T) {
	w := chainWorkflow()
	assert.False(t, w.IsDone())
	for _, id := range []string{"A", "B", "C"} {
		w.Task(id).State = Completed
	}
	assert.True(t, w.IsDone())
}

func Test_Validate(t *testing.T) {
	assert.Error(t, Validate(nil))
	assert.Error(t, Validate([]*Task{{ID: ""}}))
	assert.Error(t, Validate([]*Task{{ID: "a"}, {ID: "a"}}))
	assert.Error(t, Validate([]*Task{{ID: "a", Flops: -1}}))
	assert.NoError(t, Validate([]*Task{{ID: "a", Flops: 0}}))
}

func Test_State_String(t *testing.T) {
	assert.Equal(t, "Ready", Ready.String())
	assert.Equal(t, "Unknown", State(99).String())
}
