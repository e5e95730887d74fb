// Package workflow provides definitions for the leveled task DAG the
// grouping engine decides how to submit, adapted from scheduler/domain's
// Job/Task definitions (immutable identity, a mutable Status, the
// Validate* free functions) with the thrift-serialization round trip and
// the job-queue priority model dropped: a workflow here is a single,
// already-loaded, read-only DAG, not a stream of submitted jobs.
package workflow

import "fmt"

// State is the lifecycle state of a single Task.
type State int

const (
	// NotReady: one or more parents have not yet completed.
	NotReady State = iota
	// Ready: all parents completed, task may be dispatched.
	Ready
	// Pending: dispatched to the batch service, not yet started.
	Pending
	// Running: started on a compute resource.
	Running
	// Completed: finished successfully.
	Completed
	// Failed: finished unsuccessfully. Tasks do not retry in this model.
	Failed
)

func (s State) String() string {
	asString := [...]string{"NotReady", "Ready", "Pending", "Running", "Completed", "Failed"}
	if int(s) < 0 || int(s) >= len(asString) {
		return "Unknown"
	}
	return asString[s]
}

// Task is one node of the workflow DAG. Identity and Flops are immutable
// once constructed; State and StartTime mutate as the external simulation
// delivers events. A Task is referenced, never owned, by placeholder jobs.
type Task struct {
	ID    string
	Flops float64

	State     State
	StartTime float64 // simulated seconds; valid once State != NotReady/Ready

	level int

	parents  []string
	children []string
}

// Level returns the task's top level: 1 + max(level(p) for p in parents),
// root level 0.
func (t *Task) Level() int {
	return t.level
}

// ParentIDs returns the ids of t's parent tasks within the workflow.
func (t *Task) ParentIDs() []string {
	return t.parents
}

// ChildIDs returns the ids of t's child tasks within the workflow.
func (t *Task) ChildIDs() []string {
	return t.children
}

func (t *Task) String() string {
	return fmt.Sprintf("Task{id:%s, flops:%.2f, state:%s, level:%d}", t.ID, t.Flops, t.State, t.level)
}

// Workflow is an immutable DAG of tasks, partitioned into top levels.
// Levels are computed once at construction and are stable for the run; the
// loader that builds a Workflow is out of scope for this module (spec §1).
type Workflow struct {
	tasks      map[string]*Task
	order      []string   // insertion order, preserved for tie-stable iteration
	levels     [][]string // levels[i] = task ids at top level i, in insertion order
	numLevels  int
	parentsOf  map[string][]string
	childrenOf map[string][]string
}

// New builds a Workflow from tasks (in insertion order) and a parent edge
// list keyed by task id. Levels are derived, not supplied, matching spec §3
// ("level(v) = 1 + max(level(p) for p in parents(v)), root level = 0").
func New(taskList []*Task, parentsOf map[string][]string) *Workflow {
	w := &Workflow{
		tasks:      make(map[string]*Task, len(taskList)),
		order:      make([]string, 0, len(taskList)),
		parentsOf:  map[string][]string{},
		childrenOf: map[string][]string{},
	}
	for _, t := range taskList {
		w.tasks[t.ID] = t
		w.order = append(w.order, t.ID)
	}
	for id, parents := range parentsOf {
		cp := append([]string(nil), parents...)
		w.parentsOf[id] = cp
		for _, p := range cp {
			w.childrenOf[p] = append(w.childrenOf[p], id)
		}
	}
	w.assignLevels()
	return w
}

func (w *Workflow) assignLevels() {
	memo := make(map[string]int, len(w.order))
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if lv, ok := memo[id]; ok {
			return lv
		}
		parents := w.parentsOf[id]
		if len(parents) == 0 {
			memo[id] = 0
			return 0
		}
		maxParentLevel := -1
		for _, p := range parents {
			if pl := levelOf(p); pl > maxParentLevel {
				maxParentLevel = pl
			}
		}
		lv := 1 + maxParentLevel
		memo[id] = lv
		return lv
	}

	maxLevel := -1
	for _, id := range w.order {
		lv := levelOf(id)
		w.tasks[id].level = lv
		w.tasks[id].parents = w.parentsOf[id]
		w.tasks[id].children = w.childrenOf[id]
		if lv > maxLevel {
			maxLevel = lv
		}
	}
	w.numLevels = maxLevel + 1
	w.levels = make([][]string, w.numLevels)
	for _, id := range w.order {
		lv := w.tasks[id].level
		w.levels[lv] = append(w.levels[lv], id)
	}
}

// NumLevels returns the number of distinct top levels in the workflow.
func (w *Workflow) NumLevels() int {
	return w.numLevels
}

// Task looks up a task by id.
func (w *Workflow) Task(id string) *Task {
	return w.tasks[id]
}

// TasksInLevel returns the tasks at top level i, in insertion order. Returns
// nil if i is out of range.
func (w *Workflow) TasksInLevel(i int) []*Task {
	if i < 0 || i >= w.numLevels {
		return nil
	}
	return w.tasksFor(w.levels[i])
}

// TasksInRange returns the tasks at top levels [lo, hi], inclusive, in
// level-then-insertion order.
func (w *Workflow) TasksInRange(lo, hi int) []*Task {
	var result []*Task
	for l := lo; l <= hi && l < w.numLevels; l++ {
		if l < 0 {
			continue
		}
		result = append(result, w.tasksFor(w.levels[l])...)
	}
	return result
}

func (w *Workflow) tasksFor(ids []string) []*Task {
	result := make([]*Task, 0, len(ids))
	for _, id := range ids {
		result = append(result, w.tasks[id])
	}
	return result
}

// Parents returns the parent tasks of v.
func (w *Workflow) Parents(v string) []*Task {
	return w.tasksFor(w.parentsOf[v])
}

// Children returns the child tasks of v.
func (w *Workflow) Children(v string) []*Task {
	return w.tasksFor(w.childrenOf[v])
}

// IsDone reports whether every task in the workflow has completed.
func (w *Workflow) IsDone() bool {
	for _, id := range w.order {
		if w.tasks[id].State != Completed {
			return false
		}
	}
	return true
}

// Validate mirrors scheduler/domain's ValidateJob: a workflow must have at
// least one task, and every task must carry a non-empty id.
func Validate(taskList []*Task) error {
	if len(taskList) == 0 {
		return fmt.Errorf("invalid workflow: must have at least 1 task; was empty")
	}
	seen := make(map[string]bool, len(taskList))
	for _, t := range taskList {
		if t.ID == "" {
			return fmt.Errorf("invalid task id \"\"")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
		if t.Flops < 0 {
			return fmt.Errorf("invalid task %q: flops must be >= 0; was %v", t.ID, t.Flops)
		}
	}
	return nil
}
