// Package heuristic implements the two interchangeable grouping strategies
// (spec §4.4): given a DAG snapshot, a makespan estimator and a wait-time
// oracle (both injected as pure functions, following task_scheduler.go's
// "pure fn so callers can apply results as a second step" style), decide
// whether to submit a placeholder pilot job covering a level range, switch
// to individual mode, or do nothing this tick. Grounded on
// scheduler/server/scheduler.go's SchedulingAlgorithm interface: one small
// capability, selected once at controller construction, no plugin registry.
package heuristic

import (
	"github.com/wrench-project/task-clustering-for-batch-simulator/workflow"
)

// ExecFudge inflates a requested walltime over its estimated makespan. It is
// applied at most once per walltime: by Test.Decide when it builds a Submit
// decision, and by the controller for individual-mode standard jobs. Zhang's
// Submit walltime is run plus leeway and is not multiplied by ExecFudge.
const ExecFudge = 1.10

// Kind tags the variant a Decision holds.
type Kind int

const (
	// Submit requests a new placeholder pilot job.
	Submit Kind = iota
	// Individual switches the controller to one-job-per-task mode.
	Individual
	// Idle means no action should be taken this tick.
	Idle
)

func (k Kind) String() string {
	switch k {
	case Submit:
		return "Submit"
	case Individual:
		return "Individual"
	case Idle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Decision is what a GroupingHeuristic returns at a decision point. Only
// the fields relevant to Kind are meaningful: a Submit decision carries
// StartLevel/EndLevel/Parallelism/WalltimeSec, the others carry none.
type Decision struct {
	Kind        Kind
	StartLevel  int
	EndLevel    int
	Parallelism int
	WalltimeSec float64
}

// EstimateFunc estimates the makespan of tasks on nHosts identical nodes.
// Bound to estimator.EstimateMakespan by the controller; injected here so
// heuristics stay pure and testable without a real estimator.
type EstimateFunc func(tasks []*workflow.Task, nHosts int) (float64, error)

// WaitFunc estimates queue wait time for a probe job. Bound to
// (*oracle.Adapter).EstimateWait by the controller.
type WaitFunc func(parallelism int, walltimeSec float64, now float64) (float64, error)

// Snapshot is the read-only view of controller state a heuristic needs to
// make one decision. StartLevel is computed by the controller (spec §3:
// "derived quantity, not stored").
type Snapshot struct {
	Workflow      *workflow.Workflow
	StartLevel    int
	NumHosts      int
	CoreSpeed     float64
	Now           float64
	ParentRuntime float64
}

// GroupingHeuristic is the shared contract both Test and Zhang implement.
type GroupingHeuristic interface {
	Decide(snap Snapshot, estimate EstimateFunc, wait WaitFunc) (Decision, error)
}

// maxParallelism returns the host count a placeholder covering [lo, hi]
// should request: the widest level in the range, capped by NumHosts.
func maxParallelism(snap Snapshot, lo, hi int) int {
	max := 0
	for l := lo; l <= hi; l++ {
		if n := len(snap.Workflow.TasksInLevel(l)); n > max {
			max = n
		}
	}
	if max > snap.NumHosts {
		return snap.NumHosts
	}
	return max
}

// findMaxTasks is maxParallelism without the host-count cap, used to bound
// the Test heuristic's per-n search.
func findMaxTasks(snap Snapshot, lo, hi int) int {
	max := 0
	for l := lo; l <= hi; l++ {
		if n := len(snap.Workflow.TasksInLevel(l)); n > max {
			max = n
		}
	}
	return max
}
