// Package placeholder models the pilot batch job a Submit decision produces:
// a reserved block of nodes covering a contiguous DAG level range, tracked
// from submission through expiration. Grounded on scheduler/server/job_state's
// jobState (a struct-of-slices-by-status bookkeeping a set of tasks as they
// start and complete) and on
// original_source/src/StaticClusteringAlgorithms/ClusteredJob.cpp's
// addTask/isTaskOK/isReady/estimateMakespan methods, generalized from a
// single flat task list to a level range plus RequestedNodes/WalltimeSec.
package placeholder

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"github.com/wrench-project/task-clustering-for-batch-simulator/batch"
	"github.com/wrench-project/task-clustering-for-batch-simulator/workflow"
)

// Range is the inclusive [Start, End] span of DAG top levels a placeholder
// was submitted to cover.
type Range struct {
	Start int
	End   int
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// Job is a submitted (or about-to-be-submitted) pilot batch job. ID is an
// internal correlation id, assigned at construction time, before the batch
// service hands back a PilotHandle; it lets the controller refer to a
// placeholder in logs and tests before submission completes. PilotHandle is
// the zero value after New; the controller sets it as soon as SubmitJob
// returns, and OnStart sets it again when the pilot starts.
type Job struct {
	ID         string
	PilotHandle batch.JobHandle

	Range                Range
	RequestedNodes       int
	RequestedWalltimeSec float64

	// Tasks is the ordered snapshot of tasks the placeholder was submitted
	// to cover: every task in Range that was not yet Completed at
	// submission time (spec §3's tasks = ⋃ tasksInLevel(l) ∩
	// {not yet COMPLETED}). Later-arriving siblings of the same levels are
	// never added; the snapshot is fixed at submission.
	Tasks []*workflow.Task

	NumRunning int
	started    bool
}

// New constructs a Job for the given level range and requested resources,
// snapshotting tasks as the not-yet-completed tasks in that range. It does
// not submit anything to a batch.Service; the caller does that, records the
// returned handle in PilotHandle, and calls OnStart once the pilot starts.
func New(r Range, requestedNodes int, requestedWalltimeSec float64, tasks []*workflow.Task) *Job {
	snapshot := make([]*workflow.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.State != workflow.Completed {
			snapshot = append(snapshot, t)
		}
	}
	return &Job{
		ID:                   uuid.New().String(),
		Range:                r,
		RequestedNodes:       requestedNodes,
		RequestedWalltimeSec: requestedWalltimeSec,
		Tasks:                snapshot,
	}
}

// OnStart records that the batch service has actually started the pilot
// under handle. Called exactly once, from the controller's
// PilotJobStartedEvent handler.
func (j *Job) OnStart(handle batch.JobHandle) {
	j.PilotHandle = handle
	j.started = true
}

// Started reports whether OnStart has been called yet.
func (j *Job) Started() bool {
	return j.started
}

// HasTask reports whether taskID is part of this placeholder's snapshot.
func (j *Job) HasTask(taskID string) bool {
	for _, t := range j.Tasks {
		if t.ID == taskID {
			return true
		}
	}
	return false
}

// OnTaskStart records that one of this placeholder's tasks has begun
// running inside its reservation. Callers must not exceed RequestedNodes
// concurrently running tasks; the controller enforces that before dispatch.
func (j *Job) OnTaskStart(taskID string) {
	j.NumRunning++
}

// OnTaskComplete records that a running task inside this placeholder has
// finished, freeing one of its reserved slots.
func (j *Job) OnTaskComplete(taskID string) {
	if j.NumRunning > 0 {
		j.NumRunning--
	}
}

// AllDone reports whether every task in the snapshot has reached Completed.
func (j *Job) AllDone() bool {
	for _, t := range j.Tasks {
		if t.State != workflow.Completed {
			return false
		}
	}
	return true
}

// RemainingTasks returns the snapshot tasks that have not yet completed.
// Used by the controller to detect a pilot expiring with work still left
// (spec's NumPilotExpirationsWithRemainingTasks metric).
func (j *Job) RemainingTasks() []*workflow.Task {
	var remaining []*workflow.Task
	for _, t := range j.Tasks {
		if t.State != workflow.Completed {
			remaining = append(remaining, t)
		}
	}
	return remaining
}

func (j *Job) String() string {
	return fmt.Sprintf("Job{id:%s, pilot:%s, range:%s, nodes:%d, walltimeSec:%.2f, running:%d/%d, tasks:%s}",
		j.ID, j.PilotHandle, j.Range, j.RequestedNodes, j.RequestedWalltimeSec, j.NumRunning, len(j.Tasks), spew.Sdump(j.Tasks))
}
