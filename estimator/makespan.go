// Package estimator implements the makespan estimator (spec §4.1), a
// deterministic list-scheduling simulation over a task subset. It is
// grounded directly on WorkflowUtil::estimateMakespan
// (original_source/src/WorkflowUtil/WorkflowUtil.cpp): insertion-order task
// tie-break, lowest-host-index tie-break, tasks whose parents lie outside
// the subset are treated as already complete.
package estimator

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/wrench-project/task-clustering-for-batch-simulator/clustererrors"
	"github.com/wrench-project/task-clustering-for-batch-simulator/workflow"
)

const unscheduled = -1.0

// EstimateMakespan estimates the completion time (in simulated seconds) of
// tasks given nHosts identical nodes running at coreSpeed flops/sec,
// honoring dependencies among tasks that are themselves in the subset.
// Parents not present in tasks are assumed already complete. Returns 0 for
// an empty task set; returns *clustererrors.ClusterError{Kind:
// InvalidArgument} if nHosts == 0.
func EstimateMakespan(tasks []*workflow.Task, nHosts int, coreSpeed float64) (float64, error) {
	if nHosts == 0 {
		return 0, clustererrors.New(
			fmt.Errorf("cannot estimate makespan with 0 hosts"), clustererrors.InvalidArgument)
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	inSubset := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		inSubset[t.ID] = true
	}

	idle := make([]float64, nHosts)
	completion := make([]float64, len(tasks))
	for i := range completion {
		completion[i] = unscheduled
	}
	indexOf := make(map[string]int, len(tasks))
	for i, t := range tasks {
		indexOf[t.ID] = i
	}

	numScheduled := 0
	current := 0.0

	for numScheduled < len(tasks) {
		scheduledSomething := false

		for i, t := range tasks {
			if completion[i] >= 0 {
				continue
			}

			schedulable := true
			for _, p := range t.ParentIDs() {
				j, ok := indexOf[p]
				if !ok {
					continue // parent outside subset: treated as already complete
				}
				if completion[j] < 0 || completion[j] > current {
					schedulable = false
					break
				}
			}
			if !schedulable {
				continue
			}

			for h := 0; h < nHosts; h++ {
				if idle[h] <= current {
					finish := current + t.Flops/coreSpeed
					completion[i] = finish
					idle[h] = finish
					scheduledSomething = true
					numScheduled++
					break
				}
			}
		}

		if scheduledSomething {
			minIdle := math.MaxFloat64
			for _, v := range idle {
				if v < minIdle {
					minIdle = v
				}
			}
			current = minIdle
		} else {
			nextEvent := math.MaxFloat64
			for _, v := range idle {
				if v > current && v < nextEvent {
					nextEvent = v
				}
			}
			if nextEvent == math.MaxFloat64 {
				// Defensive: every remaining task is unschedulable and no
				// host ever frees up again. Cannot happen for a valid DAG
				// subset, since the estimator's own hosts start idle at 0.
				log.WithFields(log.Fields{"numScheduled": numScheduled, "numTasks": len(tasks)}).
					Error("estimator: stalled with no schedulable task and no pending host")
				break
			}
			current = nextEvent
		}
	}

	makespan := 0.0
	for _, v := range idle {
		if v > makespan {
			makespan = v
		}
	}
	return makespan, nil
}
