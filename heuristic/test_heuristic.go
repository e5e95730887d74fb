package heuristic

import (
	"fmt"

	"github.com/wrench-project/task-clustering-for-batch-simulator/clustererrors"
)

// Test implements the two-way split heuristic (spec §4.4.1), grounded on
// TestClusteringWMS::applyGroupingHeuristic and ::computeBestNumHosts
// (original_source/src/TestClusteringAlgorithm/TestClusteringWMS.cpp).
// WasteBound and BeatBound are this heuristic's own parameters; Plimit is
// accepted but unused (spec §9: reserved, a no-op in the source).
type Test struct {
	WasteBound float64
	BeatBound  float64
	Overlap    bool
	Plimit     bool
}

var _ GroupingHeuristic = (*Test)(nil)

// triple is (wait, makespan, parallelism), the return shape of
// computeBestNumHosts in the original source.
type triple struct {
	wait        float64
	makespan    float64
	parallelism int
}

// computeBestNumHosts searches n in [1, findMaxTasks(a,b)] for the n that
// minimizes wait+makespan, rejecting any n whose wasted-node-time ratio
// exceeds WasteBound.
func (h *Test) computeBestNumHosts(snap Snapshot, estimate EstimateFunc, wait WaitFunc, a, b int) (triple, error) {
	maxTasks := findMaxTasks(snap, a, b)
	if maxTasks == 0 {
		return triple{}, clustererrors.New(
			fmt.Errorf("no host counts to search for levels [%d,%d]", a, b), clustererrors.InvalidArgument)
	}
	best := triple{wait: -1, makespan: -1, parallelism: 1}

	var serialWork float64
	for l := a; l <= b; l++ {
		m, err := estimate(snap.Workflow.TasksInLevel(l), 1)
		if err != nil {
			return triple{}, err
		}
		serialWork += m
	}

	for n := 1; n <= maxTasks; n++ {
		makespan, err := estimate(snap.Workflow.TasksInRange(a, b), n)
		if err != nil {
			return triple{}, err
		}
		waitTime, err := wait(n, makespan, snap.Now)
		if err != nil {
			return triple{}, err
		}

		waste := (float64(n)*makespan - serialWork) / (float64(n) * makespan)
		if waste > h.WasteBound {
			continue
		}

		if best.makespan < 0 || (best.wait+best.makespan) > (waitTime+makespan) {
			best = triple{wait: waitTime, makespan: makespan, parallelism: n}
		}
	}
	return best, nil
}

// Decide implements GroupingHeuristic.
func (h *Test) Decide(snap Snapshot, estimate EstimateFunc, wait WaitFunc) (Decision, error) {
	s := snap.StartLevel
	numLevels := snap.Workflow.NumLevels()
	lastLevel := numLevels - 1

	prefixEstimates := make([]triple, numLevels)
	suffixEstimates := make([]triple, numLevels)
	for i := s; i < numLevels; i++ {
		t, err := h.computeBestNumHosts(snap, estimate, wait, s, i)
		if err != nil {
			return Decision{}, err
		}
		prefixEstimates[i] = t
	}
	for i := s; i < numLevels; i++ {
		t, err := h.computeBestNumHosts(snap, estimate, wait, i, lastLevel)
		if err != nil {
			return Decision{}, err
		}
		suffixEstimates[i] = t
	}

	entireWorkflow := suffixEstimates[s]
	requestedParallelism := entireWorkflow.parallelism
	waitAll := entireWorkflow.wait
	runAll := entireWorkflow.makespan
	best := waitAll + runAll

	partialEnd := lastLevel
	chosenWait := waitAll
	chosenRun := runAll

	for i := s; i < lastLevel; i++ {
		startToSplit := prefixEstimates[i]
		rest := suffixEstimates[i+1]
		waitOne, runOne := startToSplit.wait, startToSplit.makespan
		waitTwo, runTwo := rest.wait, rest.makespan

		leeway := runOne - waitTwo
		if leeway > 0 {
			if leeway > runTwo*0.10 {
				// Leeway rule rejects this split; spec §9 preserves the
				// source's behavior of leaving partialEnd unchanged rather
				// than recording a rejected candidate.
				continue
			}
		} else {
			leeway = 0
		}

		total := waitOne + max(runOne, waitTwo) + runTwo + leeway

		var adjusted float64
		if partialEnd == lastLevel {
			adjusted = total * (1 + h.BeatBound)
		} else {
			adjusted = total
		}

		if adjusted < best {
			partialEnd = i
			best = total
			requestedParallelism = startToSplit.parallelism
			chosenWait = waitOne
			chosenRun = runOne
		}
	}

	if partialEnd == lastLevel && waitAll > 2*runAll {
		return Decision{Kind: Individual}, nil
	}

	walltime := chosenRun
	if snap.ParentRuntime > chosenWait {
		walltime += snap.ParentRuntime - chosenWait
	}
	walltime *= ExecFudge

	return Decision{
		Kind:        Submit,
		StartLevel:  s,
		EndLevel:    partialEnd,
		Parallelism: requestedParallelism,
		WalltimeSec: walltime,
	}, nil
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
