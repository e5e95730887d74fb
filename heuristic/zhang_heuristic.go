package heuristic

import "math"

// Zhang implements the iterative prefix-growth heuristic (spec §4.4.2),
// grounded on ZhangFixedWMS::applyGroupingHeuristic and ::groupLevels
// (original_source/src/ZhangClusteringAlgorithms/ZhangFixedWMS.cpp).
type Zhang struct {
	Overlap bool
	Plimit  bool
}

var _ GroupingHeuristic = (*Zhang)(nil)

type zhangBest struct {
	wait   float64
	run    float64
	leeway float64
}

// groupLevels grows the prefix [start, candidate] one level at a time
// while the giant guard and monotonicity hold, returning the best
// (wait, run, endLevel) found, or a whole-DAG fallback.
func (z *Zhang) groupLevels(snap Snapshot, estimate EstimateFunc, wait WaitFunc, start, end int) (zhangBest, int, error) {
	giant := true
	candidate := start

	best := zhangBest{wait: math.MaxFloat64, run: 0, leeway: 0}
	accepted := false

	for candidate < end {
		n := maxParallelism(snap, start, candidate)
		run, err := estimate(snap.Workflow.TasksInRange(start, candidate), n)
		if err != nil {
			return zhangBest{}, 0, err
		}
		waitTime, err := wait(n, run, snap.Now)
		if err != nil {
			return zhangBest{}, 0, err
		}

		leeway := 0.0
		if waitTime < snap.ParentRuntime {
			leeway = snap.ParentRuntime - waitTime
			for leeway > 1 {
				probe, err := wait(n, run+leeway/2, snap.Now)
				if err != nil {
					return zhangBest{}, 0, err
				}
				waitTime = probe
				if waitTime > snap.ParentRuntime {
					leeway /= 2.0
				} else {
					break
				}
			}
		}

		if giant {
			if waitTime > run {
				candidate++
				continue
			}
			giant = false
		}

		if (waitTime / run) > (best.wait / best.run) {
			break
		}

		best = zhangBest{wait: waitTime, run: run, leeway: leeway}
		accepted = true
		candidate++
	}

	if giant || !accepted {
		maxPar := maxParallelism(snap, start, end)
		runAll, err := estimate(snap.Workflow.TasksInRange(start, end), maxPar)
		if err != nil {
			return zhangBest{}, 0, err
		}
		waitAll, err := wait(maxPar, runAll, snap.Now)
		if err != nil {
			return zhangBest{}, 0, err
		}
		leewayAll := snap.ParentRuntime - waitAll
		if leewayAll < 0 {
			leewayAll = 0
		}
		return zhangBest{wait: waitAll, run: runAll, leeway: leewayAll}, end, nil
	}

	return best, candidate - 1, nil
}

// Decide implements GroupingHeuristic.
func (z *Zhang) Decide(snap Snapshot, estimate EstimateFunc, wait WaitFunc) (Decision, error) {
	s := snap.StartLevel
	lastLevel := snap.Workflow.NumLevels() - 1

	partial, partialEndLevel, err := z.groupLevels(snap, estimate, wait, s, lastLevel)
	if err != nil {
		return Decision{}, err
	}

	maxPar := maxParallelism(snap, s, lastLevel)
	runAll, err := estimate(snap.Workflow.TasksInRange(s, lastLevel), maxPar)
	if err != nil {
		return Decision{}, err
	}
	waitAll, err := wait(maxPar, runAll, snap.Now)
	if err != nil {
		return Decision{}, err
	}

	if partialEndLevel == lastLevel {
		if waitAll > 2*runAll {
			return Decision{Kind: Individual}, nil
		}
	}

	parallelism := maxParallelism(snap, s, partialEndLevel)
	return Decision{
		Kind:        Submit,
		StartLevel:  s,
		EndLevel:    partialEndLevel,
		Parallelism: parallelism,
		WalltimeSec: partial.run + partial.leeway,
	}, nil
}
