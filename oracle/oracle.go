// Package oracle wraps the batch service's start-time-estimate API into the
// wait(parallelism, walltime, now) function the grouping heuristics need
// (spec §4.2), grounded on TestClusteringWMS::estimateWaitTime and
// ZhangFixedWMS's calls through ProxyWMS::estimateWaitTime.
package oracle

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/wrench-project/task-clustering-for-batch-simulator/batch"
	"github.com/wrench-project/task-clustering-for-batch-simulator/clustererrors"
)

// Adapter estimates queue wait time by probing batch.Service with a
// single-entry batch of a freshly-tagged configuration. Sequence is
// controller-scoped state (spec §9 "Globals vs. injected state": the
// original used a process-global counter; there is no genuine process-wide
// requirement, so it is owned here instead of being a package-level var).
type Adapter struct {
	Service  batch.Service
	Sequence int
}

// New constructs an Adapter around service with its sequence counter at zero.
func New(service batch.Service) *Adapter {
	return &Adapter{Service: service}
}

// EstimateWait returns max(0, predictedStart-now) for a probe job of the
// given parallelism and walltime (seconds), submitted as of now (simulated
// seconds). Fails with clustererrors.OracleUnavailable if the batch service
// call errors, or clustererrors.OracleInvalid if it returns a negative
// estimate (spec: "unschedulable").
func (a *Adapter) EstimateWait(parallelism int, walltimeSec float64, now float64) (float64, error) {
	a.Sequence++
	configID := fmt.Sprintf("probe_%d", a.Sequence)

	configs := []batch.JobConfig{{
		ID:           configID,
		Nodes:        parallelism,
		CoresPerNode: 1,
		WalltimeSec:  walltimeSec,
	}}

	estimates, err := a.Service.GetStartTimeEstimates(configs)
	if err != nil {
		return 0, clustererrors.Wrapf(err, clustererrors.OracleUnavailable,
			"could not obtain start time estimate for config %s", configID)
	}

	predictedStart, ok := estimates[configID]
	if !ok {
		return 0, clustererrors.New(
			fmt.Errorf("batch service returned no estimate for config %s", configID),
			clustererrors.OracleUnavailable)
	}
	if predictedStart < 0 {
		return 0, clustererrors.New(
			fmt.Errorf("oracle returned unschedulable (negative) estimate %v for config %s", predictedStart, configID),
			clustererrors.OracleInvalid)
	}

	wait := predictedStart - now
	if wait < 0 {
		wait = 0
	}
	log.WithFields(log.Fields{
		"configID": configID, "nodes": parallelism, "walltimeSec": walltimeSec, "wait": wait,
	}).Debug("estimated queue wait time")
	return wait, nil
}
