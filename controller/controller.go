// Package controller runs the main decision loop (spec §4.5): computes the
// current start level, invokes the configured grouping heuristic at each
// decision point, submits and tracks placeholder pilot jobs, dispatches
// tasks into them (or individually, once individual mode latches), and
// accounts resource waste. Grounded on stateful_scheduler.go's step-driven
// event loop and cluster_state.go's bookkeeping style, generalized from
// worker/node membership to pilot-job lifecycle.
package controller

import (
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/wrench-project/task-clustering-for-batch-simulator/batch"
	"github.com/wrench-project/task-clustering-for-batch-simulator/clustererrors"
	"github.com/wrench-project/task-clustering-for-batch-simulator/common/stats"
	"github.com/wrench-project/task-clustering-for-batch-simulator/estimator"
	"github.com/wrench-project/task-clustering-for-batch-simulator/heuristic"
	"github.com/wrench-project/task-clustering-for-batch-simulator/metrics"
	"github.com/wrench-project/task-clustering-for-batch-simulator/oracle"
	"github.com/wrench-project/task-clustering-for-batch-simulator/placeholder"
	"github.com/wrench-project/task-clustering-for-batch-simulator/workflow"
)

// Controller owns the workflow's placeholder sets and drives the decision
// loop against a batch.Service and batch.EventSource. Both collaborators,
// and the workflow itself, are supplied by the (out-of-scope) caller that
// wires up the discrete-event simulation.
type Controller struct {
	workflow *workflow.Workflow
	service  batch.Service
	events   batch.EventSource
	heur     heuristic.GroupingHeuristic
	oracle   *oracle.Adapter
	metrics  *metrics.Collector
	config   Config

	coreSpeed float64
	numHosts  int

	pending        *placeholder.Job
	running        map[batch.JobHandle]*placeholder.Job
	individualMode bool

	// parentRuntime is the Test heuristic's scalar (spec §3, §4.4.1): the
	// walltime of the most recently submitted placeholder. Zhang uses a
	// different quantity entirely (spec §4.4.2 step 1), computed fresh from
	// c.running by parentRuntimeFor instead of read from this field.
	parentRuntime float64
}

// New constructs a Controller for wf, reading core speed and host count
// from service once at startup (spec §4's "controller reads the first
// entry"). The controller only needs a single scalar core speed applied
// uniformly, so it takes the rate of the lexicographically first host id
// (sorting makes the choice deterministic); it does not look for the
// fastest host.
func New(wf *workflow.Workflow, service batch.Service, events batch.EventSource,
	heur heuristic.GroupingHeuristic, cfg Config, stat stats.StatsReceiver) (*Controller, error) {

	rates, err := service.GetCoreFlopRate()
	if err != nil {
		return nil, fmt.Errorf("controller: could not read core flop rate: %w", err)
	}
	if len(rates) == 0 {
		return nil, clustererrors.New(fmt.Errorf("batch service reported no hosts"), clustererrors.InvalidArgument)
	}
	hostIds := make([]string, 0, len(rates))
	for id := range rates {
		hostIds = append(hostIds, string(id))
	}
	sort.Strings(hostIds)
	coreSpeed := rates[batch.HostId(hostIds[0])]

	numHosts, err := service.GetNumHosts()
	if err != nil {
		return nil, fmt.Errorf("controller: could not read host count: %w", err)
	}

	return &Controller{
		workflow:  wf,
		service:   service,
		events:    events,
		heur:      heur,
		oracle:    oracle.New(service),
		metrics:   metrics.New(stat),
		config:    cfg,
		coreSpeed: coreSpeed,
		numHosts:  numHosts,
		running:   make(map[batch.JobHandle]*placeholder.Job),
	}, nil
}

// Run drives the decision loop until the workflow is done, then emits the
// fixed shutdown line (spec §6).
func (c *Controller) Run() error {
	c.markReadyChildren(nil)
	if err := c.applyGroupingHeuristic(); err != nil {
		return err
	}
	for !c.workflow.IsDone() {
		ev, err := c.events.WaitForNextEvent()
		if err != nil {
			return fmt.Errorf("controller: event source failed: %w", err)
		}
		if err := c.handleEvent(ev); err != nil {
			return err
		}
	}
	c.metrics.EmitShutdownLine()
	return nil
}

func (c *Controller) handleEvent(ev batch.Event) error {
	switch {
	case ev.PilotStarted != nil:
		return c.onPilotStarted(ev.PilotStarted)
	case ev.PilotExpired != nil:
		return c.onPilotExpired(ev.PilotExpired)
	case ev.StandardCompleted != nil:
		return c.onStandardCompleted(ev.StandardCompleted)
	case ev.StandardFailed != nil:
		c.onStandardFailed(ev.StandardFailed)
		return nil
	default:
		return fmt.Errorf("controller: received an event with no populated variant")
	}
}

// computeStartLevel derives the current start level (spec §3): one past the
// last fully-completed level, raised further to clear every RUNNING
// placeholder's end level.
func (c *Controller) computeStartLevel() int {
	startLevel := 0
	for i := 0; i < c.workflow.NumLevels(); i++ {
		allCompleted := true
		for _, t := range c.workflow.TasksInLevel(i) {
			if t.State != workflow.Completed {
				allCompleted = false
				break
			}
		}
		if allCompleted {
			startLevel = i + 1
		}
	}
	for _, ph := range c.running {
		if ph.Range.End+1 > startLevel {
			startLevel = ph.Range.End + 1
		}
	}
	return startLevel
}

// markReadyChildren promotes NOT_READY tasks to READY once every parent has
// completed. Called with nil at startup to seed every parentless (level 0)
// task; called with the task that just completed to re-check its children,
// mirroring job_state.go's taskCompleted unblocking its dependents.
func (c *Controller) markReadyChildren(t *workflow.Task) {
	var candidates []*workflow.Task
	if t == nil {
		candidates = c.workflow.TasksInLevel(0)
	} else {
		candidates = c.workflow.Children(t.ID)
	}
	for _, child := range candidates {
		if child.State != workflow.NotReady {
			continue
		}
		allParentsDone := true
		for _, p := range c.workflow.Parents(child.ID) {
			if p.State != workflow.Completed {
				allParentsDone = false
				break
			}
		}
		if allParentsDone {
			child.State = workflow.Ready
		}
	}
}

func (c *Controller) estimate(tasks []*workflow.Task, nHosts int) (float64, error) {
	return estimator.EstimateMakespan(tasks, nHosts, c.coreSpeed)
}

func (c *Controller) wait(parallelism int, walltimeSec float64, now float64) (float64, error) {
	return c.oracle.EstimateWait(parallelism, walltimeSec, now)
}

// parentRuntimeFor resolves the parentRuntime a Snapshot should carry for
// heur. Zhang's groupLevels (spec §4.4.2 step 1; the source's
// ProxyWMS::findMaxDuration(running_placeholder_jobs)) wants the max
// requested walltime across currently RUNNING placeholders, 0 if none --
// a different quantity from the Test heuristic's most-recently-submitted
// scalar, so it is computed here rather than read from c.parentRuntime.
func (c *Controller) parentRuntimeFor(heur heuristic.GroupingHeuristic) float64 {
	if _, ok := heur.(*heuristic.Zhang); ok {
		max := 0.0
		for _, ph := range c.running {
			if ph.RequestedWalltimeSec > max {
				max = ph.RequestedWalltimeSec
			}
		}
		return max
	}
	return c.parentRuntime
}

// applyGroupingHeuristic is the heart of the loop (spec §4.5, §4.4):
// invoked at every decision point, it is a no-op unless a submission is
// actually possible right now.
func (c *Controller) applyGroupingHeuristic() error {
	if c.pending != nil {
		return nil
	}
	if c.individualMode {
		return nil
	}
	if !c.config.Overlap && len(c.running) > 0 {
		return nil
	}

	startLevel := c.computeStartLevel()
	if startLevel >= c.workflow.NumLevels() {
		return nil
	}

	snap := heuristic.Snapshot{
		Workflow:      c.workflow,
		StartLevel:    startLevel,
		NumHosts:      c.numHosts,
		CoreSpeed:     c.coreSpeed,
		Now:           c.events.Now(),
		ParentRuntime: c.parentRuntimeFor(c.heur),
	}
	decision, err := c.heur.Decide(snap, c.estimate, c.wait)
	if err != nil {
		return err
	}

	lastLevel := c.workflow.NumLevels() - 1

	switch decision.Kind {
	case heuristic.Individual:
		log.Info("controller: switching to individual mode")
		c.individualMode = true
		return c.dispatchAllReadyIndividually()

	case heuristic.Submit:
		if decision.EndLevel != lastLevel {
			c.metrics.IncSplits()
		}
		return c.submitPlaceholder(decision)

	default: // heuristic.Idle
		return nil
	}
}

func (c *Controller) submitPlaceholder(decision heuristic.Decision) error {
	tasks := c.workflow.TasksInRange(decision.StartLevel, decision.EndLevel)
	ph := placeholder.New(placeholder.Range{Start: decision.StartLevel, End: decision.EndLevel},
		decision.Parallelism, decision.WalltimeSec, tasks)

	args := batch.ServiceArgs{
		Nodes:           decision.Parallelism,
		CoresPerNode:    1,
		WalltimeMinutes: walltimeMinutes(decision.WalltimeSec),
	}
	handle, err := c.service.SubmitJob(batch.PilotJob, args)
	if err != nil {
		return fmt.Errorf("controller: could not submit pilot job for levels %s: %w", ph.Range, err)
	}
	ph.PilotHandle = handle
	c.pending = ph
	c.parentRuntime = decision.WalltimeSec

	log.WithFields(log.Fields{
		"range": ph.Range, "nodes": ph.RequestedNodes, "walltimeSec": ph.RequestedWalltimeSec, "handle": handle,
	}).Info("controller: submitted pilot job")
	return nil
}

// dispatchStandardJob submits taskID's standard job. ph is nil in
// individual mode, where the task's own walltime is computed directly
// instead of running inside a reservation.
func (c *Controller) dispatchStandardJob(ph *placeholder.Job, t *workflow.Task) error {
	args := batch.ServiceArgs{Nodes: 1, CoresPerNode: 1}
	if ph == nil {
		walltimeSec := (t.Flops / c.coreSpeed) * heuristic.ExecFudge
		args.WalltimeMinutes = walltimeMinutes(walltimeSec)
	}

	_, err := c.service.SubmitJob(batch.StandardJob, args)
	if err != nil {
		return fmt.Errorf("controller: could not submit standard job for task %s: %w", t.ID, err)
	}

	t.State = workflow.Running
	t.StartTime = c.events.Now()
	if ph != nil {
		ph.OnTaskStart(t.ID)
	}
	return nil
}

func (c *Controller) dispatchAllReadyIndividually() error {
	for _, t := range c.workflow.TasksInRange(0, c.workflow.NumLevels()-1) {
		if t.State == workflow.Ready {
			if err := c.dispatchStandardJob(nil, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// dispatchReady submits every currently-Ready task in ph, up to its
// requested-node capacity, in the placeholder's stored task order.
func (c *Controller) dispatchReady(ph *placeholder.Job) error {
	for _, t := range ph.Tasks {
		if ph.NumRunning >= ph.RequestedNodes {
			break
		}
		if t.State != workflow.Ready {
			continue
		}
		if err := c.dispatchStandardJob(ph, t); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) onPilotStarted(ev *batch.PilotJobStartedEvent) error {
	if c.pending == nil {
		return clustererrors.New(
			fmt.Errorf("got a pilot job start event but no placeholder is pending"),
			clustererrors.MissingPlaceholder)
	}
	if ev.PilotHandle != c.pending.PilotHandle {
		log.WithFields(log.Fields{"handle": ev.PilotHandle}).
			Debug("controller: pilot start event for an already-canceled placeholder, ignoring")
		return nil
	}

	ph := c.pending
	c.pending = nil
	ph.OnStart(ev.PilotHandle)
	c.running[ph.PilotHandle] = ph

	c.metrics.AddQueueWaitSec(c.events.Now() - ev.SubmitDate)

	if err := c.dispatchReady(ph); err != nil {
		return err
	}

	// Re-submit a pilot job so as to overlap execution of this wave with
	// waiting on the next.
	return c.applyGroupingHeuristic()
}

func (c *Controller) onPilotExpired(ev *batch.PilotJobExpiredEvent) error {
	ph, ok := c.running[ev.PilotHandle]
	if !ok {
		return clustererrors.New(
			fmt.Errorf("got a pilot job expiration for handle %s but no matching running placeholder", ev.PilotHandle),
			clustererrors.MissingPlaceholder)
	}
	delete(c.running, ev.PilotHandle)

	wastedNodeSeconds := 60.0 * float64(walltimeMinutes(ph.RequestedWalltimeSec)) * float64(ph.RequestedNodes)
	for _, t := range ph.Tasks {
		if t.State == workflow.Completed {
			wastedNodeSeconds -= t.Flops / c.coreSpeed
		}
	}
	c.metrics.AddWastedNodeSeconds(wastedNodeSeconds)

	if len(ph.RemainingTasks()) == 0 {
		return nil
	}
	c.metrics.IncExpirationsWithRemainingTasks()

	if c.pending != nil {
		if err := c.terminate(c.pending.PilotHandle); err != nil {
			return err
		}
		c.pending = nil
	}

	for handle, other := range c.running {
		started := false
		for _, t := range other.Tasks {
			if t.State != workflow.NotReady {
				started = true
				break
			}
		}
		if !started {
			log.WithFields(log.Fields{"range": other.Range, "handle": handle}).
				Info("controller: canceling a running placeholder chained on the one that just expired")
			if err := c.terminate(handle); err != nil {
				return err
			}
			delete(c.running, handle)
		}
	}

	return c.applyGroupingHeuristic()
}

func (c *Controller) onStandardCompleted(ev *batch.StandardJobCompletedEvent) error {
	t := c.workflow.Task(ev.TaskID)
	t.State = workflow.Completed
	c.metrics.AddUsedNodeSeconds(t.Flops / c.coreSpeed)
	c.markReadyChildren(t)

	var ownerHandle batch.JobHandle
	var owner *placeholder.Job
	for handle, ph := range c.running {
		if ph.HasTask(ev.TaskID) {
			owner, ownerHandle = ph, handle
			break
		}
	}

	if owner == nil && !c.individualMode {
		return clustererrors.New(
			fmt.Errorf("got a standard job completion for task %s with no owning placeholder", ev.TaskID),
			clustererrors.OrphanCompletion)
	}

	if owner != nil {
		owner.OnTaskComplete(ev.TaskID)
		if owner.AllDone() {
			if err := c.finishPlaceholder(ownerHandle, owner); err != nil {
				return err
			}
		}
	}

	for _, ph := range c.running {
		if err := c.dispatchReady(ph); err != nil {
			return err
		}
	}

	if c.individualMode {
		return c.dispatchAllReadyIndividually()
	}

	// A completion can be the event that drains the last running
	// placeholder (finishPlaceholder above removes it from c.running), in
	// which case this is the only decision point left that could start the
	// next wave: onPilotStarted/onPilotExpired won't fire for a pilot that
	// was terminated rather than expired. applyGroupingHeuristic's own
	// guards make this a no-op whenever nothing actually changed.
	return c.applyGroupingHeuristic()
}

// finishPlaceholder accounts waste for a placeholder whose every task has
// completed, terminates its pilot, and drops it from the running set.
func (c *Controller) finishPlaceholder(handle batch.JobHandle, ph *placeholder.Job) error {
	firstStart := math.MaxFloat64
	for _, t := range ph.Tasks {
		if t.StartTime < firstStart {
			firstStart = t.StartTime
		}
	}
	jobDuration := c.events.Now() - firstStart
	wasted := float64(ph.RequestedNodes) * jobDuration
	for _, t := range ph.Tasks {
		wasted -= t.Flops / c.coreSpeed
	}
	c.metrics.AddWastedNodeSeconds(wasted)

	log.WithFields(log.Fields{"range": ph.Range, "handle": handle}).
		Info("controller: all tasks in placeholder are done, terminating its pilot")
	if err := c.terminate(handle); err != nil {
		return err
	}
	delete(c.running, handle)
	return nil
}

func (c *Controller) onStandardFailed(ev *batch.StandardJobFailedEvent) {
	log.WithFields(log.Fields{"taskID": ev.TaskID}).
		Warn("controller: standard job failed -- ignoring (tasks do not fail in this model)")
}

// terminate cancels handle, swallowing AlreadyTerminatedError (spec §7).
func (c *Controller) terminate(handle batch.JobHandle) error {
	err := c.service.TerminateJob(handle)
	if err == nil {
		return nil
	}
	if _, ok := err.(*batch.AlreadyTerminatedError); ok {
		return nil
	}
	return fmt.Errorf("controller: could not terminate pilot job %s: %w", handle, err)
}

// walltimeMinutes converts a walltime in seconds to whole minutes (spec
// §6): 1 + floor(walltimeSec/60).
func walltimeMinutes(walltimeSec float64) int {
	return 1 + int(walltimeSec/60)
}
