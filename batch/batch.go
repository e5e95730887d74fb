// Package batch declares the external collaborators the grouping engine
// consumes: the batch scheduler service and the discrete-event source. Both
// are specified only by interface (spec §1, §6) — the concrete batch
// scheduler, the discrete-event simulation runtime, and the workflow loader
// are out of scope for this module. The shape is adapted from
// cloud/cluster's Cluster/Node pair: an external, versioned collection
// (there: cluster members; here: batch-queued pilot and standard jobs)
// observed and mutated only through a narrow interface.
package batch

import "fmt"

// HostId identifies one host known to the batch service, modeled on
// cloud/cluster's NodeId.
type HostId string

// JobHandle identifies a submitted job (pilot or standard) to the batch
// service. Handles are stable across events, per spec §6.
type JobHandle string

// JobKind distinguishes a placeholder/pilot submission from a standard
// single-task submission.
type JobKind int

const (
	PilotJob JobKind = iota
	StandardJob
)

// ServiceArgs are the batch-service submission arguments spec §6 requires:
// "-N" (node count), "-c" (cores per node, always "1"), "-t" (walltime in
// whole minutes as a decimal string).
type ServiceArgs struct {
	Nodes           int
	CoresPerNode    int
	WalltimeMinutes int
}

func (a ServiceArgs) String() string {
	return fmt.Sprintf("-N=%d -c=%d -t=%d", a.Nodes, a.CoresPerNode, a.WalltimeMinutes)
}

// JobConfig is one probe configuration submitted to GetStartTimeEstimates:
// an id unique within the batch of probes, a parallelism, cores per node,
// and a requested walltime in seconds.
type JobConfig struct {
	ID           string
	Nodes        int
	CoresPerNode int
	WalltimeSec  float64
}

// AlreadyTerminatedError is returned by TerminateJob on an already-dead
// pilot. Per spec §7 this is swallowed by callers, never fatal.
type AlreadyTerminatedError struct {
	Handle JobHandle
}

func (e *AlreadyTerminatedError) Error() string {
	return fmt.Sprintf("job %s already terminated", e.Handle)
}

// Service is the batch scheduler's external interface (spec §6, "Batch
// service (consumed)").
type Service interface {
	// GetCoreFlopRate returns flops/sec for every host known to the
	// service. The controller reads the first entry (spec §6).
	GetCoreFlopRate() (map[HostId]float64, error)

	// GetNumHosts returns the batch service's cluster capacity.
	GetNumHosts() (int, error)

	// SubmitJob submits job (a pilot or a standard job) with the given
	// service-specific arguments. Returns a handle stable across events.
	SubmitJob(kind JobKind, args ServiceArgs) (JobHandle, error)

	// GetStartTimeEstimates asks the oracle for a predicted absolute start
	// time (seconds) for each given probe configuration. A negative value
	// in the result means "unschedulable".
	GetStartTimeEstimates(configs []JobConfig) (map[string]float64, error)

	// TerminateJob cancels job. Returns *AlreadyTerminatedError (never a
	// fatal error) if job is already dead.
	TerminateJob(handle JobHandle) error
}

// PilotJobStartedEvent is delivered when a pilot reservation begins
// running.
type PilotJobStartedEvent struct {
	PilotHandle JobHandle
	SubmitDate  float64
}

// PilotJobExpiredEvent is delivered when a pilot reservation's walltime has
// elapsed.
type PilotJobExpiredEvent struct {
	PilotHandle JobHandle
}

// StandardJobCompletedEvent is delivered when a single-task job finishes
// successfully.
type StandardJobCompletedEvent struct {
	StandardHandle JobHandle
	TaskID         string
	PilotHandle    JobHandle // zero value if submitted outside any pilot (individual mode)
}

// StandardJobFailedEvent is delivered when a single-task job fails. Per
// spec §7 this is logged and ignored: tasks do not fail in this model.
type StandardJobFailedEvent struct {
	StandardHandle JobHandle
	TaskID         string
}

// EventSource is the discrete-event delivery mechanism (spec §6, "Event
// source (consumed)"). The controller blocks on WaitForNextEvent between
// decision points, matching spec §5's single-threaded cooperative model.
// Now reports the simulation's current simulated time, standing in for the
// external simulation runtime's clock (out of scope per spec §1) that the
// controller needs for every "now" used in oracle probes and waste
// accounting.
type EventSource interface {
	WaitForNextEvent() (Event, error)
	Now() float64
}

// Event is a tagged union over the four event types this module reacts to.
// Exactly one field is non-nil.
type Event struct {
	PilotStarted      *PilotJobStartedEvent
	PilotExpired      *PilotJobExpiredEvent
	StandardCompleted *StandardJobCompletedEvent
	StandardFailed    *StandardJobFailedEvent
}
