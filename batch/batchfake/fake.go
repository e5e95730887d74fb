// Package batchfake provides an in-memory, synchronous fake of batch.Service
// and batch.EventSource for tests, adapted from cloud/cluster/memory's
// in-memory Cluster fake. Unlike the teacher's channel-driven goroutine
// loop (needed there to model asynchronous cluster membership changes),
// this fake is driven synchronously by the test: spec §5 says the core is
// single-threaded cooperative, so a test double that queues events for
// explicit, ordered delivery is the more faithful shape here.
package batchfake

import (
	"fmt"

	"github.com/wrench-project/task-clustering-for-batch-simulator/batch"
)

// Service is a deterministic, test-controlled batch.Service. StartEstimate
// is consulted by GetStartTimeEstimates for every probe; Now is advanced by
// the test to simulate time passing.
type Service struct {
	CoreFlopRate map[batch.HostId]float64
	NumHosts     int

	// StartEstimate, if set, is called per JobConfig to compute the
	// predicted absolute start time. Defaults to "now" (zero wait) when nil.
	StartEstimate func(cfg batch.JobConfig) float64

	Now func() float64

	nextHandle int
	terminated map[batch.JobHandle]bool
	submitted  []submittedJob
}

type submittedJob struct {
	Handle batch.JobHandle
	Kind   batch.JobKind
	Args   batch.ServiceArgs
}

func New(coreFlopRate map[batch.HostId]float64, numHosts int) *Service {
	return &Service{
		CoreFlopRate: coreFlopRate,
		NumHosts:     numHosts,
		terminated:   map[batch.JobHandle]bool{},
	}
}

func (s *Service) GetCoreFlopRate() (map[batch.HostId]float64, error) {
	return s.CoreFlopRate, nil
}

func (s *Service) GetNumHosts() (int, error) {
	return s.NumHosts, nil
}

func (s *Service) SubmitJob(kind batch.JobKind, args batch.ServiceArgs) (batch.JobHandle, error) {
	s.nextHandle++
	handle := batch.JobHandle(fmt.Sprintf("job-%d", s.nextHandle))
	s.submitted = append(s.submitted, submittedJob{handle, kind, args})
	return handle, nil
}

func (s *Service) GetStartTimeEstimates(configs []batch.JobConfig) (map[string]float64, error) {
	now := 0.0
	if s.Now != nil {
		now = s.Now()
	}
	result := make(map[string]float64, len(configs))
	for _, c := range configs {
		if s.StartEstimate != nil {
			result[c.ID] = s.StartEstimate(c)
		} else {
			result[c.ID] = now
		}
	}
	return result, nil
}

func (s *Service) TerminateJob(handle batch.JobHandle) error {
	if s.terminated[handle] {
		return &batch.AlreadyTerminatedError{Handle: handle}
	}
	s.terminated[handle] = true
	return nil
}

func (s *Service) Submitted() []batch.JobHandle {
	handles := make([]batch.JobHandle, 0, len(s.submitted))
	for _, j := range s.submitted {
		handles = append(handles, j.Handle)
	}
	return handles
}

func (s *Service) IsTerminated(handle batch.JobHandle) bool {
	return s.terminated[handle]
}

// EventSource is a FIFO queue of pre-scripted events, driven explicitly by
// the test via Push. Clock, if set, backs Now; it defaults to 0.
type EventSource struct {
	Clock func() float64

	queue []batch.Event
}

func (e *EventSource) Push(ev batch.Event) {
	e.queue = append(e.queue, ev)
}

func (e *EventSource) WaitForNextEvent() (batch.Event, error) {
	if len(e.queue) == 0 {
		return batch.Event{}, fmt.Errorf("batchfake: no more events queued")
	}
	ev := e.queue[0]
	e.queue = e.queue[1:]
	return ev, nil
}

func (e *EventSource) Now() float64 {
	if e.Clock != nil {
		return e.Clock()
	}
	return 0
}

func (e *EventSource) Pending() int {
	return len(e.queue)
}
