// Package metrics accumulates the controller's run totals (spec §4.6) atop
// the teacher's common/stats wrapper around rcrowley/go-metrics, the same
// substrate stateful_scheduler.go uses for its own latency/counter
// instruments.
package metrics

import (
	"fmt"

	"github.com/wrench-project/task-clustering-for-batch-simulator/common/stats"
)

// Names of the underlying stats instruments, scoped under "clustering".
const (
	totalQueueWaitSecName = "totalQueueWaitSec"
	usedNodeSecondsName   = "usedNodeSeconds"
	wastedNodeSecondsName = "wastedNodeSeconds"
	expirationsName       = "numPilotExpirationsWithRemainingTasks"
	splitsName            = "numberOfSplits"
)

// Collector totals the scalar accumulators the spec names: queue wait,
// used/wasted node-seconds, pilot expirations with remaining tasks, and
// split count. All updates are monotonic (only ever added to).
type Collector struct {
	stat stats.StatsReceiver

	totalQueueWaitSec stats.GaugeFloat
	usedNodeSeconds   stats.GaugeFloat
	wastedNodeSeconds stats.GaugeFloat
	expirations       stats.Counter
	splits            stats.Counter
}

// New constructs a Collector scoped under "clustering" on stat. The totals
// live in stat's instruments: with stats.NilStatsReceiver() every update is
// discarded, so the accessors and EmitShutdownLine then report 0.
func New(stat stats.StatsReceiver) *Collector {
	scoped := stat.Scope("clustering")
	return &Collector{
		stat:              scoped,
		totalQueueWaitSec: scoped.GaugeFloat(totalQueueWaitSecName),
		usedNodeSeconds:   scoped.GaugeFloat(usedNodeSecondsName),
		wastedNodeSeconds: scoped.GaugeFloat(wastedNodeSecondsName),
		expirations:       scoped.Counter(expirationsName),
		splits:            scoped.Counter(splitsName),
	}
}

func (c *Collector) AddQueueWaitSec(sec float64) {
	c.totalQueueWaitSec.Update(c.totalQueueWaitSec.Value() + sec)
}

func (c *Collector) AddUsedNodeSeconds(sec float64) {
	c.usedNodeSeconds.Update(c.usedNodeSeconds.Value() + sec)
}

func (c *Collector) AddWastedNodeSeconds(sec float64) {
	c.wastedNodeSeconds.Update(c.wastedNodeSeconds.Value() + sec)
}

func (c *Collector) IncExpirationsWithRemainingTasks() {
	c.expirations.Inc(1)
}

func (c *Collector) IncSplits() {
	c.splits.Inc(1)
}

func (c *Collector) TotalQueueWaitSec() float64 { return c.totalQueueWaitSec.Value() }
func (c *Collector) UsedNodeSeconds() float64   { return c.usedNodeSeconds.Value() }
func (c *Collector) WastedNodeSeconds() float64 { return c.wastedNodeSeconds.Value() }
func (c *Collector) Expirations() int64         { return c.expirations.Count() }
func (c *Collector) Splits() int64              { return c.splits.Count() }

// EmitShutdownLine prints the run's fixed shutdown output (spec §6): exactly
// one "#SPLITS=<n>" line.
func (c *Collector) EmitShutdownLine() {
	fmt.Printf("#SPLITS=%d\n", c.splits.Count())
}
