package controller

import "github.com/wrench-project/task-clustering-for-batch-simulator/heuristic"

// HeuristicKind selects which grouping heuristic a Controller runs.
type HeuristicKind int

const (
	TestHeuristic HeuristicKind = iota
	ZhangHeuristic
)

func (k HeuristicKind) String() string {
	switch k {
	case TestHeuristic:
		return "Test"
	case ZhangHeuristic:
		return "Zhang"
	default:
		return "Unknown"
	}
}

// Default parameter values, mirroring the original source's literal
// constants (waste bound 0, beat bound 0) where the spec does not name a
// different default.
const (
	DefaultWasteBound = 0.0
	DefaultBeatBound  = 0.0
)

// Config is the controller's configuration surface (spec §6), adapted from
// SchedulerConfiguration's plain-struct-of-options shape with the
// persistence machinery (persist_settings.go) dropped: this controller
// never restarts mid-run, so there is nothing to reload.
type Config struct {
	// Overlap allows a new placeholder to be requested while one is
	// already RUNNING.
	Overlap bool

	// Plimit reserves a strict parallelism cap for Zhang; accepted, but a
	// no-op in this implementation (spec §9).
	Plimit bool

	// WasteBound and BeatBound parametrize the Test heuristic only.
	WasteBound float64
	BeatBound  float64

	Heuristic HeuristicKind
}

// NewHeuristic builds the heuristic cfg.Heuristic selects, parametrized by
// cfg's WasteBound/BeatBound/Overlap/Plimit -- this is what puts the config
// surface enumerated above actually in force. Callers that want to inject a
// test double should construct one directly and pass it to New instead of
// going through this factory.
func NewHeuristic(cfg Config) heuristic.GroupingHeuristic {
	switch cfg.Heuristic {
	case ZhangHeuristic:
		return &heuristic.Zhang{Overlap: cfg.Overlap, Plimit: cfg.Plimit}
	default:
		return &heuristic.Test{
			WasteBound: cfg.WasteBound,
			BeatBound:  cfg.BeatBound,
			Overlap:    cfg.Overlap,
			Plimit:     cfg.Plimit,
		}
	}
}
