package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrench-project/task-clustering-for-batch-simulator/heuristic"
)

func Test_HeuristicKind_String(t *testing.T) {
	assert.Equal(t, "Test", TestHeuristic.String())
	assert.Equal(t, "Zhang", ZhangHeuristic.String())
	assert.Equal(t, "Unknown", HeuristicKind(99).String())
}

func Test_DefaultBounds(t *testing.T) {
	assert.Equal(t, 0.0, DefaultWasteBound)
	assert.Equal(t, 0.0, DefaultBeatBound)
}

func Test_NewHeuristic_SelectsByKindAndCarriesBounds(t *testing.T) {
	test := NewHeuristic(Config{Heuristic: TestHeuristic, WasteBound: 0.2, BeatBound: 0.1, Overlap: true})
	tst, ok := test.(*heuristic.Test)
	assert.True(t, ok)
	assert.Equal(t, 0.2, tst.WasteBound)
	assert.Equal(t, 0.1, tst.BeatBound)
	assert.True(t, tst.Overlap)

	zhang := NewHeuristic(Config{Heuristic: ZhangHeuristic, Plimit: true})
	zh, ok := zhang.(*heuristic.Zhang)
	assert.True(t, ok)
	assert.True(t, zh.Plimit)
}
