package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erigontech/erigon-archive/prune"
)

func TestModeSegmentNilModeYieldsNilSegment(t *testing.T) {
	called := false
	seg := modeSegment(nil, func(m prune.PruneMode) prune.Segment {
		called = true
		return nil
	})
	assert.Nil(t, seg)
	assert.False(t, called, "builder must not run when mode is disabled")
}

func TestModeSegmentSetModeBuildsSegment(t *testing.T) {
	mode := prune.Full()
	var got prune.PruneMode
	seg := modeSegment(&mode, func(m prune.PruneMode) prune.Segment {
		got = m
		return stubModeSegment{}
	})
	assert.NotNil(t, seg)
	assert.Equal(t, mode, got)
}

type stubModeSegment struct{}

func (stubModeSegment) ID() prune.SegmentID  { return prune.SegmentID{} }
func (stubModeSegment) Mode() prune.PruneMode { return prune.Full() }
func (stubModeSegment) Prune(prune.Input) (prune.SegmentOutput, error) {
	return prune.SegmentOutput{Progress: prune.Done()}, nil
}
