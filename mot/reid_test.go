package mot

import (
	"testing"

	"github.com/LdDl/vmot/appearance"
	"github.com/LdDl/vmot/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spikeHistogram puts all mass of every channel into one bin.
func spikeHistogram(bin int) appearance.Histogram {
	var h appearance.Histogram
	for c := 0; c < appearance.Channels; c++ {
		h[c*appearance.BinsPerChannel+bin] = 1
	}
	return h
}

func inactiveCandidate(tracker *Tracker, idx, id int, bbox geom.Rectangle, recent appearance.Histogram) *trackSlot {
	s := &tracker.slots[idx]
	s.status = StatusInactive
	s.id = id
	s.bbox = bbox
	s.recent = recent
	s.motion.Reset(bbox)
	return s
}

func TestReidentifyPrefersCheapestCandidate(t *testing.T) {
	tracker, err := NewTracker(DefaultConfig())
	require.NoError(t, err)
	defer tracker.Close()

	look := spikeHistogram(10)
	other := spikeHistogram(40)
	require.Less(t, appearance.Correlation(&look, &other), tracker.cfg.CorrelationThreshold)

	far := inactiveCandidate(tracker, 0, 1, geom.NewRect(40, 50, 20, 20), look)
	near := inactiveCandidate(tracker, 1, 2, geom.NewRect(56, 50, 20, 20), look)
	s := &tracker.slots[2]
	s.status = StatusBuilding
	s.bbox = geom.NewRect(50, 50, 20, 20)
	s.recent = look

	assert.Same(t, near, tracker.reidentify(s), "equal appearance: the closer prediction wins")

	near.recent = other
	assert.Same(t, far, tracker.reidentify(s), "a candidate that looks different is skipped")

	near.stable = look
	near.hasStable = true
	assert.Same(t, near, tracker.reidentify(s), "the stable snapshot still vouches for the candidate")

	far.status = StatusActive
	near.status = StatusActive
	assert.Nil(t, tracker.reidentify(s), "only INACTIVE slots hand over identities")
}

func TestReidentifyOutsideRegion(t *testing.T) {
	tracker, err := NewTracker(DefaultConfig())
	require.NoError(t, err)
	defer tracker.Close()

	look := spikeHistogram(10)
	inactiveCandidate(tracker, 0, 1, geom.NewRect(0, 0, 10, 10), look)
	s := &tracker.slots[1]
	s.status = StatusBuilding
	s.bbox = geom.NewRect(100, 100, 10, 10)
	s.recent = look
	assert.Nil(t, tracker.reidentify(s))

	s.bbox = geom.NewRect(5, 0, 30, 30)
	assert.Nil(t, tracker.reidentify(s), "a tripled size is not the same object")
}
