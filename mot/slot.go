package mot

import (
	"github.com/LdDl/vmot/appearance"
	"github.com/LdDl/vmot/correlation"
	"github.com/LdDl/vmot/geom"
	"github.com/LdDl/vmot/motion"
	"github.com/google/uuid"
)

// trackSlot is one of the MaxTracks reusable track records of a Tracker.
// Its filter and motion model live as long as the Tracker; only the filter
// workspace comes and goes with each occupancy.
type trackSlot struct {
	index  int
	status Status
	// id is the public identifier, zero until the track is confirmed
	id  int
	uid uuid.UUID

	filter correlation.Filter
	motion motion.Predictor

	bbox       geom.Rectangle
	mapID      int64
	confidence float64

	recent    appearance.Histogram
	stable    appearance.Histogram
	hasStable bool
	// detection matches since the stable histogram was last refreshed
	sinceStable int

	// consecutive frames without a detection match
	missed int
	// consecutive detection matches while building confidence
	hits int
	// frames since the motion model was last updated
	sinceObserved int
	// frames since the slot was claimed
	age int
	// frame number of the last demotion to INACTIVE
	demotedAt uint64
	// whether the slot was ever occupied
	used bool
}

// GetID returns slot's public identifier
func (s *trackSlot) GetID() int {
	return s.id
}

// GetUID returns identifier of current occupancy
func (s *trackSlot) GetUID() uuid.UUID {
	return s.uid
}

// GetStatus returns slot's lifecycle status
func (s *trackSlot) GetStatus() Status {
	return s.status
}

// GetBBox returns slot's current bounding box
func (s *trackSlot) GetBBox() geom.Rectangle {
	return s.bbox
}

// GetPredictedBBox returns the motion model extrapolation for the current frame
func (s *trackSlot) GetPredictedBBox() geom.Rectangle {
	return s.motion.Predict(s.sinceObserved)
}

// GetNoMatchTimes returns slot's no match times
func (s *trackSlot) GetNoMatchTimes() int {
	return s.missed
}

// IncNoMatch increases slot's no match times
func (s *trackSlot) IncNoMatch() {
	s.missed++
}

// ResetNoMatch resets slot's no match times
func (s *trackSlot) ResetNoMatch() {
	s.missed = 0
}

// setStatus moves the slot along a lifecycle edge.
func (s *trackSlot) setStatus(to Status) error {
	next, err := transition(s.status, to)
	if err != nil {
		return err
	}
	s.status = next
	return nil
}

// occupy prepares a claimed slot for a new track at bbox.
func (s *trackSlot) occupy(det Detection, hist *appearance.Histogram) {
	s.used = true
	s.id = 0
	s.uid = uuid.New()
	s.bbox = det.BBox
	s.mapID = det.MapID
	s.confidence = 1
	s.recent = *hist
	s.stable = appearance.Histogram{}
	s.hasStable = false
	s.sinceStable = 0
	s.missed = 0
	s.hits = 1
	s.sinceObserved = 0
	s.age = 0
	s.demotedAt = 0
	s.motion.Reset(det.BBox)
}

// vacate drops the occupancy state. The filter must already be deinitialised.
func (s *trackSlot) vacate() {
	s.status = StatusFree
	s.id = 0
	s.uid = uuid.Nil
	s.mapID = 0
	s.confidence = 0
	s.missed = 0
	s.hits = 0
	s.sinceObserved = 0
	s.age = 0
	s.hasStable = false
}
