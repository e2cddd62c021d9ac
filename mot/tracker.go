package mot

import (
	"github.com/LdDl/vmot/appearance"
	"github.com/LdDl/vmot/correlation"
	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
	"github.com/LdDl/vmot/internal/monitoring"
	"github.com/LdDl/vmot/motion"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MaxTracks is the number of track slots per Tracker.
const MaxTracks = 16

// ErrClosed is returned when a Tracker is used after Close.
var ErrClosed = errors.New("tracker is closed")

// TrackedObject is the per-frame output for one non-free slot.
type TrackedObject struct {
	// ID is the public identifier. It is zero unless Status is StatusActive.
	ID int
	// UID identifies the occupancy and follows the id through re-identification.
	UID        uuid.UUID
	BBox       geom.Rectangle
	Status     Status
	MapID      int64
	Confidence float64
	// Age is the number of frames since the slot was claimed.
	Age int
}

// Tracker is a multi-object tracker for one video stream.
// It is not safe for concurrent use; run one Tracker per stream.
type Tracker struct {
	cfg   Config
	slots [MaxTracks]trackSlot
	// never-used free slots, claimed first
	fresh []int
	// released free slots
	free   []int
	lastID int
	frame  uint64
	closed bool
}

// NewTracker validates cfg and allocates every slot.
func NewTracker(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Tracker{
		cfg:   cfg,
		fresh: make([]int, 0, MaxTracks),
		free:  make([]int, 0, MaxTracks),
	}
	params := cfg.filterParams()
	for i := range t.slots {
		flt, err := correlation.New(cfg.Algorithm, params)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create visual filter")
		}
		pred, err := motion.New(cfg.MotionModel, geom.Rectangle{})
		if err != nil {
			return nil, errors.Wrap(err, "Can't create motion model")
		}
		t.slots[i] = trackSlot{index: i, filter: flt, motion: pred}
	}
	for i := MaxTracks - 1; i >= 0; i-- {
		t.fresh = append(t.fresh, i)
	}
	return t, nil
}

// Config returns the configuration the tracker was built with.
func (t *Tracker) Config() Config {
	return t.cfg
}

// MatchObjects runs a detection cycle: associates dets with the existing
// tracks, updates matched ones, ages the rest and spawns tracks for leftovers.
func (t *Tracker) MatchObjects(f *frame.Frame, dets []Detection) ([]TrackedObject, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(err, "Can't match objects")
	}
	t.frame++
	live := make([]int, 0, MaxTracks)
	for i := range t.slots {
		s := &t.slots[i]
		if s.status.live() {
			s.age++
			s.sinceObserved++
			live = append(live, i)
		}
	}

	kept := gateDetections(dets, t.cfg)
	hists := make([]appearance.Histogram, len(kept))
	if t.cfg.Algorithm != correlation.VariantIOU {
		for i, di := range kept {
			hists[i] = appearance.Compute(f, dets[di].BBox, t.cfg.ColorSpace)
		}
	}

	cost := t.costMatrix(dets, kept, hists, live)
	assignment := solveAssignment(cost, t.cfg.Matching)

	var matched [MaxTracks]bool
	detMatched := make([]bool, len(kept))
	confirm := make([]*trackSlot, 0, len(kept))
	for r, c := range assignment {
		if c < 0 {
			continue
		}
		s := &t.slots[live[c]]
		matched[s.index] = true
		detMatched[r] = true
		if t.matchSlot(s, dets[kept[r]], &hists[r], f) {
			confirm = append(confirm, s)
		}
	}
	for _, s := range confirm {
		t.confirm(s)
	}
	for _, idx := range live {
		s := &t.slots[idx]
		if matched[idx] || !s.status.live() {
			continue
		}
		t.miss(s)
	}
	t.releasePending()
	for r, ok := range detMatched {
		if !ok {
			t.spawn(dets[kept[r]], &hists[r], f)
		}
	}
	return t.output(), nil
}

// TrackObjects runs a tracking-only cycle: every ACTIVE or BUILDING track is
// followed by its visual filter and INACTIVE tracks age.
func (t *Tracker) TrackObjects(f *frame.Frame) ([]TrackedObject, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(err, "Can't track objects")
	}
	t.frame++
	shadow := t.cfg.shadowLimit()
	for i := range t.slots {
		s := &t.slots[i]
		switch s.status {
		case StatusActive, StatusBuilding:
			s.age++
			s.sinceObserved++
			s.IncNoMatch()
			if !t.follow(s, f) {
				t.demote(s)
				continue
			}
			if s.GetNoMatchTimes() > shadow {
				t.demote(s)
			}
		case StatusInactive:
			s.age++
			s.sinceObserved++
			s.IncNoMatch()
			t.ageInactive(s)
		case StatusFree, StatusPendingFree:
		}
	}
	return t.output(), nil
}

// follow moves s for the current frame. It reports false when the visual filter lost the target.
func (t *Tracker) follow(s *trackSlot, f *frame.Frame) bool {
	if t.cfg.Algorithm == correlation.VariantIOU {
		s.bbox = s.GetPredictedBBox()
		s.confidence = 1
		return true
	}
	bbox, confidence, ok := s.filter.UpdatePosition(f, t.cfg.ConfidenceThreshold)
	s.confidence = confidence
	if !ok {
		return false
	}
	if err := s.motion.Update(s.motion.Last(), bbox); err != nil {
		monitoring.Logf("mot: slot %d motion update failed: %v", s.index, err)
	}
	s.sinceObserved = 0
	s.bbox = bbox
	return true
}

// matchSlot applies a detection match. It reports whether the slot has gathered
// enough consecutive matches to be confirmed.
func (t *Tracker) matchSlot(s *trackSlot, det Detection, hist *appearance.Histogram, f *frame.Frame) bool {
	if err := s.motion.Update(s.motion.Last(), det.BBox); err != nil {
		monitoring.Logf("mot: slot %d motion update failed: %v", s.index, err)
	}
	if err := s.filter.DetectUpdate(det.BBox, f); err != nil {
		monitoring.Logf("mot: slot %d filter update failed: %v", s.index, err)
	}
	s.sinceObserved = 0
	s.bbox = det.BBox
	s.mapID = det.MapID
	s.recent = *hist
	s.confidence = 1
	s.ResetNoMatch()

	switch s.status {
	case StatusBuilding:
		s.hits++
		return s.hits >= t.cfg.NumFramesConfidence
	case StatusActive:
		t.refreshStable(s)
	case StatusInactive:
		if s.id > 0 {
			t.setStatus(s, StatusActive)
			t.refreshStable(s)
			return false
		}
		t.setStatus(s, StatusBuilding)
		s.hits = 1
		return s.hits >= t.cfg.NumFramesConfidence
	case StatusFree, StatusPendingFree:
	}
	return false
}

// refreshStable updates the stable histogram every StableRefreshFrames matches
// as long as the appearance has not drifted away from it.
func (t *Tracker) refreshStable(s *trackSlot) {
	s.sinceStable++
	if s.sinceStable < t.cfg.StableRefreshFrames {
		return
	}
	if t.cfg.Algorithm == correlation.VariantIOU || appearance.Correlation(&s.recent, &s.stable) >= t.cfg.CorrelationThreshold {
		s.stable = s.recent
		s.sinceStable = 0
	}
}

// confirm promotes a BUILDING slot. An INACTIVE track it continues hands over its identity.
func (t *Tracker) confirm(s *trackSlot) {
	if prev := t.reidentify(s); prev != nil {
		s.id = prev.id
		s.uid = prev.uid
		if prev.hasStable {
			s.stable = prev.stable
			s.hasStable = true
		}
		t.setStatus(prev, StatusPendingFree)
		monitoring.Logf("mot: slot %d re-identified as id %d (was slot %d)", s.index, s.id, prev.index)
	} else {
		s.id = t.mintID()
	}
	t.setStatus(s, StatusActive)
	if !s.hasStable {
		s.stable = s.recent
		s.hasStable = true
	}
	s.sinceStable = 0
	s.hits = 0
}

// miss handles a live slot without a detection match.
func (t *Tracker) miss(s *trackSlot) {
	s.IncNoMatch()
	switch s.status {
	case StatusActive, StatusBuilding:
		t.demote(s)
	case StatusInactive:
		t.ageInactive(s)
	case StatusFree, StatusPendingFree:
	}
}

func (t *Tracker) demote(s *trackSlot) {
	t.setStatus(s, StatusInactive)
	s.hits = 0
	s.demotedAt = t.frame
}

// ageInactive frees s once it has stayed unmatched for longer than NumInactiveFrames.
// A slot demoted in the current frame always survives it.
func (t *Tracker) ageInactive(s *trackSlot) {
	if s.demotedAt == t.frame || s.GetNoMatchTimes() <= t.cfg.NumInactiveFrames {
		return
	}
	t.release(s, "inactive")
}

func (t *Tracker) setStatus(s *trackSlot, to Status) {
	if err := s.setStatus(to); err != nil {
		monitoring.Logf("mot: slot %d: %v", s.index, err)
	}
}

// spawn claims a slot for an unmatched detection. When the filter cannot be
// initialised the slot stays FREE and the detection is dropped for this frame.
func (t *Tracker) spawn(det Detection, hist *appearance.Histogram, f *frame.Frame) {
	s := t.claim()
	if s == nil {
		monitoring.Logf("mot: no slot available for detection %+v", det.BBox)
		return
	}
	if err := s.filter.Init(det.BBox, f); err != nil {
		monitoring.Logf("mot: slot %d init failed: %v", s.index, err)
		t.pushFree(s)
		return
	}
	s.occupy(det, hist)
	t.setStatus(s, StatusBuilding)
	monitoring.Logf("mot: slot %d claimed (uid %s)", s.index, s.uid)
	if s.hits >= t.cfg.NumFramesConfidence {
		t.confirm(s)
	}
}

// claim pops a free slot, evicting the longest-unmatched INACTIVE slot when none is free.
func (t *Tracker) claim() *trackSlot {
	if n := len(t.fresh); n > 0 {
		idx := t.fresh[n-1]
		t.fresh = t.fresh[:n-1]
		return &t.slots[idx]
	}
	if len(t.free) == 0 {
		var victim *trackSlot
		for i := range t.slots {
			s := &t.slots[i]
			if s.GetStatus() == StatusInactive && (victim == nil || s.GetNoMatchTimes() > victim.GetNoMatchTimes()) {
				victim = s
			}
		}
		if victim == nil {
			return nil
		}
		t.release(victim, "evicted")
	}
	n := len(t.free)
	idx := t.free[n-1]
	t.free = t.free[:n-1]
	return &t.slots[idx]
}

func (t *Tracker) pushFree(s *trackSlot) {
	if s.used {
		t.free = append(t.free, s.index)
		return
	}
	t.fresh = append(t.fresh, s.index)
}

// release returns s to the free pool and drops its filter workspace.
func (t *Tracker) release(s *trackSlot, reason string) {
	t.setStatus(s, StatusFree)
	s.filter.Deinit()
	monitoring.Logf("mot: slot %d released (%s, id %d)", s.index, reason, s.id)
	s.vacate()
	t.pushFree(s)
}

func (t *Tracker) releasePending() {
	for i := range t.slots {
		if t.slots[i].status == StatusPendingFree {
			t.release(&t.slots[i], "identity moved")
		}
	}
}

// mintID returns the id after the last minted one that no live slot holds,
// wrapping from MaxTracks back to 1.
func (t *Tracker) mintID() int {
	for k := 0; k < MaxTracks; k++ {
		t.lastID = t.lastID%MaxTracks + 1
		if !t.idInUse(t.lastID) {
			return t.lastID
		}
	}
	return 0
}

func (t *Tracker) idInUse(id int) bool {
	for i := range t.slots {
		if t.slots[i].GetStatus() != StatusFree && t.slots[i].GetID() == id {
			return true
		}
	}
	return false
}

func (t *Tracker) output() []TrackedObject {
	out := make([]TrackedObject, 0, MaxTracks)
	for i := range t.slots {
		s := &t.slots[i]
		status := s.GetStatus()
		switch status {
		case StatusFree, StatusPendingFree:
			continue
		case StatusInactive:
			if t.cfg.SuppressInactive {
				continue
			}
		case StatusBuilding, StatusActive:
		}
		obj := TrackedObject{
			UID:        s.GetUID(),
			BBox:       s.GetBBox(),
			Status:     status,
			MapID:      s.mapID,
			Confidence: s.confidence,
			Age:        s.age,
		}
		if status == StatusActive {
			obj.ID = s.GetID()
		}
		out = append(out, obj)
	}
	return out
}

// Close releases every filter workspace. The tracker cannot be used afterwards.
// Calling Close more than once is a no-op.
func (t *Tracker) Close() {
	if t.closed {
		return
	}
	for i := range t.slots {
		s := &t.slots[i]
		s.filter.Deinit()
		if s.status != StatusFree {
			s.vacate()
		}
	}
	t.fresh = t.fresh[:0]
	t.free = t.free[:0]
	t.closed = true
}
