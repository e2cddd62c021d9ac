package mot

import (
	"testing"

	"github.com/LdDl/vmot/geom"
)

func TestGateDetectionsSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinWidth, cfg.MaxWidth = 5, 50
	cfg.MinHeight, cfg.MaxHeight = 5, 0
	dets := []Detection{
		{BBox: geom.NewRect(0, 0, 4, 10)},
		{BBox: geom.NewRect(10, 0, 20, 20)},
		{BBox: geom.NewRect(40, 0, 60, 20)},
		{BBox: geom.NewRect(0, 40, 10, 200)},
		{BBox: geom.NewRect(0, 0, 0, 0)},
	}
	kept := gateDetections(dets, cfg)
	if len(kept) != 2 || kept[0] != 1 || kept[1] != 3 {
		t.Errorf("expected detections 1 and 3 to pass, got %v", kept)
	}
}

func TestGateDetectionsOcclusion(t *testing.T) {
	cfg := DefaultConfig()
	dets := []Detection{
		{BBox: geom.NewRect(0, 0, 40, 40)},
		{BBox: geom.NewRect(5, 5, 10, 10)},
		{BBox: geom.NewRect(100, 100, 20, 20)},
		{BBox: geom.NewRect(100, 100, 20, 20)},
	}
	kept := gateDetections(dets, cfg)
	// the small box hides behind the big one; of two identical boxes the later goes
	if len(kept) != 2 || kept[0] != 0 || kept[1] != 2 {
		t.Errorf("expected detections 0 and 2 to pass, got %v", kept)
	}
}

func TestPairCost(t *testing.T) {
	tracker, err := NewTracker(DefaultIOUConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer tracker.Close()
	s := &tracker.slots[0]
	track := geom.NewRect(10, 10, 20, 20)
	s.motion.Reset(track)

	if c := tracker.pairCost(track, nil, s, track); c != 0 {
		t.Errorf("identical boxes should cost 0 for the IOU tracker, got %f", c)
	}
	shifted := geom.NewRect(14, 10, 20, 20)
	c := tracker.pairCost(shifted, nil, s, track)
	if c <= 0 || c >= Infeasible {
		t.Errorf("slightly shifted box should have a small positive cost, got %f", c)
	}
	if c := tracker.pairCost(geom.NewRect(60, 60, 20, 20), nil, s, track); c != Infeasible {
		t.Errorf("disjoint box should be infeasible, got %f", c)
	}
	if c := tracker.pairCost(geom.NewRect(10, 10, 40, 40), nil, s, track); c != Infeasible {
		t.Errorf("doubling the size should be infeasible, got %f", c)
	}
}
