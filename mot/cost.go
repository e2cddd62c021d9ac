package mot

import (
	"github.com/LdDl/vmot/appearance"
	"github.com/LdDl/vmot/correlation"
	"github.com/LdDl/vmot/geom"
)

// Detection is one bounding box from the external detector.
type Detection struct {
	BBox geom.Rectangle
	// MapID is an opaque handle back to the detector's own object record.
	MapID int64
}

// gateDetections returns the indices of detections that pass the size bounds
// and are not hidden behind another detection.
func gateDetections(dets []Detection, cfg Config) []int {
	sized := make([]int, 0, len(dets))
	for i := range dets {
		if sizeAllowed(dets[i].BBox, cfg) {
			sized = append(sized, i)
		}
	}
	kept := make([]int, 0, len(sized))
	for _, i := range sized {
		if !occluded(dets, sized, i, cfg.OcclusionThreshold) {
			kept = append(kept, i)
		}
	}
	return kept
}

func sizeAllowed(r geom.Rectangle, cfg Config) bool {
	if r.Empty() {
		return false
	}
	if r.Width < cfg.MinWidth || r.Height < cfg.MinHeight {
		return false
	}
	if cfg.MaxWidth > 0 && r.Width > cfg.MaxWidth {
		return false
	}
	if cfg.MaxHeight > 0 && r.Height > cfg.MaxHeight {
		return false
	}
	return true
}

// occluded reports whether detection i is mostly covered by another detection
// that is at least as large. Of two equal boxes only the later one is dropped.
func occluded(dets []Detection, candidates []int, i int, threshold float64) bool {
	a := dets[i].BBox
	for _, j := range candidates {
		if j == i {
			continue
		}
		b := dets[j].BBox
		if geom.OverlapRatio(a, b) <= threshold {
			continue
		}
		if a.Area() < b.Area() || (a.Area() == b.Area() && i > j) {
			return true
		}
	}
	return false
}

// pairCost scores detection det against a track predicted at pred.
// Infeasible marks pairs that violate any hard threshold.
func (t *Tracker) pairCost(det geom.Rectangle, hist *appearance.Histogram, s *trackSlot, pred geom.Rectangle) float64 {
	cfg := &t.cfg
	corr := 1.0
	if cfg.Algorithm != correlation.VariantIOU {
		corr = appearance.Correlation(hist, &s.recent)
		if corr < cfg.CorrelationThreshold {
			return Infeasible
		}
	}
	if !pred.Scale(cfg.MatchSearchRegion).Contains(det.Center()) {
		return Infeasible
	}
	iou := geom.IoU(det, pred)
	if iou <= cfg.OverlapThreshold {
		return Infeasible
	}
	sizeChange := geom.SizeChange(pred, det)
	if sizeChange > cfg.ScaleChangeThreshold {
		return Infeasible
	}
	return cfg.CorrelationWeight*(1-corr) + cfg.OverlapWeight*(1-iou) + cfg.ScaleWeight*sizeChange
}

// costMatrix builds the detections x live slots matrix.
func (t *Tracker) costMatrix(dets []Detection, kept []int, hists []appearance.Histogram, live []int) [][]float64 {
	if len(kept) == 0 {
		return nil
	}
	preds := make([]geom.Rectangle, len(live))
	for j, idx := range live {
		preds[j] = t.slots[idx].GetPredictedBBox()
	}
	cost := make([][]float64, len(kept))
	for i, di := range kept {
		cost[i] = make([]float64, len(live))
		for j, idx := range live {
			cost[i][j] = t.pairCost(dets[di].BBox, &hists[i], &t.slots[idx], preds[j])
		}
	}
	return cost
}
