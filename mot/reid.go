package mot

import (
	"math"

	"github.com/LdDl/vmot/appearance"
	"github.com/LdDl/vmot/correlation"
	"github.com/LdDl/vmot/geom"
)

// reidentify looks for an INACTIVE track that the newly confirmed slot s
// continues. It uses a wider search region than ordinary association and
// compares against both the recent and the stable appearance of each candidate.
func (t *Tracker) reidentify(s *trackSlot) *trackSlot {
	cfg := &t.cfg
	bbox := s.GetBBox()
	center := bbox.Center()
	var best *trackSlot
	bestCost := math.Inf(1)
	for i := range t.slots {
		c := &t.slots[i]
		if c == s || c.GetStatus() != StatusInactive || c.GetID() == 0 {
			continue
		}
		pred := c.GetPredictedBBox()
		region := pred.Scale(cfg.RelativeSearchRegion)
		if !region.Contains(center) {
			continue
		}
		if geom.SizeChange(pred, bbox) > cfg.ScaleChangeThreshold {
			continue
		}
		corr := 1.0
		if cfg.Algorithm != correlation.VariantIOU {
			corr = appearance.Correlation(&s.recent, &c.recent)
			if c.hasStable {
				corr = math.Max(corr, appearance.Correlation(&s.recent, &c.stable))
			}
			if corr < cfg.CorrelationThreshold {
				continue
			}
		}
		diag := math.Hypot(region.Width, region.Height)
		cost := 1 - corr
		if diag > 0 {
			cost += geom.EuclideanDistance(center, pred.Center()) / diag
		}
		if cost < bestCost {
			best = c
			bestCost = cost
		}
	}
	return best
}
