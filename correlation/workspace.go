package correlation

import (
	"github.com/LdDl/vmot/dft"
	"github.com/pkg/errors"
)

// hogBins is the number of unsigned orientation bins per HOG cell.
const hogBins = 9

// geometry fixes the template and feature grid of one filter occupancy.
type geometry struct {
	// template size in pixels
	tw, th int
	// feature grid; equals the template for pixel features
	fw, fh int
	cell   int
	// padded window at scale 1, in frame pixels
	baseW, baseH float64
	channels     int
}

func (g geometry) cells() int {
	return g.fw * g.fh
}

// workspace holds every buffer a filter touches while tracking.
// All slices are carved from one arena in newWorkspace.
type workspace struct {
	arena *arena
	plan  *dft.Plan2D

	// resampled luma, tw*th
	pix   []byte
	patch []float64

	// feature grid sized, fw*fh
	hann     []float64
	response []float64
	shifted  []float64
	yf       []complex128
	spec     []complex128

	// channels*fw*fh
	feat []float64
	xf   []complex128

	// KCF only
	cellHist []float64
	energy   []float64
	corr     []float64
	kf       []complex128
	alphaf   []complex128
	modelXf  []complex128

	// MOSSE only
	hf []complex128
}

func newWorkspace(v Variant, g geometry, budget int64) (*workspace, error) {
	n := g.cells()
	cn := g.channels * n
	var l arenaLayout
	l.addBytes(g.tw * g.th)
	l.addFloats(g.tw*g.th, n, n, n, cn)
	l.addComplexes(n, n, cn)
	switch v {
	case VariantKCF:
		l.addFloats(hogBins*n, n, n)
		l.addComplexes(n, n, cn)
	case VariantMOSSE:
		l.addComplexes(n)
	}
	a, err := newArena(l, budget)
	if err != nil {
		return nil, err
	}
	plan, err := dft.NewPlan2D(g.fh, g.fw)
	if err != nil {
		return nil, errors.Wrap(err, "can't prepare feature plan")
	}

	ws := &workspace{arena: a, plan: plan}
	ws.pix = a.bytes(g.tw * g.th)
	ws.patch = a.floats(g.tw * g.th)
	ws.hann = a.floats(n)
	ws.response = a.floats(n)
	ws.shifted = a.floats(n)
	ws.feat = a.floats(cn)
	ws.yf = a.complexes(n)
	ws.spec = a.complexes(n)
	ws.xf = a.complexes(cn)
	switch v {
	case VariantKCF:
		ws.cellHist = a.floats(hogBins * n)
		ws.energy = a.floats(n)
		ws.corr = a.floats(n)
		ws.kf = a.complexes(n)
		ws.alphaf = a.complexes(n)
		ws.modelXf = a.complexes(cn)
	case VariantMOSSE:
		ws.hf = a.complexes(n)
	}
	return ws, nil
}

// channel returns the c-th plane of a channels*n buffer.
func channel[T float64 | complex128](buf []T, c, n int) []T {
	return buf[c*n : (c+1)*n : (c+1)*n]
}
