package correlation

import (
	"image"
	"math"

	"github.com/LdDl/vmot/dft"
	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
)

// learner is the variant-specific half of a frequency-domain filter.
type learner interface {
	// features turns ws.patch into ws.feat.
	features(ws *workspace)
	// train blends a model fitted to ws.feat into the current one. rate 1 replaces it.
	train(ws *workspace, rate float64)
	// respond correlates ws.feat with the model into ws.response.
	respond(ws *workspace)
}

// base carries the geometry, state and workspace shared by KCF and MOSSE.
type base struct {
	variant Variant
	params  Params
	learner learner

	ws    *workspace
	geo   geometry
	bbox  geom.Rectangle
	initW float64
	initH float64
	// window scale relative to the window at Init
	scale float64
}

// Variant implements Filter.
func (b *base) Variant() Variant {
	return b.variant
}

// Initialized implements Filter.
func (b *base) Initialized() bool {
	return b.ws != nil
}

// BBox implements Filter.
func (b *base) BBox() geom.Rectangle {
	return b.bbox
}

// WorkspaceBytes implements Filter.
func (b *base) WorkspaceBytes() int64 {
	if b.ws == nil {
		return 0
	}
	return b.ws.arena.size()
}

// Deinit implements Filter.
func (b *base) Deinit() {
	b.ws = nil
}

// start allocates the workspace for geo and trains the first model around bbox.
func (b *base) start(bbox geom.Rectangle, f *frame.Frame, geo geometry) error {
	ws, err := newWorkspace(b.variant, geo, b.params.MaxWorkspaceBytes)
	if err != nil {
		return err
	}
	fillHann(ws.hann, geo.fh, geo.fw)
	sigma := math.Sqrt(float64(geo.fw*geo.fh)) * b.params.OutputSigmaFactor / b.params.Padding
	fillGaussian(ws.yf, ws.response, ws.shifted, ws.plan, sigma)

	b.geo = geo
	b.bbox = bbox
	b.initW = bbox.Width
	b.initH = bbox.Height
	b.scale = 1
	if err := b.observe(ws, f, bbox.Center(), 1); err != nil {
		return err
	}
	b.learner.train(ws, 1)
	b.ws = ws
	return nil
}

func checkInit(bbox geom.Rectangle, f *frame.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if bbox.Clamp(float64(f.Width), float64(f.Height)).Empty() {
		return errors.Wrapf(ErrEmptyBBox, "bbox %+v", bbox)
	}
	return nil
}

// DetectUpdate implements Filter.
func (b *base) DetectUpdate(bbox geom.Rectangle, f *frame.Frame) error {
	if b.ws == nil {
		return ErrNotInitialized
	}
	if err := checkInit(bbox, f); err != nil {
		return err
	}
	scale := math.Sqrt(bbox.Area() / (b.initW * b.initH))
	if err := b.observe(b.ws, f, bbox.Center(), scale); err != nil {
		return err
	}
	b.learner.train(b.ws, b.params.LearningRate)
	b.bbox = bbox
	b.scale = scale
	return nil
}

// UpdatePosition implements Filter.
func (b *base) UpdatePosition(f *frame.Frame, threshold float64) (geom.Rectangle, float64, bool) {
	if b.ws == nil || f.Validate() != nil {
		return b.bbox, 0, false
	}
	scales := [3]float64{1, 0, 0}
	if b.params.MultiScale {
		scales[1] = 1 / b.params.ScaleStep
		scales[2] = b.params.ScaleStep
	}
	center := b.bbox.Center()
	found := false
	best, bestScore, bestK, bestDX, bestDY := 0.0, 0.0, 1.0, 0.0, 0.0
	for _, k := range scales {
		if k == 0 {
			continue
		}
		if err := b.observe(b.ws, f, center, b.scale*k); err != nil {
			continue
		}
		b.learner.respond(b.ws)
		dx, dy, peak, idx := b.peak()
		// Raw peaks of different scales are not comparable, so scales compete on sharpness.
		score := peak
		if b.params.MultiScale {
			score = peakToSidelobe(b.ws.shifted, b.geo.fh, b.geo.fw, idx, sidelobeRadius(b.geo))
		}
		if k != 1 {
			score *= b.params.ScaleWeight
		}
		if !found || score > bestScore {
			found = true
			best, bestScore, bestK, bestDX, bestDY = peak, score, k, dx, dy
		}
	}
	if !found || best < threshold {
		return b.bbox, math.Max(best, 0), false
	}

	scale := b.scale * bestK
	center.X += bestDX * b.geo.baseW * scale / float64(b.geo.tw)
	center.Y += bestDY * b.geo.baseH * scale / float64(b.geo.th)
	b.bbox = geom.NewRectCentered(center, b.bbox.Width*bestK, b.bbox.Height*bestK)
	b.scale = scale
	if err := b.observe(b.ws, f, center, scale); err == nil {
		b.learner.train(b.ws, b.params.LearningRate)
	}
	return b.bbox, best, true
}

// observe extracts the window around center at the given scale and computes its features.
func (b *base) observe(ws *workspace, f *frame.Frame, center geom.Point, scale float64) error {
	if err := extractPatch(ws.pix, ws.patch, f, center, b.geo, scale); err != nil {
		return err
	}
	b.learner.features(ws)
	return nil
}

// peak locates the response maximum and returns its offset from the window
// centre in template pixels, its value and its index in the shifted response.
func (b *base) peak() (float64, float64, float64, int) {
	fw, fh := b.geo.fw, b.geo.fh
	dft.FFTShift(b.ws.shifted, b.ws.response, fh, fw)
	idx := floats.MaxIdx(b.ws.shifted)
	py, px := idx/fw, idx%fw
	cell := float64(b.geo.cell)
	return float64(px-fw/2) * cell, float64(py-fh/2) * cell, b.ws.shifted[idx], idx
}

// minSidelobeStd keeps the ratio finite for an ideal response.
const minSidelobeStd = 1e-6

// sidelobeRadius is the half side of the window around the peak that is left
// out of the sidelobe statistics.
func sidelobeRadius(g geometry) int {
	return max(2, min(g.fw, g.fh)/8)
}

// peakToSidelobe returns (peak - mean) / std of the response outside a
// (2r+1) x (2r+1) window around the peak at idx. When that window covers the
// whole response the peak value itself is returned.
func peakToSidelobe(resp []float64, rows, cols, idx, r int) float64 {
	py, px := idx/cols, idx%cols
	peak := resp[idx]
	var sum, sumSq float64
	n := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if abs(y-py) <= r && abs(x-px) <= r {
				continue
			}
			v := resp[y*cols+x]
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return peak
	}
	mean := sum / float64(n)
	std := math.Sqrt(math.Max(sumSq/float64(n)-mean*mean, 0))
	return (peak - mean) / math.Max(std, minSidelobeStd)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// extractPatch resamples the padded window around center into a tw x th
// template. Parts of the window outside the frame replicate the nearest edge.
func extractPatch(pix []byte, patch []float64, f *frame.Frame, center geom.Point, g geometry, scale float64) error {
	win := geom.NewRectCentered(center, g.baseW*scale, g.baseH*scale)
	visible := win.Clamp(float64(f.Width), float64(f.Height)).ImageRect().Intersect(f.Bounds())
	if visible.Empty() {
		return errors.Wrapf(ErrEmptyBBox, "window %+v is outside the frame", win)
	}
	sx := float64(g.tw) / win.Width
	sy := float64(g.th) / win.Height
	dr := image.Rect(
		clampInt(int(math.Round((float64(visible.Min.X)-win.X)*sx)), 0, g.tw),
		clampInt(int(math.Round((float64(visible.Min.Y)-win.Y)*sy)), 0, g.th),
		clampInt(int(math.Round((float64(visible.Max.X)-win.X)*sx)), 0, g.tw),
		clampInt(int(math.Round((float64(visible.Max.Y)-win.Y)*sy)), 0, g.th),
	)
	if dr.Empty() {
		return errors.Wrapf(ErrEmptyBBox, "window %+v has no visible template pixels", win)
	}
	dst := &image.Gray{Pix: pix, Stride: g.tw, Rect: image.Rect(0, 0, g.tw, g.th)}
	draw.BiLinear.Scale(dst, dr, f.Luma(), visible, draw.Src, nil)
	replicateEdges(dst, dr)
	for i, v := range pix {
		patch[i] = float64(v) / 255.0
	}
	return nil
}

// replicateEdges fills everything outside inner with the nearest pixel of inner.
func replicateEdges(img *image.Gray, inner image.Rectangle) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if inner == img.Rect {
		return
	}
	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		left, right := row[inner.Min.X], row[inner.Max.X-1]
		for x := 0; x < inner.Min.X; x++ {
			row[x] = left
		}
		for x := inner.Max.X; x < w; x++ {
			row[x] = right
		}
	}
	top := img.Pix[inner.Min.Y*img.Stride : inner.Min.Y*img.Stride+w]
	for y := 0; y < inner.Min.Y; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w], top)
	}
	bottom := img.Pix[(inner.Max.Y-1)*img.Stride : (inner.Max.Y-1)*img.Stride+w]
	for y := inner.Max.Y; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w], bottom)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// templateScale maps the padded window to the configured template size.
func templateScale(p Params, winW, winH float64) float64 {
	return float64(p.TemplateSize) / math.Max(winW, winH)
}
