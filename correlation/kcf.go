package correlation

import (
	"math"
	"math/cmplx"

	"github.com/LdDl/vmot/dft"
	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
)

// minFeatureCells keeps tiny or very thin boxes trackable.
const minFeatureCells = 4

// KCF is a kernelized correlation filter over HOG features with a Gaussian kernel.
type KCF struct {
	base
}

// NewKCF creates an uninitialised KCF filter.
func NewKCF(p Params) *KCF {
	k := &KCF{}
	k.variant = VariantKCF
	k.params = p
	k.learner = k
	return k
}

// Init implements Filter.
func (k *KCF) Init(bbox geom.Rectangle, f *frame.Frame) error {
	if err := checkInit(bbox, f); err != nil {
		return err
	}
	k.Deinit()
	return k.start(bbox, f, kcfGeometry(k.params, bbox))
}

func kcfGeometry(p Params, bbox geom.Rectangle) geometry {
	winW, winH := bbox.Width*p.Padding, bbox.Height*p.Padding
	s := templateScale(p, winW, winH)
	cell := float64(p.CellSize)
	fw := dft.OptimalEvenSize(max(int(math.Ceil(winW*s/cell)), minFeatureCells))
	fh := dft.OptimalEvenSize(max(int(math.Ceil(winH*s/cell)), minFeatureCells))
	return geometry{
		tw:       fw * p.CellSize,
		th:       fh * p.CellSize,
		fw:       fw,
		fh:       fh,
		cell:     p.CellSize,
		baseW:    winW,
		baseH:    winH,
		channels: hogBins,
	}
}

func (k *KCF) features(ws *workspace) {
	computeHOG(ws.feat, ws.cellHist, ws.energy, ws.patch, ws.hann, k.geo.tw, k.geo.th, k.geo.cell)
}

func (k *KCF) transformFeatures(ws *workspace) float64 {
	n := k.geo.cells()
	for c := 0; c < k.geo.channels; c++ {
		ws.plan.ForwardReal(channel(ws.xf, c, n), channel(ws.feat, c, n))
	}
	return dft.Energy(ws.xf) / float64(n)
}

func (k *KCF) train(ws *workspace, rate float64) {
	xx := k.transformFeatures(ws)
	k.gaussianCorrelation(ws, ws.xf, ws.xf, xx, xx)
	lambda := complex(k.params.Lambda, 0)
	for i := range ws.spec {
		ws.spec[i] = ws.yf[i] / (ws.kf[i] + lambda)
	}
	if rate >= 1 {
		copy(ws.alphaf, ws.spec)
		copy(ws.modelXf, ws.xf)
		return
	}
	blend(ws.alphaf, ws.spec, rate)
	blend(ws.modelXf, ws.xf, rate)
}

func (k *KCF) respond(ws *workspace) {
	zz := k.transformFeatures(ws)
	xx := dft.Energy(ws.modelXf) / float64(k.geo.cells())
	k.gaussianCorrelation(ws, ws.modelXf, ws.xf, xx, zz)
	dft.MulSpectrums(ws.spec, ws.alphaf, ws.kf, false)
	ws.plan.InverseReal(ws.response, ws.spec)
}

// gaussianCorrelation writes the spectrum of
// k = exp(-max(0, |x|² + |z|² - 2·F⁻¹(Σc conj(x̂c)·ẑc)) / (σ²·numel)) into ws.kf.
func (k *KCF) gaussianCorrelation(ws *workspace, xf, zf []complex128, xx, zz float64) {
	n := k.geo.cells()
	clear(ws.kf)
	for c := 0; c < k.geo.channels; c++ {
		xc, zc := channel(xf, c, n), channel(zf, c, n)
		for i := range ws.kf {
			ws.kf[i] += zc[i] * cmplx.Conj(xc[i])
		}
	}
	ws.plan.InverseReal(ws.corr, ws.kf)
	numel := float64(k.geo.channels * n)
	sigma2 := k.params.KernelSigma * k.params.KernelSigma
	for i, xz := range ws.corr {
		d := (xx + zz - 2*xz) / numel
		if d < 0 {
			d = 0
		}
		ws.corr[i] = math.Exp(-d / sigma2)
	}
	ws.plan.ForwardReal(ws.kf, ws.corr)
}

// blend computes dst = (1-rate)·dst + rate·src.
func blend(dst, src []complex128, rate float64) {
	keep := complex(1-rate, 0)
	r := complex(rate, 0)
	for i := range dst {
		dst[i] = keep*dst[i] + r*src[i]
	}
}
