package correlation

import (
	"math"

	"github.com/LdDl/vmot/dft"
	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
)

const minTemplateSide = 8

// MOSSE is a linear correlation filter over normalised log intensities.
type MOSSE struct {
	base
}

// NewMOSSE creates an uninitialised MOSSE filter.
func NewMOSSE(p Params) *MOSSE {
	m := &MOSSE{}
	m.variant = VariantMOSSE
	m.params = p
	m.learner = m
	return m
}

// Init implements Filter.
func (m *MOSSE) Init(bbox geom.Rectangle, f *frame.Frame) error {
	if err := checkInit(bbox, f); err != nil {
		return err
	}
	m.Deinit()
	return m.start(bbox, f, mosseGeometry(m.params, bbox))
}

func mosseGeometry(p Params, bbox geom.Rectangle) geometry {
	winW, winH := bbox.Width*p.Padding, bbox.Height*p.Padding
	s := templateScale(p, winW, winH)
	tw := dft.OptimalEvenSize(max(int(math.Round(winW*s)), minTemplateSide))
	th := dft.OptimalEvenSize(max(int(math.Round(winH*s)), minTemplateSide))
	return geometry{
		tw:       tw,
		th:       th,
		fw:       tw,
		fh:       th,
		cell:     1,
		baseW:    winW,
		baseH:    winH,
		channels: 1,
	}
}

func (m *MOSSE) features(ws *workspace) {
	preprocessIntensity(ws.feat, ws.patch, ws.hann)
}

func (m *MOSSE) train(ws *workspace, rate float64) {
	ws.plan.ForwardReal(ws.xf, ws.feat)
	dft.DivSpectrums(ws.spec, ws.yf, ws.xf, m.params.Lambda)
	if rate >= 1 {
		copy(ws.hf, ws.spec)
		return
	}
	blend(ws.hf, ws.spec, rate)
}

func (m *MOSSE) respond(ws *workspace) {
	ws.plan.ForwardReal(ws.xf, ws.feat)
	dft.MulSpectrums(ws.spec, ws.hf, ws.xf, false)
	ws.plan.InverseReal(ws.response, ws.spec)
}
