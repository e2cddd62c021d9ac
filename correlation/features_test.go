package correlation

import (
	"math"
	"testing"

	"github.com/LdDl/vmot/dft"
)

func TestHOGUniformPatch(t *testing.T) {
	const tw, th, cell = 16, 16, 4
	n := (tw / cell) * (th / cell)
	patch := make([]float64, tw*th)
	for i := range patch {
		patch[i] = 0.7
	}
	feat := make([]float64, hogBins*n)
	computeHOG(feat, make([]float64, hogBins*n), make([]float64, n), patch, nil, tw, th, cell)
	for i, v := range feat {
		if v != 0 {
			t.Fatalf("uniform patch should give zero features, feat[%d]=%f", i, v)
		}
	}
}

func TestHOGVerticalEdge(t *testing.T) {
	const tw, th, cell = 16, 16, 4
	n := (tw / cell) * (th / cell)
	patch := make([]float64, tw*th)
	for y := 0; y < th; y++ {
		for x := tw / 2; x < tw; x++ {
			patch[y*tw+x] = 1
		}
	}
	feat := make([]float64, hogBins*n)
	computeHOG(feat, make([]float64, hogBins*n), make([]float64, n), patch, nil, tw, th, cell)
	total, horizontal := 0.0, 0.0
	for b := 0; b < hogBins; b++ {
		for i := 0; i < n; i++ {
			v := feat[b*n+i]
			if v < 0 || v > hogTruncation+1e-12 {
				t.Fatalf("feature out of range: %f", v)
			}
			total += v
			if b == 0 || b == hogBins-1 {
				horizontal += v
			}
		}
	}
	if total == 0 {
		t.Fatal("edge should produce features")
	}
	if math.Abs(horizontal-total) > 1e-12 {
		t.Errorf("a vertical edge should only fill the horizontal-gradient bins: %f of %f", horizontal, total)
	}
}

func TestPreprocessFlatPatch(t *testing.T) {
	patch := []float64{0.5, 0.5, 0.5, 0.5}
	feat := make([]float64, 4)
	preprocessIntensity(feat, patch, []float64{1, 1, 1, 1})
	for _, v := range feat {
		if v != 0 || math.IsNaN(v) {
			t.Fatalf("flat patch should normalise to zeros, got %v", feat)
		}
	}
}

func TestGaussianPeakAtOrigin(t *testing.T) {
	plan, err := dft.NewPlan2D(8, 12)
	if err != nil {
		t.Fatal(err)
	}
	yf := make([]complex128, 96)
	fillGaussian(yf, make([]float64, 96), make([]float64, 96), plan, 1.0)
	y := make([]float64, 96)
	plan.InverseReal(y, yf)
	if math.Abs(y[0]-1) > 1e-9 {
		t.Errorf("expected unit peak at the origin, got %f", y[0])
	}
	for i := 1; i < len(y); i++ {
		if y[i] >= y[0] {
			t.Fatalf("y[%d]=%f is not below the origin peak", i, y[i])
		}
	}
}

func TestArenaSlicesAreBounded(t *testing.T) {
	var l arenaLayout
	l.addFloats(3, 5)
	l.addComplexes(2)
	l.addBytes(4)
	a, err := newArena(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	first := a.floats(3)
	second := a.floats(5)
	_ = append(first, 42)
	if second[0] == 42 {
		t.Error("append must not spill into the next sub-slice")
	}
	if a.size() != l.size() || l.size() != 8*8+2*16+4 {
		t.Errorf("unexpected arena size %d", a.size())
	}
}

func TestPeakToSidelobe(t *testing.T) {
	const n = 16
	sharp := make([]float64, n*n)
	broad := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			noise := 0.01 * float64((7*x+3*y)%5)
			d2 := float64((x-8)*(x-8) + (y-8)*(y-8))
			sharp[y*n+x] = noise + math.Exp(-d2/2)
			broad[y*n+x] = noise + 1.2*math.Exp(-d2/32)
		}
	}
	idx := 8*n + 8
	s := peakToSidelobe(sharp, n, n, idx, 2)
	b := peakToSidelobe(broad, n, n, idx, 2)
	if s <= b {
		t.Errorf("a sharp peak should beat a higher but broad one: %f <= %f", s, b)
	}
	if broad[idx] <= sharp[idx] {
		t.Fatal("broad peak is expected to be higher")
	}

	small := []float64{0, 0, 0, 0.5}
	if got := peakToSidelobe(small, 2, 2, 3, 2); got != 0.5 {
		t.Errorf("without sidelobes the peak value is returned, got %f", got)
	}
	ideal := make([]float64, n*n)
	ideal[idx] = 1
	if got := peakToSidelobe(ideal, n, n, idx, 2); math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("flat sidelobes must give a finite ratio, got %f", got)
	}
}
