package dft

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestDivSpectrumsInvertsMul(t *testing.T) {
	a := []complex128{complex(1, 2), complex(-3, 0.5), complex(0, 4)}
	b := []complex128{complex(2, -1), complex(0.25, 0.75), complex(-1, -1)}
	prod := make([]complex128, 3)
	MulSpectrums(prod, a, b, false)
	back := make([]complex128, 3)
	DivSpectrums(back, prod, b, 0)
	if d := maxAbsDiff(back, a); d > 1e-12 {
		t.Errorf("a*b/b differs from a by %g", d)
	}
}

func TestDivSpectrumsRegularized(t *testing.T) {
	dst := make([]complex128, 2)
	DivSpectrums(dst, []complex128{1, 1}, []complex128{0, 0}, 0)
	if dst[0] != 0 || dst[1] != 0 {
		t.Errorf("division by an all-zero spectrum without eps must yield zero, got %v", dst)
	}
	DivSpectrums(dst, []complex128{2, 2}, []complex128{1, 0}, 1)
	if cmplx.Abs(dst[0]-1) > 1e-12 {
		t.Errorf("2·1/(1+1) should be 1, got %v", dst[0])
	}
	if dst[1] != 0 {
		t.Errorf("2·0/(0+1) should be 0, got %v", dst[1])
	}
}

func TestMulSpectrumsConjugate(t *testing.T) {
	dst := make([]complex128, 1)
	MulSpectrums(dst, []complex128{complex(0, 1)}, []complex128{complex(0, 1)}, true)
	if dst[0] != 1 {
		t.Errorf("i·conj(i) should be 1, got %v", dst[0])
	}
}

func TestMagnitudeAndEnergy(t *testing.T) {
	src := []complex128{complex(3, 4), complex(0, -2)}
	mag := make([]float64, 2)
	Magnitude(mag, src)
	if mag[0] != 5 || mag[1] != 2 {
		t.Errorf("unexpected magnitudes %v", mag)
	}
	if e := Energy(src); math.Abs(e-29) > 1e-12 {
		t.Errorf("expected energy 29, got %f", e)
	}
}

func TestFFTShiftRoundTrip(t *testing.T) {
	for _, sz := range [][2]int{{4, 4}, {3, 5}, {6, 3}} {
		rows, cols := sz[0], sz[1]
		src := make([]float64, rows*cols)
		for i := range src {
			src[i] = float64(i)
		}
		shifted := make([]float64, rows*cols)
		FFTShift(shifted, src, rows, cols)
		if shifted[(rows/2)*cols+cols/2] != src[0] {
			t.Errorf("%dx%d: origin should land on the centre", cols, rows)
		}
		back := make([]float64, rows*cols)
		IFFTShift(back, shifted, rows, cols)
		for i := range src {
			if back[i] != src[i] {
				t.Fatalf("%dx%d: IFFTShift(FFTShift(x)) differs at %d", cols, rows, i)
			}
		}
	}
}

func TestFFTShiftComplex(t *testing.T) {
	src := []complex128{1, 2, 3, 4}
	dst := make([]complex128, 4)
	FFTShift(dst, src, 2, 2)
	want := []complex128{4, 3, 2, 1}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("FFTShift 2x2 = %v, want %v", dst, want)
		}
	}
}
