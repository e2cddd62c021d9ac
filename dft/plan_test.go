package dft

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/dsp/fourier"
)

var testLengths = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 11, 12, 13, 15, 16, 20, 24, 25, 30, 32, 36, 40, 45, 48, 49, 60, 64, 72, 77, 80, 90, 96, 100, 104, 120, 128}

func naiveDFT(src []complex128, inverse bool) []complex128 {
	n := len(src)
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var acc complex128
		for j := 0; j < n; j++ {
			phase := sign * 2 * math.Pi * float64(j*k%n) / float64(n)
			acc += src[j] * cmplx.Exp(complex(0, phase))
		}
		out[k] = acc
	}
	return out
}

func randomComplex(rng *rand.Rand, n int) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}
	return out
}

func maxAbsDiff(a, b []complex128) float64 {
	var worst float64
	for i := range a {
		if d := cmplx.Abs(a[i] - b[i]); d > worst {
			worst = d
		}
	}
	return worst
}

func TestFactorize(t *testing.T) {
	cases := map[int][]int{
		2:   {2, 1},
		4:   {4, 1},
		8:   {4, 2, 2, 1},
		12:  {4, 3, 3, 1},
		30:  {2, 15, 3, 5, 5, 1},
		104: {4, 26, 2, 13, 13, 1},
		7:   {7, 1},
	}
	for n, want := range cases {
		got := factorize(n)
		if !cmp.Equal(got, want) {
			t.Errorf("factorize(%d) = %v, want %v", n, got, want)
		}
		product := 1
		for i := 0; i < len(got); i += 2 {
			product *= got[i]
		}
		if product != n {
			t.Errorf("factors of %d multiply to %d", n, product)
		}
	}
}

func TestOptimalSize(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 7: 8, 11: 12, 13: 15, 23: 24, 97: 100, 101: 108}
	for n, want := range cases {
		if got := OptimalSize(n); got != want {
			t.Errorf("OptimalSize(%d) = %d, want %d", n, got, want)
		}
	}
	if got := OptimalEvenSize(25); got != 30 {
		t.Errorf("OptimalEvenSize(25) = %d, want 30", got)
	}
}

func TestNewPlanInvalid(t *testing.T) {
	if _, err := NewPlan(0); err == nil {
		t.Error("expected error for zero length plan")
	}
	if _, err := NewRealPlan(-3); err == nil {
		t.Error("expected error for negative length real plan")
	}
}

func TestPlanMatchesNaiveDFT(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range testLengths {
		plan, err := NewPlan(n)
		if err != nil {
			t.Fatalf("NewPlan(%d): %v", n, err)
		}
		src := randomComplex(rng, n)
		got := make([]complex128, n)
		plan.Forward(got, src)
		want := naiveDFT(src, false)
		if d := maxAbsDiff(got, want); d > 1e-9*float64(n) {
			t.Errorf("n=%d forward differs from naive DFT by %g", n, d)
		}
		plan.Inverse(got, src)
		want = naiveDFT(src, true)
		if d := maxAbsDiff(got, want); d > 1e-9*float64(n) {
			t.Errorf("n=%d inverse differs from naive DFT by %g", n, d)
		}
	}
}

func TestPlanMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, n := range []int{24, 48, 60, 96, 104} {
		plan, err := NewPlan(n)
		if err != nil {
			t.Fatalf("NewPlan(%d): %v", n, err)
		}
		src := randomComplex(rng, n)
		got := make([]complex128, n)
		plan.Forward(got, src)
		want := fourier.NewCmplxFFT(n).Coefficients(nil, src)
		if d := maxAbsDiff(got, want); d > 1e-9*float64(n) {
			t.Errorf("n=%d forward differs from gonum by %g", n, d)
		}
	}
}

func TestPlanRoundTripInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range testLengths {
		plan, err := NewPlan(n)
		if err != nil {
			t.Fatalf("NewPlan(%d): %v", n, err)
		}
		src := randomComplex(rng, n)
		data := append([]complex128(nil), src...)
		plan.Forward(data, data)
		plan.Inverse(data, data)
		for i := range data {
			data[i] /= complex(float64(n), 0)
		}
		for i := range data {
			if cmplx.Abs(data[i]-src[i]) > 1e-4*math.Max(1, cmplx.Abs(src[i])) {
				t.Fatalf("n=%d round trip differs at %d: got %v want %v", n, i, data[i], src[i])
			}
		}
	}
}

func TestRealPlanMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, n := range testLengths {
		rp, err := NewRealPlan(n)
		if err != nil {
			t.Fatalf("NewRealPlan(%d): %v", n, err)
		}
		src := make([]float64, n)
		for i := range src {
			src[i] = rng.Float64()*2 - 1
		}
		got := make([]complex128, rp.SpectrumLen())
		rp.Forward(got, src)
		want := fourier.NewFFT(n).Coefficients(nil, src)
		if len(want) != len(got) {
			t.Fatalf("n=%d spectrum length %d, gonum %d", n, len(got), len(want))
		}
		if d := maxAbsDiff(got, want); d > 1e-9*float64(n) {
			t.Errorf("n=%d real forward differs from gonum by %g", n, d)
		}
		if imag(got[0]) != 0 {
			t.Errorf("n=%d DC bin must be real, got %v", n, got[0])
		}
		if n%2 == 0 && imag(got[n/2]) != 0 {
			t.Errorf("n=%d Nyquist bin must be real, got %v", n, got[n/2])
		}

		back := make([]float64, n)
		rp.Inverse(back, got)
		for i := range back {
			back[i] /= float64(n)
		}
		if diff := cmp.Diff(src, back, cmpopts.EquateApprox(1e-4, 1e-9)); diff != "" {
			t.Errorf("n=%d real round trip mismatch (-want +got):\n%s", n, diff)
		}
	}
}
