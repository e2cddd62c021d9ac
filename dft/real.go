package dft

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
)

// RealPlan transforms real sequences of a fixed length to and from their half
// spectrum of n/2+1 bins. Bin 0 (DC) and, for even n, bin n/2 (Nyquist) have
// zero imaginary part.
//
// Even lengths pack the input into a complex sequence of length n/2, so no work
// is spent on the conjugate-symmetric half. Odd lengths fall back to a full
// complex transform.
type RealPlan struct {
	n     int
	half  *Plan
	full  *Plan
	super []complex128
	tmp   []complex128
}

// NewRealPlan prepares a real transform of length n.
func NewRealPlan(n int) (*RealPlan, error) {
	if n < 1 {
		return nil, errors.Errorf("dft: invalid real transform length %d", n)
	}
	rp := &RealPlan{n: n}
	var err error
	if n%2 == 0 {
		rp.half, err = NewPlan(n / 2)
		if err != nil {
			return nil, errors.Wrap(err, "can't prepare half-length plan")
		}
		rp.super = make([]complex128, n/2+1)
		for k := range rp.super {
			phase := -2.0 * math.Pi * float64(k) / float64(n)
			s, c := math.Sincos(phase)
			rp.super[k] = complex(c, s)
		}
		rp.tmp = make([]complex128, n/2+1)
	} else {
		rp.full, err = NewPlan(n)
		if err != nil {
			return nil, errors.Wrap(err, "can't prepare full-length plan")
		}
		rp.tmp = make([]complex128, n)
	}
	return rp, nil
}

// Len returns the length of the real sequence.
func (rp *RealPlan) Len() int {
	return rp.n
}

// SpectrumLen returns the number of bins in the half spectrum.
func (rp *RealPlan) SpectrumLen() int {
	return rp.n/2 + 1
}

// Forward writes the n/2+1 bins of the forward DFT of src into dst.
func (rp *RealPlan) Forward(dst []complex128, src []float64) {
	n := rp.n
	if len(src) < n || len(dst) < n/2+1 {
		panic(errors.Errorf("dft: real forward buffers too short for length %d", n))
	}
	if rp.full != nil {
		for i := 0; i < n; i++ {
			rp.tmp[i] = complex(src[i], 0)
		}
		rp.full.Forward(rp.tmp, rp.tmp)
		copy(dst, rp.tmp[:n/2+1])
		return
	}

	h := n / 2
	z := rp.tmp[:h]
	for k := 0; k < h; k++ {
		z[k] = complex(src[2*k], src[2*k+1])
	}
	rp.half.Forward(z, z)

	// Split the packed spectrum into its even and odd halves.
	z0 := z[0]
	for k := 1; k <= h/2; k++ {
		a := z[k]
		b := cmplx.Conj(z[h-k])
		even := (a + b) * 0.5
		odd := (a - b) * complex(0, -0.5)
		dst[k] = even + rp.super[k]*odd
		dst[h-k] = cmplx.Conj(even) + rp.super[h-k]*cmplx.Conj(odd)
	}
	dst[0] = complex(real(z0)+imag(z0), 0)
	dst[h] = complex(real(z0)-imag(z0), 0)
}

// Inverse reconstructs the real sequence from its n/2+1 bins. Like Plan.Inverse
// the result is unnormalized: it equals n times the original sequence.
func (rp *RealPlan) Inverse(dst []float64, src []complex128) {
	n := rp.n
	if len(dst) < n || len(src) < n/2+1 {
		panic(errors.Errorf("dft: real inverse buffers too short for length %d", n))
	}
	if rp.full != nil {
		full := rp.tmp[:n]
		copy(full, src[:n/2+1])
		for k := n/2 + 1; k < n; k++ {
			full[k] = cmplx.Conj(src[n-k])
		}
		rp.full.Inverse(full, full)
		for i := 0; i < n; i++ {
			dst[i] = real(full[i])
		}
		return
	}

	h := n / 2
	z := rp.tmp[:h]
	for k := 0; k < h; k++ {
		a := src[k]
		b := cmplx.Conj(src[h-k])
		even := (a + b) * 0.5
		odd := (a - b) * 0.5 * cmplx.Conj(rp.super[k])
		z[k] = even + mulI(odd)
	}
	rp.half.Inverse(z, z)
	for k := 0; k < h; k++ {
		dst[2*k] = 2 * real(z[k])
		dst[2*k+1] = 2 * imag(z[k])
	}
}
