package dft

import (
	"math"

	"github.com/pkg/errors"
)

// Plan is a precomputed 1D complex transform of a fixed length.
//
// A Plan owns scratch buffers, so it must not be used from several goroutines
// at once. Distinct plans share nothing.
type Plan struct {
	n        int
	factors  []int
	forward  []complex128
	inverse  []complex128
	scratch  []complex128
	buf      []complex128
	maxRadix int
}

// NewPlan prepares a transform of length n.
func NewPlan(n int) (*Plan, error) {
	if n < 1 {
		return nil, errors.Errorf("dft: invalid transform length %d", n)
	}
	p := &Plan{
		n:       n,
		factors: factorize(n),
		forward: make([]complex128, n),
		inverse: make([]complex128, n),
		buf:     make([]complex128, n),
	}
	for i := 0; i < n; i++ {
		phase := -2.0 * math.Pi * float64(i) / float64(n)
		s, c := math.Sincos(phase)
		p.forward[i] = complex(c, s)
		p.inverse[i] = complex(c, -s)
	}
	for i := 0; i < len(p.factors); i += 2 {
		if p.factors[i] > p.maxRadix {
			p.maxRadix = p.factors[i]
		}
	}
	p.scratch = make([]complex128, p.maxRadix)
	return p, nil
}

// Len returns the transform length.
func (p *Plan) Len() int {
	return p.n
}

// Forward computes the unnormalized forward DFT of src into dst.
// dst and src must both have length Len(); they may be the same slice.
func (p *Plan) Forward(dst, src []complex128) {
	p.run(dst, src, false)
}

// Inverse computes the unnormalized inverse DFT of src into dst.
func (p *Plan) Inverse(dst, src []complex128) {
	p.run(dst, src, true)
}

func (p *Plan) run(dst, src []complex128, inverse bool) {
	if len(dst) < p.n || len(src) < p.n {
		panic(errors.Errorf("dft: buffer shorter than plan length %d", p.n))
	}
	if p.n == 1 {
		dst[0] = src[0]
		return
	}
	in := src[:p.n]
	if &dst[0] == &src[0] {
		copy(p.buf, in)
		in = p.buf
	}
	p.work(dst[:p.n], in, 0, 1, 0, inverse)
}

// work runs one decimation-in-time stage: it recursively transforms the p
// interleaved sub-sequences of length m and then merges them with a radix-p butterfly.
func (p *Plan) work(out, in []complex128, offset, fstride, stage int, inverse bool) {
	radix, m := p.factors[2*stage], p.factors[2*stage+1]
	if m == 1 {
		for k := 0; k < radix; k++ {
			out[k] = in[offset+k*fstride]
		}
	} else {
		for k := 0; k < radix; k++ {
			p.work(out[k*m:(k+1)*m], in, offset+k*fstride, fstride*radix, stage+1, inverse)
		}
	}

	tw := p.forward
	if inverse {
		tw = p.inverse
	}
	switch radix {
	case 2:
		butterfly2(out, tw, fstride, m)
	case 3:
		butterfly3(out, tw, fstride, m)
	case 4:
		butterfly4(out, tw, fstride, m, inverse)
	case 5:
		butterfly5(out, tw, fstride, m)
	default:
		p.butterflyGeneric(out, tw, fstride, m, radix)
	}
}

func butterfly2(out, tw []complex128, fstride, m int) {
	for k := 0; k < m; k++ {
		t := out[k+m] * tw[k*fstride]
		out[k+m] = out[k] - t
		out[k] += t
	}
}

func butterfly3(out, tw []complex128, fstride, m int) {
	epi3 := imag(tw[fstride*m])
	m2 := 2 * m
	for k := 0; k < m; k++ {
		s1 := out[k+m] * tw[k*fstride]
		s2 := out[k+m2] * tw[2*k*fstride]
		s3 := s1 + s2
		s0 := (s1 - s2) * complex(epi3, 0)
		half := out[k] - s3*0.5
		out[k] += s3
		out[k+m2] = half - mulI(s0)
		out[k+m] = half + mulI(s0)
	}
}

func butterfly4(out, tw []complex128, fstride, m int, inverse bool) {
	m2, m3 := 2*m, 3*m
	for k := 0; k < m; k++ {
		s0 := out[k+m] * tw[k*fstride]
		s1 := out[k+m2] * tw[2*k*fstride]
		s2 := out[k+m3] * tw[3*k*fstride]
		s5 := out[k] - s1
		out[k] += s1
		s3 := s0 + s2
		s4 := s0 - s2
		out[k+m2] = out[k] - s3
		out[k] += s3
		if inverse {
			out[k+m] = s5 + mulI(s4)
			out[k+m3] = s5 - mulI(s4)
		} else {
			out[k+m] = s5 - mulI(s4)
			out[k+m3] = s5 + mulI(s4)
		}
	}
}

func butterfly5(out, tw []complex128, fstride, m int) {
	ya := tw[fstride*m]
	yb := tw[2*fstride*m]
	yar, yai := real(ya), imag(ya)
	ybr, ybi := real(yb), imag(yb)
	for u := 0; u < m; u++ {
		s0 := out[u]
		s1 := out[u+m] * tw[u*fstride]
		s2 := out[u+2*m] * tw[2*u*fstride]
		s3 := out[u+3*m] * tw[3*u*fstride]
		s4 := out[u+4*m] * tw[4*u*fstride]

		s7 := s1 + s4
		s10 := s1 - s4
		s8 := s2 + s3
		s9 := s2 - s3

		out[u] = s0 + s7 + s8

		s5 := s0 + s7*complex(yar, 0) + s8*complex(ybr, 0)
		s6 := -mulI(s10*complex(yai, 0) + s9*complex(ybi, 0))
		out[u+m] = s5 - s6
		out[u+4*m] = s5 + s6

		s11 := s0 + s7*complex(ybr, 0) + s8*complex(yar, 0)
		s12 := mulI(s10*complex(ybi, 0) - s9*complex(yai, 0))
		out[u+2*m] = s11 + s12
		out[u+3*m] = s11 - s12
	}
}

// butterflyGeneric handles any remaining prime radix with an O(radix²) inner DFT.
func (p *Plan) butterflyGeneric(out, tw []complex128, fstride, m, radix int) {
	scratch := p.scratch[:radix]
	for u := 0; u < m; u++ {
		for q := 0; q < radix; q++ {
			scratch[q] = out[u+q*m]
		}
		for q1 := 0; q1 < radix; q1++ {
			k := u + q1*m
			acc := scratch[0]
			twidx := 0
			for q := 1; q < radix; q++ {
				twidx += fstride * k
				if twidx >= p.n {
					twidx -= p.n
				}
				acc += scratch[q] * tw[twidx]
			}
			out[k] = acc
		}
	}
}

// mulI multiplies by the imaginary unit without a full complex product.
func mulI(c complex128) complex128 {
	return complex(-imag(c), real(c))
}
