// Package dft implements mixed-radix discrete Fourier transforms and the
// elementwise spectral operators used by the correlation filters.
//
// All transforms are unnormalized in the forward direction. 1D inverse
// transforms are unnormalized too, while the 2D inverse transforms scale by
// 1/(rows*cols) so that Inverse(Forward(x)) == x.
package dft

import "math"

// factorize splits n into radix stages.
// Result is a flat list of (radix, remaining length) pairs: radix 4 is tried first,
// then 2, then odd trial divisors. Whatever prime remains becomes a generic stage.
func factorize(n int) []int {
	factors := make([]int, 0, 8)
	p := 4
	limit := int(math.Floor(math.Sqrt(float64(n))))
	for n > 1 {
		for n%p != 0 {
			switch p {
			case 4:
				p = 2
			case 2:
				p = 3
			default:
				p += 2
			}
			if p > limit {
				p = n
			}
		}
		n /= p
		factors = append(factors, p, n)
	}
	return factors
}

// OptimalSize returns the smallest m >= n whose only prime factors are 2, 3 and 5.
// Lengths of this form transform with the specialized butterflies only.
func OptimalSize(n int) int {
	if n <= 1 {
		return 1
	}
	for m := n; ; m++ {
		if isSmooth(m) {
			return m
		}
	}
}

// OptimalEvenSize is like OptimalSize but never returns an odd length.
// Even lengths keep FFTShift and IFFTShift symmetric.
func OptimalEvenSize(n int) int {
	m := OptimalSize(n)
	for m%2 != 0 {
		m = OptimalSize(m + 1)
	}
	return m
}

func isSmooth(m int) bool {
	for _, p := range [...]int{2, 3, 5} {
		for m%p == 0 {
			m /= p
		}
	}
	return m == 1
}
