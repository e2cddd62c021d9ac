package dft

import (
	"math/cmplx"
)

// MulSpectrums multiplies a and b elementwise into dst. With conjB set the
// second operand is conjugated, which turns the product into a cross-correlation
// once transformed back: F⁻¹(A·conj(B)) = b ⋆ a.
func MulSpectrums(dst, a, b []complex128, conjB bool) {
	n := len(dst)
	a, b = a[:n], b[:n]
	if conjB {
		for i := range dst {
			dst[i] = a[i] * cmplx.Conj(b[i])
		}
		return
	}
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

// DivSpectrums computes a/b elementwise as a·conj(b)/(|b|²+eps). A positive eps
// regularizes bins where b vanishes.
func DivSpectrums(dst, a, b []complex128, eps float64) {
	n := len(dst)
	a, b = a[:n], b[:n]
	for i := range dst {
		br, bi := real(b[i]), imag(b[i])
		den := br*br + bi*bi + eps
		if den == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = a[i] * complex(br/den, -bi/den)
	}
}

// Magnitude writes |src[i]| into dst.
func Magnitude(dst []float64, src []complex128) {
	for i := range dst {
		dst[i] = cmplx.Abs(src[i])
	}
}

// Real writes the real part of src into dst.
func Real(dst []float64, src []complex128) {
	for i := range dst {
		dst[i] = real(src[i])
	}
}

// Energy returns Σ|src[i]|², the squared L2 norm of a spectrum.
// By Parseval this is n times the energy of the spatial signal.
func Energy(src []complex128) float64 {
	var e float64
	for _, v := range src {
		e += real(v)*real(v) + imag(v)*imag(v)
	}
	return e
}

// FFTShift swaps quadrants so that index (0, 0) moves to (rows/2, cols/2).
// dst and src must not overlap.
func FFTShift[T float64 | complex128](dst, src []T, rows, cols int) {
	shift(dst, src, rows, cols, rows/2, cols/2)
}

// IFFTShift undoes FFTShift: index (rows/2, cols/2) moves to (0, 0).
// dst and src must not overlap.
func IFFTShift[T float64 | complex128](dst, src []T, rows, cols int) {
	shift(dst, src, rows, cols, rows-rows/2, cols-cols/2)
}

func shift[T float64 | complex128](dst, src []T, rows, cols, dr, dc int) {
	for r := 0; r < rows; r++ {
		tr := (r + dr) % rows
		for c := 0; c < cols; c++ {
			dst[tr*cols+(c+dc)%cols] = src[r*cols+c]
		}
	}
}
