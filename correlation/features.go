package correlation

import (
	"math"

	"github.com/LdDl/vmot/dft"
	"gonum.org/v1/gonum/stat"
)

const (
	hogTruncation = 0.2
	hogEpsilon    = 1e-10
	// mosseMinStd guards the intensity normalisation of flat patches.
	mosseMinStd = 1e-5
)

// fillHann writes a separable cosine window of cols x rows.
func fillHann(dst []float64, rows, cols int) {
	for r := 0; r < rows; r++ {
		wr := hann(r, rows)
		for c := 0; c < cols; c++ {
			dst[r*cols+c] = wr * hann(c, cols)
		}
	}
}

func hann(i, n int) float64 {
	if n < 2 {
		return 1
	}
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
}

// fillGaussian writes the spectrum of a Gaussian peak centred on the origin.
// tmp and tmpShifted are rows*cols scratch buffers.
func fillGaussian(yf []complex128, tmp, tmpShifted []float64, plan *dft.Plan2D, sigma float64) {
	rows, cols := plan.Rows(), plan.Cols()
	cy, cx := rows/2, cols/2
	k := -0.5 / (sigma * sigma)
	for r := 0; r < rows; r++ {
		dy := float64(r - cy)
		for c := 0; c < cols; c++ {
			dx := float64(c - cx)
			tmp[r*cols+c] = math.Exp(k * (dx*dx + dy*dy))
		}
	}
	dft.IFFTShift(tmpShifted, tmp, rows, cols)
	plan.ForwardReal(yf, tmpShifted)
}

// computeHOG builds 9-bin unsigned gradient histograms over cell x cell blocks
// of a tw x th patch, normalises each cell by the energy of its 3x3
// neighbourhood and truncates at 0.2. The result is laid out channel-major in
// feat, optionally weighted by window.
func computeHOG(feat, cellHist, energy, patch, window []float64, tw, th, cell int) {
	fw, fh := tw/cell, th/cell
	n := fw * fh
	for i := range cellHist[:hogBins*n] {
		cellHist[i] = 0
	}
	for y := 0; y < th; y++ {
		cy := y / cell
		if cy >= fh {
			break
		}
		row := patch[y*tw : (y+1)*tw]
		up := patch[max(y-1, 0)*tw:]
		down := patch[min(y+1, th-1)*tw:]
		for x := 0; x < tw; x++ {
			cx := x / cell
			if cx >= fw {
				break
			}
			gx := row[min(x+1, tw-1)] - row[max(x-1, 0)]
			gy := down[x] - up[x]
			mag := math.Hypot(gx, gy)
			if mag == 0 {
				continue
			}
			ang := math.Atan2(gy, gx)
			if ang < 0 {
				ang += math.Pi
			}
			if ang >= math.Pi {
				ang -= math.Pi
			}
			pos := ang/math.Pi*hogBins - 0.5
			lo := math.Floor(pos)
			frac := pos - lo
			b0 := (int(lo) + hogBins) % hogBins
			b1 := (b0 + 1) % hogBins
			base := (cy*fw + cx) * hogBins
			cellHist[base+b0] += mag * (1 - frac)
			cellHist[base+b1] += mag * frac
		}
	}
	for i := 0; i < n; i++ {
		e := 0.0
		for _, v := range cellHist[i*hogBins : (i+1)*hogBins] {
			e += v * v
		}
		energy[i] = e
	}
	for cy := 0; cy < fh; cy++ {
		for cx := 0; cx < fw; cx++ {
			sum := 0.0
			for ny := max(cy-1, 0); ny <= min(cy+1, fh-1); ny++ {
				for nx := max(cx-1, 0); nx <= min(cx+1, fw-1); nx++ {
					sum += energy[ny*fw+nx]
				}
			}
			norm := 1.0 / math.Sqrt(sum+hogEpsilon)
			idx := cy*fw + cx
			w := 1.0
			if window != nil {
				w = window[idx]
			}
			for b := 0; b < hogBins; b++ {
				v := cellHist[idx*hogBins+b] * norm
				if v > hogTruncation {
					v = hogTruncation
				}
				feat[b*n+idx] = v * w
			}
		}
	}
}

// preprocessIntensity applies log(1+I), zero-mean unit-variance normalisation
// and the window. A flat patch yields zeros.
func preprocessIntensity(feat, patch, window []float64) {
	n := len(window)
	for i := 0; i < n; i++ {
		feat[i] = math.Log1p(patch[i] * 255.0)
	}
	mean, std := stat.MeanStdDev(feat[:n], nil)
	if std < mosseMinStd || math.IsNaN(std) {
		for i := 0; i < n; i++ {
			feat[i] = 0
		}
		return
	}
	for i := 0; i < n; i++ {
		feat[i] = (feat[i] - mean) / std * window[i]
	}
}
