// Package appearance computes colour histograms over bounding boxes and compares them.
package appearance

import (
	"math"

	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// BinsPerChannel is the number of uniform buckets for each colour channel.
	BinsPerChannel = 64
	// Channels is the number of colour channels in a histogram.
	Channels = 3
	// Size is the total number of bins in a Histogram.
	Size = BinsPerChannel * Channels
)

// ColorSpace selects the colour model the histogram is built in.
type ColorSpace uint16

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceHSV
)

func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceRGB:
		return "rgb"
	case ColorSpaceHSV:
		return "hsv"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (cs ColorSpace) MarshalText() ([]byte, error) {
	switch cs {
	case ColorSpaceRGB, ColorSpaceHSV:
		return []byte(cs.String()), nil
	default:
		return nil, errors.Errorf("unknown color space %d", cs)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (cs *ColorSpace) UnmarshalText(text []byte) error {
	switch string(text) {
	case "rgb", "RGB":
		*cs = ColorSpaceRGB
	case "hsv", "HSV":
		*cs = ColorSpaceHSV
	default:
		return errors.Errorf("unknown color space %q", string(text))
	}
	return nil
}

// Histogram is three consecutive 64-bin channel histograms.
// Every channel of a non-empty histogram sums to 1.
type Histogram [Size]float64

// Sum returns the total mass of all channels (3 for a non-empty region).
func (h *Histogram) Sum() float64 {
	return floats.Sum(h[:])
}

// Channel returns the bins of channel c.
func (h *Histogram) Channel(c int) []float64 {
	return h[c*BinsPerChannel : (c+1)*BinsPerChannel]
}

// IsZero reports whether the histogram was built from an empty region.
func (h *Histogram) IsZero() bool {
	for _, v := range h {
		if v != 0 {
			return false
		}
	}
	return true
}

// Compute builds the histogram of the frame region covered by bbox.
// The box is clamped to the frame first; an empty region yields the zero histogram.
func Compute(f *frame.Frame, bbox geom.Rectangle, space ColorSpace) Histogram {
	var hist Histogram
	r := bbox.Clamp(float64(f.Width), float64(f.Height)).ImageRect().Intersect(f.Bounds())
	if r.Empty() {
		return hist
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb := f.RGB(x, y)
			var b0, b1, b2 int
			switch space {
			case ColorSpaceHSV:
				b0, b1, b2 = hsvBins(cr, cg, cb)
			default:
				b0, b1, b2 = int(cr>>2), int(cg>>2), int(cb>>2)
			}
			hist[b0]++
			hist[BinsPerChannel+b1]++
			hist[2*BinsPerChannel+b2]++
		}
	}
	floats.Scale(1.0/float64(r.Dx()*r.Dy()), hist[:])
	return hist
}

func hsvBins(r, g, b uint8) (int, int, int) {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	h, s, v := c.Hsv()
	return bin(h / 360.0), bin(s), bin(v)
}

// bin maps a value in [0, 1] to a bucket index.
func bin(v float64) int {
	idx := int(v * BinsPerChannel)
	if idx < 0 {
		return 0
	}
	if idx >= BinsPerChannel {
		return BinsPerChannel - 1
	}
	return idx
}

// Correlation is the Pearson correlation of two histograms, in [-1, 1].
// When either histogram has zero variance it returns 1 for identical inputs and 0 otherwise.
func Correlation(a, b *Histogram) float64 {
	corr := stat.Correlation(a[:], b[:], nil)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		if *a == *b {
			return 1.0
		}
		return 0.0
	}
	return corr
}
