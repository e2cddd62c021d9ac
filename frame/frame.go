// Package frame describes the decoded video frames consumed by the tracker.
//
// A Frame only references caller-owned planes; nothing in this module keeps a
// Frame past the call it was passed to.
package frame

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ErrInvalidFrame is returned when plane sizes don't match the frame geometry.
var ErrInvalidFrame = errors.New("invalid frame")

// Layout is the pixel layout of a frame.
type Layout uint16

const (
	// LayoutNV12 is full-resolution luma followed by a half-resolution plane of interleaved Cb,Cr pairs.
	LayoutNV12 Layout = iota
	// LayoutNV21 is NV12 with Cr,Cb pair order.
	LayoutNV21
	// LayoutI420 is full-resolution luma plus separate half-resolution Cb and Cr planes.
	LayoutI420
	// LayoutGray is luma only. Chroma is treated as neutral.
	LayoutGray
)

func (l Layout) String() string {
	switch l {
	case LayoutNV12:
		return "nv12"
	case LayoutNV21:
		return "nv21"
	case LayoutI420:
		return "i420"
	case LayoutGray:
		return "gray"
	default:
		return "unknown"
	}
}

// Frame is a reference to one decoded YUV-like picture.
type Frame struct {
	Width  int
	Height int
	Layout Layout
	// Y is the luma plane, YStride bytes per row.
	Y       []byte
	YStride int
	// U holds interleaved chroma for NV12/NV21 or the Cb plane for I420.
	U []byte
	// V is the Cr plane for I420 and unused otherwise.
	V        []byte
	UVStride int
}

// NewNV12 allocates a frame with mid-grey luma and neutral chroma.
func NewNV12(width, height int) *Frame {
	cw := (width + 1) / 2
	ch := (height + 1) / 2
	f := &Frame{
		Width:    width,
		Height:   height,
		Layout:   LayoutNV12,
		Y:        make([]byte, width*height),
		YStride:  width,
		U:        make([]byte, 2*cw*ch),
		UVStride: 2 * cw,
	}
	for i := range f.U {
		f.U[i] = 128
	}
	return f
}

// NewGray wraps a luma-only buffer.
func NewGray(width, height int, pix []byte) *Frame {
	return &Frame{
		Width:   width,
		Height:  height,
		Layout:  LayoutGray,
		Y:       pix,
		YStride: width,
	}
}

// Validate checks that every plane is large enough for the declared geometry.
func (f *Frame) Validate() error {
	if f == nil {
		return errors.Wrap(ErrInvalidFrame, "nil frame")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return errors.Wrapf(ErrInvalidFrame, "bad dimensions %dx%d", f.Width, f.Height)
	}
	if f.YStride < f.Width || len(f.Y) < f.YStride*(f.Height-1)+f.Width {
		return errors.Wrapf(ErrInvalidFrame, "luma plane too small: %d bytes, stride %d", len(f.Y), f.YStride)
	}
	cw := (f.Width + 1) / 2
	ch := (f.Height + 1) / 2
	switch f.Layout {
	case LayoutNV12, LayoutNV21:
		if f.UVStride < 2*cw || len(f.U) < f.UVStride*(ch-1)+2*cw {
			return errors.Wrapf(ErrInvalidFrame, "chroma plane too small: %d bytes, stride %d", len(f.U), f.UVStride)
		}
	case LayoutI420:
		need := f.UVStride*(ch-1) + cw
		if f.UVStride < cw || len(f.U) < need || len(f.V) < need {
			return errors.Wrapf(ErrInvalidFrame, "chroma planes too small: %d/%d bytes, stride %d", len(f.U), len(f.V), f.UVStride)
		}
	case LayoutGray:
	default:
		return errors.Wrapf(ErrInvalidFrame, "unknown layout %d", f.Layout)
	}
	return nil
}

// Bounds returns the pixel rectangle of the frame.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Luma returns a zero-copy grayscale view of the luma plane.
func (f *Frame) Luma() *image.Gray {
	return &image.Gray{
		Pix:    f.Y,
		Stride: f.YStride,
		Rect:   f.Bounds(),
	}
}

// YCbCr returns the sample at (x, y). Coordinates must be inside the frame.
func (f *Frame) YCbCr(x, y int) (uint8, uint8, uint8) {
	yy := f.Y[y*f.YStride+x]
	cx, cy := x/2, y/2
	switch f.Layout {
	case LayoutNV12:
		off := cy*f.UVStride + 2*cx
		return yy, f.U[off], f.U[off+1]
	case LayoutNV21:
		off := cy*f.UVStride + 2*cx
		return yy, f.U[off+1], f.U[off]
	case LayoutI420:
		off := cy*f.UVStride + cx
		return yy, f.U[off], f.V[off]
	default:
		return yy, 128, 128
	}
}

// RGB converts the sample at (x, y) with the JFIF full-range equations.
func (f *Frame) RGB(x, y int) (uint8, uint8, uint8) {
	yy, cb, cr := f.YCbCr(x, y)
	return color.YCbCrToRGB(yy, cb, cr)
}

// Fill paints a box of the frame with a single YCbCr colour. Intended for
// synthetic frames in tests and tools.
func (f *Frame) Fill(r image.Rectangle, yy, cb, cr uint8) {
	r = r.Intersect(f.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.Y[y*f.YStride+x] = yy
		}
	}
	if f.Layout == LayoutGray {
		return
	}
	for y := r.Min.Y / 2; y < (r.Max.Y+1)/2; y++ {
		for x := r.Min.X / 2; x < (r.Max.X+1)/2; x++ {
			switch f.Layout {
			case LayoutNV12:
				f.U[y*f.UVStride+2*x] = cb
				f.U[y*f.UVStride+2*x+1] = cr
			case LayoutNV21:
				f.U[y*f.UVStride+2*x] = cr
				f.U[y*f.UVStride+2*x+1] = cb
			case LayoutI420:
				f.U[y*f.UVStride+x] = cb
				f.V[y*f.UVStride+x] = cr
			}
		}
	}
}

// Clone deep-copies the frame planes.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Y = append([]byte(nil), f.Y...)
	if f.U != nil {
		c.U = append([]byte(nil), f.U...)
	}
	if f.V != nil {
		c.V = append([]byte(nil), f.V...)
	}
	return &c
}
