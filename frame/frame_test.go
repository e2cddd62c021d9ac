package frame

import (
	"image"
	"testing"

	"github.com/pkg/errors"
)

func TestValidate(t *testing.T) {
	f := NewNV12(64, 48)
	if err := f.Validate(); err != nil {
		t.Fatalf("fresh NV12 frame should be valid: %v", err)
	}

	short := NewNV12(64, 48)
	short.U = short.U[:10]
	if err := short.Validate(); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame for short chroma plane, got %v", err)
	}

	var nilFrame *Frame
	if err := nilFrame.Validate(); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame for nil frame, got %v", err)
	}

	gray := NewGray(4, 4, make([]byte, 16))
	if err := gray.Validate(); err != nil {
		t.Errorf("gray frame should be valid: %v", err)
	}
	gray.Width = 0
	if err := gray.Validate(); err == nil {
		t.Error("zero width should be rejected")
	}
}

func TestFillAndRGB(t *testing.T) {
	f := NewNV12(16, 16)
	f.Fill(image.Rect(4, 4, 8, 8), 235, 128, 128)
	r, g, b := f.RGB(5, 5)
	if r < 230 || g < 230 || b < 230 {
		t.Errorf("expected near-white pixel, got (%d, %d, %d)", r, g, b)
	}
	r, g, b = f.RGB(0, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("expected black background, got (%d, %d, %d)", r, g, b)
	}
}

func TestYCbCrLayouts(t *testing.T) {
	nv21 := NewNV12(8, 8)
	nv21.Layout = LayoutNV21
	nv21.Fill(nv21.Bounds(), 100, 50, 200)
	if _, cb, cr := nv21.YCbCr(3, 3); cb != 50 || cr != 200 {
		t.Errorf("NV21 chroma swapped: cb=%d cr=%d", cb, cr)
	}

	i420 := &Frame{
		Width: 4, Height: 4, Layout: LayoutI420,
		Y: make([]byte, 16), YStride: 4,
		U: make([]byte, 4), V: make([]byte, 4), UVStride: 2,
	}
	if err := i420.Validate(); err != nil {
		t.Fatalf("I420 frame should be valid: %v", err)
	}
	i420.Fill(i420.Bounds(), 10, 20, 30)
	if y, cb, cr := i420.YCbCr(3, 1); y != 10 || cb != 20 || cr != 30 {
		t.Errorf("unexpected I420 sample (%d, %d, %d)", y, cb, cr)
	}
}

func TestLumaIsZeroCopy(t *testing.T) {
	f := NewNV12(8, 8)
	luma := f.Luma()
	f.Y[9] = 77
	if luma.GrayAt(1, 1).Y != 77 {
		t.Error("luma view should alias the Y plane")
	}
	c := f.Clone()
	c.Y[9] = 1
	if f.Y[9] != 77 {
		t.Error("clone must not alias the source planes")
	}
}
