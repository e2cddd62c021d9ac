package correlation

import (
	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
	"github.com/pkg/errors"
)

// IOU carries no visual model: it just remembers the last confirmed box.
// Tracks of this variant are extrapolated by their motion model between detections.
type IOU struct {
	bbox        geom.Rectangle
	initialized bool
}

// NewIOU creates an uninitialised IOU filter.
func NewIOU() *IOU {
	return &IOU{}
}

// Init implements Filter.
func (iou *IOU) Init(bbox geom.Rectangle, f *frame.Frame) error {
	if bbox.Empty() {
		return errors.Wrapf(ErrEmptyBBox, "bbox %+v", bbox)
	}
	iou.bbox = bbox
	iou.initialized = true
	return nil
}

// DetectUpdate implements Filter.
func (iou *IOU) DetectUpdate(bbox geom.Rectangle, f *frame.Frame) error {
	if !iou.initialized {
		return ErrNotInitialized
	}
	iou.bbox = bbox
	return nil
}

// UpdatePosition implements Filter. The box never moves and confidence is always 1.
func (iou *IOU) UpdatePosition(f *frame.Frame, threshold float64) (geom.Rectangle, float64, bool) {
	if !iou.initialized {
		return iou.bbox, 0, false
	}
	return iou.bbox, 1, true
}

// BBox implements Filter.
func (iou *IOU) BBox() geom.Rectangle {
	return iou.bbox
}

// Deinit implements Filter.
func (iou *IOU) Deinit() {
	iou.initialized = false
}

// Initialized implements Filter.
func (iou *IOU) Initialized() bool {
	return iou.initialized
}

// Variant implements Filter.
func (iou *IOU) Variant() Variant {
	return VariantIOU
}

// WorkspaceBytes implements Filter.
func (iou *IOU) WorkspaceBytes() int64 {
	return 0
}
