// Package correlation implements per-object visual trackers that follow a
// target between detections by correlating templates in the frequency domain.
//
// Every Filter owns its FFT plans and a private workspace allocated once in
// Init and released in Deinit. Filters are not safe for concurrent use.
package correlation

import (
	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
	"github.com/pkg/errors"
)

var (
	// ErrNotInitialized is returned when a filter is used before Init or after Deinit.
	ErrNotInitialized = errors.New("correlation filter is not initialized")
	// ErrWorkspaceBudget is returned by Init when the workspace would exceed Params.MaxWorkspaceBytes.
	ErrWorkspaceBudget = errors.New("workspace exceeds budget")
	// ErrEmptyBBox is returned when the bounding box has no area inside the frame.
	ErrEmptyBBox = errors.New("empty bounding box")
)

// Filter is the contract shared by every tracker variant.
type Filter interface {
	// Init allocates the workspace and trains the initial model around bbox.
	Init(bbox geom.Rectangle, f *frame.Frame) error
	// DetectUpdate moves the filter to a confirmed bbox and blends a freshly trained model into the current one.
	DetectUpdate(bbox geom.Rectangle, f *frame.Frame) error
	// UpdatePosition searches the frame around the last position. When the peak
	// confidence is below threshold the bbox and model are left untouched and ok is false.
	UpdatePosition(f *frame.Frame, threshold float64) (bbox geom.Rectangle, confidence float64, ok bool)
	// BBox returns the last known position.
	BBox() geom.Rectangle
	// Deinit releases the workspace. It is safe to call more than once.
	Deinit()
	Initialized() bool
	Variant() Variant
	// WorkspaceBytes is the size of the workspace currently held.
	WorkspaceBytes() int64
}

// Variant tags the filter implementation.
type Variant uint16

const (
	VariantIOU Variant = iota
	VariantMOSSE
	VariantKCF
)

func (v Variant) String() string {
	switch v {
	case VariantIOU:
		return "iou"
	case VariantMOSSE:
		return "mosse"
	case VariantKCF:
		return "kcf"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	switch v {
	case VariantIOU, VariantMOSSE, VariantKCF:
		return []byte(v.String()), nil
	default:
		return nil, errors.Errorf("unknown filter variant %d", v)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	switch string(text) {
	case "iou", "IOU":
		*v = VariantIOU
	case "mosse", "MOSSE":
		*v = VariantMOSSE
	case "kcf", "KCF":
		*v = VariantKCF
	default:
		return errors.Errorf("unknown filter variant %q", string(text))
	}
	return nil
}

// Params tunes a filter. Use DefaultParams and override what you need.
type Params struct {
	// Padding is the ratio of the search window to the bbox on each axis.
	Padding float64
	// TemplateSize is the target length of the longer template side in pixels.
	TemplateSize int
	// CellSize is the HOG cell side in template pixels (KCF only).
	CellSize int
	// LearningRate is the weight of a freshly trained model in the moving average.
	LearningRate float64
	// Lambda regularises the frequency-domain regression.
	Lambda float64
	// KernelSigma is the bandwidth of the Gaussian kernel (KCF only).
	KernelSigma float64
	// OutputSigmaFactor scales the desired Gaussian response relative to the target size.
	OutputSigmaFactor float64
	MultiScale        bool
	ScaleStep         float64
	// ScaleWeight penalises peaks found at a changed scale.
	ScaleWeight float64
	// MaxWorkspaceBytes caps the workspace; zero means unlimited.
	MaxWorkspaceBytes int64
}

// DefaultParams returns the recommended parameters for a variant.
func DefaultParams(v Variant) Params {
	p := Params{
		Padding:           2.5,
		TemplateSize:      96,
		CellSize:          4,
		LearningRate:      0.02,
		Lambda:            1e-4,
		KernelSigma:       0.5,
		OutputSigmaFactor: 0.1,
		ScaleStep:         1.05,
		ScaleWeight:       0.95,
	}
	if v == VariantMOSSE {
		p.CellSize = 1
		p.LearningRate = 0.125
		p.Lambda = 1e-2
	}
	return p
}

// Validate reports parameters no filter can work with.
func (p Params) Validate() error {
	if p.Padding < 1 {
		return errors.Errorf("padding %f must be >= 1", p.Padding)
	}
	if p.TemplateSize < 8 {
		return errors.Errorf("template size %d is too small", p.TemplateSize)
	}
	if p.CellSize < 1 {
		return errors.Errorf("cell size %d must be positive", p.CellSize)
	}
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		return errors.Errorf("learning rate %f must be in (0, 1]", p.LearningRate)
	}
	if p.Lambda < 0 {
		return errors.Errorf("lambda %f must not be negative", p.Lambda)
	}
	if p.KernelSigma <= 0 || p.OutputSigmaFactor <= 0 {
		return errors.New("sigmas must be positive")
	}
	if p.MultiScale && (p.ScaleStep <= 1 || p.ScaleWeight <= 0 || p.ScaleWeight > 1) {
		return errors.Errorf("bad multiscale setup: step %f, weight %f", p.ScaleStep, p.ScaleWeight)
	}
	if p.MaxWorkspaceBytes < 0 {
		return errors.Errorf("workspace budget %d must not be negative", p.MaxWorkspaceBytes)
	}
	return nil
}

// New creates an uninitialised filter of the given variant.
func New(v Variant, p Params) (Filter, error) {
	if v == VariantIOU {
		return NewIOU(), nil
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s params", v)
	}
	switch v {
	case VariantMOSSE:
		return NewMOSSE(p), nil
	case VariantKCF:
		return NewKCF(p), nil
	default:
		return nil, errors.Errorf("unknown filter variant %d", v)
	}
}
