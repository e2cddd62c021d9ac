// Package motion extrapolates bounding boxes from their recent history.
package motion

import (
	"github.com/LdDl/vmot/geom"
	"github.com/pkg/errors"
)

// HistoryLen is the number of samples kept per track.
const HistoryLen = 15

// Predictor is a per-track kinematic model.
type Predictor interface {
	// Reset drops the history and anchors the model at bbox.
	Reset(bbox geom.Rectangle)
	// Update records the observed move from prev to next.
	Update(prev, next geom.Rectangle) error
	// Predict extrapolates the last observation by duration frames.
	Predict(duration int) geom.Rectangle
	// Last returns the last observed (or smoothed) box.
	Last() geom.Rectangle
	// Speed returns the smoothed centre speed in pixels per frame.
	Speed() float64
	Len() int
	Full() bool
}

// Model selects a Predictor implementation.
type Model uint16

const (
	ModelSmoothed Model = iota
	ModelKalman
)

func (m Model) String() string {
	switch m {
	case ModelSmoothed:
		return "smoothed"
	case ModelKalman:
		return "kalman"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Model) MarshalText() ([]byte, error) {
	switch m {
	case ModelSmoothed, ModelKalman:
		return []byte(m.String()), nil
	default:
		return nil, errors.Errorf("unknown motion model %d", m)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Model) UnmarshalText(text []byte) error {
	switch string(text) {
	case "smoothed":
		*m = ModelSmoothed
	case "kalman":
		*m = ModelKalman
	default:
		return errors.Errorf("unknown motion model %q", string(text))
	}
	return nil
}

// New returns a predictor of the given model anchored at bbox.
func New(model Model, bbox geom.Rectangle) (Predictor, error) {
	switch model {
	case ModelSmoothed:
		return NewSmoothed(bbox), nil
	case ModelKalman:
		return NewKalman(bbox), nil
	default:
		return nil, errors.Errorf("unknown motion model %d", model)
	}
}

// state is a box as centre plus size.
type state [4]float64

func stateOf(r geom.Rectangle) state {
	c := r.Center()
	return state{c.X, c.Y, r.Width, r.Height}
}

func (s state) rect() geom.Rectangle {
	w, h := s[2], s[3]
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return geom.NewRectCentered(geom.NewPoint(s[0], s[1]), w, h)
}
