package motion

import (
	"math"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/LdDl/vmot/geom"
	"github.com/pkg/errors"
)

// Kalman is a constant-velocity predictor over the full box state [cx, cy, w, h, vx, vy, vw, vh].
type Kalman struct {
	dt      float64
	tracker *kalman_filter.KalmanBBox
	count   int
}

// NewKalman creates a predictor with default time step of 1.0.
func NewKalman(bbox geom.Rectangle) *Kalman {
	k := &Kalman{dt: 1.0}
	k.Reset(bbox)
	return k
}

// Reset implements Predictor.
func (k *Kalman) Reset(bbox geom.Rectangle) {
	c := bbox.Center()

	// Kalman filter props
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	k.tracker = kalman_filter.NewKalmanBBox(
		k.dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(c.X, c.Y, bbox.Width, bbox.Height),
	)
	k.count = 0
}

// Update implements Predictor. prev is ignored since the filter carries its own state.
func (k *Kalman) Update(prev, next geom.Rectangle) error {
	k.tracker.Predict()
	c := next.Center()
	err := k.tracker.Update(c.X, c.Y, next.Width, next.Height)
	if err != nil {
		return errors.Wrap(err, "Can't update kalman filter")
	}
	if k.count < HistoryLen {
		k.count++
	}
	return nil
}

// Predict implements Predictor.
func (k *Kalman) Predict(duration int) geom.Rectangle {
	cx, cy, w, h := k.tracker.GetState()
	if duration > 0 {
		vx, vy, vw, vh := k.tracker.GetVelocity()
		d := float64(duration) * k.dt
		cx += d * vx
		cy += d * vy
		w += d * vw
		h += d * vh
	}
	return state{cx, cy, w, h}.rect()
}

// Last implements Predictor.
func (k *Kalman) Last() geom.Rectangle {
	return k.Predict(0)
}

// Speed implements Predictor.
func (k *Kalman) Speed() float64 {
	vx, vy, _, _ := k.tracker.GetVelocity()
	return math.Hypot(vx, vy)
}

// Len implements Predictor.
func (k *Kalman) Len() int {
	return k.count
}

// Full implements Predictor.
func (k *Kalman) Full() bool {
	return k.count >= HistoryLen
}
