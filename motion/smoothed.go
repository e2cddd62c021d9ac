package motion

import (
	"math"

	"github.com/LdDl/vmot/geom"
)

// DefaultBeta is the smoothing factor of the derivative filters.
const DefaultBeta = 0.5

type sample struct {
	pos   state
	d1    state
	d2    state
	speed float64
}

// Smoothed keeps a ring buffer of positions with exponentially smoothed
// first and second order derivatives.
type Smoothed struct {
	beta    float64
	history [HistoryLen]sample
	head    int
	count   int
	full    bool
	last    state
	delta   state
	d1      state
	d2      state
	speed   float64
}

// NewSmoothed creates an empty predictor anchored at bbox.
func NewSmoothed(bbox geom.Rectangle) *Smoothed {
	s := &Smoothed{beta: DefaultBeta}
	s.Reset(bbox)
	return s
}

// Reset implements Predictor.
func (s *Smoothed) Reset(bbox geom.Rectangle) {
	beta := s.beta
	*s = Smoothed{beta: beta, last: stateOf(bbox)}
}

// Update implements Predictor. It appends one sample in O(1), overwriting the oldest once full.
func (s *Smoothed) Update(prev, next geom.Rectangle) error {
	p, n := stateOf(prev), stateOf(next)
	var delta state
	for i := range delta {
		delta[i] = n[i] - p[i]
		s.d1[i] = s.beta*s.d1[i] + (1-s.beta)*delta[i]
		accel := 0.0
		if s.count > 0 {
			accel = delta[i] - s.delta[i]
		}
		s.d2[i] = s.beta*s.d2[i] + (1-s.beta)*accel
	}
	s.speed = s.beta*s.speed + (1-s.beta)*math.Hypot(delta[0], delta[1])
	s.delta = delta
	s.last = n

	s.history[s.head] = sample{pos: n, d1: s.d1, d2: s.d2, speed: s.speed}
	s.head = (s.head + 1) % HistoryLen
	if s.count < HistoryLen {
		s.count++
	}
	if s.head == 0 {
		s.full = true
	}
	return nil
}

// Predict implements Predictor: last + duration*(mean(d1) + mean(d2)).
func (s *Smoothed) Predict(duration int) geom.Rectangle {
	if s.count == 0 || duration <= 0 {
		return s.last.rect()
	}
	var mean1, mean2 state
	for k := 0; k < s.count; k++ {
		smp := &s.history[k]
		for i := range mean1 {
			mean1[i] += smp.d1[i]
			mean2[i] += smp.d2[i]
		}
	}
	out := s.last
	d := float64(duration)
	for i := range out {
		out[i] += d * (mean1[i] + mean2[i]) / float64(s.count)
	}
	return out.rect()
}

// Last implements Predictor.
func (s *Smoothed) Last() geom.Rectangle {
	return s.last.rect()
}

// Speed implements Predictor.
func (s *Smoothed) Speed() float64 {
	return s.speed
}

// Len implements Predictor.
func (s *Smoothed) Len() int {
	return s.count
}

// Full implements Predictor.
func (s *Smoothed) Full() bool {
	return s.full
}
