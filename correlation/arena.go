package correlation

import (
	"github.com/pkg/errors"
)

// arenaLayout counts the elements an arena has to hold.
type arenaLayout struct {
	floats    int
	complexes int
	bytes     int
}

func (l *arenaLayout) addFloats(n ...int) {
	for _, v := range n {
		l.floats += v
	}
}

func (l *arenaLayout) addComplexes(n ...int) {
	for _, v := range n {
		l.complexes += v
	}
}

func (l *arenaLayout) addBytes(n int) {
	l.bytes += n
}

// size is the number of bytes the arena backing arrays occupy.
func (l arenaLayout) size() int64 {
	return int64(l.floats)*8 + int64(l.complexes)*16 + int64(l.bytes)
}

// arena hands out bounded sub-slices of three backing arrays. Every slice is
// cut with a full slice expression so an append can never spill into a neighbour.
type arena struct {
	f64  []float64
	c128 []complex128
	u8   []byte
	offF int
	offC int
	offB int
}

func newArena(l arenaLayout, budget int64) (*arena, error) {
	if budget > 0 && l.size() > budget {
		return nil, errors.Wrapf(ErrWorkspaceBudget, "need %d bytes, budget %d", l.size(), budget)
	}
	return &arena{
		f64:  make([]float64, l.floats),
		c128: make([]complex128, l.complexes),
		u8:   make([]byte, l.bytes),
	}, nil
}

func (a *arena) floats(n int) []float64 {
	s := a.f64[a.offF : a.offF+n : a.offF+n]
	a.offF += n
	return s
}

func (a *arena) complexes(n int) []complex128 {
	s := a.c128[a.offC : a.offC+n : a.offC+n]
	a.offC += n
	return s
}

func (a *arena) bytes(n int) []byte {
	s := a.u8[a.offB : a.offB+n : a.offB+n]
	a.offB += n
	return s
}

// size is the number of bytes held.
func (a *arena) size() int64 {
	return int64(len(a.f64))*8 + int64(len(a.c128))*16 + int64(len(a.u8))
}
