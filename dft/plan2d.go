package dft

import (
	"math/cmplx"

	"github.com/pkg/errors"
)

// Plan2D transforms row-major 2D arrays of rows x cols samples, first along
// every row and then along every column.
type Plan2D struct {
	rows, cols int
	rowPlan    *Plan
	colPlan    *Plan
	rowReal    *RealPlan
	line       []complex128
	half       []complex128
	work       []complex128
}

// NewPlan2D prepares 2D transforms for a rows x cols array.
func NewPlan2D(rows, cols int) (*Plan2D, error) {
	if rows < 1 || cols < 1 {
		return nil, errors.Errorf("dft: invalid 2D size %dx%d", cols, rows)
	}
	rowPlan, err := NewPlan(cols)
	if err != nil {
		return nil, errors.Wrap(err, "can't prepare row plan")
	}
	colPlan, err := NewPlan(rows)
	if err != nil {
		return nil, errors.Wrap(err, "can't prepare column plan")
	}
	rowReal, err := NewRealPlan(cols)
	if err != nil {
		return nil, errors.Wrap(err, "can't prepare real row plan")
	}
	halfCols := cols/2 + 1
	return &Plan2D{
		rows:    rows,
		cols:    cols,
		rowPlan: rowPlan,
		colPlan: colPlan,
		rowReal: rowReal,
		line:    make([]complex128, max(rows, cols)),
		half:    make([]complex128, halfCols),
		work:    make([]complex128, rows*halfCols),
	}, nil
}

// Rows returns the number of rows.
func (p *Plan2D) Rows() int { return p.rows }

// Cols returns the number of columns.
func (p *Plan2D) Cols() int { return p.cols }

// Size returns rows*cols.
func (p *Plan2D) Size() int { return p.rows * p.cols }

// Forward transforms data in place. The result is unnormalized.
func (p *Plan2D) Forward(data []complex128) {
	p.transform(data, false)
}

// Inverse transforms data in place and scales by 1/(rows*cols).
func (p *Plan2D) Inverse(data []complex128) {
	p.transform(data, true)
	scale := complex(1.0/float64(p.rows*p.cols), 0)
	for i := range data[:p.rows*p.cols] {
		data[i] *= scale
	}
}

func (p *Plan2D) transform(data []complex128, inverse bool) {
	p.checkLen(len(data))
	rows, cols := p.rows, p.cols
	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]
		if inverse {
			p.rowPlan.Inverse(row, row)
		} else {
			p.rowPlan.Forward(row, row)
		}
	}
	line := p.line[:rows]
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			line[r] = data[r*cols+c]
		}
		if inverse {
			p.colPlan.Inverse(line, line)
		} else {
			p.colPlan.Forward(line, line)
		}
		for r := 0; r < rows; r++ {
			data[r*cols+c] = line[r]
		}
	}
}

// ForwardReal writes the full rows*cols spectrum of a real array into dst.
// Only cols/2+1 columns are transformed; the rest follow from Hermitian symmetry.
func (p *Plan2D) ForwardReal(dst []complex128, src []float64) {
	p.checkLen(len(dst))
	p.checkLen(len(src))
	rows, cols := p.rows, p.cols
	halfCols := cols/2 + 1
	for r := 0; r < rows; r++ {
		p.rowReal.Forward(p.half, src[r*cols:(r+1)*cols])
		copy(dst[r*cols:r*cols+halfCols], p.half)
	}
	line := p.line[:rows]
	for c := 0; c < halfCols; c++ {
		for r := 0; r < rows; r++ {
			line[r] = dst[r*cols+c]
		}
		p.colPlan.Forward(line, line)
		for r := 0; r < rows; r++ {
			dst[r*cols+c] = line[r]
		}
	}
	for r := 0; r < rows; r++ {
		mirrorRow := (rows - r) % rows
		for c := halfCols; c < cols; c++ {
			dst[r*cols+c] = cmplx.Conj(dst[mirrorRow*cols+(cols-c)])
		}
	}
}

// InverseReal reconstructs a real array from its full Hermitian spectrum and
// scales by 1/(rows*cols). src is left untouched.
func (p *Plan2D) InverseReal(dst []float64, src []complex128) {
	p.checkLen(len(dst))
	p.checkLen(len(src))
	rows, cols := p.rows, p.cols
	halfCols := cols/2 + 1
	line := p.line[:rows]
	for c := 0; c < halfCols; c++ {
		for r := 0; r < rows; r++ {
			line[r] = src[r*cols+c]
		}
		p.colPlan.Inverse(line, line)
		for r := 0; r < rows; r++ {
			p.work[r*halfCols+c] = line[r]
		}
	}
	scale := 1.0 / float64(rows*cols)
	for r := 0; r < rows; r++ {
		out := dst[r*cols : (r+1)*cols]
		p.rowReal.Inverse(out, p.work[r*halfCols:(r+1)*halfCols])
		for i := range out {
			out[i] *= scale
		}
	}
}

func (p *Plan2D) checkLen(n int) {
	if n < p.rows*p.cols {
		panic(errors.Errorf("dft: buffer of %d samples is shorter than %dx%d", n, p.cols, p.rows))
	}
}

// Transform runs a one-off 2D transform of a width x height array of
// interleaved complex samples in place. Forward is unnormalized; inverse
// scales by 1/(width*height). Callers on a hot path should keep a Plan2D instead.
func Transform(data []complex128, width, height int, inverse bool) error {
	if len(data) < width*height {
		return errors.Errorf("dft: %d samples for a %dx%d transform", len(data), width, height)
	}
	plan, err := NewPlan2D(height, width)
	if err != nil {
		return err
	}
	if inverse {
		plan.Inverse(data)
	} else {
		plan.Forward(data)
	}
	return nil
}
