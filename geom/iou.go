package geom

// IoU calculates Intersection over Union between two rectangles.
func IoU(r1, r2 Rectangle) float64 {
	xA := maxFloat64(r1.X, r2.X)
	yA := maxFloat64(r1.Y, r2.Y)
	xB := minFloat64(r1.X+r1.Width, r2.X+r2.Width)
	yB := minFloat64(r1.Y+r1.Height, r2.Y+r2.Height)

	interArea := maxFloat64(0, xB-xA) * maxFloat64(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}

	r1Area := r1.Area()
	r2Area := r2.Area()
	union := r1Area + r2Area - interArea
	if union <= 0 {
		return 0.0
	}
	return interArea / union
}

// OverlapRatio returns the share of r1's area that is covered by r2.
// Unlike IoU it is asymmetric: a small box fully inside a large one scores 1.
func OverlapRatio(r1, r2 Rectangle) float64 {
	area := r1.Area()
	if area == 0 {
		return 0.0
	}
	return r1.Intersect(r2).Area() / area
}

// SizeChange is the mean relative change of width and height going from ref to r.
func SizeChange(ref, r Rectangle) float64 {
	if ref.Width <= 0 || ref.Height <= 0 {
		return 0.0
	}
	dw := absFloat64(r.Width-ref.Width) / ref.Width
	dh := absFloat64(r.Height-ref.Height) / ref.Height
	return (dw + dh) / 2.0
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absFloat64(a float64) float64 {
	if a < 0 {
		return -a
	}
	return a
}
