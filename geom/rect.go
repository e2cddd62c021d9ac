// Package geom holds the float64 box and point types shared by every tracker stage.
package geom

import (
	"image"
	"math"
)

// Rectangle is an axis-aligned box: top-left corner plus size, in pixels.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectCentered builds a box of the given size around a centre point.
func NewRectCentered(center Point, width, height float64) Rectangle {
	return Rectangle{
		X:      center.X - width/2.0,
		Y:      center.Y - height/2.0,
		Width:  width,
		Height: height,
	}
}

// Center returns the box centre
func (r Rectangle) Center() Point {
	return Point{
		X: r.X + r.Width/2.0,
		Y: r.Y + r.Height/2.0,
	}
}

// Area returns Width*Height, or zero for degenerate boxes
func (r Rectangle) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the box has no area
func (r Rectangle) Empty() bool {
	return r.Area() == 0
}

// Scale grows (or shrinks) the box by factor around its centre.
func (r Rectangle) Scale(factor float64) Rectangle {
	return NewRectCentered(r.Center(), r.Width*factor, r.Height*factor)
}

// Contains reports whether p lies inside the box (edges included).
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Intersect returns the overlapping part of two boxes. The result is empty when they don't overlap.
func (r Rectangle) Intersect(other Rectangle) Rectangle {
	x0 := math.Max(r.X, other.X)
	y0 := math.Max(r.Y, other.Y)
	x1 := math.Min(r.X+r.Width, other.X+other.Width)
	y1 := math.Min(r.Y+r.Height, other.Y+other.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rectangle{}
	}
	return Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Clamp crops the box to [0, width) x [0, height).
func (r Rectangle) Clamp(width, height float64) Rectangle {
	return r.Intersect(Rectangle{Width: width, Height: height})
}

// ImageRect rounds the box outward to integer pixel bounds.
func (r Rectangle) ImageRect() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)),
		int(math.Ceil(r.Y+r.Height)),
	)
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

// EuclideanDistance returns the straight-line distance between two points
func EuclideanDistance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}
