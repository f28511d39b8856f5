package tracker

import (
	"math"
)

// Point represents an x,y coordinate in image space
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Box is an axis aligned bounding box in x1,y1,x2,y2 format where
// (x1,y1) is the top left corner and (x2,y2) the bottom right corner
type Box struct {
	X1, Y1, X2, Y2 float64
}

// NewBox creates a new Box with given corner coordinates
func NewBox(x1, y1, x2, y2 float64) Box {
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Centroid returns the geometric center of the box
func (b Box) Centroid() Point {
	return Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// Width returns the width of the box
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the height of the box
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// Area returns the box area in square pixels.  Degenerate boxes with
// inverted corners yield a negative width or height, these are clamped
// to a zero area
func (b Box) Area() float64 {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1

	if w < 0 || h < 0 {
		return 0
	}

	return w * h
}
