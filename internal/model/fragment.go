package model

import "math"

// Point is a 2D point in pixel coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Scale returns the point scaled by a factor
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Polygon is a four-corner bounding polygon (top-left, top-right, bottom-right, bottom-left)
type Polygon [4]Point

// RectPolygon builds an axis-aligned polygon from a rectangle
func RectPolygon(x, y, width, height float64) Polygon {
	return Polygon{
		{X: x, Y: y},
		{X: x + width, Y: y},
		{X: x + width, Y: y + height},
		{X: x, Y: y + height},
	}
}

// Centroid returns the mean of the four corners
func (p Polygon) Centroid() Point {
	var c Point
	for _, pt := range p {
		c.X += pt.X
		c.Y += pt.Y
	}
	return Point{X: c.X / 4, Y: c.Y / 4}
}

// Scale returns the polygon with every corner scaled by a factor
func (p Polygon) Scale(factor float64) Polygon {
	var out Polygon
	for i, pt := range p {
		out[i] = pt.Scale(factor)
	}
	return out
}

// TextFragment is one piece of recognized text with its location
type TextFragment struct {
	Text       string  `json:"text"`
	Box        Polygon `json:"box"`
	Confidence float64 `json:"confidence"`     // 0..1
	Pass       string  `json:"pass,omitempty"` // preprocessing variant that produced it
}
