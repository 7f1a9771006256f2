package geometry

import "math"

// Point is a position in page space (origin top-left, y grows downwards)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box given by two corners
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewRect builds a normalized Rect from an origin and a size. Negative sizes are
// folded so that X0 <= X1 and Y0 <= Y1.
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		X0: math.Min(x, x+width),
		Y0: math.Min(y, y+height),
		X1: math.Max(x, x+width),
		Y1: math.Max(y, y+height),
	}
}

// RectFromPoints returns the bounding box of the given points
func RectFromPoints(points ...Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{X0: points[0].X, Y0: points[0].Y, X1: points[0].X, Y1: points[0].Y}
	for _, p := range points[1:] {
		r.X0 = math.Min(r.X0, p.X)
		r.Y0 = math.Min(r.Y0, p.Y)
		r.X1 = math.Max(r.X1, p.X)
		r.Y1 = math.Max(r.Y1, p.Y)
	}
	return r
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Array returns the box as [x0, y0, x1, y1]
func (r Rect) Array() [4]float64 {
	return [4]float64{r.X0, r.Y0, r.X1, r.Y1}
}

// Union returns the smallest Rect containing both boxes
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// Color is an RGB triple with components in [0, 1]
type Color [3]float64

// ItemKind identifies the variant of a DrawingItem
type ItemKind string

const (
	ItemLine  ItemKind = "l"
	ItemRect  ItemKind = "re"
	ItemCurve ItemKind = "c"
)

// DrawingItem is one primitive of a drawing path. The concrete variants are
// LineSegment, Rectangle and Curve.
type DrawingItem interface {
	Kind() ItemKind
}

// LineSegment is a straight segment between two points
type LineSegment struct {
	P0 Point
	P1 Point
}

// Kind implements DrawingItem
func (LineSegment) Kind() ItemKind { return ItemLine }

// Rectangle is a rectangle primitive, normalized so Rect.X0/Y0 is the origin
type Rectangle struct {
	Rect Rect
}

// Kind implements DrawingItem
func (Rectangle) Kind() ItemKind { return ItemRect }

// Curve is a cubic Bézier segment. It is never classified as a rule.
type Curve struct {
	P0, C1, C2, P1 Point
}

// Kind implements DrawingItem
func (Curve) Kind() ItemKind { return ItemCurve }

// DrawingPath is a painted path with its ordered items and paint attributes.
// Width and Color are only set for stroked paths, Fill only for filled ones.
// Closed marks a path whose last subpath was closed; the closing edge is not
// added to Items.
type DrawingPath struct {
	Items  []DrawingItem
	Width  *float64
	Color  *Color
	Fill   *Color
	Closed bool
}
