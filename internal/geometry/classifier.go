package geometry

import "math"

// Candidate is a horizontal rule detected from a single drawing item, before
// any deduplication
type Candidate struct {
	Y         float64  `json:"y_position"`
	Source    ItemKind `json:"type"`
	Start     Point    `json:"start"`
	End       Point    `json:"end"`
	XMin      float64  `json:"x_min"`
	XMax      float64  `json:"x_max"`
	Length    float64  `json:"length"`
	Thickness float64  `json:"thickness"`
	Color     *Color   `json:"color,omitempty"`
	Fill      *Color   `json:"fill,omitempty"`
	BBox      Rect     `json:"bbox"`
}

// Classifier decides which drawing items are horizontal rules
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier using the given thresholds
func NewClassifier(thresholds Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Thresholds returns the thresholds the classifier was built with
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify reports whether item is a horizontal rule. The path supplies the
// paint attributes recorded on the candidate and may be nil.
func (c *Classifier) Classify(item DrawingItem, path *DrawingPath) (Candidate, bool) {
	switch it := item.(type) {
	case LineSegment:
		return c.classifyLine(it, path)
	case *LineSegment:
		return c.classifyLine(*it, path)
	case Rectangle:
		return c.classifyRect(it, path)
	case *Rectangle:
		return c.classifyRect(*it, path)
	default:
		return Candidate{}, false
	}
}

// ClassifyPath classifies every item of a path in order
func (c *Classifier) ClassifyPath(path DrawingPath) []Candidate {
	var out []Candidate
	for _, item := range path.Items {
		if cand, ok := c.Classify(item, &path); ok {
			out = append(out, cand)
		}
	}
	return out
}

func (c *Classifier) classifyLine(seg LineSegment, path *DrawingPath) (Candidate, bool) {
	dy := math.Abs(seg.P1.Y - seg.P0.Y)
	dx := math.Abs(seg.P1.X - seg.P0.X)
	if dy > c.thresholds.LineYTolerance || dx < c.thresholds.MinLineLength {
		return Candidate{}, false
	}

	thickness := DefaultThickness
	if path != nil && path.Width != nil && *path.Width > 0 {
		thickness = *path.Width
	}

	cand := Candidate{
		Y:         (seg.P0.Y + seg.P1.Y) / 2,
		Source:    ItemLine,
		Start:     seg.P0,
		End:       seg.P1,
		XMin:      math.Min(seg.P0.X, seg.P1.X),
		XMax:      math.Max(seg.P0.X, seg.P1.X),
		Length:    dx,
		Thickness: thickness,
		BBox:      RectFromPoints(seg.P0, seg.P1),
	}
	if path != nil {
		cand.Color = path.Color
		cand.Fill = path.Fill
	}
	return cand, true
}

func (c *Classifier) classifyRect(rect Rectangle, path *DrawingPath) (Candidate, bool) {
	r := NewRect(rect.Rect.X0, rect.Rect.Y0, rect.Rect.Width(), rect.Rect.Height())
	width, height := r.Width(), r.Height()
	if height > c.thresholds.MaxRuleHeight || width < c.thresholds.MinRuleWidth {
		return Candidate{}, false
	}

	y := r.Y0 + height/2
	cand := Candidate{
		Y:         y,
		Source:    ItemRect,
		Start:     Point{X: r.X0, Y: y},
		End:       Point{X: r.X1, Y: y},
		XMin:      r.X0,
		XMax:      r.X1,
		Length:    width,
		Thickness: height,
		BBox:      r,
	}
	if path != nil {
		cand.Color = path.Color
		cand.Fill = path.Fill
	}
	return cand, true
}
