package wrapper

import (
	"math"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
)

// matrix is a PDF transformation matrix [a b c d e f]
type matrix [6]float64

func identity() matrix {
	return matrix{1, 0, 0, 1, 0, 0}
}

// multiply returns m × n. A point is transformed by m first, then by n.
func (m matrix) multiply(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// scale is the factor applied to lengths, e.g. line widths
func (m matrix) scale() float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// axisAligned reports whether m maps axis-aligned boxes onto axis-aligned boxes
func (m matrix) axisAligned() bool {
	return (m[1] == 0 && m[2] == 0) || (m[0] == 0 && m[3] == 0)
}

// pageBox is the visible page area in default user space
type pageBox struct {
	X0, Y0, X1, Y1 float64
}

func (b pageBox) width() float64  { return b.X1 - b.X0 }
func (b pageBox) height() float64 { return b.Y1 - b.Y0 }

// toPage converts a user space point to page coordinates with a top-left origin
func (b pageBox) toPage(x, y float64) geometry.Point {
	return geometry.Point{X: x - b.X0, Y: b.Y1 - y}
}

type graphicsState struct {
	ctm         matrix
	lineWidth   float64
	strokeColor geometry.Color
	fillColor   geometry.Color
}

func newGraphicsState() graphicsState {
	return graphicsState{ctm: identity(), lineWidth: 1.0}
}

// xobjectHandler is called for every Do operator with the resource name and the
// CTM in effect
type xobjectHandler func(name string, ctm matrix)

// drawingInterpreter turns content stream operators into painted paths
type drawingInterpreter struct {
	box   pageBox
	gs    graphicsState
	stack []graphicsState

	items      []geometry.DrawingItem
	start      geometry.Point
	current    geometry.Point
	hasCurrent bool
	closed     bool

	paths []geometry.DrawingPath
	onDo  xobjectHandler
}

func newDrawingInterpreter(box pageBox, onDo xobjectHandler) *drawingInterpreter {
	return &drawingInterpreter{
		box:  box,
		gs:   newGraphicsState(),
		onDo: onDo,
	}
}

// Paths returns the painted paths in stream order
func (d *drawingInterpreter) Paths() []geometry.DrawingPath {
	return d.paths
}

func (d *drawingInterpreter) point(x, y float64) geometry.Point {
	ux, uy := d.gs.ctm.apply(x, y)
	return d.box.toPage(ux, uy)
}

// apply executes one operator. nums holds the numeric operands in stream order
// and name the last name operand, if any.
func (d *drawingInterpreter) apply(op string, nums []float64, name string) {
	switch op {
	case "q":
		d.stack = append(d.stack, d.gs)
	case "Q":
		if n := len(d.stack); n > 0 {
			d.gs = d.stack[n-1]
			d.stack = d.stack[:n-1]
		}
	case "cm":
		if len(nums) == 6 {
			var m matrix
			copy(m[:], nums)
			d.gs.ctm = m.multiply(d.gs.ctm)
		}
	case "w":
		if len(nums) == 1 {
			d.gs.lineWidth = nums[0]
		}

	case "RG", "G", "K", "SC", "SCN":
		if c, ok := colorFromComponents(nums); ok {
			d.gs.strokeColor = c
		}
	case "rg", "g", "k", "sc", "scn":
		if c, ok := colorFromComponents(nums); ok {
			d.gs.fillColor = c
		}

	case "m":
		if len(nums) == 2 {
			p := d.point(nums[0], nums[1])
			d.start, d.current, d.hasCurrent = p, p, true
		}
	case "l":
		if len(nums) == 2 && d.hasCurrent {
			p := d.point(nums[0], nums[1])
			d.items = append(d.items, geometry.LineSegment{P0: d.current, P1: p})
			d.current = p
		}
	case "c":
		if len(nums) == 6 && d.hasCurrent {
			d.curve(d.point(nums[0], nums[1]), d.point(nums[2], nums[3]), d.point(nums[4], nums[5]))
		}
	case "v":
		if len(nums) == 4 && d.hasCurrent {
			d.curve(d.current, d.point(nums[0], nums[1]), d.point(nums[2], nums[3]))
		}
	case "y":
		if len(nums) == 4 && d.hasCurrent {
			end := d.point(nums[2], nums[3])
			d.curve(d.point(nums[0], nums[1]), end, end)
		}
	case "h":
		d.closeSubpath()
	case "re":
		if len(nums) == 4 {
			d.rectangle(nums[0], nums[1], nums[2], nums[3])
		}

	case "S":
		d.paint(true, false)
	case "s":
		d.closeSubpath()
		d.paint(true, false)
	case "f", "F", "f*":
		d.paint(false, true)
	case "B", "B*":
		d.paint(true, true)
	case "b", "b*":
		d.closeSubpath()
		d.paint(true, true)
	case "n":
		d.clearPath()

	case "Do":
		if name != "" && d.onDo != nil {
			d.onDo(name, d.gs.ctm)
		}
	}
}

func (d *drawingInterpreter) curve(c1, c2, end geometry.Point) {
	d.items = append(d.items, geometry.Curve{P0: d.current, C1: c1, C2: c2, P1: end})
	d.current = end
}

func (d *drawingInterpreter) closeSubpath() {
	if !d.hasCurrent {
		return
	}
	d.closed = true
	d.current = d.start
}

// rectangle adds a re operator. Under a rotating or skewing CTM the rectangle is
// no longer axis-aligned and is recorded as its four sides.
func (d *drawingInterpreter) rectangle(x, y, w, h float64) {
	p0 := d.point(x, y)
	p1 := d.point(x+w, y)
	p2 := d.point(x+w, y+h)
	p3 := d.point(x, y+h)

	if d.gs.ctm.axisAligned() {
		d.items = append(d.items, geometry.Rectangle{Rect: geometry.RectFromPoints(p0, p1, p2, p3)})
	} else {
		d.items = append(d.items,
			geometry.LineSegment{P0: p0, P1: p1},
			geometry.LineSegment{P0: p1, P1: p2},
			geometry.LineSegment{P0: p2, P1: p3},
			geometry.LineSegment{P0: p3, P1: p0},
		)
	}
	d.start, d.current, d.hasCurrent = p0, p0, true
}

func (d *drawingInterpreter) paint(stroke, fill bool) {
	if len(d.items) > 0 {
		path := geometry.DrawingPath{Items: d.items, Closed: d.closed}
		if stroke {
			width := d.gs.lineWidth * d.gs.ctm.scale()
			color := d.gs.strokeColor
			path.Width = &width
			path.Color = &color
		}
		if fill {
			color := d.gs.fillColor
			path.Fill = &color
		}
		d.paths = append(d.paths, path)
	}
	d.clearPath()
}

func (d *drawingInterpreter) clearPath() {
	d.items = nil
	d.hasCurrent = false
	d.closed = false
}

// colorFromComponents maps gray, RGB and CMYK operands to RGB
func colorFromComponents(c []float64) (geometry.Color, bool) {
	switch len(c) {
	case 1:
		return geometry.Color{c[0], c[0], c[0]}, true
	case 3:
		return geometry.Color{c[0], c[1], c[2]}, true
	case 4:
		r, g, b := cmykToRGB(c[0], c[1], c[2], c[3])
		return geometry.Color{r, g, b}, true
	}
	return geometry.Color{}, false
}

func cmykToRGB(c, m, y, k float64) (float64, float64, float64) {
	return (1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)
}
