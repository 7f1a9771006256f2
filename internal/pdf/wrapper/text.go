package wrapper

import (
	"math"
	"strings"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// Layout heuristics, in multiples of the font size
const (
	ascent          = 0.8
	descent         = 0.2
	spaceGap        = 0.25
	spanBreakGap    = 2.0
	baselineDrift   = 0.5
	blockBreakRatio = 1.5
)

type glyph struct {
	text     string
	font     string
	size     float64
	x0, x1   float64
	baseline float64
}

func (g glyph) bbox() geometry.Rect {
	return geometry.Rect{X0: g.x0, Y0: g.baseline - g.size*ascent, X1: g.x1, Y1: g.baseline + g.size*descent}
}

type spanBuilder struct {
	text     strings.Builder
	font     string
	size     float64
	baseline float64
	bbox     geometry.Rect
}

type lineBuilder struct {
	spans    []*spanBuilder
	baseline float64
	size     float64
	lastX1   float64
}

// buildTextBlocks groups positioned glyphs, in content order, into blocks of
// lines of spans. Glyph coordinates are in user space and are converted to
// page coordinates through box.
func buildTextBlocks(texts []pdf.Text, box pageBox) []TextBlock {
	var lines []*lineBuilder
	var line *lineBuilder

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = 1
		}
		p := box.toPage(t.X, t.Y)
		g := glyph{
			text:     t.S,
			font:     stripSubsetPrefix(t.Font),
			size:     size,
			x0:       p.X,
			x1:       p.X + math.Abs(t.W),
			baseline: p.Y,
		}

		if line == nil || !line.accepts(g) {
			line = &lineBuilder{baseline: g.baseline, size: g.size}
			lines = append(lines, line)
		}
		line.add(g)
	}

	var blocks []TextBlock
	for _, lb := range lines {
		tl := lb.build()
		if len(blocks) > 0 {
			last := &blocks[len(blocks)-1]
			prev := last.Lines[len(last.Lines)-1].BBox
			gap := tl.BBox.Y0 - prev.Y1
			if gap <= blockBreakRatio*prev.Height() && gap >= -prev.Height() {
				last.Lines = append(last.Lines, tl)
				last.BBox = last.BBox.Union(tl.BBox)
				continue
			}
		}
		blocks = append(blocks, TextBlock{Type: BlockText, BBox: tl.BBox, Lines: []TextLine{tl}})
	}
	return blocks
}

func (l *lineBuilder) accepts(g glyph) bool {
	tolerance := baselineDrift * math.Max(l.size, g.size)
	if math.Abs(g.baseline-l.baseline) > tolerance {
		return false
	}
	return g.x0 >= l.lastX1-math.Max(l.size, g.size)
}

func (l *lineBuilder) add(g glyph) {
	defer func() { l.lastX1 = g.x1 }()

	if n := len(l.spans); n > 0 {
		s := l.spans[n-1]
		gap := g.x0 - l.lastX1
		if s.font == g.font && s.size == g.size && gap < spanBreakGap*g.size {
			if gap > spaceGap*g.size && !strings.HasSuffix(s.text.String(), " ") && !strings.HasPrefix(g.text, " ") {
				s.text.WriteByte(' ')
			}
			s.text.WriteString(g.text)
			s.bbox = s.bbox.Union(g.bbox())
			return
		}
	}

	s := &spanBuilder{font: g.font, size: g.size, baseline: g.baseline, bbox: g.bbox()}
	s.text.WriteString(g.text)
	l.spans = append(l.spans, s)
	if g.size > l.size {
		l.size = g.size
	}
}

func (l *lineBuilder) build() TextLine {
	tl := TextLine{Spans: make([]TextSpan, 0, len(l.spans))}
	for i, s := range l.spans {
		flags := fontFlags(s.font)
		if s.size < 0.75*l.size && s.baseline < l.baseline-0.15*l.size {
			flags |= FlagSuperscript
		}
		tl.Spans = append(tl.Spans, TextSpan{
			Text:  norm.NFC.String(s.text.String()),
			BBox:  s.bbox,
			Font:  s.font,
			Size:  s.size,
			Flags: flags,
		})
		if i == 0 {
			tl.BBox = s.bbox
		} else {
			tl.BBox = tl.BBox.Union(s.bbox)
		}
	}
	return tl
}

// stripSubsetPrefix removes the "ABCDEF+" tag of embedded font subsets
func stripSubsetPrefix(font string) string {
	if i := strings.IndexByte(font, '+'); i == 6 {
		prefix := font[:6]
		if strings.ToUpper(prefix) == prefix {
			return font[7:]
		}
	}
	return font
}

// fontFlags derives style flags from a font name
func fontFlags(font string) int {
	name := strings.ToLower(font)
	flags := 0
	if containsAny(name, "bold", "black", "heavy", "demi", "semibold") {
		flags |= FlagBold
	}
	if containsAny(name, "italic", "oblique") {
		flags |= FlagItalic
	}
	if containsAny(name, "courier", "mono", "consol") {
		flags |= FlagMonospace
	}
	if !strings.Contains(name, "sans") && containsAny(name, "times", "serif", "roman", "georgia", "garamond", "minion", "cambria") {
		flags |= FlagSerif
	}
	return flags
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
