package pdf

import (
	"fmt"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/a3tai/pdf-report-reader/internal/pdf/wrapper"
)

// fakeLibrary serves in-memory documents and records every handle it opens
type fakeLibrary struct {
	pages   []*fakePage
	openErr error
	opened  []*fakeDocument
}

func newFakeLibrary(pages ...*fakePage) *fakeLibrary {
	for i, p := range pages {
		p.number = i + 1
	}
	return &fakeLibrary{pages: pages}
}

func (l *fakeLibrary) OpenFile(path string) (wrapper.PDFDocument, error) {
	if l.openErr != nil {
		return nil, l.openErr
	}
	doc := &fakeDocument{pages: l.pages}
	l.opened = append(l.opened, doc)
	return doc, nil
}

func (l *fakeLibrary) GetLibraryType() wrapper.LibraryType {
	return wrapper.LibraryLedongthuc
}

func (l *fakeLibrary) lastDocument() *fakeDocument {
	if len(l.opened) == 0 {
		return nil
	}
	return l.opened[len(l.opened)-1]
}

type fakeDocument struct {
	pages     []*fakePage
	requested []int
	closes    int
}

func (d *fakeDocument) GetPageCount() int {
	return len(d.pages)
}

func (d *fakeDocument) GetPage(index int) (wrapper.PDFPage, error) {
	d.requested = append(d.requested, index)
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("invalid page index %d", index)
	}
	return d.pages[index], nil
}

func (d *fakeDocument) Close() error {
	d.closes++
	return nil
}

// fakePage returns canned content. When panicMsg is set GetDrawings panics.
type fakePage struct {
	number   int
	text     string
	blocks   []wrapper.TextBlock
	images   []wrapper.ImageElement
	links    []wrapper.LinkElement
	drawings []geometry.DrawingPath
	size     wrapper.PageSize
	textErr  error
	panicMsg string
}

func (p *fakePage) GetNumber() int { return p.number }

func (p *fakePage) GetSize() (*wrapper.PageSize, error) {
	size := p.size
	if size.Width == 0 {
		size = wrapper.PageSize{Width: 612, Height: 792, Unit: "pt"}
	}
	return &size, nil
}

func (p *fakePage) GetText() (string, error) {
	if p.textErr != nil {
		return "", p.textErr
	}
	return p.text, nil
}

func (p *fakePage) GetTextBlocks() ([]wrapper.TextBlock, error) { return p.blocks, nil }

func (p *fakePage) GetImages() ([]wrapper.ImageElement, error) { return p.images, nil }

func (p *fakePage) GetLinks() ([]wrapper.LinkElement, error) { return p.links, nil }

func (p *fakePage) GetDrawings() ([]geometry.DrawingPath, error) {
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	return p.drawings, nil
}

// segmentPath is a stroked path with a single line segment
func segmentPath(x0, y0, x1, y1, width float64) geometry.DrawingPath {
	return geometry.DrawingPath{
		Items: []geometry.DrawingItem{geometry.LineSegment{
			P0: geometry.Point{X: x0, Y: y0},
			P1: geometry.Point{X: x1, Y: y1},
		}},
		Width: &width,
	}
}

// barPath is a filled path with a single rectangle
func barPath(x, y, w, h float64) geometry.DrawingPath {
	fill := geometry.Color{0, 0, 0}
	return geometry.DrawingPath{
		Items: []geometry.DrawingItem{geometry.Rectangle{Rect: geometry.NewRect(x, y, w, h)}},
		Fill:  &fill,
	}
}

func intPtr(v int) *int {
	return &v
}
