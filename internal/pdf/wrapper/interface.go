package wrapper

import (
	"fmt"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
)

// PDFLibrary opens documents with a specific PDF backend
type PDFLibrary interface {
	OpenFile(path string) (PDFDocument, error)
	GetLibraryType() LibraryType
}

// PDFDocument is an open document. It must be closed by the caller that opened
// it and must not be shared across concurrent callers.
type PDFDocument interface {
	GetPageCount() int
	// GetPage returns the page at the 0-based index
	GetPage(index int) (PDFPage, error)
	Close() error
}

// PDFPage exposes the raw primitives of a single page. All coordinates are
// page-relative with the origin at the top-left corner.
type PDFPage interface {
	// GetNumber returns the 1-based page number
	GetNumber() int
	GetSize() (*PageSize, error)
	GetText() (string, error)
	GetTextBlocks() ([]TextBlock, error)
	GetImages() ([]ImageElement, error)
	GetLinks() ([]LinkElement, error)
	GetDrawings() ([]geometry.DrawingPath, error)
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// PageSize represents the dimensions of a PDF page
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// BlockType distinguishes text blocks from image blocks
type BlockType int

const (
	BlockText  BlockType = 0
	BlockImage BlockType = 1
)

// TextBlock is a group of lines, or a placed image when Type is BlockImage
type TextBlock struct {
	Type  BlockType     `json:"type"`
	BBox  geometry.Rect `json:"bbox"`
	Lines []TextLine    `json:"lines,omitempty"`
}

// HasLines reports whether the block carries text
func (b TextBlock) HasLines() bool {
	return b.Lines != nil
}

// TextLine is a run of spans sharing a baseline
type TextLine struct {
	BBox  geometry.Rect `json:"bbox"`
	Spans []TextSpan    `json:"spans"`
}

// Span style flags, bit-compatible with the usual block/line/span text dumps
const (
	FlagSuperscript = 1 << 0
	FlagItalic      = 1 << 1
	FlagSerif       = 1 << 2
	FlagMonospace   = 1 << 3
	FlagBold        = 1 << 4
)

// TextSpan is a run of text with uniform font and size
type TextSpan struct {
	Text  string        `json:"text"`
	BBox  geometry.Rect `json:"bbox"`
	Font  string        `json:"font"`
	Size  float64       `json:"size"`
	Flags int           `json:"flags"`
}

// ImageElement is the metadata of an image XObject used by a page
type ImageElement struct {
	Xref             int    `json:"xref"`
	Smask            int    `json:"smask"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	BitsPerComponent int    `json:"bpc"`
	ColorSpace       string `json:"colorspace"`
	Alt              string `json:"alt"`
	Name             string `json:"name"`
	Filter           string `json:"filter"`
}

// LinkKind classifies a link annotation
type LinkKind string

const (
	LinkNone   LinkKind = "none"
	LinkGoTo   LinkKind = "goto"
	LinkURI    LinkKind = "uri"
	LinkLaunch LinkKind = "launch"
	LinkNamed  LinkKind = "named"
	LinkGoToR  LinkKind = "gotor"
)

// LinkElement is a link annotation. Page is the 1-based target page and is nil
// when the link has no resolvable in-document target.
type LinkElement struct {
	Kind LinkKind      `json:"kind"`
	From geometry.Rect `json:"from"`
	URI  string        `json:"uri"`
	Page *int          `json:"page"`
}

// WrapperError is an error raised by a backend operation
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = &WrapperError{Op: "document", Err: fmt.Errorf("document is closed")}
	ErrInvalidPage    = &WrapperError{Op: "page", Err: fmt.Errorf("invalid page number")}
)
