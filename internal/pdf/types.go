package pdf

import (
	"encoding/json"
	"sort"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/a3tai/pdf-report-reader/internal/pdf/wrapper"
)

// ReportRequest identifies a report document and an optional page
type ReportRequest struct {
	Municipality string `json:"poble"`
	Report       string `json:"informe"`
	Page         *int   `json:"pag"`
}

// FileRef describes a resolved report file. Path is relative to the documents
// directory.
type FileRef struct {
	Name string `json:"nombre"`
	Path string `json:"ruta"`
}

// TextSpan is a positioned run of text with uniform style
type TextSpan struct {
	Text  string     `json:"text"`
	BBox  [4]float64 `json:"bbox"`
	Font  string     `json:"font"`
	Size  float64    `json:"size"`
	Flags int        `json:"flags"`
}

// Image is the metadata of an image used by a page, with its position in the
// page's image list
type Image struct {
	Index int `json:"index"`
	wrapper.ImageElement
}

// Link is a link annotation of a page
type Link struct {
	Kind wrapper.LinkKind `json:"kind"`
	From [4]float64       `json:"from"`
	URI  string           `json:"uri"`
	Page *int             `json:"page"`
}

// PageContent is the full content of one page
type PageContent struct {
	PageNumber int        `json:"page_number"`
	Text       string     `json:"text"`
	TextBlocks []TextSpan `json:"text_blocks"`
	Images     []Image    `json:"images"`
	Links      []Link     `json:"links"`
}

// LineSummary is the deduplicated set of rule positions of a page
type LineSummary struct {
	Count      int       `json:"number"`
	YPositions []float64 `json:"yPositions"`
}

// PageLineSummary is a LineSummary tagged with its page
type PageLineSummary struct {
	PageNumber int         `json:"pageNumber"`
	Lines      LineSummary `json:"horizontal_lines"`
}

// LineSummaries maps page numbers to line summaries. A page without an entry
// had no candidate lines. In single page scope it encodes as the flat summary
// of that page, otherwise as the entries ordered by page number.
type LineSummaries struct {
	page    int
	entries map[int]LineSummary
}

// NewDocumentLineSummaries creates an empty whole-document mapping
func NewDocumentLineSummaries() *LineSummaries {
	return &LineSummaries{entries: make(map[int]LineSummary)}
}

// NewPageLineSummaries creates a mapping scoped to a single page
func NewPageLineSummaries(page int) *LineSummaries {
	return &LineSummaries{page: page, entries: make(map[int]LineSummary)}
}

// Set records the summary of a page
func (s *LineSummaries) Set(page int, summary LineSummary) {
	s.entries[page] = summary
}

// ForPage returns the summary of a page and whether the page has an entry
func (s *LineSummaries) ForPage(page int) (LineSummary, bool) {
	summary, ok := s.entries[page]
	return summary, ok
}

// SinglePage returns the requested page when the mapping is page scoped
func (s *LineSummaries) SinglePage() (int, bool) {
	return s.page, s.page > 0
}

// Len returns the number of pages with an entry
func (s *LineSummaries) Len() int {
	return len(s.entries)
}

// Pages returns the entries ordered by page number
func (s *LineSummaries) Pages() []PageLineSummary {
	pages := make([]PageLineSummary, 0, len(s.entries))
	for n, summary := range s.entries {
		pages = append(pages, PageLineSummary{PageNumber: n, Lines: summary})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	return pages
}

// MarshalJSON implements json.Marshaler
func (s *LineSummaries) MarshalJSON() ([]byte, error) {
	if page, ok := s.SinglePage(); ok {
		summary, found := s.ForPage(page)
		if !found {
			summary = LineSummary{YPositions: []float64{}}
		}
		return json.Marshal(summary)
	}
	return json.Marshal(s.Pages())
}

// DocumentContent is the result of a content extraction
type DocumentContent struct {
	TotalPages      int            `json:"total_pages"`
	ProcessedPages  int            `json:"processed_pages"`
	Items           []PageContent  `json:"items"`
	HorizontalLines *LineSummaries `json:"horizontal_lines"`
}

// Dimensions is the size of a page in points
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LineStatistics summarizes the rules of a page
type LineStatistics struct {
	Count            int     `json:"count"`
	AverageLength    float64 `json:"average_length"`
	AverageThickness float64 `json:"average_thickness"`
	MinY             float64 `json:"min_y"`
	MaxY             float64 `json:"max_y"`
}

// PageLines is the detailed rule report of one page
type PageLines struct {
	PageNumber int                       `json:"page_number"`
	Dimensions Dimensions                `json:"page_dimensions"`
	Lines      []geometry.HorizontalLine `json:"horizontal_lines"`
	Statistics LineStatistics            `json:"statistics"`
}

// LineReport is the result of a line extraction
type LineReport struct {
	TotalPages int `json:"total_pages"`
	PageLines
}

// ReportFile is one entry of the report catalog
type ReportFile struct {
	Municipality string `json:"municipio"`
	Report       string `json:"informe"`
	Name         string `json:"archivo"`
	Path         string `json:"ruta"`
	Exists       bool   `json:"existe"`
}

// ReportFileList is the listing of every municipality and report combination
type ReportFileList struct {
	Files   []ReportFile `json:"archivos_disponibles"`
	Total   int          `json:"total_archivos"`
	Missing int          `json:"archivos_faltantes"`
}

// ServiceInfo describes the running service
type ServiceInfo struct {
	Message        string   `json:"message"`
	Version        string   `json:"version"`
	Status         string   `json:"status"`
	Municipalities []string `json:"municipios_disponibles"`
	Reports        []string `json:"tipos_informe"`
}

// ContentResult is a content extraction together with the request and the file it
// read
type ContentResult struct {
	Request ReportRequest    `json:"parametros"`
	File    FileRef          `json:"archivo"`
	Result  *DocumentContent `json:"resultado"`
}

// LinesResult is a line extraction together with the request and the file it read
type LinesResult struct {
	Request ReportRequest `json:"parametros"`
	File    FileRef       `json:"archivo"`
	Result  *LineReport   `json:"resultado"`
}
