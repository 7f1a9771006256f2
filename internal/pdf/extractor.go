package pdf

import (
	"fmt"
	"log"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/a3tai/pdf-report-reader/internal/pdf/errors"
	"github.com/a3tai/pdf-report-reader/internal/pdf/wrapper"
)

// Extractor runs page extraction over a document. Every call opens its own
// document handle and closes it before returning.
type Extractor struct {
	library wrapper.PDFLibrary
	pages   *PageExtractor
	debug   bool
}

// NewExtractor creates an extractor reading documents through library
func NewExtractor(library wrapper.PDFLibrary, thresholds geometry.Thresholds) *Extractor {
	return &Extractor{
		library: library,
		pages:   NewPageExtractor(thresholds),
	}
}

// ExtractContent extracts the content of one page, or of every page when page
// is nil, together with the deduplicated rule positions of each page
func (e *Extractor) ExtractContent(path string, page *int) (result *DocumentContent, err error) {
	doc, err := e.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	defer recoverExtraction(path, &result, &err)

	total := doc.GetPageCount()
	indices, err := pageIndices(page, total)
	if err != nil {
		return nil, errors.AsPDFError(err).WithFile(path)
	}

	summaries := NewDocumentLineSummaries()
	if page != nil {
		summaries = NewPageLineSummaries(*page)
	}

	result = &DocumentContent{
		TotalPages:      total,
		ProcessedPages:  len(indices),
		Items:           make([]PageContent, 0, len(indices)),
		HorizontalLines: summaries,
	}

	for _, idx := range indices {
		p, err := doc.GetPage(idx)
		if err != nil {
			return nil, errors.ExtractionFailure(err).WithFile(path).WithPage(idx + 1)
		}

		content, lines, err := e.pages.ExtractContent(p)
		if err != nil {
			return nil, errors.AsPDFError(err).WithFile(path)
		}
		result.Items = append(result.Items, *content)

		// a page appears in the whole-document mapping only if it had candidates
		if page != nil || lines.Len() > 0 {
			ys := lines.Positions()
			summaries.Set(idx+1, LineSummary{Count: len(ys), YPositions: ys})
		}
	}

	e.debugf("%s: processed %d of %d pages", path, len(indices), total)
	return result, nil
}

// ExtractLines builds the detailed rule report of one page
func (e *Extractor) ExtractLines(path string, page int) (result *LineReport, err error) {
	doc, err := e.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	defer recoverExtraction(path, &result, &err)

	total := doc.GetPageCount()
	if _, err := pageIndices(&page, total); err != nil {
		return nil, errors.AsPDFError(err).WithFile(path)
	}

	p, err := doc.GetPage(page - 1)
	if err != nil {
		return nil, errors.ExtractionFailure(err).WithFile(path).WithPage(page)
	}

	lines, err := e.pages.ExtractLines(p)
	if err != nil {
		return nil, errors.AsPDFError(err).WithFile(path)
	}

	e.debugf("%s: page %d has %d lines", path, page, lines.Statistics.Count)
	return &LineReport{TotalPages: total, PageLines: *lines}, nil
}

// SetDebug turns the per-request progress lines on or off
func (e *Extractor) SetDebug(debug bool) {
	e.debug = debug
}

func (e *Extractor) debugf(format string, args ...any) {
	if e.debug {
		log.Printf("[Extractor] "+format, args...)
	}
}

func (e *Extractor) open(path string) (wrapper.PDFDocument, error) {
	doc, err := e.library.OpenFile(path)
	if err != nil {
		return nil, errors.DocumentOpenFailure(path, err)
	}
	return doc, nil
}

// pageIndices returns the 0-based indices to process: the requested page, or
// all pages in order when page is nil
func pageIndices(page *int, total int) ([]int, error) {
	if page != nil {
		if *page < 1 || *page > total {
			return nil, errors.InvalidPageNumber(*page, total)
		}
		return []int{*page - 1}, nil
	}

	indices := make([]int, total)
	for i := range indices {
		indices[i] = i
	}
	return indices, nil
}

// recoverExtraction turns a parser panic into an extraction failure
func recoverExtraction[T any](path string, result **T, err *error) {
	if r := recover(); r != nil {
		*result = nil
		*err = errors.ExtractionFailure(fmt.Errorf("%v", r)).WithFile(path)
	}
}
