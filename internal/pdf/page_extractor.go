package pdf

import (
	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/a3tai/pdf-report-reader/internal/pdf/errors"
	"github.com/a3tai/pdf-report-reader/internal/pdf/wrapper"
)

// PageExtractor reads the content and the horizontal rules of a single page
type PageExtractor struct {
	classifier *geometry.Classifier
}

// NewPageExtractor creates a page extractor using the given thresholds
func NewPageExtractor(thresholds geometry.Thresholds) *PageExtractor {
	return &PageExtractor{classifier: geometry.NewClassifier(thresholds)}
}

// ExtractContent reads text, spans, images and links of a page, and returns
// the page's rule candidates in summary mode
func (e *PageExtractor) ExtractContent(page wrapper.PDFPage) (*PageContent, *geometry.LineSet, error) {
	number := page.GetNumber()

	text, err := page.GetText()
	if err != nil {
		return nil, nil, errors.ExtractionFailure(err).WithPage(number)
	}

	blocks, err := page.GetTextBlocks()
	if err != nil {
		return nil, nil, errors.ExtractionFailure(err).WithPage(number)
	}

	images, err := page.GetImages()
	if err != nil {
		return nil, nil, errors.ExtractionFailure(err).WithPage(number)
	}

	links, err := page.GetLinks()
	if err != nil {
		return nil, nil, errors.ExtractionFailure(err).WithPage(number)
	}

	lines, err := e.candidates(page, geometry.ModeSummary)
	if err != nil {
		return nil, nil, err
	}

	content := &PageContent{
		PageNumber: number,
		Text:       text,
		TextBlocks: flattenSpans(blocks),
		Images:     make([]Image, 0, len(images)),
		Links:      make([]Link, 0, len(links)),
	}
	for i, img := range images {
		content.Images = append(content.Images, Image{Index: i, ImageElement: img})
	}
	for _, l := range links {
		content.Links = append(content.Links, Link{Kind: l.Kind, From: l.From.Array(), URI: l.URI, Page: l.Page})
	}
	return content, lines, nil
}

// ExtractLines builds the detailed rule report of a page
func (e *PageExtractor) ExtractLines(page wrapper.PDFPage) (*PageLines, error) {
	number := page.GetNumber()

	size, err := page.GetSize()
	if err != nil {
		return nil, errors.ExtractionFailure(err).WithPage(number)
	}

	set, err := e.candidates(page, geometry.ModeDetailed)
	if err != nil {
		return nil, err
	}
	lines := set.Resolve()

	return &PageLines{
		PageNumber: number,
		Dimensions: Dimensions{Width: size.Width, Height: size.Height},
		Lines:      lines,
		Statistics: Statistics(lines),
	}, nil
}

func (e *PageExtractor) candidates(page wrapper.PDFPage, mode geometry.Mode) (*geometry.LineSet, error) {
	drawings, err := page.GetDrawings()
	if err != nil {
		return nil, errors.ExtractionFailure(err).WithPage(page.GetNumber())
	}

	set := geometry.NewLineSet(mode, e.classifier.Thresholds().MergeTolerance)
	for i := range drawings {
		set.Add(e.classifier.ClassifyPath(drawings[i])...)
	}
	return set, nil
}

// flattenSpans lists the spans of the text blocks in block, line, span order.
// Image blocks carry no lines and contribute nothing.
func flattenSpans(blocks []wrapper.TextBlock) []TextSpan {
	spans := []TextSpan{}
	for _, block := range blocks {
		if !block.HasLines() {
			continue
		}
		for _, line := range block.Lines {
			for _, s := range line.Spans {
				spans = append(spans, TextSpan{
					Text:  s.Text,
					BBox:  s.BBox.Array(),
					Font:  s.Font,
					Size:  s.Size,
					Flags: s.Flags,
				})
			}
		}
	}
	return spans
}

// Statistics summarizes resolved lines. The average thickness only counts
// lines with a known thickness.
func Statistics(lines []geometry.HorizontalLine) LineStatistics {
	stats := LineStatistics{Count: len(lines)}
	if len(lines) == 0 {
		return stats
	}

	var totalLength, totalThickness float64
	withThickness := 0
	stats.MinY = lines[0].Y
	stats.MaxY = lines[0].Y
	for _, l := range lines {
		totalLength += l.Length
		if l.Thickness > 0 {
			totalThickness += l.Thickness
			withThickness++
		}
		stats.MinY = min(stats.MinY, l.Y)
		stats.MaxY = max(stats.MaxY, l.Y)
	}

	stats.AverageLength = totalLength / float64(len(lines))
	if withThickness > 0 {
		stats.AverageThickness = totalThickness / float64(withThickness)
	}
	return stats
}
