// Package pdftest builds small, well-formed PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Page describes one page of a generated document. Content is the raw content
// stream; the font resource /F1 (Helvetica) is always available. Annots are raw
// annotation dictionaries in which @PAGEn is replaced by a reference to page n.
type Page struct {
	Content string
	Annots  []string
}

// Build returns the bytes of a PDF with the given pages. The MediaBox
// [0 0 612 792] is declared on the page tree root and inherited by every page.
func Build(pages ...Page) []byte {
	const (
		catalogObj = 1
		pagesObj   = 2
		fontObj    = 3
	)

	pageObjs := make([]int, len(pages))
	next := fontObj + 1
	for i, p := range pages {
		pageObjs[i] = next
		next += 2 + len(p.Annots)
	}

	objects := make([]string, next-1)
	kids := make([]string, len(pages))
	for i, n := range pageObjs {
		kids[i] = fmt.Sprintf("%d 0 R", n)
	}

	objects[catalogObj-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	objects[pagesObj-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(pages))
	objects[fontObj-1] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /FirstChar 32 /LastChar 126 /Widths [" +
		strings.TrimSpace(strings.Repeat("500 ", 95)) + "] >>"

	for i, p := range pages {
		pageNr := pageObjs[i]
		contentNr := pageNr + 1

		annotRefs := make([]string, len(p.Annots))
		for j, a := range p.Annots {
			annotNr := contentNr + 1 + j
			annotRefs[j] = fmt.Sprintf("%d 0 R", annotNr)
			for k, target := range pageObjs {
				a = strings.ReplaceAll(a, fmt.Sprintf("@PAGE%d", k+1), fmt.Sprintf("%d 0 R", target))
			}
			objects[annotNr-1] = a
		}

		annots := ""
		if len(annotRefs) > 0 {
			annots = fmt.Sprintf(" /Annots [%s]", strings.Join(annotRefs, " "))
		}
		objects[pageNr-1] = fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R%s >>",
			pagesObj, fontObj, contentNr, annots)
		objects[contentNr-1] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(p.Content), p.Content)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, catalogObj, xref)
	return buf.Bytes()
}

// WriteFile writes a generated PDF to dir/name, creating parent directories,
// and returns its path
func WriteFile(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// RulesPage is a page with a stroked horizontal line at y=700, a thin filled
// bar at y=400 and a line of text. In top-left coordinates the rules lie at
// y=92 and y=390.5.
func RulesPage() Page {
	return Page{
		Content: strings.Join([]string{
			"0 0 0 RG 2 w",
			"50 700 m 550 700 l S",
			"0.5 g 50 400 500 3 re f",
			"BT /F1 12 Tf 72 720 Td (Hello World) Tj ET",
		}, "\n"),
	}
}
