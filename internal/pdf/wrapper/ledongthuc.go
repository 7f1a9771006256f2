package wrapper

import (
	"fmt"
	"os"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/ledongthuc/pdf"
)

// maxFormDepth bounds the nesting of form XObjects followed by the drawing scan
const maxFormDepth = 8

// defaultPageBox is used when a page declares neither a CropBox nor a MediaBox
var defaultPageBox = pageBox{X0: 0, Y0: 0, X1: 612, Y1: 792}

// LedongthucLibrary implements PDFLibrary with ledongthuc/pdf for page content
// and pdfcpu for object level lookups
type LedongthucLibrary struct{}

// NewLibrary returns the default PDF backend
func NewLibrary() *LedongthucLibrary {
	return &LedongthucLibrary{}
}

// OpenFile opens a PDF from a file path
func (l *LedongthucLibrary) OpenFile(path string) (PDFDocument, error) {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	index, err := readObjectIndex(path)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &LedongthucDocument{
		reader: pdfReader,
		file:   f,
		index:  index,
	}, nil
}

// GetLibraryType returns the library type
func (l *LedongthucLibrary) GetLibraryType() LibraryType {
	return LibraryLedongthuc
}

// LedongthucDocument implements PDFDocument
type LedongthucDocument struct {
	reader *pdf.Reader
	file   *os.File
	index  *objectIndex
	closed bool
}

// GetPageCount returns the number of pages in the document
func (d *LedongthucDocument) GetPageCount() int {
	if d.closed {
		return 0
	}
	return d.reader.NumPage()
}

// GetPage returns the page at the 0-based index
func (d *LedongthucDocument) GetPage(index int) (page PDFPage, err error) {
	if d.closed {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "get_page", Err: ErrDocumentClosed.Err}
	}

	total := d.reader.NumPage()
	if index < 0 || index >= total {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "get_page",
			Err:     fmt.Errorf("invalid page index %d (document has %d pages)", index, total),
		}
	}

	defer recoverInto("get_page", &err)

	p := d.reader.Page(index + 1)
	if p.V.IsNull() {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "get_page", Err: ErrInvalidPage.Err}
	}
	return &LedongthucPage{page: p, number: index + 1, index: d.index}, nil
}

// Close closes the document
func (d *LedongthucDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// LedongthucPage implements PDFPage
type LedongthucPage struct {
	page   pdf.Page
	number int
	index  *objectIndex

	box     *pageBox
	scan    *contentScanner
	scanErr error
}

// GetNumber returns the 1-based page number
func (p *LedongthucPage) GetNumber() int {
	return p.number
}

// GetSize returns the visible page size in points
func (p *LedongthucPage) GetSize() (size *PageSize, err error) {
	defer recoverInto("get_size", &err)

	box := p.pageBox()
	return &PageSize{Width: box.width(), Height: box.height(), Unit: "pt"}, nil
}

// GetText returns the plain text of the page
func (p *LedongthucPage) GetText() (text string, err error) {
	defer recoverInto("get_text", &err)

	text, err = p.page.GetPlainText(nil)
	if err != nil {
		return "", &WrapperError{Library: LibraryLedongthuc, Op: "get_text", Err: err}
	}
	return text, nil
}

// GetTextBlocks returns text blocks followed by the blocks of placed images
func (p *LedongthucPage) GetTextBlocks() (blocks []TextBlock, err error) {
	defer recoverInto("get_text_blocks", &err)

	content := p.page.Content()
	blocks = buildTextBlocks(content.Text, p.pageBox())

	scan, err := p.scanContent()
	if err != nil {
		return nil, err
	}
	return append(blocks, scan.images...), nil
}

// GetImages returns the image XObjects of the page resources
func (p *LedongthucPage) GetImages() ([]ImageElement, error) {
	return p.index.images(p.number)
}

// GetLinks returns the link annotations of the page
func (p *LedongthucPage) GetLinks() (links []LinkElement, err error) {
	defer recoverInto("get_links", &err)

	return p.index.links(p.number, p.pageBox())
}

// GetDrawings returns the painted vector paths of the page
func (p *LedongthucPage) GetDrawings() ([]geometry.DrawingPath, error) {
	scan, err := p.scanContent()
	if err != nil {
		return nil, err
	}
	return scan.interp.Paths(), nil
}

func (p *LedongthucPage) pageBox() pageBox {
	if p.box != nil {
		return *p.box
	}
	box := defaultPageBox
	for _, key := range []string{"CropBox", "MediaBox"} {
		if b, ok := parseBox(inherited(p.page.V, key)); ok {
			box = b
			break
		}
	}
	p.box = &box
	return box
}

func (p *LedongthucPage) scanContent() (scan *contentScanner, err error) {
	if p.scan != nil || p.scanErr != nil {
		return p.scan, p.scanErr
	}
	defer func() {
		if r := recover(); r != nil {
			scan = nil
			err = &WrapperError{Library: LibraryLedongthuc, Op: "get_drawings", Err: fmt.Errorf("malformed content stream: %v", r)}
		}
		p.scan, p.scanErr = scan, err
	}()

	scan = newContentScanner(p.pageBox(), inherited(p.page.V, "Resources"))
	scan.run(p.page.V.Key("Contents"))
	return scan, nil
}

// contentScanner walks the content streams of a page, following form XObjects,
// and feeds the drawing interpreter
type contentScanner struct {
	interp    *drawingInterpreter
	resources []pdf.Value
	images    []TextBlock
}

func newContentScanner(box pageBox, resources pdf.Value) *contentScanner {
	s := &contentScanner{resources: []pdf.Value{resources}}
	s.interp = newDrawingInterpreter(box, s.doXObject)
	return s
}

// run interprets a content stream or an array of content streams
func (s *contentScanner) run(contents pdf.Value) {
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			s.run(contents.Index(i))
		}
		return
	}
	if contents.Kind() != pdf.Stream {
		return
	}
	pdf.Interpret(contents, func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		nums, name := operands(args)
		s.interp.apply(op, nums, name)
	})
}

func (s *contentScanner) doXObject(name string, ctm matrix) {
	res := s.resources[len(s.resources)-1]
	xobj := res.Key("XObject").Key(name)
	if xobj.IsNull() {
		return
	}

	switch xobj.Key("Subtype").Name() {
	case "Image":
		box := s.interp.box
		var corners []geometry.Point
		for _, c := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
			x, y := ctm.apply(c[0], c[1])
			corners = append(corners, box.toPage(x, y))
		}
		s.images = append(s.images, TextBlock{Type: BlockImage, BBox: geometry.RectFromPoints(corners...)})
	case "Form":
		if len(s.resources) > maxFormDepth {
			return
		}
		formRes := xobj.Key("Resources")
		if formRes.IsNull() {
			formRes = res
		}
		s.interp.apply("q", nil, "")
		if m := xobj.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
			nums, _ := operands(arrayValues(m))
			s.interp.apply("cm", nums, "")
		}
		s.resources = append(s.resources, formRes)
		s.run(xobj)
		s.resources = s.resources[:len(s.resources)-1]
		s.interp.apply("Q", nil, "")
	}
}

// operands splits operator arguments into numbers and the trailing name
func operands(args []pdf.Value) ([]float64, string) {
	nums := make([]float64, 0, len(args))
	name := ""
	for _, a := range args {
		switch a.Kind() {
		case pdf.Integer:
			nums = append(nums, float64(a.Int64()))
		case pdf.Real:
			nums = append(nums, a.Float64())
		case pdf.Name:
			name = a.Name()
		}
	}
	return nums, name
}

func arrayValues(v pdf.Value) []pdf.Value {
	values := make([]pdf.Value, v.Len())
	for i := range values {
		values[i] = v.Index(i)
	}
	return values
}

// inherited looks up a page attribute, walking up the page tree when the page
// does not define it
func inherited(page pdf.Value, key string) pdf.Value {
	v := page
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if attr := v.Key(key); !attr.IsNull() {
			return attr
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

func parseBox(v pdf.Value) (pageBox, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return pageBox{}, false
	}
	nums, _ := operands(arrayValues(v))
	if len(nums) != 4 {
		return pageBox{}, false
	}
	box := pageBox{
		X0: min(nums[0], nums[2]),
		Y0: min(nums[1], nums[3]),
		X1: max(nums[0], nums[2]),
		Y1: max(nums[1], nums[3]),
	}
	if box.width() <= 0 || box.height() <= 0 {
		return pageBox{}, false
	}
	return box, true
}

func recoverInto(op string, err *error) {
	if r := recover(); r != nil {
		*err = &WrapperError{Library: LibraryLedongthuc, Op: op, Err: fmt.Errorf("panic: %v", r)}
	}
}
