package wrapper

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resolver dereferences indirect objects
type resolver interface {
	Dereference(o types.Object) (types.Object, error)
}

// pageDictFunc returns the page dictionary for a 1-based page number along with
// its indirect reference
type pageDictFunc func(pageNr int) (types.Dict, *types.IndirectRef, error)

// objectIndex answers questions that need PDF object numbers: image xrefs and
// the pages targeted by links
type objectIndex struct {
	res       resolver
	pageDict  pageDictFunc
	pageCount int

	pageObjects map[int]int
}

// readObjectIndex parses the file with pdfcpu in relaxed validation mode
func readObjectIndex(path string) (*objectIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open_file", Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open_file", Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open_file", Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	pageDict := func(pageNr int) (types.Dict, *types.IndirectRef, error) {
		d, ir, _, err := ctx.PageDict(pageNr, false)
		return d, ir, err
	}
	return newObjectIndex(ctx, pageDict, ctx.PageCount), nil
}

func newObjectIndex(res resolver, pageDict pageDictFunc, pageCount int) *objectIndex {
	return &objectIndex{res: res, pageDict: pageDict, pageCount: pageCount}
}

func (x *objectIndex) deref(o types.Object) types.Object {
	if o == nil {
		return nil
	}
	d, err := x.res.Dereference(o)
	if err != nil {
		return nil
	}
	return d
}

func (x *objectIndex) dict(o types.Object) (types.Dict, bool) {
	switch v := x.deref(o).(type) {
	case types.Dict:
		return v, true
	case types.StreamDict:
		return v.Dict, true
	}
	return nil, false
}

// pageNumber maps a page object number to its 1-based page number
func (x *objectIndex) pageNumber(objNr int) (int, bool) {
	if x.pageObjects == nil {
		x.pageObjects = make(map[int]int, x.pageCount)
		for i := 1; i <= x.pageCount; i++ {
			_, ir, err := x.pageDict(i)
			if err != nil || ir == nil {
				continue
			}
			x.pageObjects[ir.ObjectNumber.Value()] = i
		}
	}
	n, ok := x.pageObjects[objNr]
	return n, ok
}

// resources returns the page resources, following the Parent chain when the
// page inherits them
func (x *objectIndex) resources(page types.Dict) types.Dict {
	for depth := 0; page != nil && depth < 32; depth++ {
		if obj, found := page.Find("Resources"); found {
			if d, ok := x.dict(obj); ok {
				return d
			}
		}
		parent, found := page.Find("Parent")
		if !found {
			break
		}
		page, _ = x.dict(parent)
	}
	return nil
}

// images lists the image XObjects of a page, sorted by resource name
func (x *objectIndex) images(pageNr int) ([]ImageElement, error) {
	page, _, err := x.pageDict(pageNr)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "get_images", Err: err}
	}

	images := []ImageElement{}
	res := x.resources(page)
	if res == nil {
		return images, nil
	}
	obj, found := res.Find("XObject")
	if !found {
		return images, nil
	}
	xobjects, ok := x.dict(obj)
	if !ok {
		return images, nil
	}

	for name, ref := range xobjects {
		sd, ok := x.deref(ref).(types.StreamDict)
		if !ok || nameOf(sd.Dict, "Subtype") != "Image" {
			continue
		}
		img := ImageElement{
			Name:             name,
			Width:            x.intOf(sd.Dict, "Width"),
			Height:           x.intOf(sd.Dict, "Height"),
			BitsPerComponent: x.intOf(sd.Dict, "BitsPerComponent"),
			Filter:           x.filterOf(sd.Dict),
		}
		if ir, ok := ref.(types.IndirectRef); ok {
			img.Xref = ir.ObjectNumber.Value()
		}
		if smask, found := sd.Find("SMask"); found {
			if ir, ok := smask.(types.IndirectRef); ok {
				img.Smask = ir.ObjectNumber.Value()
			}
		}
		if mask, found := sd.Find("ImageMask"); found {
			if b, ok := x.deref(mask).(types.Boolean); ok && b.Value() {
				img.BitsPerComponent = 1
			}
		}
		if cs, found := sd.Find("ColorSpace"); found {
			img.ColorSpace, img.Alt = x.colorSpace(cs)
		}
		images = append(images, img)
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

func nameOf(d types.Dict, key string) string {
	if obj, found := d.Find(key); found {
		if n, ok := obj.(types.Name); ok {
			return n.Value()
		}
	}
	return ""
}

func (x *objectIndex) intOf(d types.Dict, key string) int {
	obj, found := d.Find(key)
	if !found {
		return 0
	}
	switch v := x.deref(obj).(type) {
	case types.Integer:
		return v.Value()
	case types.Float:
		return int(v.Value())
	}
	return 0
}

func (x *objectIndex) number(o types.Object) (float64, bool) {
	switch v := x.deref(o).(type) {
	case types.Integer:
		return float64(v.Value()), true
	case types.Float:
		return v.Value(), true
	}
	return 0, false
}

func (x *objectIndex) filterOf(d types.Dict) string {
	obj, found := d.Find("Filter")
	if !found {
		return ""
	}
	switch v := x.deref(obj).(type) {
	case types.Name:
		return v.Value()
	case types.Array:
		names := make([]string, 0, len(v))
		for _, o := range v {
			if n, ok := x.deref(o).(types.Name); ok {
				names = append(names, n.Value())
			}
		}
		return strings.Join(names, ",")
	}
	return ""
}

// colorSpace returns the color space family and, for spaces defined on top of
// another one, the alternate or base space
func (x *objectIndex) colorSpace(o types.Object) (string, string) {
	switch v := x.deref(o).(type) {
	case types.Name:
		return v.Value(), ""
	case types.Array:
		if len(v) == 0 {
			return "", ""
		}
		family, _ := x.deref(v[0]).(types.Name)
		switch family.Value() {
		case "ICCBased":
			if len(v) > 1 {
				return family.Value(), x.iccAlternate(v[1])
			}
		case "Indexed":
			if len(v) > 1 {
				base, _ := x.colorSpace(v[1])
				return family.Value(), base
			}
		case "Separation", "DeviceN":
			if len(v) > 2 {
				alt, _ := x.colorSpace(v[2])
				return family.Value(), alt
			}
		}
		return family.Value(), ""
	}
	return "", ""
}

func (x *objectIndex) iccAlternate(o types.Object) string {
	d, ok := x.dict(o)
	if !ok {
		return ""
	}
	if alt := nameOf(d, "Alternate"); alt != "" {
		return alt
	}
	switch x.intOf(d, "N") {
	case 1:
		return "DeviceGray"
	case 3:
		return "DeviceRGB"
	case 4:
		return "DeviceCMYK"
	}
	return ""
}

// links lists the link annotations of a page in annotation order
func (x *objectIndex) links(pageNr int, box pageBox) ([]LinkElement, error) {
	page, _, err := x.pageDict(pageNr)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "get_links", Err: err}
	}

	links := []LinkElement{}
	obj, found := page.Find("Annots")
	if !found {
		return links, nil
	}
	annots, ok := x.deref(obj).(types.Array)
	if !ok {
		return links, nil
	}

	for _, a := range annots {
		annot, ok := x.dict(a)
		if !ok || nameOf(annot, "Subtype") != "Link" {
			continue
		}
		link := LinkElement{Kind: LinkNone}
		if r, found := annot.Find("Rect"); found {
			link.From = x.rect(r, box)
		}
		if dest, found := annot.Find("Dest"); found {
			link.Kind = LinkGoTo
			link.Page = x.destinationPage(dest)
		} else if action, found := annot.Find("A"); found {
			x.applyAction(&link, action)
		}
		links = append(links, link)
	}
	return links, nil
}

func (x *objectIndex) rect(o types.Object, box pageBox) geometry.Rect {
	arr, ok := x.deref(o).(types.Array)
	if !ok || len(arr) != 4 {
		return geometry.Rect{}
	}
	var v [4]float64
	for i := range arr {
		v[i], _ = x.number(arr[i])
	}
	return geometry.RectFromPoints(box.toPage(v[0], v[1]), box.toPage(v[2], v[3]))
}

func (x *objectIndex) applyAction(link *LinkElement, o types.Object) {
	action, ok := x.dict(o)
	if !ok {
		return
	}
	switch nameOf(action, "S") {
	case "URI":
		link.Kind = LinkURI
		if uri, found := action.Find("URI"); found {
			link.URI = x.text(uri)
		}
	case "GoTo":
		link.Kind = LinkGoTo
		if dest, found := action.Find("D"); found {
			link.Page = x.destinationPage(dest)
		}
	case "GoToR":
		link.Kind = LinkGoToR
		if f, found := action.Find("F"); found {
			link.URI = x.fileSpec(f)
		}
		if dest, found := action.Find("D"); found {
			if arr, ok := x.deref(dest).(types.Array); ok && len(arr) > 0 {
				if n, ok := x.deref(arr[0]).(types.Integer); ok {
					page := n.Value() + 1
					link.Page = &page
				}
			}
		}
	case "Launch":
		link.Kind = LinkLaunch
		if f, found := action.Find("F"); found {
			link.URI = x.fileSpec(f)
		}
	case "Named":
		link.Kind = LinkNamed
		link.URI = nameOf(action, "N")
	}
}

// destinationPage resolves an explicit destination array to a 1-based page.
// Named destinations are left unresolved.
func (x *objectIndex) destinationPage(o types.Object) *int {
	arr, ok := x.deref(o).(types.Array)
	if !ok || len(arr) == 0 {
		return nil
	}
	switch v := arr[0].(type) {
	case types.IndirectRef:
		if n, ok := x.pageNumber(v.ObjectNumber.Value()); ok {
			return &n
		}
	case types.Integer:
		n := v.Value() + 1
		return &n
	}
	return nil
}

func (x *objectIndex) fileSpec(o types.Object) string {
	if d, ok := x.dict(o); ok {
		for _, key := range []string{"UF", "F"} {
			if f, found := d.Find(key); found {
				return x.text(f)
			}
		}
		return ""
	}
	return x.text(o)
}

// text decodes a string operand: escapes are resolved and UTF-16BE strings
// with a byte order mark are converted to UTF-8
func (x *objectIndex) text(o types.Object) string {
	switch v := x.deref(o).(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		if err != nil {
			return ""
		}
		return s
	case types.HexLiteral:
		s, err := types.HexLiteralToString(v)
		if err != nil {
			return ""
		}
		return s
	case types.Name:
		return v.Value()
	}
	return ""
}
