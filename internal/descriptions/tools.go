package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PDFExtractItemsDescription = `Extract the content of a municipal assessment report: text, positioned text spans, images, links and the horizontal rule lines of each page.

**When to use:** Need the raw layout of a report to parse its tables, or need to know where the rule lines that separate table rows sit.

**Why it's useful:** Every span comes with its bounding box, font, size and style flags in page coordinates (origin at the top-left corner), and rule lines are merged so each visual separator is reported once.

**Examples:**
• Whole report: "Extract items of the 'a' report of collbato"
• Single page: "Extract page 3 of santboi 'bens'"

**Result:** total_pages, processed_pages, items (one per page) and horizontal_lines. For a single page horizontal_lines is {number, yPositions}; for a whole document it is a list of {pageNumber, horizontal_lines} with pages without rules left out.`

	PDFExtractLinesDescription = `Report the horizontal rule lines of one page of a municipal assessment report in detail.

**When to use:** Need exact rule geometry (endpoints, length, thickness, colour) to reconstruct table rows, or to tune the line detection.

**Why it's useful:** Every detected rule is listed, sorted top to bottom and numbered from 1, together with page dimensions and statistics (count, average length, average thickness, minimum and maximum y).

**Examples:**
• "List the lines of page 2 of premia 'a'"

**Best practices:** Use pdf_extract_items first to find the pages that carry rules.`

	PDFListFilesDescription = `List the report files known to the server.

**When to use:** Before extracting, to see which municipality and report combinations are available.

**Result:** one entry per municipality and report type with the expected file name, its path relative to the documents directory and whether it exists, plus totals of present and missing files.`

	PDFServerInfoDescription = `Get server information: version, accepted municipalities and report types, documents directory, detection thresholds and the available tools.

**When to use:** First call in a session, to discover what the server can read.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_extract_items": PDFExtractItemsDescription,
	"pdf_extract_lines": PDFExtractLinesDescription,
	"pdf_list_files":    PDFListFilesDescription,
	"pdf_server_info":   PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the available tool names in alphabetical order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
