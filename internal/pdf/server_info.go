package pdf

import (
	"fmt"
	"sync"
	"time"

	"github.com/a3tai/pdf-report-reader/internal/descriptions"
	"github.com/a3tai/pdf-report-reader/internal/geometry"
)

// defaultListingTTL is how long a report listing is reused by server info
const defaultListingTTL = 5 * time.Minute

// ListingCache provides TTL-based caching of the report listing
type ListingCache struct {
	ttl        time.Duration
	now        func() time.Time
	mu         sync.Mutex
	list       *ReportFileList
	lastUpdate time.Time
}

// NewListingCache creates a listing cache with the specified TTL
func NewListingCache(ttl time.Duration) *ListingCache {
	return &ListingCache{ttl: ttl, now: time.Now}
}

// Get returns the cached listing, refreshing it with load when it expired
func (c *ListingCache) Get(load func() *ReportFileList) (*ReportFileList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list != nil && c.now().Sub(c.lastUpdate) <= c.ttl {
		return c.list, true
	}
	c.list = load()
	c.lastUpdate = c.now()
	return c.list, false
}

// Clear drops the cached listing
func (c *ListingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
}

// ToolInfo describes an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// PDFServerInfoResult is the server information returned to tool clients
type PDFServerInfoResult struct {
	ServerName     string              `json:"server_name"`
	Version        string              `json:"version"`
	APIVersion     string              `json:"api_version"`
	Directory      string              `json:"directory"`
	MaxFileSize    int64               `json:"max_file_size"`
	Municipalities []string            `json:"municipalities"`
	Reports        []string            `json:"reports"`
	Thresholds     geometry.Thresholds `json:"thresholds"`
	AvailableTools []ToolInfo          `json:"available_tools"`
	Files          *ReportFileList     `json:"files"`
	FromCache      bool                `json:"from_cache"`
	UsageGuidance  string              `json:"usage_guidance"`
}

// PDFServerInfo builds server information for a Service
type PDFServerInfo struct {
	service *Service
	cache   *ListingCache
}

// NewPDFServerInfo creates a server info builder with the default listing TTL
func NewPDFServerInfo(service *Service) *PDFServerInfo {
	return &PDFServerInfo{service: service, cache: NewListingCache(defaultListingTTL)}
}

// GetServerInfo returns server details, the report listing and usage guidance
func (p *PDFServerInfo) GetServerInfo(serverName, version string) *PDFServerInfoResult {
	files, fromCache := p.cache.Get(p.service.ListFiles)

	return &PDFServerInfoResult{
		ServerName:     serverName,
		Version:        version,
		APIVersion:     ServiceVersion,
		Directory:      p.service.Directory(),
		MaxFileSize:    p.service.GetMaxFileSize(),
		Municipalities: p.service.catalog.Municipalities(),
		Reports:        p.service.catalog.Reports(),
		Thresholds:     p.service.Thresholds(),
		AvailableTools: p.getAvailableTools(),
		Files:          files,
		FromCache:      fromCache,
		UsageGuidance:  p.getUsageGuidance(),
	}
}

// ClearCache forces the next server info call to rescan the documents directory
func (p *PDFServerInfo) ClearCache() {
	p.cache.Clear()
}

// getAvailableTools returns the list of available tools
func (p *PDFServerInfo) getAvailableTools() []ToolInfo {
	const reportParams = "poble (required): municipality identifier, informe (required): report type"
	return []ToolInfo{
		{
			Name:        "pdf_extract_items",
			Description: descriptions.GetToolDescription("pdf_extract_items"),
			Usage:       "Use this tool to get text spans, images, links and rule positions of a report.",
			Parameters:  reportParams + ", pag (optional): 1-based page number, all pages when omitted",
		},
		{
			Name:        "pdf_extract_lines",
			Description: descriptions.GetToolDescription("pdf_extract_lines"),
			Usage:       "Use this tool to get every horizontal rule of one page with its geometry and statistics.",
			Parameters:  reportParams + ", pag (required): 1-based page number",
		},
		{
			Name:        "pdf_list_files",
			Description: descriptions.GetToolDescription("pdf_list_files"),
			Usage:       "Use this tool to see which report files exist.",
			Parameters:  "No parameters required",
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Usage:       "Use this tool to get server information and available capabilities.",
			Parameters:  "refresh (optional): rescan the documents directory instead of using the cached listing",
		},
	}
}

// getUsageGuidance returns usage guidance
func (p *PDFServerInfo) getUsageGuidance() string {
	maxFileSizeMB := p.service.GetMaxFileSize() / (1024 * 1024)

	return fmt.Sprintf(`PDF Report Reader Usage Guide:

1. START WITH DISCOVERY:
   - Use 'pdf_list_files' to see which municipality and report files exist
   - Reports are addressed by municipality (poble) and report type (informe)

2. READ CONTENT:
   - Use 'pdf_extract_items' for a whole report or a single page (pag)
   - Coordinates use the page's top-left corner as origin, y grows downwards
   - horizontal_lines gives the merged y positions of the rules of each page

3. INSPECT RULES:
   - Use 'pdf_extract_lines' with a page to get each rule's endpoints, length,
     thickness and colour, plus page statistics

IMPORTANT NOTES:
- Pages are numbered from 1
- The server can handle files up to %dMB
- Listings in this response are cached for %s`, maxFileSizeMB, p.cache.ttl)
}
