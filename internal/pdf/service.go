package pdf

import (
	"fmt"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/a3tai/pdf-report-reader/internal/pdf/errors"
	"github.com/a3tai/pdf-report-reader/internal/pdf/security"
	"github.com/a3tai/pdf-report-reader/internal/pdf/wrapper"
)

const (
	// ServiceName is reported by the info operations
	ServiceName = "PDF Reader API"
	// ServiceVersion is the version of the report API
	ServiceVersion = "1.0.0"
)

// Options configures a Service
type Options struct {
	Directory      string
	MaxFileSize    int64
	Municipalities []string
	Reports        []string
	Thresholds     geometry.Thresholds
	// Library defaults to wrapper.NewLibrary when nil
	Library wrapper.PDFLibrary
	// Debug enables the extractor's progress lines
	Debug bool
}

// Service handles report operations by orchestrating the catalog and the extractor
type Service struct {
	maxFileSize   int64
	thresholds    geometry.Thresholds
	pathValidator *security.PathValidator
	catalog       *Catalog
	extractor     *Extractor
	serverInfo    *PDFServerInfo
}

// NewService creates a new report service with all components
func NewService(opts Options) (*Service, error) {
	pathValidator, err := security.NewPathValidator(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid line thresholds: %w", err)
	}

	library := opts.Library
	if library == nil {
		library = wrapper.NewLibrary()
	}

	extractor := NewExtractor(library, opts.Thresholds)
	extractor.SetDebug(opts.Debug)

	s := &Service{
		maxFileSize:   opts.MaxFileSize,
		thresholds:    opts.Thresholds,
		pathValidator: pathValidator,
		catalog:       NewCatalog(pathValidator, NewValidator(opts.MaxFileSize), opts.Municipalities, opts.Reports),
		extractor:     extractor,
	}
	s.serverInfo = NewPDFServerInfo(s)
	return s, nil
}

// ExtractContent locates the requested report and extracts its content
func (s *Service) ExtractContent(req ReportRequest) (*ContentResult, error) {
	if err := validatePage(req.Page); err != nil {
		return nil, err
	}

	path, ref, err := s.catalog.Locate(req.Municipality, req.Report)
	if err != nil {
		return nil, err
	}

	content, err := s.extractor.ExtractContent(path, req.Page)
	if err != nil {
		return nil, err
	}
	return &ContentResult{Request: req, File: ref, Result: content}, nil
}

// ExtractLines locates the requested report and builds the line report of the
// requested page. A page is required.
func (s *Service) ExtractLines(req ReportRequest) (*LinesResult, error) {
	if req.Page == nil {
		return nil, errors.NewPDFError(errors.ErrorTypeInvalidParameter, "parameter 'pag' is required")
	}
	if err := validatePage(req.Page); err != nil {
		return nil, err
	}

	path, ref, err := s.catalog.Locate(req.Municipality, req.Report)
	if err != nil {
		return nil, err
	}

	report, err := s.extractor.ExtractLines(path, *req.Page)
	if err != nil {
		return nil, err
	}
	return &LinesResult{Request: req, File: ref, Result: report}, nil
}

// ListFiles reports every municipality and report combination
func (s *Service) ListFiles() *ReportFileList {
	return s.catalog.List()
}

// Info describes the running service
func (s *Service) Info() *ServiceInfo {
	return &ServiceInfo{
		Message:        ServiceName + " for municipal assessment reports",
		Version:        ServiceVersion,
		Status:         "running",
		Municipalities: s.catalog.Municipalities(),
		Reports:        s.catalog.Reports(),
	}
}

// PDFServerInfo returns server details and usage guidance
func (s *Service) PDFServerInfo(serverName, version string) *PDFServerInfoResult {
	return s.serverInfo.GetServerInfo(serverName, version)
}

// RefreshListing drops the report listing cached for server info
func (s *Service) RefreshListing() {
	s.serverInfo.ClearCache()
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// Directory returns the documents directory
func (s *Service) Directory() string {
	return s.pathValidator.Root()
}

// Thresholds returns the line detection thresholds in use
func (s *Service) Thresholds() geometry.Thresholds {
	return s.thresholds
}

// validatePage rejects page numbers below 1 before any file is touched
func validatePage(page *int) error {
	if page != nil && *page < 1 {
		return errors.NewPDFError(errors.ErrorTypeInvalidPageNumber,
			fmt.Sprintf("invalid page number %d, pages start at 1", *page)).WithPage(*page)
	}
	return nil
}
