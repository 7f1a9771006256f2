package pdf

import (
	"fmt"
	"os"
	"slices"

	"github.com/a3tai/pdf-report-reader/internal/pdf/errors"
	"github.com/a3tai/pdf-report-reader/internal/pdf/security"
)

// Catalog locates report documents by municipality and report type. A report
// lives at {root}/{municipality}/{municipality}_{report}.pdf.
type Catalog struct {
	paths          *security.PathValidator
	validator      *Validator
	municipalities []string
	reports        []string
}

// NewCatalog creates a catalog over the accepted municipalities and reports
func NewCatalog(paths *security.PathValidator, validator *Validator, municipalities, reports []string) *Catalog {
	return &Catalog{
		paths:          paths,
		validator:      validator,
		municipalities: slices.Clone(municipalities),
		reports:        slices.Clone(reports),
	}
}

// Municipalities returns the accepted municipality identifiers
func (c *Catalog) Municipalities() []string {
	return slices.Clone(c.municipalities)
}

// Reports returns the accepted report types
func (c *Catalog) Reports() []string {
	return slices.Clone(c.reports)
}

// ValidateRequest checks both identifiers against the accepted lists
func (c *Catalog) ValidateRequest(municipality, report string) error {
	if !slices.Contains(c.municipalities, municipality) {
		return errors.NewPDFError(errors.ErrorTypeInvalidParameter,
			fmt.Sprintf("municipality '%s' is not valid", municipality)).
			WithContext(fmt.Sprintf("available options: %v", c.municipalities))
	}
	if !slices.Contains(c.reports, report) {
		return errors.NewPDFError(errors.ErrorTypeInvalidParameter,
			fmt.Sprintf("report '%s' is not valid", report)).
			WithContext(fmt.Sprintf("available options: %v", c.reports))
	}
	return nil
}

// FileName returns the file name of a report
func FileName(municipality, report string) string {
	return fmt.Sprintf("%s_%s.pdf", municipality, report)
}

// Locate validates the request and returns the absolute path of an existing,
// valid report file along with its reference relative to the root
func (c *Catalog) Locate(municipality, report string) (string, FileRef, error) {
	if err := c.ValidateRequest(municipality, report); err != nil {
		return "", FileRef{}, err
	}

	name := FileName(municipality, report)
	path, err := c.paths.Resolve(municipality, name)
	if err != nil {
		return "", FileRef{}, errors.WrapError(errors.ErrorTypeInvalidParameter, "invalid report location", err)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", FileRef{}, errors.NewPDFError(errors.ErrorTypeDocumentNotFound,
				fmt.Sprintf("no PDF file found for %s", name)).WithFile(path)
		}
		return "", FileRef{}, errors.DocumentOpenFailure(path, err)
	}

	if err := c.validator.ValidateFile(path); err != nil {
		return "", FileRef{}, errors.DocumentOpenFailure(path, err)
	}

	rel, err := c.paths.Relative(path)
	if err != nil {
		return "", FileRef{}, errors.DocumentOpenFailure(path, err)
	}
	return path, FileRef{Name: name, Path: rel}, nil
}

// List reports, for every municipality with a directory, each report type and
// whether its file exists
func (c *Catalog) List() *ReportFileList {
	list := &ReportFileList{Files: []ReportFile{}}

	for _, m := range c.municipalities {
		dir, err := c.paths.Resolve(m)
		if err != nil {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}

		for _, r := range c.reports {
			name := FileName(m, r)
			entry := ReportFile{
				Municipality: m,
				Report:       r,
				Name:         name,
				Path:         m + "/" + name,
			}
			if path, err := c.paths.Resolve(m, name); err == nil {
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					entry.Exists = true
				}
			}

			if entry.Exists {
				list.Total++
			} else {
				list.Missing++
			}
			list.Files = append(list.Files, entry)
		}
	}
	return list
}
